package retriever

import "fmt"

// WeightMatrix is the weighted representation of an index: row i is the
// weighted vector of document i, stored through a Quantizer. It is only read
// by ranking, never by matching.
//
// Rows can only be appended. The column count is fixed at construction.
type WeightMatrix struct {
	cols      int
	quantizer Quantizer
	rows      []QuantizedRow
}

// NewWeightMatrix creates an empty matrix with cols columns.
func NewWeightMatrix(cols int, quantizer Quantizer) *WeightMatrix {
	return &WeightMatrix{
		cols:      cols,
		quantizer: quantizer,
	}
}

// Rows returns the number of rows (documents).
func (m *WeightMatrix) Rows() int {
	return len(m.rows)
}

// Cols returns the number of columns (vocabulary terms).
func (m *WeightMatrix) Cols() int {
	return m.cols
}

// Quantizer returns the quantizer rows are stored through.
func (m *WeightMatrix) Quantizer() Quantizer {
	return m.quantizer
}

// Row decodes row i.
func (m *WeightMatrix) Row(i int) SparseVector {
	return m.quantizer.Decode(m.rows[i])
}

// Select decodes the given rows in order. This is how ranking restricts the
// matrix to a candidate set.
func (m *WeightMatrix) Select(rows []uint32) []SparseVector {
	out := make([]SparseVector, len(rows))
	for i, r := range rows {
		out[i] = m.quantizer.Decode(m.rows[r])
	}
	return out
}

// encodeRows quantizes a batch without touching the matrix, so a failure
// leaves it unchanged.
func (m *WeightMatrix) encodeRows(rows []SparseVector) ([]QuantizedRow, error) {
	encoded := make([]QuantizedRow, len(rows))
	for i, row := range rows {
		if n := len(row.Indices); n > 0 && int(row.Indices[n-1]) >= m.cols {
			return nil, fmt.Errorf("column %d out of range for %d columns", row.Indices[n-1], m.cols)
		}
		q, err := m.quantizer.Encode(row)
		if err != nil {
			return nil, err
		}
		encoded[i] = q
	}
	return encoded, nil
}

// appendEncoded appends rows produced by encodeRows.
func (m *WeightMatrix) appendEncoded(rows []QuantizedRow) {
	m.rows = append(m.rows, rows...)
}

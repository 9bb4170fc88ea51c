package retriever

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
)

// TermMatrix is the boolean term-presence matrix of an index: row i holds the
// vocabulary columns present in document i.
//
// The matrix keeps two views over the same cells, both as roaring bitmaps:
//   - rows:     row -> columns present (document-major)
//   - postings: column -> rows containing it (term-major, the transpose)
//
// The term-major view is what matching reads: a query only touches the
// posting lists of its own terms, never the full matrix.
//
// Rows can only be appended. The column count is fixed at construction.
type TermMatrix struct {
	cols     int
	rows     []*roaring.Bitmap
	postings []*roaring.Bitmap
}

// NewTermMatrix creates an empty matrix with cols columns.
func NewTermMatrix(cols int) *TermMatrix {
	postings := make([]*roaring.Bitmap, cols)
	for i := range postings {
		postings[i] = roaring.New()
	}
	return &TermMatrix{
		cols:     cols,
		postings: postings,
	}
}

// Rows returns the number of rows (documents).
func (m *TermMatrix) Rows() int {
	return len(m.rows)
}

// Cols returns the number of columns (vocabulary terms).
func (m *TermMatrix) Cols() int {
	return m.cols
}

// Row returns the columns present in row i. The bitmap must not be modified.
func (m *TermMatrix) Row(i int) *roaring.Bitmap {
	return m.rows[i]
}

// Postings returns the rows containing column col, or nil when col is out of
// range. The bitmap must not be modified.
func (m *TermMatrix) Postings(col uint32) *roaring.Bitmap {
	if int(col) >= m.cols {
		return nil
	}
	return m.postings[col]
}

// NonZero returns the number of set cells.
func (m *TermMatrix) NonZero() uint64 {
	var n uint64
	for _, r := range m.rows {
		n += r.GetCardinality()
	}
	return n
}

// AppendRow appends a row whose set columns are given by row. The bitmap is
// copied. Columns beyond the matrix width are rejected.
func (m *TermMatrix) AppendRow(row *roaring.Bitmap) error {
	if err := m.validateRow(row); err != nil {
		return err
	}
	m.appendRow(row)
	return nil
}

// appendRows appends a batch that has already been validated.
func (m *TermMatrix) appendRows(rows []*roaring.Bitmap) {
	for _, r := range rows {
		m.appendRow(r)
	}
}

func (m *TermMatrix) appendRow(row *roaring.Bitmap) {
	rowIdx := uint32(len(m.rows))
	stored := row.Clone()
	stored.RunOptimize()
	m.rows = append(m.rows, stored)

	it := stored.Iterator()
	for it.HasNext() {
		m.postings[it.Next()].Add(rowIdx)
	}
}

func (m *TermMatrix) validateRow(row *roaring.Bitmap) error {
	if row.IsEmpty() {
		return nil
	}
	if maxCol := row.Maximum(); int(maxCol) >= m.cols {
		return fmt.Errorf("column %d out of range for %d columns", maxCol, m.cols)
	}
	return nil
}

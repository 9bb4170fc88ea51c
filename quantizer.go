package retriever

import (
	"errors"
	"fmt"
	"math"

	"github.com/x448/float16"
)

// ErrUnknownQuantizer is returned when an unknown quantizer type is provided to NewQuantizer.
var ErrUnknownQuantizer = errors.New("unknown quantizer type")

// ErrQuantizerNotTrained is returned when an int8 quantizer encodes before Train.
var ErrQuantizerNotTrained = errors.New("quantizer must be trained before use")

// QuantizerType selects the precision weighted rows are stored at.
type QuantizerType string

const (
	FullPrecision QuantizerType = "float32"
	HalfPrecision QuantizerType = "float16"
	Int8Precision QuantizerType = "int8"
)

// QuantizedRow is a sparse weighted row in storage form. Indices are kept as
// is; exactly one of the value slices is populated, depending on the
// quantizer that produced the row.
type QuantizedRow struct {
	Indices []uint32

	f32 []float32
	f16 []float16.Float16
	i8  []int8
}

// Len returns the number of stored components.
func (r QuantizedRow) Len() int {
	return len(r.Indices)
}

// Quantizer converts weighted rows to and from their storage form.
//
// Ranking only ever sees decoded rows, so the precision choice trades memory
// for ranking fidelity and nothing else.
type Quantizer interface {
	// Type returns the quantizer type.
	Type() QuantizerType

	// Train prepares the quantizer from sample rows.
	// Only Int8Precision needs it; the others ignore it.
	Train(rows []SparseVector)

	// IsTrained reports whether Encode can be called.
	IsTrained() bool

	// Encode converts a row to storage form.
	Encode(row SparseVector) (QuantizedRow, error)

	// Decode converts a stored row back to float32 values.
	Decode(row QuantizedRow) SparseVector
}

// NewQuantizer creates a quantizer of the specified type.
func NewQuantizer(qType QuantizerType) (Quantizer, error) {
	switch qType {
	case FullPrecision:
		return &fullPrecisionQuantizer{}, nil
	case HalfPrecision:
		return &halfPrecisionQuantizer{}, nil
	case Int8Precision:
		return &int8Quantizer{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuantizer, qType)
	}
}

// fullPrecisionQuantizer stores 4 bytes per component and is lossless.
type fullPrecisionQuantizer struct{}

func (q *fullPrecisionQuantizer) Type() QuantizerType    { return FullPrecision }
func (q *fullPrecisionQuantizer) Train(_ []SparseVector) {}
func (q *fullPrecisionQuantizer) IsTrained() bool        { return true }

func (q *fullPrecisionQuantizer) Encode(row SparseVector) (QuantizedRow, error) {
	c := row.Copy()
	return QuantizedRow{Indices: c.Indices, f32: c.Values}, nil
}

func (q *fullPrecisionQuantizer) Decode(row QuantizedRow) SparseVector {
	return SparseVector{Indices: row.Indices, Values: row.f32}
}

// halfPrecisionQuantizer stores IEEE 754 half precision: 2 bytes per
// component, about three significant decimal digits.
type halfPrecisionQuantizer struct{}

func (q *halfPrecisionQuantizer) Type() QuantizerType    { return HalfPrecision }
func (q *halfPrecisionQuantizer) Train(_ []SparseVector) {}
func (q *halfPrecisionQuantizer) IsTrained() bool        { return true }

func (q *halfPrecisionQuantizer) Encode(row SparseVector) (QuantizedRow, error) {
	values := make([]float16.Float16, len(row.Values))
	for i, v := range row.Values {
		values[i] = float16.Fromfloat32(v)
	}
	return QuantizedRow{
		Indices: append([]uint32(nil), row.Indices...),
		f16:     values,
	}, nil
}

func (q *halfPrecisionQuantizer) Decode(row QuantizedRow) SparseVector {
	values := make([]float32, len(row.f16))
	for i, v := range row.f16 {
		values[i] = v.Float32()
	}
	return SparseVector{Indices: row.Indices, Values: values}
}

// int8Quantizer maps [-absMax, absMax] linearly onto [-127, 127], 1 byte per
// component. absMax is learned by Train; later values beyond it are clamped.
type int8Quantizer struct {
	absMax float32
}

func (q *int8Quantizer) Type() QuantizerType { return Int8Precision }

func (q *int8Quantizer) Train(rows []SparseVector) {
	var absMax float32
	for _, row := range rows {
		for _, v := range row.Values {
			if a := float32(math.Abs(float64(v))); a > absMax {
				absMax = a
			}
		}
	}
	q.absMax = absMax
}

func (q *int8Quantizer) IsTrained() bool {
	return q.absMax > 0
}

func (q *int8Quantizer) Encode(row SparseVector) (QuantizedRow, error) {
	if !q.IsTrained() {
		return QuantizedRow{}, ErrQuantizerNotTrained
	}
	values := make([]int8, len(row.Values))
	for i, v := range row.Values {
		scaled := math.Round(float64(v/q.absMax) * 127)
		values[i] = int8(math.Max(-127, math.Min(127, scaled)))
	}
	return QuantizedRow{
		Indices: append([]uint32(nil), row.Indices...),
		i8:      values,
	}, nil
}

func (q *int8Quantizer) Decode(row QuantizedRow) SparseVector {
	values := make([]float32, len(row.i8))
	for i, v := range row.i8 {
		values[i] = float32(v) / 127 * q.absMax
	}
	return SparseVector{Indices: row.Indices, Values: values}
}

package retriever

import (
	"math"
	"sort"
)

// SparseVector is a vector over the vocabulary that stores only non-zero
// components. Indices are column numbers in strictly increasing order and
// Values[i] is the component at Indices[i].
type SparseVector struct {
	Indices []uint32
	Values  []float32
}

// NewSparseVector builds a SparseVector from a column -> value map. Zero
// values are skipped.
func NewSparseVector(components map[uint32]float32) SparseVector {
	indices := make([]uint32, 0, len(components))
	for idx, v := range components {
		if v != 0 {
			indices = append(indices, idx)
		}
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	values := make([]float32, len(indices))
	for i, idx := range indices {
		values[i] = components[idx]
	}
	return SparseVector{Indices: indices, Values: values}
}

// DenseToSparse converts a dense vector into its sparse form.
func DenseToSparse(dense []float32) SparseVector {
	var v SparseVector
	for i, x := range dense {
		if x != 0 {
			v.Indices = append(v.Indices, uint32(i))
			v.Values = append(v.Values, x)
		}
	}
	return v
}

// Len returns the number of stored (non-zero) components.
func (v SparseVector) Len() int {
	return len(v.Indices)
}

// IsZero reports whether the vector has no non-zero component.
func (v SparseVector) IsZero() bool {
	for _, x := range v.Values {
		if x != 0 {
			return false
		}
	}
	return true
}

// Dense expands the vector to dim components. Indices >= dim are dropped.
func (v SparseVector) Dense(dim int) []float32 {
	out := make([]float32, dim)
	for i, idx := range v.Indices {
		if int(idx) < dim {
			out[idx] = v.Values[i]
		}
	}
	return out
}

// Copy returns a deep copy of the vector.
func (v SparseVector) Copy() SparseVector {
	return SparseVector{
		Indices: append([]uint32(nil), v.Indices...),
		Values:  append([]float32(nil), v.Values...),
	}
}

// Dot computes the inner product of two sparse vectors with a merge over
// their sorted indices.
func Dot(a, b SparseVector) float32 {
	var sum float32
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// SquaredDistance computes sum((a[i] - b[i])^2) over the union of indices.
func SquaredDistance(a, b SparseVector) float32 {
	var sum float32
	i, j := 0, 0
	for i < len(a.Indices) || j < len(b.Indices) {
		var diff float32
		switch {
		case j >= len(b.Indices) || (i < len(a.Indices) && a.Indices[i] < b.Indices[j]):
			diff = a.Values[i]
			i++
		case i >= len(a.Indices) || b.Indices[j] < a.Indices[i]:
			diff = b.Values[j]
			j++
		default:
			diff = a.Values[i] - b.Values[j]
			i++
			j++
		}
		sum += diff * diff
	}
	return sum
}

// Norm computes the L2 norm of v.
func Norm(v SparseVector) float32 {
	var sum float64
	for _, x := range v.Values {
		sum += float64(x) * float64(x)
	}
	return float32(math.Sqrt(sum))
}

// Normalize returns a unit-length copy of v. A zero vector is returned
// unchanged (as a copy) to avoid NaN components.
func Normalize(v SparseVector) SparseVector {
	out := v.Copy()
	NormalizeInPlace(out)
	return out
}

// NormalizeInPlace scales v to unit length. A zero vector is left unchanged.
func NormalizeInPlace(v SparseVector) {
	n := Norm(v)
	if n == 0 {
		return
	}
	scale := 1 / n
	for i := range v.Values {
		v.Values[i] *= scale
	}
}

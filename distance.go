package retriever

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownDistanceKind is returned when an unknown distance kind is provided to NewDistance.
var ErrUnknownDistanceKind = errors.New("unknown distance kind")

// DistanceKind represents the metric used to rank candidate documents
// against a query vector. Lower distances rank first.
type DistanceKind string

const (
	// Cosine distance is 1 - cos(a, b). It ignores vector magnitude, which is
	// what term weighting wants: a long document is not closer just because it
	// repeats a term. This is the default.
	// Range: [0, 2] where 0 = identical direction, 1 = orthogonal
	Cosine DistanceKind = "cosine"

	// Euclidean (L2) distance: sqrt(sum((a[i] - b[i])^2))
	Euclidean DistanceKind = "l2"

	// L2Squared distance: sum((a[i] - b[i])^2). Same ordering as Euclidean.
	L2Squared DistanceKind = "l2_squared"
)

// Singleton instances of distance strategies.
// These are stateless and can be safely reused across goroutines.
var (
	cosineDistanceImpl    = cosine{}
	euclideanDistanceImpl = euclidean{}
	l2SquaredDistanceImpl = l2Squared{}
)

// Distance computes the distance between two sparse vectors.
type Distance interface {
	// Kind returns the metric implemented.
	Kind() DistanceKind

	// Calculate returns the distance between a and b (lower = more similar).
	Calculate(a, b SparseVector) float32

	// Similarity converts a distance produced by Calculate into a score where
	// higher is more similar.
	Similarity(distance float32) float32
}

// NewDistance returns a singleton Distance implementation for the specified metric type.
// Returns ErrUnknownDistanceKind if the distance kind is not recognized.
//
// Example:
//
//	dist, err := NewDistance(Cosine)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	d := dist.Calculate(DenseToSparse([]float32{1, 0}), DenseToSparse([]float32{0, 1}))  // 1
func NewDistance(kind DistanceKind) (Distance, error) {
	switch kind {
	case Cosine:
		return cosineDistanceImpl, nil
	case Euclidean:
		return euclideanDistanceImpl, nil
	case L2Squared:
		return l2SquaredDistanceImpl, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDistanceKind, kind)
	}
}

// cosine does not assume normalized inputs: stored rows may be count or
// binary weighted, and quantization perturbs unit norms.
type cosine struct{}

func (cosine) Kind() DistanceKind { return Cosine }

// Calculate returns 1 - dot(a,b) / (||a|| * ||b||). If either vector is zero
// the cosine is taken as 0, so the distance is 1 (orthogonal).
func (cosine) Calculate(a, b SparseVector) float32 {
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 1
	}
	sim := Dot(a, b) / (na * nb)

	// Clamp to [-1, 1] to handle floating point precision errors
	if sim > 1 {
		sim = 1
	} else if sim < -1 {
		sim = -1
	}
	return 1 - sim
}

func (cosine) Similarity(distance float32) float32 { return 1 - distance }

type euclidean struct{}

func (euclidean) Kind() DistanceKind { return Euclidean }

func (euclidean) Calculate(a, b SparseVector) float32 {
	return float32(math.Sqrt(float64(SquaredDistance(a, b))))
}

func (euclidean) Similarity(distance float32) float32 { return -distance }

type l2Squared struct{}

func (l2Squared) Kind() DistanceKind { return L2Squared }

func (l2Squared) Calculate(a, b SparseVector) float32 {
	return SquaredDistance(a, b)
}

func (l2Squared) Similarity(distance float32) float32 { return -distance }

package retriever

import (
	"errors"
	"math"
	"testing"
)

// ============================================================================
// FACTORY TESTS
// ============================================================================

func TestNewDistance(t *testing.T) {
	tests := []struct {
		name      string
		kind      DistanceKind
		wantError bool
	}{
		{"cosine", Cosine, false},
		{"euclidean", Euclidean, false},
		{"l2 squared", L2Squared, false},
		{"unknown", DistanceKind("manhattan"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDistance(tt.kind)
			if tt.wantError {
				if !errors.Is(err, ErrUnknownDistanceKind) {
					t.Errorf("expected ErrUnknownDistanceKind, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Kind() != tt.kind {
				t.Errorf("Kind() = %s, want %s", d.Kind(), tt.kind)
			}
		})
	}
}

func TestSingletonInstances(t *testing.T) {
	for _, kind := range []DistanceKind{Cosine, Euclidean, L2Squared} {
		a, _ := NewDistance(kind)
		b, _ := NewDistance(kind)
		if a != b {
			t.Errorf("NewDistance(%s) returned different instances", kind)
		}
	}
}

// ============================================================================
// METRIC TESTS
// ============================================================================

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 2},
		{"45 degrees", []float32{1, 0}, []float32{1, 1}, float32(1 - 1/math.Sqrt2)},
		{"zero query", []float32{0, 0}, []float32{1, 1}, 1},
		{"zero row", []float32{1, 1}, nil, 1},
	}

	d, _ := NewDistance(Cosine)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Calculate(DenseToSparse(tt.a), DenseToSparse(tt.b))
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("Calculate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEuclideanDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 2}, []float32{1, 2}, 0},
		{"3-4-5", []float32{0, 0}, []float32{3, 4}, 5},
		{"sparse", []float32{3, 0, 0}, []float32{0, 0, 4}, 5},
	}

	d, _ := NewDistance(Euclidean)
	sq, _ := NewDistance(L2Squared)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := DenseToSparse(tt.a), DenseToSparse(tt.b)
			if got := d.Calculate(a, b); math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("Euclidean = %v, want %v", got, tt.want)
			}
			if got := sq.Calculate(a, b); math.Abs(float64(got-tt.want*tt.want)) > 1e-5 {
				t.Errorf("L2Squared = %v, want %v", got, tt.want*tt.want)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	cos, _ := NewDistance(Cosine)
	if got := cos.Similarity(0.25); got != 0.75 {
		t.Errorf("cosine Similarity(0.25) = %v, want 0.75", got)
	}
	l2, _ := NewDistance(Euclidean)
	if l2.Similarity(1) <= l2.Similarity(2) {
		t.Error("euclidean similarity should decrease with distance")
	}
}

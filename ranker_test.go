package retriever

import (
	"slices"
	"testing"
)

func denseRows(rows [][]float32) []SparseVector {
	out := make([]SparseVector, len(rows))
	for i, r := range rows {
		out[i] = DenseToSparse(r)
	}
	return out
}

func neighborIndices(ns []Neighbor) []int {
	out := make([]int, len(ns))
	for i, n := range ns {
		out[i] = n.Index
	}
	return out
}

func TestFlatRanker_Cosine(t *testing.T) {
	rows := denseRows([][]float32{
		{10, 1, 0},
		{1, 10, 0},
		{0, 0, 10},
	})

	tests := []struct {
		query []float32
		k     int
		want  []int
	}{
		{[]float32{0, 23, 0}, 2, []int{1, 0}},
		{[]float32{1, 0, 0}, 2, []int{0, 1}},
		{[]float32{1, 0, 10}, 3, []int{2, 0, 1}},
		{[]float32{1, 0, 10}, 1, []int{2}},
		{[]float32{1, 0, 10}, 10, []int{2, 0, 1}},
	}

	r, err := NewFlatRanker(Cosine)
	if err != nil {
		t.Fatalf("NewFlatRanker() error: %v", err)
	}
	for _, tt := range tests {
		got := neighborIndices(r.Rank(rows, DenseToSparse(tt.query), tt.k))
		if !slices.Equal(got, tt.want) {
			t.Errorf("Rank(%v, k=%d) = %v, want %v", tt.query, tt.k, got, tt.want)
		}
	}
}

func TestFlatRanker_TiesByIndex(t *testing.T) {
	rows := denseRows([][]float32{
		{0, 1},
		{1, 0},
		{0, 2},
		{2, 0},
		{1, 0},
	})

	r, _ := NewFlatRanker(Cosine)
	got := neighborIndices(r.Rank(rows, DenseToSparse([]float32{1, 0}), 5))
	if want := []int{1, 3, 4, 0, 2}; !slices.Equal(got, want) {
		t.Errorf("Rank() = %v, want %v", got, want)
	}

	// The heap must keep the earliest of equal rows when it is full.
	got = neighborIndices(r.Rank(rows, DenseToSparse([]float32{1, 0}), 2))
	if want := []int{1, 3}; !slices.Equal(got, want) {
		t.Errorf("Rank(k=2) = %v, want %v", got, want)
	}
}

func TestFlatRanker_DistancesAscending(t *testing.T) {
	rows := denseRows([][]float32{
		{5, 5},
		{0, 1},
		{3, 4},
		{1, 1},
	})

	r, _ := NewFlatRanker(Euclidean)
	got := r.Rank(rows, DenseToSparse([]float32{0, 0}), 4)
	if want := []int{1, 3, 2, 0}; !slices.Equal(neighborIndices(got), want) {
		t.Fatalf("Rank() = %v, want %v", neighborIndices(got), want)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Distance < got[i-1].Distance {
			t.Errorf("distances not ascending at %d: %v", i, got)
		}
	}
}

func TestFlatRanker_Empty(t *testing.T) {
	r, _ := NewFlatRanker(Cosine)
	if got := r.Rank(nil, DenseToSparse([]float32{1}), 3); len(got) != 0 {
		t.Errorf("Rank() on no rows = %v, want empty", got)
	}
}

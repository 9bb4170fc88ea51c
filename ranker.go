package retriever

import "container/heap"

// Neighbor is one ranked row: Index is the position in the rows passed to
// Rank, Distance its distance to the query.
type Neighbor struct {
	Index    int
	Distance float32
}

// Ranker is the nearest-neighbour stage of retrieval: it orders rows by
// distance to a query vector.
type Ranker interface {
	// Rank returns the k rows nearest to query, nearest first. Ties are
	// broken by ascending Index. k is clamped to len(rows).
	Rank(rows []SparseVector, query SparseVector, k int) []Neighbor

	// Distance returns the metric rows are ranked by.
	Distance() Distance
}

// Compile-time checks to ensure FlatRanker implements Ranker
var _ Ranker = (*FlatRanker)(nil)

// FlatRanker is exact brute-force top-k: the distance from the query to every
// row is computed, and a bounded heap keeps the k best.
//
// Time Complexity: O(n * (nnz + log k)) for n rows with nnz non-zeros
type FlatRanker struct {
	distance Distance
}

// NewFlatRanker creates a FlatRanker for the given metric.
func NewFlatRanker(kind DistanceKind) (*FlatRanker, error) {
	distance, err := NewDistance(kind)
	if err != nil {
		return nil, err
	}
	return &FlatRanker{distance: distance}, nil
}

// Distance returns the metric rows are ranked by.
func (r *FlatRanker) Distance() Distance {
	return r.distance
}

// Rank returns the k rows nearest to query, nearest first.
func (r *FlatRanker) Rank(rows []SparseVector, query SparseVector, k int) []Neighbor {
	k = sanitizeK(k, len(rows))
	if k == 0 {
		return nil
	}

	// Max-heap on (distance, index): the root is the worst neighbour kept so far.
	h := make(neighborHeap, 0, k)
	for i, row := range rows {
		n := Neighbor{Index: i, Distance: r.distance.Calculate(query, row)}
		if h.Len() < k {
			heap.Push(&h, n)
			continue
		}
		if worse(h[0], n) {
			h[0] = n
			heap.Fix(&h, 0)
		}
	}

	// Pop worst-first into the tail so the result is nearest-first.
	out := make([]Neighbor, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&h).(Neighbor)
	}
	return out
}

// worse reports whether a ranks after b.
func worse(a, b Neighbor) bool {
	if a.Distance != b.Distance {
		return a.Distance > b.Distance
	}
	return a.Index > b.Index
}

type neighborHeap []Neighbor

func (h neighborHeap) Len() int           { return len(h) }
func (h neighborHeap) Less(i, j int) bool { return worse(h[i], h[j]) } // max-heap
func (h neighborHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *neighborHeap) Push(x interface{}) {
	*h = append(*h, x.(Neighbor))
}

func (h *neighborHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

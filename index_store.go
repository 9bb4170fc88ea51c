package retriever

import (
	"fmt"
	"math"
	"runtime"

	"github.com/RoaringBitmap/roaring"
	"golang.org/x/sync/errgroup"
)

// IndexStore owns the three row-aligned parts of an index:
//
//   - terms:   the boolean term-presence matrix, read by matching
//   - weights: the weighted vector matrix, read by ranking
//   - ids:     the external document id of every row
//
// Row i of each part describes the same document. The parts are only ever
// mutated together, by Fit (which replaces them) and PartialFit (which
// appends to them), and every derived row of a batch is computed before any
// part is touched. Existing rows are never altered.
//
// IndexStore does no locking; Engine serializes access to it.
type IndexStore struct {
	vectorizer    Vectorizer
	quantizerType QuantizerType
	workers       int

	terms      *TermMatrix
	weights    *WeightMatrix
	ids        []uint32
	maxID      uint32
	generation uint64
}

// BatchStats describes one Fit or PartialFit batch.
type BatchStats struct {
	Documents       int
	OutOfVocabulary int
	FirstRow        int
}

// vectorizedBatch holds the derived rows of a batch before they are appended.
type vectorizedBatch struct {
	terms   []*roaring.Bitmap
	weights []SparseVector
	oov     int
}

// NewIndexStore creates an empty store. workers bounds the goroutines used to
// vectorize a batch; values below 1 mean GOMAXPROCS.
func NewIndexStore(vectorizer Vectorizer, quantizerType QuantizerType, workers int) (*IndexStore, error) {
	if _, err := NewQuantizer(quantizerType); err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &IndexStore{
		vectorizer:    vectorizer,
		quantizerType: quantizerType,
		workers:       workers,
	}, nil
}

// Fit builds the index from scratch: the vectorizer learns a new vocabulary,
// which then stays fixed for every later PartialFit. ids labels the documents
// in order; nil assigns 0..len(documents)-1.
//
// Returns a *ShapeMismatchError (matching ErrShapeMismatch) if ids has a
// different length than documents, and ErrEmptyVocabulary if no document
// contains an indexable term.
func (s *IndexStore) Fit(documents []string, ids []uint32) (BatchStats, error) {
	if err := checkShape(documents, ids); err != nil {
		return BatchStats{}, err
	}
	if err := s.vectorizer.Fit(documents); err != nil {
		return BatchStats{}, fmt.Errorf("fit vectorizer: %w", err)
	}

	batch, err := s.vectorizeBatch(documents)
	if err != nil {
		s.reset()
		return BatchStats{}, err
	}

	quantizer, err := NewQuantizer(s.quantizerType)
	if err != nil {
		s.reset()
		return BatchStats{}, err
	}
	quantizer.Train(batch.weights)

	cols := s.vectorizer.Vocabulary().Size()
	terms := NewTermMatrix(cols)
	weights := NewWeightMatrix(cols, quantizer)
	encoded, err := weights.encodeRows(batch.weights)
	if err != nil {
		s.reset()
		return BatchStats{}, fmt.Errorf("encode weights: %w", err)
	}
	terms.appendRows(batch.terms)
	weights.appendEncoded(encoded)

	if ids == nil {
		ids = sequentialIDs(0, len(documents))
	} else {
		ids = append([]uint32(nil), ids...)
	}

	s.terms = terms
	s.weights = weights
	s.ids = ids
	s.maxID = maxOf(ids)
	s.generation++

	return BatchStats{Documents: len(documents), OutOfVocabulary: batch.oov}, s.checkAlignment()
}

// PartialFit appends documents to a fitted index. Documents are vectorized
// against the existing vocabulary: unknown terms are dropped silently. ids
// labels the new documents; nil continues from the largest id so far plus one.
//
// Returns ErrNotFitted before Fit and a *ShapeMismatchError (matching
// ErrShapeMismatch) if ids has a different length than documents.
func (s *IndexStore) PartialFit(documents []string, ids []uint32) (BatchStats, error) {
	if !s.Fitted() {
		return BatchStats{}, ErrNotFitted
	}
	if err := checkShape(documents, ids); err != nil {
		return BatchStats{}, err
	}
	firstRow := s.Len()
	if len(documents) == 0 {
		return BatchStats{FirstRow: firstRow}, nil
	}

	if ids == nil {
		next := uint64(s.maxID) + 1
		if next+uint64(len(documents))-1 > math.MaxUint32 {
			return BatchStats{}, ErrIDSpaceExhausted
		}
		ids = sequentialIDs(uint32(next), len(documents))
	} else {
		ids = append([]uint32(nil), ids...)
	}

	batch, err := s.vectorizeBatch(documents)
	if err != nil {
		return BatchStats{}, err
	}
	for _, row := range batch.terms {
		if err := s.terms.validateRow(row); err != nil {
			return BatchStats{}, err
		}
	}
	encoded, err := s.weights.encodeRows(batch.weights)
	if err != nil {
		return BatchStats{}, fmt.Errorf("encode weights: %w", err)
	}

	s.terms.appendRows(batch.terms)
	s.weights.appendEncoded(encoded)
	s.ids = append(s.ids, ids...)
	if m := maxOf(ids); m > s.maxID {
		s.maxID = m
	}
	s.generation++

	stats := BatchStats{
		Documents:       len(documents),
		OutOfVocabulary: batch.oov,
		FirstRow:        firstRow,
	}
	return stats, s.checkAlignment()
}

// vectorizeBatch vectorizes documents concurrently. Results are stored by
// position, so the output order always matches the input order.
func (s *IndexStore) vectorizeBatch(documents []string) (*vectorizedBatch, error) {
	batch := &vectorizedBatch{
		terms:   make([]*roaring.Bitmap, len(documents)),
		weights: make([]SparseVector, len(documents)),
	}
	oov := make([]int, len(documents))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, doc := range documents {
		g.Go(func() error {
			v, err := s.vectorizer.Transform(doc)
			if err != nil {
				return fmt.Errorf("vectorize document %d: %w", i, err)
			}
			batch.terms[i] = v.Terms
			batch.weights[i] = v.Weights
			oov[i] = v.OutOfVocabulary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, n := range oov {
		batch.oov += n
	}
	return batch, nil
}

// checkAlignment verifies the central invariant: every part has one entry per row.
func (s *IndexStore) checkAlignment() error {
	if s.terms.Rows() != s.weights.Rows() || s.terms.Rows() != len(s.ids) {
		return fmt.Errorf("%w: %d term rows, %d weight rows, %d ids",
			ErrMisaligned, s.terms.Rows(), s.weights.Rows(), len(s.ids))
	}
	return nil
}

func (s *IndexStore) reset() {
	s.terms = nil
	s.weights = nil
	s.ids = nil
	s.maxID = 0
	s.generation++
}

// Fitted reports whether the store holds an index.
func (s *IndexStore) Fitted() bool {
	return s.terms != nil
}

// Len returns the number of indexed documents.
func (s *IndexStore) Len() int {
	return len(s.ids)
}

// Dimensions returns the vocabulary size, or 0 before Fit.
func (s *IndexStore) Dimensions() int {
	if s.terms == nil {
		return 0
	}
	return s.terms.Cols()
}

// Generation changes every time the index is mutated.
func (s *IndexStore) Generation() uint64 {
	return s.generation
}

// IDs returns a copy of the external ids, in row order.
func (s *IndexStore) IDs() []uint32 {
	return append([]uint32(nil), s.ids...)
}

// Terms returns the boolean term-presence matrix.
func (s *IndexStore) Terms() *TermMatrix {
	return s.terms
}

// Weights returns the weighted vector matrix.
func (s *IndexStore) Weights() *WeightMatrix {
	return s.weights
}

// Vectorizer returns the vectorizer the store was built with.
func (s *IndexStore) Vectorizer() Vectorizer {
	return s.vectorizer
}

func sequentialIDs(start uint32, n int) []uint32 {
	ids := make([]uint32, n)
	for i := range ids {
		ids[i] = start + uint32(i)
	}
	return ids
}

func maxOf(ids []uint32) uint32 {
	var m uint32
	for _, id := range ids {
		if id > m {
			m = id
		}
	}
	return m
}

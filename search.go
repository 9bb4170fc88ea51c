package retriever

import (
	"slices"
	"time"

	"go.uber.org/zap"
)

// DefaultK is the number of results a search returns unless WithK is set.
const DefaultK = 10

// Hit is one search result. Score is the similarity to the query derived
// from the ranking distance (1 - cosine distance by default): higher is better.
type Hit struct {
	ID    uint32
	Score float32
}

// Search encapsulates one search request against an Engine.
type Search interface {
	// WithQuery sets the query text.
	WithQuery(text string) Search

	// WithK sets the maximum number of results (default DefaultK).
	WithK(k int) Search

	// WithDocumentIDs restricts results to the given document ids.
	// No ids means no restriction.
	WithDocumentIDs(ids ...uint32) Search

	// WithCutoff enables Autocut: results are cut at the cutoff-th natural
	// gap in their scores. Values < 1 disable it (the default).
	WithCutoff(cutoff int) Search

	// Execute runs the search and returns hits, best first.
	Execute() ([]Hit, error)
}

// Compile-time checks to ensure engineSearch implements Search
var _ Search = (*engineSearch)(nil)

type engineSearch struct {
	engine      *Engine
	query       string
	k           int
	documentIDs []uint32
	cutoff      int
}

// NewSearch creates a search builder.
//
// Example:
//
//	hits, err := engine.NewSearch().
//	    WithQuery("brown fox").
//	    WithK(5).
//	    WithDocumentIDs(1, 2, 3).
//	    Execute()
func (e *Engine) NewSearch() Search {
	return &engineSearch{
		engine: e,
		k:      DefaultK,
	}
}

func (s *engineSearch) WithQuery(text string) Search {
	s.query = text
	return s
}

func (s *engineSearch) WithK(k int) Search {
	s.k = k
	return s
}

func (s *engineSearch) WithDocumentIDs(ids ...uint32) Search {
	s.documentIDs = ids
	return s
}

func (s *engineSearch) WithCutoff(cutoff int) Search {
	s.cutoff = cutoff
	return s
}

// Execute returns ErrInvalidK if k <= 0 and ErrNotFitted before Fit.
func (s *engineSearch) Execute() ([]Hit, error) {
	e := s.engine
	start := time.Now()

	if s.k <= 0 {
		e.collector.RecordQuery(OutcomeError, 0, time.Since(start))
		return nil, ErrInvalidK
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.store.Fitted() {
		e.collector.RecordQuery(OutcomeError, 0, time.Since(start))
		return nil, ErrNotFitted
	}

	key := searchKey{
		generation: e.store.Generation(),
		k:          s.k,
		cutoff:     s.cutoff,
		filter:     normalizeIDs(s.documentIDs),
		text:       s.query,
	}
	if e.cache != nil {
		hits, candidates, ok := e.cache.get(key)
		e.collector.RecordCache(ok)
		if ok {
			e.collector.RecordQuery(outcome(hits), candidates, time.Since(start))
			return hits, nil
		}
	}

	q, err := e.store.Vectorizer().Transform(s.query)
	if err != nil {
		e.collector.RecordQuery(OutcomeError, 0, time.Since(start))
		return nil, err
	}

	filter := NewDocumentFilter(s.documentIDs)
	defer ReturnDocumentFilter(filter)

	hits, candidates := e.searchVectorized(q, s.k, filter, s.cutoff)
	e.cache.set(key, hits, candidates)

	e.logger.Debug("query",
		zap.String("text", s.query),
		zap.Int("k", s.k),
		zap.Int("allowed_ids", filter.Len()),
		zap.Int("candidates", candidates),
		zap.Int("returned", len(hits)),
		zap.Int("oov_tokens", q.OutOfVocabulary),
	)
	e.collector.RecordQuery(outcome(hits), candidates, time.Since(start))
	return hits, nil
}

func outcome(hits []Hit) string {
	if len(hits) == 0 {
		return OutcomeZeroResult
	}
	return OutcomeHit
}

// normalizeIDs returns a sorted, duplicate-free copy of ids, so equivalent
// filters share a cache key.
func normalizeIDs(ids []uint32) []uint32 {
	if len(ids) == 0 {
		return nil
	}
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

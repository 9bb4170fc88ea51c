package retriever

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Engine is a retrieval engine: it indexes a collection of text documents,
// answers free-text queries with ranked document ids, and evaluates ranking
// quality against relevance judgments.
//
// A query runs in two stages. Matching keeps the documents sharing at least
// one term with the query; ranking orders only those candidates by similarity
// to the query vector. A document sharing no term with the query is never
// returned, however similar its vector.
//
// Thread-safety: Engine is safe for concurrent use. Queries and evaluations
// share a read lock; Fit and PartialFit are exclusive.
type Engine struct {
	store     *IndexStore
	matcher   Matcher
	ranker    Ranker
	cache     *QueryCache
	collector Collector
	logger    *zap.Logger
	discount  DiscountKind

	mu sync.RWMutex
}

// New creates an unfitted Engine.
//
// Example:
//
//	engine, err := New(WithCacheSize(1024))
//	if err != nil { log.Fatal(err) }
//	if err := engine.Fit(docs, nil); err != nil { log.Fatal(err) }
//	ids, err := engine.Query("brown fox", 10)
func New(opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	vectorizer := o.vectorizer
	if vectorizer == nil {
		v, err := NewVectorizer(o.weighting, NewAnalyzer(o.analyzerOpts...), o.tfidf)
		if err != nil {
			return nil, err
		}
		vectorizer = v
	}

	matcher, err := NewMatcher(o.matching)
	if err != nil {
		return nil, err
	}

	ranker := o.ranker
	if ranker == nil {
		r, err := NewFlatRanker(o.distance)
		if err != nil {
			return nil, err
		}
		ranker = r
	}

	store, err := NewIndexStore(vectorizer, o.quantizer, o.workers)
	if err != nil {
		return nil, err
	}

	return &Engine{
		store:     store,
		matcher:   matcher,
		ranker:    ranker,
		cache:     NewQueryCache(o.cacheSize),
		collector: o.collector,
		logger:    o.logger,
		discount:  o.discount,
	}, nil
}

// NewFromConfig creates an Engine from cfg. extra options are applied after
// the config's, so they can set what a Config cannot express (a logger, a
// collector, a custom vectorizer).
func NewFromConfig(cfg Config, extra ...Option) (*Engine, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return New(append(opts, extra...)...)
}

// Fit indexes documents from scratch, replacing any previous index and
// vocabulary. ids labels the documents in order; nil assigns 0..n-1.
//
// Returns a *ShapeMismatchError (matching ErrShapeMismatch) if ids and
// documents differ in length, in which case the previous index is kept, and
// ErrEmptyVocabulary if no document contains an indexable term.
func (e *Engine) Fit(documents []string, ids []uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats, err := e.store.Fit(documents, ids)
	if err != nil {
		e.logger.Error("fit failed", zap.Int("documents", len(documents)), zap.Error(err))
		return err
	}
	e.cache.Purge()
	e.collector.RecordIndexed(stats.Documents)

	e.logger.Info("fitted index",
		zap.Int("documents", stats.Documents),
		zap.Int("terms", e.store.Dimensions()),
		zap.Uint64("non_zero", e.store.Terms().NonZero()),
		zap.String("quantizer", string(e.store.Weights().Quantizer().Type())),
	)
	return nil
}

// PartialFit appends documents to the index without refitting. The vocabulary
// learned by Fit is reused: terms it does not contain are dropped. ids labels
// the new documents; nil continues from the largest existing id plus one.
//
// Returns ErrNotFitted before Fit and a *ShapeMismatchError (matching
// ErrShapeMismatch) if ids and documents differ in length. On error the
// index is unchanged.
func (e *Engine) PartialFit(documents []string, ids []uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats, err := e.store.PartialFit(documents, ids)
	if err != nil {
		e.logger.Error("partial fit failed", zap.Int("documents", len(documents)), zap.Error(err))
		return err
	}
	if stats.Documents == 0 {
		return nil
	}
	e.cache.Purge()
	e.collector.RecordIndexed(stats.Documents)

	e.logger.Info("extended index",
		zap.Int("documents", stats.Documents),
		zap.Int("first_row", stats.FirstRow),
		zap.Int("rows", e.store.Len()),
	)
	if stats.OutOfVocabulary > 0 {
		e.logger.Debug("dropped out-of-vocabulary tokens",
			zap.Int("tokens", stats.OutOfVocabulary),
		)
	}
	return nil
}

// Query returns the ids of up to k documents sharing at least one term with
// text, most similar first. A query matching nothing returns an empty slice.
//
// Returns ErrInvalidK if k <= 0 and ErrNotFitted before Fit.
func (e *Engine) Query(text string, k int) ([]uint32, error) {
	hits, err := e.NewSearch().WithQuery(text).WithK(k).Execute()
	if err != nil {
		return nil, err
	}
	ids := make([]uint32, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	return ids, nil
}

// Len returns the number of indexed documents.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Len()
}

// Dimensions returns the vocabulary size, or 0 before Fit.
func (e *Engine) Dimensions() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Dimensions()
}

// IDs returns the document ids in index order.
func (e *Engine) IDs() []uint32 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.IDs()
}

// Vocabulary returns the fitted vocabulary, or nil before Fit.
func (e *Engine) Vocabulary() *Vocabulary {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Vectorizer().Vocabulary()
}

// searchVectorized runs matching, filtering and ranking for one vectorized
// query. It returns the hits and the number of candidates that were ranked.
// The caller holds e.mu.
func (e *Engine) searchVectorized(q Vectorized, k int, filter *DocumentFilter, cutoff int) ([]Hit, int) {
	candidates := e.matcher.Match(e.store.Terms(), q.Terms)
	filter.Restrict(candidates, e.store.ids)
	if candidates.IsEmpty() {
		return []Hit{}, 0
	}

	rows := candidates.ToArray()
	vectors := e.store.Weights().Select(rows)
	neighbors := e.ranker.Rank(vectors, q.Weights, min(len(rows), k))

	distance := e.ranker.Distance()
	hits := make([]Hit, len(neighbors))
	for i, n := range neighbors {
		hits[i] = Hit{
			ID:    e.store.ids[rows[n.Index]],
			Score: distance.Similarity(n.Distance),
		}
	}
	return limitHits(autocutHits(hits, cutoff), k), len(rows)
}

package retriever

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// QueryBatch is a set of queries vectorized once against a fitted index, for
// repeated scoring with Score or QueryBatchResults.
//
// A batch is tied to the fit it was vectorized against: after a later Fit or
// PartialFit it is stale and Score rejects it with ErrStaleBatch.
type QueryBatch struct {
	generation uint64
	ids        []QueryID
	vectors    []Vectorized
}

// Len returns the number of queries in the batch. A nil batch is empty.
func (b *QueryBatch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.ids)
}

// IDs returns the query ids, in batch order.
func (b *QueryBatch) IDs() []QueryID {
	if b == nil {
		return nil
	}
	return append([]QueryID(nil), b.ids...)
}

// Evaluate runs every query with limit k, looks up the relevance of each
// returned document in judgments (0 when absent), and reduces the per-query
// relevance lists through metrics. No metrics means DefaultMetrics; the
// result holds exactly the requested keys.
//
// Queries are run concurrently, so judgments must be safe for concurrent
// reads. Returns ErrInvalidK, ErrNotFitted or ErrUnknownMetric.
func (e *Engine) Evaluate(queries []Query, judgments Judgments, k int, metrics ...MetricKind) (Scores, error) {
	start := time.Now()
	scores, err := e.evaluate(queries, judgments, k, metrics)
	e.collector.RecordEvaluation(len(queries), time.Since(start), err)
	return scores, err
}

func (e *Engine) evaluate(queries []Query, judgments Judgments, k int, metrics []MetricKind) (Scores, error) {
	metrics, err := validateMetrics(metrics)
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, ErrInvalidK
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	batch, err := e.vectorizeQueries(queries)
	if err != nil {
		return nil, err
	}
	return e.score(batch, judgments, k, metrics)
}

// VectorizeQueries vectorizes queries against the current index.
// Returns ErrNotFitted before Fit.
func (e *Engine) VectorizeQueries(queries []Query) (*QueryBatch, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.vectorizeQueries(queries)
}

func (e *Engine) vectorizeQueries(queries []Query) (*QueryBatch, error) {
	if !e.store.Fitted() {
		return nil, ErrNotFitted
	}

	batch := &QueryBatch{
		generation: e.store.Generation(),
		ids:        make([]QueryID, len(queries)),
		vectors:    make([]Vectorized, len(queries)),
	}

	var g errgroup.Group
	g.SetLimit(e.store.workers)
	for i, q := range queries {
		batch.ids[i] = q.ID
		g.Go(func() error {
			v, err := e.store.Vectorizer().Transform(q.Text)
			if err != nil {
				return fmt.Errorf("vectorize query %s: %w", q.ID, err)
			}
			batch.vectors[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batch, nil
}

// Score is Evaluate over a pre-vectorized batch.
// Returns ErrNilBatch for a nil batch and ErrStaleBatch if the index changed
// since the batch was vectorized.
func (e *Engine) Score(batch *QueryBatch, judgments Judgments, k int, metrics ...MetricKind) (Scores, error) {
	start := time.Now()
	scores, err := e.scoreLocked(batch, judgments, k, metrics)
	e.collector.RecordEvaluation(batch.Len(), time.Since(start), err)
	return scores, err
}

func (e *Engine) scoreLocked(batch *QueryBatch, judgments Judgments, k int, metrics []MetricKind) (Scores, error) {
	metrics, err := validateMetrics(metrics)
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, ErrInvalidK
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.score(batch, judgments, k, metrics)
}

// QueryBatchResults returns the ids retrieved for each query of the batch,
// in batch order.
func (e *Engine) QueryBatchResults(batch *QueryBatch, k int) ([][]uint32, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if err := e.checkBatch(batch); err != nil {
		return nil, err
	}
	results := make([][]uint32, batch.Len())
	for i, q := range batch.vectors {
		hits, _ := e.searchVectorized(q, k, nil, 0)
		ids := make([]uint32, len(hits))
		for j, h := range hits {
			ids[j] = h.ID
		}
		results[i] = ids
	}
	return results, nil
}

// score runs a validated batch and reduces it. The caller holds e.mu.
func (e *Engine) score(batch *QueryBatch, judgments Judgments, k int, metrics []MetricKind) (Scores, error) {
	if err := e.checkBatch(batch); err != nil {
		return nil, err
	}

	rs := make([][]float64, batch.Len())
	var g errgroup.Group
	g.SetLimit(e.store.workers)
	for i, q := range batch.vectors {
		g.Go(func() error {
			hits, _ := e.searchVectorized(q, k, nil, 0)
			r := make([]float64, len(hits))
			for j, h := range hits {
				r[j] = judgments.Relevance(batch.ids[i], h.ID)
			}
			rs[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if e.logger.Core().Enabled(zap.DebugLevel) {
		for i, r := range rs {
			e.logger.Debug("query relevances",
				zap.String("query", string(batch.ids[i])),
				zap.Float64s("relevances", r),
			)
		}
	}

	scores := computeScores(rs, k, e.discount, metrics)
	e.logger.Info("evaluated",
		zap.Int("queries", batch.Len()),
		zap.Int("k", k),
		zap.Any("scores", scores),
	)
	return scores, nil
}

func (e *Engine) checkBatch(batch *QueryBatch) error {
	if batch == nil {
		return ErrNilBatch
	}
	if !e.store.Fitted() {
		return ErrNotFitted
	}
	if batch.generation != e.store.Generation() {
		return ErrStaleBatch
	}
	return nil
}

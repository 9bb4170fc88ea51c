package retriever

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrUnknownMetric is returned when an unknown metric kind is requested.
var ErrUnknownMetric = errors.New("unknown metric")

// MetricKind names a ranking-quality metric reported by Evaluate and Score.
type MetricKind string

const (
	// MeanReciprocalRankMetric is the mean over queries of 1 / rank of the
	// first relevant result.
	MeanReciprocalRankMetric MetricKind = "mean_reciprocal_rank"

	// MeanAveragePrecisionMetric is the mean over queries of AveragePrecision.
	MeanAveragePrecisionMetric MetricKind = "mean_average_precision"

	// AverageNDCGAtKMetric is the mean over queries of NDCGAtK.
	AverageNDCGAtKMetric MetricKind = "average_ndcg_at_k"

	// MeanPrecisionAtKMetric is the mean over queries of PrecisionAtK.
	MeanPrecisionAtKMetric MetricKind = "mean_precision_at_k"
)

// DefaultMetrics are the metrics reported when none are requested.
var DefaultMetrics = []MetricKind{
	MeanReciprocalRankMetric,
	MeanAveragePrecisionMetric,
	AverageNDCGAtKMetric,
}

// Scores maps each requested metric to its value.
type Scores map[MetricKind]float64

// DiscountKind selects the DCG discount.
type DiscountKind int

const (
	// DiscountStandard divides the gain at rank i (1-based) by log2(i + 1).
	DiscountStandard DiscountKind = iota

	// DiscountFirstUndiscounted keeps the first gain as is and divides the
	// gain at rank i >= 2 by log2(i). It rates [1, 2] as perfect.
	DiscountFirstUndiscounted
)

// validateMetrics returns DefaultMetrics for an empty request and
// ErrUnknownMetric for any kind it does not know.
func validateMetrics(metrics []MetricKind) ([]MetricKind, error) {
	if len(metrics) == 0 {
		return DefaultMetrics, nil
	}
	for _, m := range metrics {
		switch m {
		case MeanReciprocalRankMetric, MeanAveragePrecisionMetric,
			AverageNDCGAtKMetric, MeanPrecisionAtKMetric:
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, m)
		}
	}
	return metrics, nil
}

// computeScores reduces per-query relevance lists through the given metrics.
// metrics must have passed validateMetrics.
func computeScores(rs [][]float64, k int, discount DiscountKind, metrics []MetricKind) Scores {
	scores := make(Scores, len(metrics))
	for _, m := range metrics {
		switch m {
		case MeanReciprocalRankMetric:
			scores[m] = MeanReciprocalRank(rs)
		case MeanAveragePrecisionMetric:
			scores[m] = MeanAveragePrecision(rs)
		case AverageNDCGAtKMetric:
			scores[m] = AverageNDCGAtK(rs, k, discount)
		case MeanPrecisionAtKMetric:
			scores[m] = MeanPrecisionAtK(rs, k)
		}
	}
	return scores
}

// ============================================================================
// Per-query metrics
//
// r is the relevance of each returned document, best ranked first. Any
// non-zero value counts as relevant for the binary metrics.
// ============================================================================

// ReciprocalRank returns 1 / rank of the first relevant document, or 0 if
// none is relevant.
func ReciprocalRank(r []float64) float64 {
	for i, rel := range r {
		if rel != 0 {
			return 1 / float64(i+1)
		}
	}
	return 0
}

// PrecisionAtK returns the fraction of the first k ranks holding a relevant
// document. Ranks past the end of r count as not relevant.
func PrecisionAtK(r []float64, k int) float64 {
	if k <= 0 {
		return 0
	}
	var hits int
	for i := 0; i < k && i < len(r); i++ {
		if r[i] != 0 {
			hits++
		}
	}
	return float64(hits) / float64(k)
}

// AveragePrecision averages PrecisionAtK over the ranks of the relevant
// documents. Returns 0 if none is relevant.
//
// Example: [0, 1, 0, 1] -> (1/2 + 2/4) / 2 = 0.5
func AveragePrecision(r []float64) float64 {
	var hits int
	var sum float64
	for i, rel := range r {
		if rel != 0 {
			hits++
			sum += float64(hits) / float64(i+1)
		}
	}
	if hits == 0 {
		return 0
	}
	return sum / float64(hits)
}

// RPrecision returns the precision at the rank of the last relevant document.
// Returns 0 if none is relevant.
func RPrecision(r []float64) float64 {
	last := -1
	for i, rel := range r {
		if rel != 0 {
			last = i
		}
	}
	if last < 0 {
		return 0
	}
	return PrecisionAtK(r, last+1)
}

// DCGAtK returns the discounted cumulative gain of the first k ranks.
// Gains are the relevance values themselves.
func DCGAtK(r []float64, k int, discount DiscountKind) float64 {
	if k < len(r) {
		r = r[:k]
	}
	var dcg float64
	for i, rel := range r {
		rank := float64(i + 1)
		switch {
		case discount == DiscountFirstUndiscounted && i == 0:
			dcg += rel
		case discount == DiscountFirstUndiscounted:
			dcg += rel / math.Log2(rank)
		default:
			dcg += rel / math.Log2(rank+1)
		}
	}
	return dcg
}

// NDCGAtK returns DCGAtK normalized by the DCG of the same relevance values
// in ideal (descending) order. Returns 0 when that ideal DCG is 0.
//
// Example: [0, 2], k=3 -> (2/log2(3)) / 2 ≈ 0.6309
func NDCGAtK(r []float64, k int, discount DiscountKind) float64 {
	ideal := append([]float64(nil), r...)
	sort.Sort(sort.Reverse(sort.Float64Slice(ideal)))

	idcg := DCGAtK(ideal, k, discount)
	if idcg == 0 {
		return 0
	}
	return DCGAtK(r, k, discount) / idcg
}

// ============================================================================
// Means over queries. Every mean of an empty batch is 0.
// ============================================================================

// MeanReciprocalRank averages ReciprocalRank over queries.
func MeanReciprocalRank(rs [][]float64) float64 {
	return mean(rs, ReciprocalRank)
}

// MeanAveragePrecision averages AveragePrecision over queries.
func MeanAveragePrecision(rs [][]float64) float64 {
	return mean(rs, AveragePrecision)
}

// AverageNDCGAtK averages NDCGAtK over queries.
func AverageNDCGAtK(rs [][]float64, k int, discount DiscountKind) float64 {
	return mean(rs, func(r []float64) float64 { return NDCGAtK(r, k, discount) })
}

// MeanPrecisionAtK averages PrecisionAtK over queries.
func MeanPrecisionAtK(rs [][]float64, k int) float64 {
	return mean(rs, func(r []float64) float64 { return PrecisionAtK(r, k) })
}

func mean(rs [][]float64, metric func([]float64) float64) float64 {
	if len(rs) == 0 {
		return 0
	}
	var sum float64
	for _, r := range rs {
		sum += metric(r)
	}
	return sum / float64(len(rs))
}

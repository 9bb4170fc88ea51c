package retriever

// sanitizeK ensures k is within valid bounds [1, maxResults].
//
// If k is <= 0 or exceeds maxResults, it returns maxResults.
//
// Usage:
//
//	k := sanitizeK(requestedK, len(candidates))
func sanitizeK(k, maxResults int) int {
	if k <= 0 || k > maxResults {
		return maxResults
	}
	return k
}

// limitHits applies k-limiting to a hit slice.
func limitHits(hits []Hit, k int) []Hit {
	k = sanitizeK(k, len(hits))
	return hits[:k]
}

// autocutHits cuts hits at the first natural gap in their scores.
//
// Hits are ordered best first, i.e. by descending Score. cutoff is the number
// of extrema to pass before cutting; values < 1 leave hits unchanged.
func autocutHits(hits []Hit, cutoff int) []Hit {
	if cutoff < 1 || len(hits) == 0 {
		return hits
	}

	// Autocut expects increasing values, so feed it distances from the best score.
	best := hits[0].Score
	gaps := make([]float32, len(hits))
	for i, h := range hits {
		gaps[i] = best - h.Score
	}

	return hits[:Autocut(gaps, cutoff)]
}

// Autocut determines optimal cutoff point in a score distribution.
//
// It analyzes the normalized difference between actual scores and ideal linear
// distribution to find local maxima (extrema). Returns the index before the
// Nth extremum where N is the cutOff parameter.
//
// Parameters:
//   - yValues: increasing values (distances, or gaps from the best score)
//   - cutOff: number of extrema to encounter before cutting
//
// Returns the index at which to cut the results.
func Autocut(yValues []float32, cutOff int) int {
	if len(yValues) <= 1 {
		return len(yValues)
	}

	span := yValues[len(yValues)-1] - yValues[0]
	if span == 0 {
		// Flat distribution, no gap to cut at.
		return len(yValues)
	}

	diff := make([]float32, len(yValues))
	step := 1. / (float32(len(yValues)) - 1.)

	for i := range yValues {
		xValue := float32(i) * step
		yValueNorm := (yValues[i] - yValues[0]) / span
		diff[i] = yValueNorm - xValue
	}

	extremaCount := 0
	for i := range diff {
		if i == 0 {
			continue // we want the index _before_ the extrema
		}

		if i == len(diff)-1 {
			// last element has no "next" point
			if len(diff) > 2 && diff[i] > diff[i-1] && diff[i] > diff[i-2] {
				extremaCount++
				if extremaCount >= cutOff {
					return i
				}
			}
		} else if diff[i] > diff[i-1] && diff[i] > diff[i+1] {
			extremaCount++
			if extremaCount >= cutOff {
				return i
			}
		}
	}
	return len(yValues)
}

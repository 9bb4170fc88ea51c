package retriever

import (
	"testing"
)

func TestSanitizeK(t *testing.T) {
	tests := []struct {
		name       string
		k          int
		maxResults int
		want       int
	}{
		{
			name:       "k is zero",
			k:          0,
			maxResults: 10,
			want:       10,
		},
		{
			name:       "k is negative",
			k:          -5,
			maxResults: 10,
			want:       10,
		},
		{
			name:       "k exceeds maxResults",
			k:          100,
			maxResults: 10,
			want:       10,
		},
		{
			name:       "k is within bounds",
			k:          5,
			maxResults: 10,
			want:       5,
		},
		{
			name:       "maxResults is zero",
			k:          5,
			maxResults: 0,
			want:       0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeK(tt.k, tt.maxResults)
			if got != tt.want {
				t.Errorf("sanitizeK(%d, %d) = %d, want %d",
					tt.k, tt.maxResults, got, tt.want)
			}
		})
	}
}

func hitsWithScores(scores ...float32) []Hit {
	hits := make([]Hit, len(scores))
	for i, s := range scores {
		hits[i] = Hit{ID: uint32(i), Score: s}
	}
	return hits
}

func TestLimitHits(t *testing.T) {
	hits := hitsWithScores(0.9, 0.8, 0.7)

	if got := limitHits(hits, 2); len(got) != 2 {
		t.Errorf("limitHits(k=2) returned %d hits", len(got))
	}
	if got := limitHits(hits, 0); len(got) != 3 {
		t.Errorf("limitHits(k=0) returned %d hits, want all", len(got))
	}
}

func TestAutocut(t *testing.T) {
	tests := []struct {
		name    string
		values  []float32
		cutOff  int
		wantCut int
	}{
		{
			name:    "empty",
			values:  nil,
			cutOff:  1,
			wantCut: 0,
		},
		{
			name:    "single value",
			values:  []float32{0.5},
			cutOff:  1,
			wantCut: 1,
		},
		{
			name:    "flat distribution",
			values:  []float32{0.3, 0.3, 0.3, 0.3},
			cutOff:  1,
			wantCut: 4,
		},
		{
			name:    "linear distribution has no gap",
			values:  []float32{0, 1, 2, 3, 4},
			cutOff:  1,
			wantCut: 5,
		},
		{
			name:    "gap after three",
			values:  []float32{0.01, 0.02, 0.03, 0.8, 0.81, 0.82},
			cutOff:  1,
			wantCut: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Autocut(tt.values, tt.cutOff); got != tt.wantCut {
				t.Errorf("Autocut(%v, %d) = %d, want %d", tt.values, tt.cutOff, got, tt.wantCut)
			}
		})
	}
}

func TestAutocutHits(t *testing.T) {
	hits := hitsWithScores(0.99, 0.98, 0.97, 0.2, 0.19, 0.18)

	if got := autocutHits(hits, 1); len(got) != 3 {
		t.Errorf("autocutHits(cutoff=1) returned %d hits, want 3", len(got))
	}
	if got := autocutHits(hits, 0); len(got) != len(hits) {
		t.Errorf("autocutHits(cutoff=0) returned %d hits, want all", len(got))
	}
}

package retriever

import (
	"slices"
	"testing"

	"github.com/RoaringBitmap/roaring"
)

func TestDocumentFilter_Allows(t *testing.T) {
	tests := []struct {
		name    string
		allowed []uint32
		id      uint32
		want    bool
	}{
		{"no ids allow everything", nil, 100, true},
		{"allowed id", []uint32{1, 2, 3, 4, 5}, 3, true},
		{"other id", []uint32{1, 2, 3, 4, 5}, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := NewDocumentFilter(tt.allowed)
			defer ReturnDocumentFilter(filter)

			if got := filter.Allows(tt.id); got != tt.want {
				t.Errorf("Allows(%d) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestDocumentFilter_NilFilter(t *testing.T) {
	var filter *DocumentFilter

	if filter.Len() != 0 {
		t.Errorf("Len() = %d, want 0", filter.Len())
	}

	candidates := roaring.BitmapOf(0, 1, 2)
	filter.Restrict(candidates, []uint32{10, 11, 12})
	if candidates.GetCardinality() != 3 {
		t.Errorf("nil filter removed candidates: %v", candidates.ToArray())
	}
}

func TestDocumentFilter_Len(t *testing.T) {
	filter := NewDocumentFilter([]uint32{4, 4, 9})
	defer ReturnDocumentFilter(filter)

	if filter.Len() != 2 {
		t.Errorf("Len() = %d, want 2 distinct ids", filter.Len())
	}
}

func TestDocumentFilter_Restrict(t *testing.T) {
	// Row i holds external id ids[i].
	ids := []uint32{10, 11, 12, 13, 11}

	tests := []struct {
		name       string
		allowed    []uint32
		candidates []uint32
		want       []uint32
	}{
		{
			name:       "keeps allowed rows",
			allowed:    []uint32{11, 13},
			candidates: []uint32{0, 1, 2, 3, 4},
			want:       []uint32{1, 3, 4},
		},
		{
			name:       "only looks at candidates",
			allowed:    []uint32{10, 12},
			candidates: []uint32{1, 2},
			want:       []uint32{2},
		},
		{
			name:       "unknown ids remove everything",
			allowed:    []uint32{99},
			candidates: []uint32{0, 1, 2},
			want:       []uint32{},
		},
		{
			name:       "no candidates",
			allowed:    []uint32{10},
			candidates: nil,
			want:       []uint32{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := NewDocumentFilter(tt.allowed)
			defer ReturnDocumentFilter(filter)

			candidates := roaring.BitmapOf(tt.candidates...)
			filter.Restrict(candidates, ids)
			if got := candidates.ToArray(); !slices.Equal(got, tt.want) {
				t.Errorf("Restrict() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDocumentFilter_PoolReuse(t *testing.T) {
	first := NewDocumentFilter([]uint32{1, 2, 3})
	ReturnDocumentFilter(first)

	second := NewDocumentFilter([]uint32{7})
	defer ReturnDocumentFilter(second)

	if second.Allows(1) {
		t.Error("pooled filter kept ids from a previous use")
	}
	if second.Len() != 1 {
		t.Errorf("Len() = %d, want 1", second.Len())
	}
}

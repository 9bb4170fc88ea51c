package retriever

import (
	"sync"

	"github.com/RoaringBitmap/roaring"
)

// DocumentFilter is an allow-list of external document ids. A search applies
// it to the matched rows before ranking. The nil filter allows everything.
type DocumentFilter struct {
	allowed *roaring.Bitmap
}

var documentFilterPool = sync.Pool{
	New: func() any {
		return &DocumentFilter{allowed: roaring.New()}
	},
}

// NewDocumentFilter returns a pooled filter allowing documentIDs, or nil when
// documentIDs is empty. Release it with ReturnDocumentFilter.
func NewDocumentFilter(documentIDs []uint32) *DocumentFilter {
	if len(documentIDs) == 0 {
		return nil
	}

	filter := documentFilterPool.Get().(*DocumentFilter)
	filter.allowed.Clear()
	filter.allowed.AddMany(documentIDs)
	return filter
}

// ReturnDocumentFilter puts filter back into the pool. filter must not be
// used afterwards.
func ReturnDocumentFilter(filter *DocumentFilter) {
	if filter != nil {
		documentFilterPool.Put(filter)
	}
}

// Allows reports whether id passes the filter.
func (f *DocumentFilter) Allows(id uint32) bool {
	return f == nil || f.allowed.Contains(id)
}

// Len returns the number of distinct allowed ids, or 0 for the nil filter.
func (f *DocumentFilter) Len() int {
	if f == nil {
		return 0
	}
	return int(f.allowed.GetCardinality())
}

// Restrict removes from candidates, in place, every row whose external id
// ids[row] is not allowed.
func (f *DocumentFilter) Restrict(candidates *roaring.Bitmap, ids []uint32) {
	if f == nil || candidates.IsEmpty() {
		return
	}

	rejected := roaring.New()
	it := candidates.Iterator()
	for it.HasNext() {
		row := it.Next()
		if !f.allowed.Contains(ids[row]) {
			rejected.Add(row)
		}
	}
	candidates.AndNot(rejected)
}

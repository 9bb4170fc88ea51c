package retriever

import (
	"container/list"
	"encoding/binary"
	"sync"

	"github.com/twmb/murmur3"
)

// searchKey identifies a search request against one index generation.
type searchKey struct {
	generation uint64
	k          int
	cutoff     int
	filter     []uint32
	text       string
}

// hash folds the key into a 128-bit murmur3 digest.
func (k searchKey) hash() [2]uint64 {
	h := murmur3.New128()
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], k.generation)
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(int64(k.k)))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(int64(k.cutoff)))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(len(k.filter)))
	h.Write(buf[:])
	for _, id := range k.filter {
		binary.LittleEndian.PutUint32(buf[:4], id)
		h.Write(buf[:4])
	}
	h.Write([]byte(k.text))

	hi, lo := h.Sum128()
	return [2]uint64{hi, lo}
}

type cacheEntry struct {
	key        [2]uint64
	hits       []Hit
	candidates int
}

// QueryCache is a least recently used cache of search results.
//
// Keys include the index generation, so results computed before a Fit or
// PartialFit can never be served after it; Purge only reclaims their memory.
// QueryCache is safe for concurrent use.
type QueryCache struct {
	mu         sync.Mutex
	maxSize    int
	entries    map[[2]uint64]*list.Element
	doubleList *list.List
}

// NewQueryCache creates a cache holding up to maxSize results. A maxSize
// below 1 returns nil, which is a valid cache that never stores anything.
func NewQueryCache(maxSize int) *QueryCache {
	if maxSize < 1 {
		return nil
	}
	return &QueryCache{
		maxSize:    maxSize,
		entries:    make(map[[2]uint64]*list.Element),
		doubleList: list.New(),
	}
}

// get returns a copy of the cached hits for key and the size of the candidate
// set they were ranked from.
func (c *QueryCache) get(key searchKey) ([]Hit, int, bool) {
	if c == nil {
		return nil, 0, false
	}
	h := key.hash()

	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.entries[h]
	if !ok {
		return nil, 0, false
	}
	c.doubleList.MoveToFront(element)
	entry := element.Value.(*cacheEntry)
	return append([]Hit(nil), entry.hits...), entry.candidates, true
}

// set stores a copy of hits and their candidate count under key, evicting the
// least recently used entry when full.
func (c *QueryCache) set(key searchKey, hits []Hit, candidates int) {
	if c == nil {
		return
	}
	h := key.hash()
	stored := append([]Hit(nil), hits...)

	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.entries[h]; ok {
		c.doubleList.MoveToFront(element)
		entry := element.Value.(*cacheEntry)
		entry.hits, entry.candidates = stored, candidates
		return
	}

	c.entries[h] = c.doubleList.PushFront(&cacheEntry{key: h, hits: stored, candidates: candidates})
	if c.doubleList.Len() > c.maxSize {
		if oldest := c.doubleList.Back(); oldest != nil {
			c.doubleList.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Len returns the number of cached results.
func (c *QueryCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doubleList.Len()
}

// Purge drops every cached result.
func (c *QueryCache) Purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[[2]uint64]*list.Element)
	c.doubleList.Init()
}

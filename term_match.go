package retriever

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring"
)

// ErrUnknownMatchingKind is returned when an unknown matching kind is provided to NewMatcher.
var ErrUnknownMatchingKind = errors.New("unknown matching kind")

// MatchingKind selects how the boolean stage narrows the collection to a
// candidate set before ranking.
type MatchingKind string

const (
	// AnyTermMatching keeps documents sharing at least one term with the query
	// (the union of the query terms' posting lists). This is the default.
	AnyTermMatching MatchingKind = "any"

	// AllTermsMatching keeps documents containing every recognized query term
	// (the intersection of the posting lists).
	AllTermsMatching MatchingKind = "all"

	// NoMatching skips the boolean stage: every document is a candidate.
	NoMatching MatchingKind = "none"
)

// Matcher is the boolean stage of retrieval.
type Matcher interface {
	// Kind returns the kind of matching strategy.
	Kind() MatchingKind

	// Match returns the rows of m selected for the query term set. The result
	// is a fresh bitmap owned by the caller.
	Match(m *TermMatrix, query *roaring.Bitmap) *roaring.Bitmap
}

// Singleton instances of matching strategies.
// These are stateless and can be safely reused across goroutines.
var (
	anyTermMatcherImpl  = anyTermMatcher{}
	allTermsMatcherImpl = allTermsMatcher{}
	noMatcherImpl       = noMatcher{}
)

// NewMatcher returns the singleton Matcher for kind, or ErrUnknownMatchingKind.
func NewMatcher(kind MatchingKind) (Matcher, error) {
	switch kind {
	case AnyTermMatching:
		return anyTermMatcherImpl, nil
	case AllTermsMatching:
		return allTermsMatcherImpl, nil
	case NoMatching:
		return noMatcherImpl, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMatchingKind, kind)
	}
}

// MatchTerms returns, in increasing order and without duplicates, the rows of
// m that share at least one column with query. A query without columns, or
// whose columns have empty posting lists, yields an empty slice.
//
// Only the posting lists of the query's columns are read, so the cost is
// bounded by the number of set cells in those columns.
func MatchTerms(m *TermMatrix, query *roaring.Bitmap) []uint32 {
	return anyTermMatcherImpl.Match(m, query).ToArray()
}

// queryPostings collects the posting lists of the query columns known to m.
func queryPostings(m *TermMatrix, query *roaring.Bitmap) []*roaring.Bitmap {
	if query == nil {
		return nil
	}
	postings := make([]*roaring.Bitmap, 0, query.GetCardinality())
	it := query.Iterator()
	for it.HasNext() {
		if p := m.Postings(it.Next()); p != nil {
			postings = append(postings, p)
		}
	}
	return postings
}

type anyTermMatcher struct{}

func (anyTermMatcher) Kind() MatchingKind { return AnyTermMatching }

func (anyTermMatcher) Match(m *TermMatrix, query *roaring.Bitmap) *roaring.Bitmap {
	postings := queryPostings(m, query)
	switch len(postings) {
	case 0:
		return roaring.New()
	case 1:
		return postings[0].Clone()
	}
	return roaring.FastOr(postings...)
}

type allTermsMatcher struct{}

func (allTermsMatcher) Kind() MatchingKind { return AllTermsMatching }

func (allTermsMatcher) Match(m *TermMatrix, query *roaring.Bitmap) *roaring.Bitmap {
	postings := queryPostings(m, query)
	switch len(postings) {
	case 0:
		return roaring.New()
	case 1:
		return postings[0].Clone()
	}
	return roaring.FastAnd(postings...)
}

type noMatcher struct{}

func (noMatcher) Kind() MatchingKind { return NoMatching }

func (noMatcher) Match(m *TermMatrix, _ *roaring.Bitmap) *roaring.Bitmap {
	all := roaring.New()
	all.AddRange(0, uint64(m.Rows()))
	return all
}

package retriever

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/words"
	"golang.org/x/text/unicode/norm"
)

// DefaultMinTokenLength drops single-character tokens, so "a" or "x" never
// become vocabulary terms.
const DefaultMinTokenLength = 2

// Analyzer turns raw text into the terms that make up the vocabulary.
//
// Text is normalized (NFKC), optionally lower-cased, split into words using
// UAX#29 word segmentation, and filtered: segments without a letter or digit
// (whitespace, punctuation) are discarded, as are tokens shorter than
// MinTokenLength runes and stop words.
//
// An Analyzer is immutable after construction and safe for concurrent use.
type Analyzer struct {
	minTokenLength int
	lowercase      bool
	stopWords      map[string]struct{}
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithMinTokenLength sets the minimum token length in runes. Values below 1
// are treated as 1.
func WithMinTokenLength(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n < 1 {
			n = 1
		}
		a.minTokenLength = n
	}
}

// WithLowercase toggles lower-casing (on by default).
func WithLowercase(lowercase bool) AnalyzerOption {
	return func(a *Analyzer) {
		a.lowercase = lowercase
	}
}

// WithStopWords sets the terms dropped during analysis. Stop words are
// compared after normalization.
func WithStopWords(stopWords ...string) AnalyzerOption {
	return func(a *Analyzer) {
		a.stopWords = make(map[string]struct{}, len(stopWords))
		for _, w := range stopWords {
			a.stopWords[a.normalize(w)] = struct{}{}
		}
	}
}

// NewAnalyzer creates an Analyzer. Without options it lower-cases, keeps
// tokens of at least DefaultMinTokenLength runes and has no stop words.
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		minTokenLength: DefaultMinTokenLength,
		lowercase:      true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// normalize applies Unicode normalization (NFKC) and, when enabled, converts
// to lowercase.
func (a *Analyzer) normalize(s string) string {
	s = norm.NFKC.String(s)
	if a.lowercase {
		s = strings.ToLower(s)
	}
	return s
}

// tokenize splits text into tokens using UAX#29 word segmentation.
func tokenize(s string) []string {
	toks := words.FromString(s)
	var tokens []string
	for toks.Next() {
		tokens = append(tokens, toks.Value())
	}
	return tokens
}

// Analyze returns the terms of text in order of appearance, duplicates kept.
func (a *Analyzer) Analyze(text string) []string {
	segments := tokenize(a.normalize(text))
	terms := segments[:0]
	for _, seg := range segments {
		if !isWord(seg) {
			continue
		}
		if utf8.RuneCountInString(seg) < a.minTokenLength {
			continue
		}
		if _, stop := a.stopWords[seg]; stop {
			continue
		}
		terms = append(terms, seg)
	}
	return terms
}

// isWord reports whether a segment contains at least one letter or digit.
func isWord(seg string) bool {
	for _, r := range seg {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

package retriever

import (
	"errors"
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring"
)

// ErrUnknownWeighting is returned when an unknown weighting kind is provided to NewVectorizer.
var ErrUnknownWeighting = errors.New("unknown weighting kind")

// WeightingKind selects how the weighted representation of a text is built.
// The boolean (term presence) representation is the same for every kind.
type WeightingKind string

const (
	// TfidfWeighting weights each term by its frequency in the text times its
	// inverse document frequency in the fitted collection.
	// Formula: tf * (ln((1 + n) / (1 + df)) + 1), L2-normalized per row.
	TfidfWeighting WeightingKind = "tfidf"

	// CountWeighting uses raw term counts.
	CountWeighting WeightingKind = "count"

	// BinaryWeighting sets every present term to 1.
	BinaryWeighting WeightingKind = "binary"
)

// TfidfConfig tunes TfidfWeighting. It is ignored by the other kinds.
type TfidfConfig struct {
	// SmoothIDF adds one to document frequencies, as if an extra document
	// contained every term once. Prevents zero divisions.
	SmoothIDF bool `yaml:"smooth_idf"`

	// SublinearTF replaces tf with 1 + ln(tf).
	SublinearTF bool `yaml:"sublinear_tf"`

	// Normalize scales every weighted row to unit L2 norm.
	Normalize bool `yaml:"normalize"`
}

// DefaultTfidfConfig returns smoothed IDF, raw TF and L2 normalization.
func DefaultTfidfConfig() TfidfConfig {
	return TfidfConfig{
		SmoothIDF:   true,
		SublinearTF: false,
		Normalize:   true,
	}
}

// Vectorized is the result of vectorizing one text against a fitted vocabulary.
type Vectorized struct {
	// Terms holds the columns of vocabulary terms present in the text.
	Terms *roaring.Bitmap

	// Weights is the weighted representation used for ranking.
	Weights SparseVector

	// OutOfVocabulary counts tokens dropped because the vocabulary does not
	// know them.
	OutOfVocabulary int
}

// Vectorizer maps text onto a fixed-dimension representation over a shared
// vocabulary. Both the boolean and the weighted representation come from
// the same Fit, so their dimensionality always agrees.
//
// Transform must be deterministic and safe for concurrent use once fitted.
type Vectorizer interface {
	// Fit learns the vocabulary (and any weighting statistics) from documents,
	// replacing what was learned before.
	Fit(documents []string) error

	// Fitted reports whether Fit has succeeded at least once.
	Fitted() bool

	// Vocabulary returns the fitted vocabulary, or nil before Fit.
	Vocabulary() *Vocabulary

	// Transform vectorizes text against the fitted vocabulary.
	Transform(text string) (Vectorized, error)

	// Kind returns the weighting kind.
	Kind() WeightingKind
}

// Compile-time checks to ensure TermVectorizer implements Vectorizer
var _ Vectorizer = (*TermVectorizer)(nil)

// TermVectorizer is the default Vectorizer: analyzer-driven tokenization,
// an alphabetical vocabulary, and count, binary or TF-IDF weights.
type TermVectorizer struct {
	analyzer *Analyzer
	kind     WeightingKind
	tfidf    TfidfConfig

	vocab *Vocabulary
	idf   []float64
}

// NewVectorizer creates an unfitted vectorizer. A nil analyzer means
// NewAnalyzer() defaults.
func NewVectorizer(kind WeightingKind, analyzer *Analyzer, tfidf TfidfConfig) (*TermVectorizer, error) {
	switch kind {
	case TfidfWeighting, CountWeighting, BinaryWeighting:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownWeighting, kind)
	}
	if analyzer == nil {
		analyzer = NewAnalyzer()
	}
	return &TermVectorizer{
		analyzer: analyzer,
		kind:     kind,
		tfidf:    tfidf,
	}, nil
}

// Fit learns the vocabulary and, for TF-IDF, the inverse document frequencies.
// Returns ErrEmptyVocabulary if no document yields a term.
func (v *TermVectorizer) Fit(documents []string) error {
	df := make(map[string]int)
	for _, doc := range documents {
		seen := make(map[string]struct{})
		for _, term := range v.analyzer.Analyze(doc) {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}
	if len(df) == 0 {
		return ErrEmptyVocabulary
	}

	termSet := make(map[string]struct{}, len(df))
	for term := range df {
		termSet[term] = struct{}{}
	}
	vocab := newVocabulary(termSet)

	var idf []float64
	if v.kind == TfidfWeighting {
		idf = make([]float64, vocab.Size())
		n := float64(len(documents))
		for term, count := range df {
			col, _ := vocab.Column(term)
			idf[col] = inverseDocumentFrequency(n, float64(count), v.tfidf.SmoothIDF)
		}
	}

	v.vocab = vocab
	v.idf = idf
	return nil
}

// inverseDocumentFrequency computes ln(n/df) + 1, or ln((1+n)/(1+df)) + 1
// when smoothing.
func inverseDocumentFrequency(n, df float64, smooth bool) float64 {
	if smooth {
		n++
		df++
	}
	return math.Log(n/df) + 1
}

// Fitted reports whether Fit has succeeded.
func (v *TermVectorizer) Fitted() bool {
	return v.vocab != nil
}

// Vocabulary returns the fitted vocabulary, or nil before Fit.
func (v *TermVectorizer) Vocabulary() *Vocabulary {
	return v.vocab
}

// Kind returns the weighting kind.
func (v *TermVectorizer) Kind() WeightingKind {
	return v.kind
}

// Transform vectorizes text. Terms unknown to the vocabulary are dropped and
// counted in OutOfVocabulary; they never produce an error.
func (v *TermVectorizer) Transform(text string) (Vectorized, error) {
	if v.vocab == nil {
		return Vectorized{}, ErrNotFitted
	}

	counts := make(map[uint32]float64)
	oov := 0
	for _, term := range v.analyzer.Analyze(text) {
		col, ok := v.vocab.Column(term)
		if !ok {
			oov++
			continue
		}
		counts[col]++
	}

	terms := roaring.New()
	components := make(map[uint32]float32, len(counts))
	for col, tf := range counts {
		terms.Add(col)
		components[col] = float32(v.weight(col, tf))
	}

	weights := NewSparseVector(components)
	if v.kind == TfidfWeighting && v.tfidf.Normalize {
		NormalizeInPlace(weights)
	}

	return Vectorized{
		Terms:           terms,
		Weights:         weights,
		OutOfVocabulary: oov,
	}, nil
}

// weight returns the un-normalized weight of column col occurring tf times.
func (v *TermVectorizer) weight(col uint32, tf float64) float64 {
	switch v.kind {
	case BinaryWeighting:
		return 1
	case CountWeighting:
		return tf
	default:
		if v.tfidf.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		return tf * v.idf[col]
	}
}

package retriever

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, q QuantizerType) *IndexStore {
	t.Helper()
	v, err := NewVectorizer(TfidfWeighting, nil, DefaultTfidfConfig())
	require.NoError(t, err)
	s, err := NewIndexStore(v, q, 2)
	require.NoError(t, err)
	return s
}

func assertAligned(t *testing.T, s *IndexStore) {
	t.Helper()
	require.NoError(t, s.checkAlignment())
	assert.Equal(t, s.Len(), s.Terms().Rows())
	assert.Equal(t, s.Len(), s.Weights().Rows())
	assert.Equal(t, s.Terms().Cols(), s.Weights().Cols())
}

func TestIndexStore_Fit(t *testing.T) {
	s := newTestStore(t, FullPrecision)
	assert.False(t, s.Fitted())
	assert.Equal(t, 0, s.Dimensions())

	stats, err := s.Fit(fixtureDocs, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Documents)
	assert.True(t, s.Fitted())
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, 8, s.Dimensions())
	assert.Equal(t, []uint32{0, 1, 2, 3}, s.IDs())
	assertAligned(t, s)
}

func TestIndexStore_FitExplicitIDs(t *testing.T) {
	s := newTestStore(t, FullPrecision)

	_, err := s.Fit(fixtureDocs, []uint32{40, 10, 30, 20})
	require.NoError(t, err)
	assert.Equal(t, []uint32{40, 10, 30, 20}, s.IDs())

	_, err = s.PartialFit([]string{"fox"}, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(41), s.IDs()[4], "auto ids continue from the maximum")
}

func TestIndexStore_ShapeMismatch(t *testing.T) {
	s := newTestStore(t, FullPrecision)

	_, err := s.Fit(fixtureDocs, []uint32{1, 2})
	require.ErrorIs(t, err, ErrShapeMismatch)
	var shapeErr *ShapeMismatchError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, 4, shapeErr.Documents)
	assert.Equal(t, 2, shapeErr.IDs)
	assert.False(t, s.Fitted())

	_, err = s.Fit(fixtureDocs, nil)
	require.NoError(t, err)
	before := s.Generation()

	_, err = s.PartialFit([]string{"a fox", "a dog"}, []uint32{9})
	require.ErrorIs(t, err, ErrShapeMismatch)
	assert.Equal(t, 4, s.Len(), "failed partial fit must not append")
	assert.Equal(t, before, s.Generation())
	assertAligned(t, s)
}

func TestIndexStore_PartialFitBeforeFit(t *testing.T) {
	s := newTestStore(t, FullPrecision)
	_, err := s.PartialFit([]string{"fox"}, nil)
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestIndexStore_PartialFit(t *testing.T) {
	s := newTestStore(t, FullPrecision)
	_, err := s.Fit(fixtureDocs, nil)
	require.NoError(t, err)
	dims := s.Dimensions()

	stats, err := s.PartialFit([]string{"new fox doc", "unknown words only"}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Documents)
	assert.Equal(t, 4, stats.FirstRow)
	assert.Equal(t, 5, stats.OutOfVocabulary)
	assert.Equal(t, dims, s.Dimensions(), "vocabulary is fixed after fit")
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5}, s.IDs())
	assertAligned(t, s)

	fox, ok := s.Vectorizer().Vocabulary().Column("fox")
	require.True(t, ok)
	assert.Equal(t, []uint32{fox}, s.Terms().Row(4).ToArray())
	assert.True(t, s.Terms().Row(5).IsEmpty())
	assert.Equal(t, []uint32{1, 4}, s.Terms().Postings(fox).ToArray())
}

func TestIndexStore_PartialFitEmptyBatch(t *testing.T) {
	s := newTestStore(t, FullPrecision)
	_, err := s.Fit(fixtureDocs, nil)
	require.NoError(t, err)
	before := s.Generation()

	stats, err := s.PartialFit(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Documents)
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, before, s.Generation())
}

func TestIndexStore_IDSpaceExhausted(t *testing.T) {
	s := newTestStore(t, FullPrecision)
	_, err := s.Fit([]string{"fox"}, []uint32{math.MaxUint32 - 1})
	require.NoError(t, err)

	_, err = s.PartialFit([]string{"fox"}, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), s.IDs()[1])

	_, err = s.PartialFit([]string{"fox"}, nil)
	assert.ErrorIs(t, err, ErrIDSpaceExhausted)
	assert.Equal(t, 2, s.Len())
}

func TestIndexStore_FitIsIdempotent(t *testing.T) {
	a := newTestStore(t, FullPrecision)
	b := newTestStore(t, FullPrecision)
	_, err := a.Fit(fixtureDocs, nil)
	require.NoError(t, err)
	_, err = b.Fit(fixtureDocs, nil)
	require.NoError(t, err)

	require.Equal(t, a.Len(), b.Len())
	assert.Equal(t, a.IDs(), b.IDs())
	for i := 0; i < a.Len(); i++ {
		assert.True(t, a.Terms().Row(i).Equals(b.Terms().Row(i)), "term row %d", i)
		assert.Equal(t, a.Weights().Row(i), b.Weights().Row(i), "weight row %d", i)
	}
}

func TestIndexStore_RefitReplaces(t *testing.T) {
	s := newTestStore(t, FullPrecision)
	_, err := s.Fit(fixtureDocs, nil)
	require.NoError(t, err)
	_, err = s.PartialFit([]string{"fox"}, nil)
	require.NoError(t, err)
	gen := s.Generation()

	_, err = s.Fit([]string{"alpha beta", "gamma"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 3, s.Dimensions())
	assert.Equal(t, []uint32{0, 1}, s.IDs())
	assert.Greater(t, s.Generation(), gen)
	assertAligned(t, s)
}

func TestIndexStore_Quantizers(t *testing.T) {
	for _, q := range []QuantizerType{FullPrecision, HalfPrecision, Int8Precision} {
		t.Run(string(q), func(t *testing.T) {
			s := newTestStore(t, q)
			_, err := s.Fit(fixtureDocs, nil)
			require.NoError(t, err)
			_, err = s.PartialFit([]string{"new fox doc"}, nil)
			require.NoError(t, err)

			assert.Equal(t, q, s.Weights().Quantizer().Type())
			assertAligned(t, s)
			// int8 clamps rows beyond the range seen at fit; direction survives.
			row := s.Weights().Row(4)
			require.Equal(t, 1, row.Len())
			cos, _ := NewDistance(Cosine)
			query := SparseVector{Indices: row.Indices, Values: []float32{1}}
			assert.InDelta(t, 0.0, cos.Calculate(query, row), 1e-6)
		})
	}
}

func TestNewIndexStore_UnknownQuantizer(t *testing.T) {
	v, err := NewVectorizer(TfidfWeighting, nil, DefaultTfidfConfig())
	require.NoError(t, err)
	_, err = NewIndexStore(v, QuantizerType("int4"), 1)
	assert.ErrorIs(t, err, ErrUnknownQuantizer)
}

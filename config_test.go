package retriever

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, TfidfWeighting, cfg.Weighting)
	assert.Equal(t, AnyTermMatching, cfg.Matching)
	assert.Equal(t, Cosine, cfg.Distance)
	assert.True(t, cfg.Tfidf.SmoothIDF)
	assert.True(t, cfg.Tfidf.Normalize)
}

func TestParseConfig(t *testing.T) {
	data := []byte(`
analyzer:
  min_token_length: 3
  lowercase: true
  stop_words: [the, over]
matching: all
quantizer: float16
cache:
  size: 128
evaluation:
  discount: first_undiscounted
logging:
  level: debug
  format: json
workers: 4
`)

	cfg, err := ParseConfig(data)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Analyzer.MinTokenLength)
	assert.Equal(t, []string{"the", "over"}, cfg.Analyzer.StopWords)
	assert.Equal(t, AllTermsMatching, cfg.Matching)
	assert.Equal(t, HalfPrecision, cfg.Quantizer)
	assert.Equal(t, 128, cfg.Cache.Size)
	assert.Equal(t, DiscountFirstUndiscountedName, cfg.Evaluation.Discount)
	assert.Equal(t, DebugLevel, cfg.Logging.Level)
	assert.Equal(t, JSONFormat, cfg.Logging.Format)
	assert.Equal(t, 4, cfg.Workers)

	// Absent keys keep their defaults.
	assert.Equal(t, TfidfWeighting, cfg.Weighting)
	assert.Equal(t, Cosine, cfg.Distance)
	assert.Equal(t, DefaultTfidfConfig(), cfg.Tfidf)
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"unknown weighting", "weighting: bm42", ErrUnknownWeighting},
		{"unknown matching", "matching: fuzzy", ErrUnknownMatchingKind},
		{"unknown distance", "distance: manhattan", ErrUnknownDistanceKind},
		{"unknown quantizer", "quantizer: int4", ErrUnknownQuantizer},
		{"unknown log format", "logging:\n  format: xml", ErrUnknownLogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	for _, bad := range []string{
		"analyzer:\n  min_token_length: 0",
		"cache:\n  size: -1",
		"workers: -2",
		"evaluation:\n  discount: log10",
		"matching: [any",
	} {
		_, err := ParseConfig([]byte(bad))
		assert.Error(t, err, bad)
	}
}

func TestValidate_JoinsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Matching = "fuzzy"
	cfg.Distance = "manhattan"

	err := cfg.Validate()
	assert.ErrorIs(t, err, ErrUnknownMatchingKind)
	assert.ErrorIs(t, err, ErrUnknownDistanceKind)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retriever.yaml")
	require.NoError(t, os.WriteFile(path, []byte("matching: all\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, AllTermsMatching, cfg.Matching)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Matching = AllTermsMatching
	cfg.Analyzer.StopWords = []string{"lazy"}
	cfg.Cache.Size = 4

	e, err := NewFromConfig(cfg)
	require.NoError(t, err)
	require.NoError(t, e.Fit(fixtureDocs, nil))

	assert.NotContains(t, e.Vocabulary().Terms(), "lazy")
	ids, err := e.Query("the dog", 10)
	require.NoError(t, err)
	assert.Equal(t, []uint32{3}, ids)

	_, err = e.Query("the dog", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, e.cache.Len())

	cfg.Distance = "manhattan"
	_, err = NewFromConfig(cfg)
	assert.ErrorIs(t, err, ErrUnknownDistanceKind)
}

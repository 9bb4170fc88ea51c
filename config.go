package retriever

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the YAML form of an Engine's settings. Zero sections are filled
// from DefaultConfig by LoadConfig and ParseConfig.
type Config struct {
	Analyzer   AnalyzerConfig   `yaml:"analyzer"`
	Weighting  WeightingKind    `yaml:"weighting"`
	Tfidf      TfidfConfig      `yaml:"tfidf"`
	Matching   MatchingKind     `yaml:"matching"`
	Distance   DistanceKind     `yaml:"distance"`
	Quantizer  QuantizerType    `yaml:"quantizer"`
	Cache      CacheConfig      `yaml:"cache"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Logging    LoggingConfig    `yaml:"logging"`

	// Workers bounds the goroutines used to vectorize batches and evaluate
	// queries. 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// AnalyzerConfig configures the Analyzer.
type AnalyzerConfig struct {
	MinTokenLength int      `yaml:"min_token_length"`
	Lowercase      bool     `yaml:"lowercase"`
	StopWords      []string `yaml:"stop_words"`
}

// CacheConfig configures the query cache. Size 0 disables it.
type CacheConfig struct {
	Size int `yaml:"size"`
}

// EvaluationConfig configures Evaluate and Score.
type EvaluationConfig struct {
	// Discount is "standard" or "first_undiscounted".
	Discount string `yaml:"discount"`
}

// LoggingConfig configures NewLogger.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	FilePath string `yaml:"file_path"`
}

// Discount names accepted by EvaluationConfig.Discount.
const (
	DiscountStandardName          = "standard"
	DiscountFirstUndiscountedName = "first_undiscounted"
)

// DefaultConfig returns the settings New uses without options.
func DefaultConfig() Config {
	return Config{
		Analyzer: AnalyzerConfig{
			MinTokenLength: DefaultMinTokenLength,
			Lowercase:      true,
		},
		Weighting:  TfidfWeighting,
		Tfidf:      DefaultTfidfConfig(),
		Matching:   AnyTermMatching,
		Distance:   Cosine,
		Quantizer:  FullPrecision,
		Evaluation: EvaluationConfig{Discount: DiscountStandardName},
		Logging: LoggingConfig{
			Level:  InfoLevel,
			Format: ConsoleFormat,
		},
	}
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates YAML. Keys absent from data keep their
// DefaultConfig values.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every enumerated setting and numeric bound.
func (c Config) Validate() error {
	var errs []error
	if c.Analyzer.MinTokenLength < 1 {
		errs = append(errs, fmt.Errorf("analyzer.min_token_length must be at least 1, got %d", c.Analyzer.MinTokenLength))
	}
	switch c.Weighting {
	case TfidfWeighting, CountWeighting, BinaryWeighting:
	default:
		errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownWeighting, c.Weighting))
	}
	if _, err := NewMatcher(c.Matching); err != nil {
		errs = append(errs, err)
	}
	if _, err := NewDistance(c.Distance); err != nil {
		errs = append(errs, err)
	}
	if _, err := NewQuantizer(c.Quantizer); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseDiscount(c.Evaluation.Discount); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case ConsoleFormat, JSONFormat, "":
	default:
		errs = append(errs, fmt.Errorf("logging.format: %w: %s", ErrUnknownLogFormat, c.Logging.Format))
	}
	if c.Cache.Size < 0 {
		errs = append(errs, fmt.Errorf("cache.size must not be negative, got %d", c.Cache.Size))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	return errors.Join(errs...)
}

// Options converts the config into Engine options. The logger is not
// included; build it with NewLogger and pass WithLogger.
func (c Config) Options() ([]Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	discount, _ := parseDiscount(c.Evaluation.Discount)

	return []Option{
		WithAnalyzer(
			WithMinTokenLength(c.Analyzer.MinTokenLength),
			WithLowercase(c.Analyzer.Lowercase),
			WithStopWords(c.Analyzer.StopWords...),
		),
		WithWeighting(c.Weighting, c.Tfidf),
		WithMatching(c.Matching),
		WithDistance(c.Distance),
		WithQuantizer(c.Quantizer),
		WithCacheSize(c.Cache.Size),
		WithDiscount(discount),
		WithWorkers(c.Workers),
	}, nil
}

func parseDiscount(name string) (DiscountKind, error) {
	switch name {
	case DiscountStandardName, "":
		return DiscountStandard, nil
	case DiscountFirstUndiscountedName:
		return DiscountFirstUndiscounted, nil
	default:
		return 0, fmt.Errorf("unknown discount: %s", name)
	}
}

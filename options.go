package retriever

import "go.uber.org/zap"

type options struct {
	logger       *zap.Logger
	vectorizer   Vectorizer
	analyzerOpts []AnalyzerOption
	weighting    WeightingKind
	tfidf        TfidfConfig
	matching     MatchingKind
	distance     DistanceKind
	ranker       Ranker
	quantizer    QuantizerType
	cacheSize    int
	workers      int
	collector    Collector
	discount     DiscountKind
}

func defaultOptions() options {
	return options{
		logger:    zap.NewNop(),
		weighting: TfidfWeighting,
		tfidf:     DefaultTfidfConfig(),
		matching:  AnyTermMatching,
		distance:  Cosine,
		quantizer: FullPrecision,
		collector: NoopCollector{},
		discount:  DiscountStandard,
	}
}

// Option configures an Engine.
type Option func(*options)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = zap.NewNop()
		}
		o.logger = logger
	}
}

// WithVectorizer replaces the built-in TermVectorizer. WithAnalyzer and
// WithWeighting are ignored when it is set.
func WithVectorizer(v Vectorizer) Option {
	return func(o *options) {
		o.vectorizer = v
	}
}

// WithAnalyzer configures the analyzer of the built-in vectorizer.
func WithAnalyzer(opts ...AnalyzerOption) Option {
	return func(o *options) {
		o.analyzerOpts = append(o.analyzerOpts, opts...)
	}
}

// WithWeighting selects the weighting of the built-in vectorizer. tfidf is
// only read for TfidfWeighting.
func WithWeighting(kind WeightingKind, tfidf TfidfConfig) Option {
	return func(o *options) {
		o.weighting = kind
		o.tfidf = tfidf
	}
}

// WithMatching selects the boolean matching strategy (default AnyTermMatching).
func WithMatching(kind MatchingKind) Option {
	return func(o *options) {
		o.matching = kind
	}
}

// WithDistance selects the ranking metric of the built-in FlatRanker
// (default Cosine).
func WithDistance(kind DistanceKind) Option {
	return func(o *options) {
		o.distance = kind
	}
}

// WithRanker replaces the built-in FlatRanker. WithDistance is ignored when
// it is set.
func WithRanker(r Ranker) Option {
	return func(o *options) {
		o.ranker = r
	}
}

// WithQuantizer selects the storage precision of weighted rows
// (default FullPrecision).
func WithQuantizer(t QuantizerType) Option {
	return func(o *options) {
		o.quantizer = t
	}
}

// WithCacheSize enables an LRU cache of up to size search results.
// 0 (the default) disables caching.
func WithCacheSize(size int) Option {
	return func(o *options) {
		o.cacheSize = size
	}
}

// WithWorkers bounds the goroutines used to vectorize batches and evaluate
// queries. Values below 1 mean GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithCollector sets the metrics collector. A nil collector disables collection.
func WithCollector(c Collector) Option {
	return func(o *options) {
		if c == nil {
			c = NoopCollector{}
		}
		o.collector = c
	}
}

// WithDiscount selects the DCG discount used by Evaluate and Score.
func WithDiscount(d DiscountKind) Option {
	return func(o *options) {
		o.discount = d
	}
}

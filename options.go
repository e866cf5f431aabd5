package serialqueue

// FeatureFlags is a bitset of optional Queue behaviors.
type FeatureFlags uint32

const (
	// CooperativeContinuations, when set, installs a ContinuationBridge
	// during each drain so that code which leaves a work item's goroutine
	// (e.g. to perform a blocking call) can route its continuation back
	// onto the originating queue via Continuation. It is on by default.
	CooperativeContinuations FeatureFlags = 1 << iota
)

// DefaultFeatures is the default feature set, with CooperativeContinuations
// enabled. New and NewDefault take their feature set as an argument and do
// not substitute DefaultFeatures on their own; pass it explicitly.
const DefaultFeatures = CooperativeContinuations

// Has reports whether every flag set in want is also set in f.
func (f FeatureFlags) Has(want FeatureFlags) bool {
	return f&want == want
}

// queueConfig holds configuration resolved from Option values before a
// Queue is constructed.
type queueConfig struct {
	name     string
	features FeatureFlags
	logger   Logger
}

// Option configures a Queue at construction time.
type Option interface {
	apply(*queueConfig)
}

type optionFunc func(*queueConfig)

func (f optionFunc) apply(cfg *queueConfig) { f(cfg) }

// WithName sets the queue's name, used in log fields and in PanicError
// messages. The default is the empty string.
func WithName(name string) Option {
	return optionFunc(func(cfg *queueConfig) {
		cfg.name = name
	})
}

// WithFeatures overrides the feature bitset. Equivalent to passing features
// directly to New, provided as an Option so it composes with the others.
func WithFeatures(features FeatureFlags) Option {
	return optionFunc(func(cfg *queueConfig) {
		cfg.features = features
	})
}

// WithLogger overrides the queue's Logger. The default is the logger
// installed via SetLogger (a package-level logiface-backed logger unless
// overridden).
func WithLogger(logger Logger) Option {
	return optionFunc(func(cfg *queueConfig) {
		cfg.logger = logger
	})
}

// resolveOptions applies opts over a config seeded with features.
func resolveOptions(features FeatureFlags, opts []Option) *queueConfig {
	cfg := &queueConfig{
		features: features,
		logger:   getGlobalLogger(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(cfg)
	}
	return cfg
}

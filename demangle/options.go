package demangle

import "log/slog"

// Option configures a Parser or Cache.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	maxDepth int
}

// WithLogger sets the logger used by a Cache. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxDepth bounds how deeply containers, map keys and parametric
// arguments may nest. Zero means no limit.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth < 0 {
			depth = 0
		}
		o.maxDepth = depth
	}
}

func buildOptions(opts ...Option) options {
	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

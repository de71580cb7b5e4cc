package flashevents

import "log/slog"

// config holds bus construction settings.
type config struct {
	scopes ScopeFactory
	logger *slog.Logger
}

func defaultConfig() config {
	return config{
		scopes: NewProviderFactory(),
		logger: slog.New(slog.DiscardHandler),
	}
}

// Option configures a Bus.
type Option func(*config)

// WithScopeFactory sets the host's scope factory. Without it the bus uses
// a ProviderFactory.
func WithScopeFactory(f ScopeFactory) Option {
	return func(c *config) {
		if f != nil {
			c.scopes = f
		}
	}
}

// WithLogger sets the logger receiving registration, dispatch, and
// swallowed-queued-failure records. Without it the bus is silent; logging
// changes observability only, never behavior.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

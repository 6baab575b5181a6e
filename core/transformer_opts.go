package nsmigrate

import "log/slog"

// Option configures a Transformer.
type Option func(*Transformer)

// WithLogger sets the logger for patch diagnostics.
// Class patches are reported at debug level. If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transformer) {
		t.logger = logger
	}
}

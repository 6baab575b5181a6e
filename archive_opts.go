package nsmigrate

import (
	"log/slog"
	"runtime"
)

// ArchiveOption configures TransformArchive and TransformArchiveFile.
type ArchiveOption func(*archiveConfig)

type archiveConfig struct {
	workers int
	logger  *slog.Logger
}

func newArchiveConfig(opts []ArchiveOption) archiveConfig {
	cfg := archiveConfig{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = 1
	}
	return cfg
}

// ArchiveWithWorkers sets how many entries are transformed concurrently.
// Values below 1 select sequential processing. The default is GOMAXPROCS.
func ArchiveWithWorkers(n int) ArchiveOption {
	return func(c *archiveConfig) {
		c.workers = n
	}
}

// ArchiveWithLogger sets the logger for archive diagnostics.
// If not set, logging is disabled.
func ArchiveWithLogger(logger *slog.Logger) ArchiveOption {
	return func(c *archiveConfig) {
		c.logger = logger
	}
}

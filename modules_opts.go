package nsmigrate

import (
	"log/slog"
	"runtime"

	nscore "github.com/meigma/nsmigrate/core"
)

// ModulesOption configures TransformModules.
type ModulesOption func(*modulesConfig)

type modulesConfig struct {
	mapping     nscore.Mapping
	mappingFile string
	artifacts   *nscore.Transformer
	workers     int
	logger      *slog.Logger
}

func newModulesConfig(opts []ModulesOption) modulesConfig {
	cfg := modulesConfig{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = 1
	}
	return cfg
}

// ModulesWithMapping sets the module mapping directly.
// It takes precedence over ModulesWithMappingFile.
func ModulesWithMapping(m nscore.Mapping) ModulesOption {
	return func(c *modulesConfig) {
		c.mapping = m
	}
}

// ModulesWithMappingFile loads the module mapping from a properties file.
// A missing file fails the transformation with ErrConfiguration.
// By default the built-in module mapping is used.
func ModulesWithMappingFile(path string) ModulesOption {
	return func(c *modulesConfig) {
		c.mappingFile = path
	}
}

// ModulesWithArtifacts rewrites the archives found in the repository with t.
// By default archives are copied unchanged.
func ModulesWithArtifacts(t *nscore.Transformer) ModulesOption {
	return func(c *modulesConfig) {
		c.artifacts = t
	}
}

// ModulesWithWorkers sets how many files are processed concurrently.
// The default is GOMAXPROCS.
func ModulesWithWorkers(n int) ModulesOption {
	return func(c *modulesConfig) {
		c.workers = n
	}
}

// ModulesWithLogger sets the logger for repository diagnostics.
// If not set, logging is disabled.
func ModulesWithLogger(logger *slog.Logger) ModulesOption {
	return func(c *modulesConfig) {
		c.logger = logger
	}
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"

	"github.com/meigma/nsmigrate"
	nscore "github.com/meigma/nsmigrate/core"
	"github.com/meigma/nsmigrate/internal/config"
)

type MainConfig struct {
	Config  string `cli:"name=config desc='run configuration file (default ./nsmigrate.toml if present)'"`
	Mapping string `cli:"name=mapping desc='package mapping file (default built-in javax to jakarta)'"`
	Verbose bool   `cli:"name=v aliases=verbose desc='log patch diagnostics'"`

	// Settings is the loaded run configuration.
	Settings *config.Config

	Main *cli.Command
}

type ClassConfig struct {
	*MainConfig
	Out string `cli:"name=o desc='output file (default rewrite in place)'"`

	Class *cli.Command
}

type ArchiveConfig struct {
	*MainConfig
	Out     string `cli:"name=o desc='output archive (default rewrite in place)'"`
	Workers int    `cli:"name=workers desc='entries transformed concurrently (default GOMAXPROCS)'"`

	Archive *cli.Command
}

type ModulesConfig struct {
	*MainConfig
	ModuleMapping string `cli:"name=moduleMapping desc='module mapping file (default built-in)'"`
	Artifacts     bool   `cli:"name=artifacts desc='also rewrite archives inside the repository'"`
	Workers       int    `cli:"name=workers desc='files processed concurrently (default GOMAXPROCS)'"`

	Modules *cli.Command
}

type DescriptorConfig struct {
	*MainConfig
	ModuleMapping string `cli:"name=moduleMapping desc='module mapping file (default built-in)'"`
	Diff          bool   `cli:"name=diff desc='print a diff instead of the rewritten document'"`

	Descriptor *cli.Command
}

type MappingsConfig struct {
	*MainConfig
	Modules bool `cli:"name=modules desc='print the module mapping'"`
	Dot     bool `cli:"name=dot desc='print the dot form'"`

	Mappings *cli.Command
}

// load reads the run configuration. Flags take precedence over the file.
func (cfg *MainConfig) load() error {
	settings, err := config.LoadOptional(cfg.Config)
	if err != nil {
		return fmt.Errorf("%w: %w", nsmigrate.ErrConfiguration, err)
	}
	cfg.Settings = settings
	return nil
}

func (cfg *MainConfig) settings() *config.Config {
	if cfg.Settings == nil {
		return &config.Config{}
	}
	return cfg.Settings
}

func (cfg *MainConfig) logger() (*slog.Logger, error) {
	level, err := cfg.settings().Level()
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

func (cfg *MainConfig) packageMapping() (nscore.Mapping, error) {
	path := cfg.Mapping
	if path == "" {
		path = cfg.settings().Mapping
	}
	return nsmigrate.LoadMappingOrDefault(path, nsmigrate.DefaultMapping)
}

func (cfg *MainConfig) moduleMapping(flag string) (nscore.Mapping, error) {
	path := flag
	if path == "" {
		path = cfg.settings().Modules.Mapping
	}
	return nsmigrate.LoadMappingOrDefault(path, nsmigrate.DefaultModuleMapping)
}

func (cfg *MainConfig) workers(flag int) int {
	if flag > 0 {
		return flag
	}
	return cfg.settings().Workers
}

func (cfg *MainConfig) transformer() (*nscore.Transformer, error) {
	m, err := cfg.packageMapping()
	if err != nil {
		return nil, err
	}
	logger, err := cfg.logger()
	if err != nil {
		return nil, err
	}
	return nscore.New(m, nscore.WithLogger(logger))
}

// status prints one result line, colored when w is a terminal.
type status struct {
	w       io.Writer
	changed *color.Color
	same    *color.Color
}

func newStatus(w io.Writer) *status {
	s := &status{
		w:       w,
		changed: color.New(color.FgGreen, color.Bold),
		same:    color.New(color.Faint),
	}
	f, ok := w.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		s.changed.DisableColor()
		s.same.DisableColor()
	}
	return s
}

func (s *status) print(changed bool, format string, args ...any) {
	label, c := "unchanged", s.same
	if changed {
		label, c = "rewritten", s.changed
	}
	c.Fprintf(s.w, "%-9s ", label)
	fmt.Fprintf(s.w, format+"\n", args...)
}

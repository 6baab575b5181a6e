package main

import (
	"context"
	"maps"
	"slices"

	"github.com/scott-cotton/cli"

	"github.com/meigma/nsmigrate"
)

func modules(cfg *ModulesConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Modules.Parse(cc, args)
	if err != nil {
		return err
	}
	dir, err := oneArg(args, "modules directory")
	if err != nil {
		return err
	}

	mapping, err := cfg.moduleMapping(cfg.ModuleMapping)
	if err != nil {
		return err
	}
	logger, err := cfg.logger()
	if err != nil {
		return err
	}

	opts := []nsmigrate.ModulesOption{
		nsmigrate.ModulesWithMapping(mapping),
		nsmigrate.ModulesWithLogger(logger),
	}
	if n := cfg.workers(cfg.Workers); n > 0 {
		opts = append(opts, nsmigrate.ModulesWithWorkers(n))
	}
	if cfg.Artifacts || cfg.settings().Modules.Artifacts {
		tr, err := cfg.transformer()
		if err != nil {
			return err
		}
		opts = append(opts, nsmigrate.ModulesWithArtifacts(tr))
	}

	result, err := nsmigrate.TransformModules(context.Background(), dir, opts...)
	if err != nil {
		return err
	}

	st := newStatus(cc.Out)
	if len(result) == 0 {
		st.print(false, "%s: no module descriptors changed", dir)
		return nil
	}
	for _, name := range slices.Sorted(maps.Keys(result)) {
		m := result[name]
		st.print(true, "%s -> %s (%d dependencies rewritten)", name, m.Name, len(m.Dependencies))
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	nscore "github.com/meigma/nsmigrate/core"
)

func mappings(cfg *MappingsConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Mappings.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return fmt.Errorf("%w: unexpected arguments", cli.ErrUsage)
	}

	var m nscore.Mapping
	if cfg.Modules {
		m, err = cfg.moduleMapping("")
	} else {
		m, err = cfg.packageMapping()
	}
	if err != nil {
		return err
	}
	if cfg.Dot {
		m = m.Dotted()
	}
	for _, r := range m {
		fmt.Fprintf(cc.Out, "%s=%s\n", r.From, r.To)
	}
	return nil
}

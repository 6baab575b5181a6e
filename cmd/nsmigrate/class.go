package main

import (
	"os"

	"github.com/scott-cotton/cli"

	"github.com/meigma/nsmigrate/internal/fileops"
)

func class(cfg *ClassConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Class.Parse(cc, args)
	if err != nil {
		return err
	}
	in, err := oneArg(args, "class file")
	if err != nil {
		return err
	}
	out := cfg.Out
	if out == "" {
		out = in
	}

	tr, err := cfg.transformer()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	info, err := os.Stat(in)
	if err != nil {
		return err
	}

	patched, ok, err := tr.TransformClass(data)
	if err != nil {
		return err
	}
	result := data
	if ok {
		result = patched
	}
	if ok || out != in {
		if err := fileops.WriteFileAtomic(out, result, info.Mode().Perm()); err != nil {
			return err
		}
	}
	newStatus(cc.Out).print(ok, "%s (%d -> %d bytes)", out, len(data), len(result))
	return nil
}

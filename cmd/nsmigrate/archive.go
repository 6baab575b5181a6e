package main

import (
	"context"

	"github.com/scott-cotton/cli"

	"github.com/meigma/nsmigrate"
)

func archive(cfg *ArchiveConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Archive.Parse(cc, args)
	if err != nil {
		return err
	}
	in, err := oneArg(args, "archive")
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
	logger, err := cfg.logger()
	if err != nil {
		return err
	}

	opts := []nsmigrate.ArchiveOption{nsmigrate.ArchiveWithLogger(logger)}
	if n := cfg.workers(cfg.Workers); n > 0 {
		opts = append(opts, nsmigrate.ArchiveWithWorkers(n))
	}
	stats, err := nsmigrate.TransformArchiveFile(context.Background(), tr, in, out, opts...)
	if err != nil {
		return err
	}
	newStatus(cc.Out).print(stats.Changed(), "%s: %d entries, %d patched, %d renamed (%s)",
		out, stats.Entries, stats.Patched, stats.Renamed, stats.Digest)
	return nil
}

package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "nsmigrate").
		WithSynopsis("nsmigrate [opts] command [opts]").
		WithDescription("nsmigrate rewrites compiled Java code from one package namespace to another, such as javax to jakarta.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return nsmigrateMain(cfg, cc, args)
		}).
		WithSubs(
			ClassCommand(cfg),
			ArchiveCommand(cfg),
			ModulesCommand(cfg),
			DescriptorCommand(cfg),
			MappingsCommand(cfg))
}

func ClassCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ClassConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Class, "class").
		WithAliases("c").
		WithSynopsis("class [-o out] <file.class>").
		WithDescription("rewrite the constant pool of a single class file").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return class(cfg, cc, args)
		})
}

func ArchiveCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ArchiveConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Archive, "archive").
		WithAliases("a", "jar").
		WithSynopsis("archive [-o out] [-workers n] <file.jar|war|ear>").
		WithDescription("rewrite every entry of a java archive, including nested archives").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return archive(cfg, cc, args)
		})
}

func ModulesCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ModulesConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Modules, "modules").
		WithAliases("m").
		WithSynopsis("modules [-artifacts] [-moduleMapping file] [-workers n] <modules dir>").
		WithDescription("rename modules of a module repository and rewrite their descriptors in place").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return modules(cfg, cc, args)
		})
}

func DescriptorCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DescriptorConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Descriptor, "descriptor").
		WithAliases("d").
		WithSynopsis("descriptor [-diff] [-moduleMapping file] <module.xml>").
		WithDescription("print a module descriptor as it would be rewritten").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return describe(cfg, cc, args)
		})
}

func MappingsCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &MappingsConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Mappings, "mappings").
		WithSynopsis("mappings [-modules] [-dot]").
		WithDescription("print the effective mapping rules in priority order").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return mappings(cfg, cc, args)
		})
}

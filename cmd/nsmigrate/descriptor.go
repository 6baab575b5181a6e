package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	nscore "github.com/meigma/nsmigrate/core"
	"github.com/meigma/nsmigrate/internal/descriptor"
)

func describe(cfg *DescriptorConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Descriptor.Parse(cc, args)
	if err != nil {
		return err
	}
	path, err := oneArg(args, "module descriptor")
	if err != nil {
		return err
	}
	mapping, err := cfg.moduleMapping(cfg.ModuleMapping)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	res, err := rewriteDescriptor(data, mapping)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if !cfg.Diff {
		_, err := cc.Out.Write(res.Data)
		return err
	}
	var out io.Writer = cc.Out
	_, err = io.WriteString(out, renderDiff(string(data), string(res.Data), isTerminal(out)))
	return err
}

// rewriteDescriptor renames the module and its dependencies by exact lookup
// in the dot form of m. Without its repository path the module name can
// only be matched exactly.
func rewriteDescriptor(data []byte, m nscore.Mapping) (*descriptor.Result, error) {
	names := make(map[string]string, len(m))
	for _, r := range m.Dotted() {
		if _, ok := names[r.From]; !ok {
			names[r.From] = r.To
		}
	}
	lookup := func(name string) (string, bool) {
		v, ok := names[name]
		return v, ok
	}

	res, err := descriptor.Rewrite(data, "", lookup)
	if err != nil {
		return nil, err
	}
	if to, ok := names[res.OriginalName]; ok && res.Supported() {
		return descriptor.Rewrite(data, to, lookup)
	}
	return res, nil
}

// renderDiff shows the character-level changes between two documents.
// Without color, removals are shown as [-text-] and insertions as {+text+}.
func renderDiff(from, to string, colored bool) string {
	dmp := diffpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(from, to, false))

	del := color.New(color.FgRed)
	ins := color.New(color.FgGreen)
	del.EnableColor()
	ins.EnableColor()

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffpatch.DiffDelete:
			if colored {
				b.WriteString(del.Sprint(d.Text))
			} else {
				b.WriteString("[-" + d.Text + "-]")
			}
		case diffpatch.DiffInsert:
			if colored {
				b.WriteString(ins.Sprint(d.Text))
			} else {
				b.WriteString("{+" + d.Text + "+}")
			}
		case diffpatch.DiffEqual:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

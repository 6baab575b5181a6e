package nsmigrate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/errgroup"

	nscore "github.com/meigma/nsmigrate/core"
	"github.com/meigma/nsmigrate/internal/descriptor"
	"github.com/meigma/nsmigrate/internal/fileops"
	"github.com/meigma/nsmigrate/internal/modtree"
	"github.com/meigma/nsmigrate/internal/pathutil"
)

const (
	// WorkDirName is the sibling directory a module repository is rebuilt
	// in before it replaces the original.
	WorkDirName = "transformed-modules"

	// DescriptorName is the file name of a module descriptor.
	DescriptorName = "module.xml"
)

// TransformedModule describes a module whose descriptor was rewritten.
type TransformedModule struct {
	// Name is the module name after rewriting.
	Name string

	// Dependencies maps each rewritten dependency name to its replacement.
	Dependencies map[string]string

	// Digest is the sha256 digest of the rewritten descriptor.
	Digest digest.Digest
}

// moduleRules moves module paths and renames dependency references.
type moduleRules struct {
	rules nscore.Mapping
	names map[string]string
}

func newModuleRules(m nscore.Mapping) *moduleRules {
	names := make(map[string]string, len(m))
	for _, r := range m.Dotted() {
		if _, ok := names[r.From]; !ok {
			names[r.From] = r.To
		}
	}
	return &moduleRules{rules: m, names: names}
}

// move returns the new location of rel and the rule that moved it. A rule
// applies when its source equals rel or is a leading run of whole path
// components of rel. The first such rule wins.
func (m *moduleRules) move(rel string) (string, *nscore.Rule) {
	for i := range m.rules {
		r := &m.rules[i]
		if moved, ok := pathutil.ReplaceDirPrefix(rel, r.From, r.To); ok {
			return moved, r
		}
	}
	return rel, nil
}

func (m *moduleRules) lookup(name string) (string, bool) {
	v, ok := m.names[name]
	return v, ok
}

// moduleJob copies or rewrites one file of the repository.
type moduleJob struct {
	src  string
	dst  string
	rel  string
	rule *nscore.Rule
}

type modulesRun struct {
	cfg   modulesConfig
	rules *moduleRules

	mu      sync.Mutex
	results map[string]TransformedModule
}

func (r *modulesRun) log() *slog.Logger {
	if r.cfg.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.cfg.logger
}

// TransformModules rewrites the module repository rooted at dir.
//
// Every layer under system/layers, every add-on under system/add-ons and
// the remaining top-level tree are rebuilt in a sibling transformed-modules
// directory: files move according to the module mapping, module descriptors
// get their name and dependencies rewritten, and, with ModulesWithArtifacts,
// archives are rewritten too. On success the rebuilt tree replaces dir. On
// failure the work directory is removed and dir is left untouched.
//
// The result holds, keyed by original module name, every module whose
// descriptor changed.
func TransformModules(ctx context.Context, dir string, opts ...ModulesOption) (result map[string]TransformedModule, err error) {
	cfg := newModulesConfig(opts)

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("modules directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	mapping := cfg.mapping
	if mapping == nil {
		mapping, err = LoadMappingOrDefault(cfg.mappingFile, DefaultModuleMapping)
		if err != nil {
			return nil, err
		}
	}
	if err := mapping.Validate(); err != nil {
		return nil, err
	}

	run := &modulesRun{
		cfg:     cfg,
		rules:   newModuleRules(mapping),
		results: make(map[string]TransformedModule),
	}
	logger := run.log()

	dir = filepath.Clean(dir)
	work := filepath.Join(filepath.Dir(dir), WorkDirName)
	if _, statErr := os.Lstat(work); statErr == nil {
		logger.Debug("removing stale work directory", "path", work)
		if err := fileops.RemoveAll(work); err != nil {
			return nil, err
		}
	}
	defer func() {
		if err == nil {
			return
		}
		if rmErr := fileops.RemoveAll(work); rmErr != nil {
			logger.Warn("cleanup failed", "path", work, "error", rmErr)
		}
	}()

	roots, err := modtree.Collect(ctx, dir, modtree.WithLogger(cfg.logger))
	if err != nil {
		return nil, err
	}

	jobs, err := run.plan(dir, work, roots)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)
	for _, job := range jobs {
		g.Go(func() error {
			return run.process(gctx, job)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("remove original modules: %w", err)
	}
	if err := os.Rename(work, dir); err != nil {
		return nil, fmt.Errorf("replace modules: %w", err)
	}

	logger.Debug("module repository transformed", "path", dir, "files", len(jobs), "modules", len(run.results))
	return run.results, nil
}

// plan maps every collected file to its destination and creates the
// directory skeleton of the work tree, including empty directories.
func (r *modulesRun) plan(dir, work string, roots []modtree.Root) ([]moduleJob, error) {
	var jobs []moduleJob
	targets := make(map[string]string)
	for i := range roots {
		root := &roots[i]
		if err := os.MkdirAll(filepath.Join(work, filepath.FromSlash(root.Dir)), fileops.DirPerm); err != nil {
			return nil, err
		}
		for _, rel := range root.EmptyDirs {
			moved, _ := r.rules.move(rel)
			if err := os.MkdirAll(filepath.Join(work, filepath.FromSlash(root.Path(moved))), fileops.DirPerm); err != nil {
				return nil, err
			}
		}
		for _, rel := range root.Files {
			moved, rule := r.rules.move(rel)
			target := root.Path(moved)
			if prev, dup := targets[target]; dup {
				return nil, fmt.Errorf("%w: %s (from %s and %s)", ErrDuplicateEntry, target, prev, root.Path(rel))
			}
			targets[target] = root.Path(rel)
			jobs = append(jobs, moduleJob{
				src:  filepath.Join(dir, filepath.FromSlash(root.Path(rel))),
				dst:  filepath.Join(work, filepath.FromSlash(target)),
				rel:  rel,
				rule: rule,
			})
		}
	}
	return jobs, nil
}

func (r *modulesRun) process(ctx context.Context, job moduleJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch {
	case path.Base(job.rel) == DescriptorName:
		return r.descriptor(job)
	case r.cfg.artifacts != nil && IsArchive(job.rel):
		stats, err := TransformArchiveFile(ctx, r.cfg.artifacts, job.src, job.dst,
			ArchiveWithLogger(r.cfg.logger))
		if err != nil {
			return err
		}
		if stats.Changed() {
			r.log().Debug("transformed artifact", "path", job.src, "patched", stats.Patched, "renamed", stats.Renamed)
		}
		return nil
	default:
		return fileops.CopyFile(ctx, job.src, job.dst)
	}
}

func (r *modulesRun) descriptor(job moduleJob) error {
	data, err := os.ReadFile(job.src)
	if err != nil {
		return err
	}
	info, err := os.Stat(job.src)
	if err != nil {
		return err
	}

	var name string
	if job.rule != nil {
		name = strings.ReplaceAll(job.rule.To, "/", ".")
	}
	res, err := descriptor.Rewrite(data, name, r.rules.lookup)
	if err != nil {
		return fmt.Errorf("%s: %w", job.src, err)
	}
	if !res.Supported() {
		r.log().Debug("copied unsupported descriptor", "path", job.src, "root", res.Root)
	}
	if err := fileops.WriteFileAtomic(job.dst, res.Data, info.Mode().Perm()); err != nil {
		return err
	}
	if !res.Changed {
		return nil
	}

	r.log().Debug("rewrote descriptor", "path", job.src, "from", res.OriginalName, "to", res.Name,
		"dependencies", len(res.Dependencies))
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.results[res.OriginalName]; dup {
		// Several slots of one module share a name; keep the first report.
		return nil
	}
	r.results[res.OriginalName] = TransformedModule{
		Name:         res.Name,
		Dependencies: res.Dependencies,
		Digest:       digest.FromBytes(res.Data),
	}
	return nil
}

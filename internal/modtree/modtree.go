// Package modtree enumerates the module roots of an application server
// modules directory.
//
// A modules directory holds three kinds of roots: layers under
// system/layers, add-ons under system/add-ons, and the top-level tree
// itself, which excludes the layer and add-on roots.
package modtree

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/meigma/nsmigrate/internal/pathutil"
)

// Layout directories relative to the modules directory.
const (
	SystemDir = "system"
	LayersDir = SystemDir + "/layers"
	AddOnsDir = SystemDir + "/add-ons"
)

// Kind identifies where a module root lives.
type Kind uint8

const (
	KindLayer Kind = iota
	KindAddOn
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindLayer:
		return "layer"
	case KindAddOn:
		return "add-on"
	case KindOther:
		return "other"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Root is one module root and its contents.
type Root struct {
	Kind Kind

	// Name is the layer or add-on name; empty for KindOther.
	Name string

	// Dir is the slash-separated path of the root relative to the modules
	// directory, "." for the top-level tree.
	Dir string

	// Files lists regular files and links to them as slash paths relative
	// to Dir, in lexical order.
	Files []string

	// EmptyDirs lists directories with no entries at all, relative to Dir.
	EmptyDirs []string
}

// Path joins a path relative to the root with the root directory.
func (r *Root) Path(rel string) string {
	return path.Join(r.Dir, rel)
}

// ErrUnsupportedFile is returned for entries that are neither directories,
// regular files nor links to one of those, such as sockets and devices.
var ErrUnsupportedFile = errors.New("modtree: unsupported file type")

// ErrLinkCycle is returned when a directory link resolves to a directory
// that is already being walked through a link.
var ErrLinkCycle = errors.New("modtree: symbolic link cycle")

// Option configures Collect.
type Option func(*collector)

// WithLogger sets the logger for followed links and collected roots.
func WithLogger(logger *slog.Logger) Option {
	return func(c *collector) {
		c.logger = logger
	}
}

type collector struct {
	dir    string
	fsys   fs.FS
	logger *slog.Logger
}

func (c *collector) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// Collect returns every module root below dir: layers first, then add-ons,
// then the top-level tree. The top-level tree holds everything that is not
// inside a layer or add-on root.
//
// Symbolic links are followed. A link to a file is listed like the file
// itself and may point anywhere; a link to a directory is walked and must
// stay inside dir. Any other kind of entry fails with ErrUnsupportedFile.
func Collect(ctx context.Context, dir string, opts ...Option) ([]Root, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open modules directory: %w", err)
	}
	defer root.Close()

	c := &collector{dir: dir, fsys: root.FS()}
	for _, opt := range opts {
		opt(c)
	}

	var roots []Root
	for _, group := range []struct {
		dir  string
		kind Kind
	}{
		{LayersDir, KindLayer},
		{AddOnsDir, KindAddOn},
	} {
		entries, err := fs.ReadDir(c.fsys, group.dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", group.dir, err)
		}
		for _, e := range entries {
			p := path.Join(group.dir, e.Name())
			if !c.isDir(e, p) {
				continue
			}
			r, err := c.walk(ctx, group.kind, e.Name(), p)
			if err != nil {
				return nil, err
			}
			roots = append(roots, r)
		}
	}

	other, err := c.walk(ctx, KindOther, "", ".")
	if err != nil {
		return nil, err
	}
	return append(roots, other), nil
}

// isDir reports whether e is a directory or a link to one.
func (c *collector) isDir(e fs.DirEntry, p string) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := fs.Stat(c.fsys, p)
	return err == nil && info.IsDir()
}

// rootWalk accumulates one module root.
type rootWalk struct {
	c        *collector
	ctx      context.Context
	root     Root
	children map[string]int
	dirs     []string

	// linked holds the resolved paths of directory links being walked.
	linked map[string]bool
}

func (c *collector) walk(ctx context.Context, kind Kind, name, dir string) (Root, error) {
	w := &rootWalk{
		c:        c,
		ctx:      ctx,
		root:     Root{Kind: kind, Name: name, Dir: dir},
		children: make(map[string]int),
		linked:   make(map[string]bool),
	}
	if err := w.tree(dir); err != nil {
		return Root{}, fmt.Errorf("walk %s: %w", dir, err)
	}

	r := w.root
	for _, d := range w.dirs {
		if w.children[d] == 0 {
			r.EmptyDirs = append(r.EmptyDirs, pathutil.Rel(dir, d))
		}
	}
	c.log().Debug("collected module root", "kind", kind.String(), "dir", dir,
		"files", len(r.Files), "empty_dirs", len(r.EmptyDirs))
	return r, nil
}

// tree walks top, which is the root itself or a directory link below it.
func (w *rootWalk) tree(top string) error {
	return fs.WalkDir(w.c.fsys, top, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := w.ctx.Err(); err != nil {
			return err
		}
		if p == top {
			return nil
		}
		w.children[path.Dir(p)]++

		switch mode := d.Type(); {
		case d.IsDir():
			if w.skipRoot(p) {
				return fs.SkipDir
			}
			w.dirs = append(w.dirs, p)
		case mode.IsRegular():
			w.file(p)
		case mode&fs.ModeSymlink != 0:
			return w.link(p)
		default:
			return fmt.Errorf("%w: %s (%s)", ErrUnsupportedFile, p, mode.String())
		}
		return nil
	})
}

// skipRoot reports whether p belongs to a layer or add-on root and must be
// left out of the top-level tree.
func (w *rootWalk) skipRoot(p string) bool {
	return w.root.Kind == KindOther && isRootDir(p)
}

func (w *rootWalk) file(p string) {
	w.root.Files = append(w.root.Files, pathutil.Rel(w.root.Dir, p))
}

// link resolves a symbolic link and lists what it points to.
func (w *rootWalk) link(p string) error {
	osPath := filepath.Join(w.c.dir, filepath.FromSlash(p))
	info, err := os.Stat(osPath)
	if err != nil {
		return fmt.Errorf("resolve link %s: %w", p, err)
	}

	switch {
	case info.Mode().IsRegular():
		w.c.log().Debug("following file link", "path", p)
		w.file(p)
		return nil
	case !info.IsDir():
		return fmt.Errorf("%w: %s links to %s", ErrUnsupportedFile, p, info.Mode().Type().String())
	case w.skipRoot(p):
		return nil
	}

	target, err := filepath.EvalSymlinks(osPath)
	if err != nil {
		return fmt.Errorf("resolve link %s: %w", p, err)
	}
	if w.linked[target] {
		return fmt.Errorf("%w: %s", ErrLinkCycle, p)
	}
	w.linked[target] = true
	defer delete(w.linked, target)

	w.c.log().Debug("following directory link", "path", p, "target", target)
	w.dirs = append(w.dirs, p)
	return w.tree(p)
}

// isRootDir reports whether p is a layer or add-on root.
func isRootDir(p string) bool {
	parent := path.Dir(p)
	return parent == LayersDir || parent == AddOnsDir
}

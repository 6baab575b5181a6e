package nsmigrate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/errgroup"

	nscore "github.com/meigma/nsmigrate/core"
	"github.com/meigma/nsmigrate/internal/fileops"
)

// archiveSuffixes are the entry names rewritten as nested archives.
var archiveSuffixes = []string{".jar", ".war", ".ear", ".rar"}

// IsArchive reports whether name has a zip-based Java archive suffix.
func IsArchive(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range archiveSuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// ArchiveStats summarizes a rewritten archive.
type ArchiveStats struct {
	// Entries is the number of entries in the archive.
	Entries int

	// Patched counts entries whose content changed, including nested
	// archives with at least one changed entry.
	Patched int

	// Renamed counts entries whose name changed.
	Renamed int

	// Digest is the sha256 digest of the written archive.
	Digest digest.Digest
}

// Changed reports whether any entry was patched or renamed.
func (s ArchiveStats) Changed() bool {
	return s.Patched > 0 || s.Renamed > 0
}

type archiver struct {
	t   *nscore.Transformer
	cfg archiveConfig
}

func (a *archiver) log() *slog.Logger {
	if a.cfg.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.cfg.logger
}

// TransformArchive rewrites every entry of the zip archive read from r and
// writes the result to w.
//
// Entries are transformed concurrently and written in their original order
// with their original metadata. Nested archives are rewritten recursively in
// memory. The first failing entry aborts the whole archive.
func TransformArchive(ctx context.Context, t *nscore.Transformer, r io.ReaderAt, size int64, w io.Writer, opts ...ArchiveOption) (ArchiveStats, error) {
	a := &archiver{t: t, cfg: newArchiveConfig(opts)}
	stats, err := a.rewrite(ctx, r, size, w)
	if err != nil {
		return ArchiveStats{}, err
	}
	a.log().Debug("archive rewritten", "entries", stats.Entries, "patched", stats.Patched,
		"renamed", stats.Renamed, "digest", stats.Digest.String())
	return stats, nil
}

// TransformArchiveFile rewrites the archive at src into dst.
//
// dst is replaced atomically and keeps the permission bits of src; src and
// dst may name the same file. On error dst is left untouched.
func TransformArchiveFile(ctx context.Context, t *nscore.Transformer, src, dst string, opts ...ArchiveOption) (ArchiveStats, error) {
	in, err := os.Open(src)
	if err != nil {
		return ArchiveStats{}, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return ArchiveStats{}, err
	}

	out, err := fileops.CreateAtomic(dst, info.Mode().Perm())
	if err != nil {
		return ArchiveStats{}, fmt.Errorf("create %s: %w", dst, err)
	}
	defer out.Discard()

	stats, err := TransformArchive(ctx, t, in, info.Size(), out, opts...)
	if err != nil {
		return ArchiveStats{}, fmt.Errorf("%s: %w", src, err)
	}
	if err := out.Commit(); err != nil {
		return ArchiveStats{}, fmt.Errorf("write %s: %w", dst, err)
	}
	return stats, nil
}

// entryResult is the outcome of transforming one archive entry.
type entryResult struct {
	name    string
	data    []byte
	patched bool
}

func (a *archiver) rewrite(ctx context.Context, r io.ReaderAt, size int64, w io.Writer) (ArchiveStats, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return ArchiveStats{}, fmt.Errorf("open archive: %w", err)
	}

	results := make([]entryResult, len(zr.File))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.workers)
	for i, f := range zr.File {
		g.Go(func() error {
			res, err := a.entry(gctx, f)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ArchiveStats{}, err
	}

	digester := digest.Canonical.Digester()
	zw := zip.NewWriter(io.MultiWriter(w, digester.Hash()))
	if err := zw.SetComment(zr.Comment); err != nil {
		return ArchiveStats{}, fmt.Errorf("set archive comment: %w", err)
	}

	stats := ArchiveStats{Entries: len(zr.File)}
	seen := make(map[string]struct{}, len(zr.File))
	for i, f := range zr.File {
		res := results[i]
		if _, dup := seen[res.name]; dup {
			return ArchiveStats{}, fmt.Errorf("%w: %s (from %s)", ErrDuplicateEntry, res.name, f.Name)
		}
		seen[res.name] = struct{}{}

		if res.patched {
			stats.Patched++
		}
		if res.name != f.Name {
			stats.Renamed++
			a.log().Debug("renamed entry", "from", f.Name, "to", res.name)
		}

		hdr := &zip.FileHeader{
			Name:           res.name,
			Comment:        f.Comment,
			Method:         f.Method,
			Modified:       f.Modified,
			ExternalAttrs:  f.ExternalAttrs,
			CreatorVersion: f.CreatorVersion,
		}
		ew, err := zw.CreateHeader(hdr)
		if err != nil {
			return ArchiveStats{}, fmt.Errorf("create entry %s: %w", res.name, err)
		}
		if _, err := ew.Write(res.data); err != nil {
			return ArchiveStats{}, fmt.Errorf("write entry %s: %w", res.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return ArchiveStats{}, fmt.Errorf("finish archive: %w", err)
	}

	stats.Digest = digester.Digest()
	return stats, nil
}

func (a *archiver) entry(ctx context.Context, f *zip.File) (entryResult, error) {
	if err := ctx.Err(); err != nil {
		return entryResult{}, err
	}
	if strings.HasSuffix(f.Name, "/") {
		return entryResult{name: a.t.Rename(f.Name, nscore.FormPath)}, nil
	}

	data, err := readEntry(f)
	if err != nil {
		return entryResult{}, fmt.Errorf("read %s: %w", f.Name, err)
	}

	if IsArchive(f.Name) {
		return a.nested(ctx, f.Name, data)
	}

	out, ok, err := a.t.Transform(nscore.Resource{Name: f.Name, Data: data})
	if err != nil {
		return entryResult{}, err
	}
	if !ok {
		return entryResult{name: f.Name, data: data}, nil
	}
	return entryResult{
		name:    out.Name,
		data:    out.Data,
		patched: !bytes.Equal(out.Data, data),
	}, nil
}

// nested rewrites an archive stored inside another archive. Unchanged
// nested archives keep their original bytes.
func (a *archiver) nested(ctx context.Context, name string, data []byte) (entryResult, error) {
	var buf bytes.Buffer
	stats, err := a.rewrite(ctx, bytes.NewReader(data), int64(len(data)), &buf)
	if err != nil {
		return entryResult{}, fmt.Errorf("nested archive %s: %w", name, err)
	}
	res := entryResult{name: a.t.Rename(name, nscore.FormPath), data: data}
	if stats.Changed() {
		res.data = buf.Bytes()
		res.patched = true
		a.log().Debug("rewrote nested archive", "name", name, "patched", stats.Patched, "renamed", stats.Renamed)
	}
	return res, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

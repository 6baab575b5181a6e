// Package fileops provides the file system primitives used when rewriting
// archives and module trees: atomic replacement, cancellable copies, and
// best-effort cleanup.
package fileops

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	// DirPerm is the permission used for directories created on demand.
	DirPerm = 0o755

	// copyBufferSize is the buffer size used by CopyFile.
	copyBufferSize = 64 << 10

	tempPattern = ".nsmigrate-*"
)

// AtomicFile is a temporary file that replaces its target on Commit.
//
// Writes go to a sibling temp file; the target is only touched by the final
// rename, so readers never observe a partially written file.
type AtomicFile struct {
	tmp    *os.File
	target string
	perm   fs.FileMode
	done   bool
}

// CreateAtomic starts an atomic write of target. Parent directories are
// created as needed.
func CreateAtomic(target string, perm fs.FileMode) (*AtomicFile, error) {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return nil, err
	}
	return &AtomicFile{tmp: tmp, target: target, perm: perm}, nil
}

// Write implements io.Writer.
func (f *AtomicFile) Write(p []byte) (int, error) {
	return f.tmp.Write(p)
}

// Commit closes the temp file and renames it over the target.
func (f *AtomicFile) Commit() error {
	if f.done {
		return nil
	}
	f.done = true
	tmpPath := f.tmp.Name()
	if err := f.tmp.Chmod(f.perm); err != nil {
		f.tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, f.target); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Discard removes the temp file. It is a no-op after Commit, so it is safe
// to defer unconditionally.
func (f *AtomicFile) Discard() {
	if f.done {
		return
	}
	f.done = true
	f.tmp.Close()
	os.Remove(f.tmp.Name())
}

// WriteFileAtomic writes data to a temp file then renames it to target,
// ensuring atomic replacement of the target file.
func WriteFileAtomic(target string, data []byte, perm fs.FileMode) error {
	f, err := CreateAtomic(target, perm)
	if err != nil {
		return err
	}
	defer f.Discard()

	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Commit()
}

// CopyFile copies src to dst, preserving the permission bits of src.
// The copy is atomic and stops early if ctx is cancelled.
func CopyFile(ctx context.Context, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := CreateAtomic(dst, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Discard()

	if _, err := CopyWithContext(ctx, out, in, make([]byte, copyBufferSize)); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Commit()
}

// CopyWithContext copies src to dst through buf like io.CopyBuffer and
// stops with the context's error once ctx is done. It returns the number of
// bytes written.
func CopyWithContext(ctx context.Context, dst io.Writer, src io.Reader, buf []byte) (int64, error) {
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, readErr := src.Read(buf)
		if n > 0 {
			m, err := dst.Write(buf[:n])
			written += int64(m)
			switch {
			case err != nil:
				return written, err
			case m != n:
				return written, io.ErrShortWrite
			}
		}
		if errors.Is(readErr, io.EOF) {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}

// RemoveAll removes path and everything below it. Failures are returned
// but callers on cleanup paths are expected to log and continue.
func RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

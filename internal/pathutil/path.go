// Package pathutil provides path manipulation for slash-separated module
// repository paths.
package pathutil

import "strings"

// DirPrefix converts a path to its directory prefix form.
// For ".", returns "" (empty prefix matches all).
// For other paths, appends "/" to match children.
func DirPrefix(name string) string {
	if name == "." || name == "" {
		return ""
	}
	return name + "/"
}

// HasDirPrefix reports whether dir is p itself or a leading run of whole
// components of p. "a/b" is a prefix of "a/b/c" but not of "a/bc".
func HasDirPrefix(p, dir string) bool {
	if dir == "." || dir == "" {
		return true
	}
	return p == dir || strings.HasPrefix(p, dir+"/")
}

// Rel returns p relative to dir. p must satisfy HasDirPrefix(p, dir).
// If p equals dir, Rel returns ".".
func Rel(dir, p string) string {
	if p == dir {
		return "."
	}
	return strings.TrimPrefix(p, DirPrefix(dir))
}

// ReplaceDirPrefix replaces the leading components dir of p with to.
// It reports false and returns p unchanged when dir is not a component
// prefix of p.
func ReplaceDirPrefix(p, dir, to string) (string, bool) {
	if dir == "" || !HasDirPrefix(p, dir) {
		return p, false
	}
	return to + p[len(dir):], true
}

package core

import (
	"errors"
	"path"
	"path/filepath"
	"strings"
)

var errAbsolutePath = errors.New("absolute path where a relative path is expected")

// NormalizePath cleans a root-relative path: forward slashes, no leading "./".
func NormalizePath(p string) string {
	clean := filepath.ToSlash(filepath.Clean(p))
	return strings.TrimPrefix(clean, "./")
}

// normalizeRef collapses "." and ".." components of a slash-separated relative
// path without touching the filesystem. A leading ".." with nothing left to
// cancel is kept, so the result may still start with one or more "..".
func normalizeRef(p string) (string, error) {
	if p == "" {
		return ".", nil
	}
	if strings.HasPrefix(p, "/") || filepath.IsAbs(p) {
		return "", errAbsolutePath
	}
	return path.Clean(p), nil
}

// joinRef resolves ref against the directory containing file.
func joinRef(file, ref string) (string, error) {
	return normalizeRef(path.Join(path.Dir(file), ref))
}

// escapesRoot reports whether a normalized path climbs above the project root.
func escapesRoot(p string) bool {
	return p == ".." || strings.HasPrefix(p, "../")
}

// relativeRef returns the reference to write in fromFile so that it points at
// toFile. The base is fromFile's directory. Separators are always "/", and a
// result that does not climb gets a "./" prefix so it stays a relative-path
// literal.
func relativeRef(fromFile, toFile string) (string, error) {
	from, err := normalizeRef(path.Dir(fromFile))
	if err != nil {
		return "", err
	}
	to, err := normalizeRef(toFile)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(filepath.FromSlash(from), filepath.FromSlash(to))
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return "./", nil
	}
	if rel != ".." && !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel, nil
}

// isRelativeRef is the lexical test for a path reference.
func isRelativeRef(text string) bool {
	return strings.HasPrefix(text, "./") || strings.HasPrefix(text, "../")
}

// splitRefSuffix separates a trailing "#fragment" or "?query" from the path
// part of a reference. The suffix keeps its leading marker.
func splitRefSuffix(ref string) (string, string) {
	if i := strings.IndexAny(ref, "#?"); i >= 0 {
		return ref[:i], ref[i:]
	}
	return ref, ""
}

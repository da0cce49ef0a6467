package core

import (
	"os"
	"path/filepath"
	"strings"
)

// writeFilePreservePerm writes data to path with the given permission bits.
// os.WriteFile applies umask on file creation, so os.Chmod is called to
// ensure the exact permission bits are set.
func writeFilePreservePerm(path string, data []byte, perm os.FileMode) error {
	if err := os.WriteFile(path, data, perm); err != nil {
		return err
	}
	return os.Chmod(path, perm)
}

// readCandidate reads a root-relative file and returns its content and
// permission bits.
func readCandidate(root, file string) ([]byte, os.FileMode, error) {
	full := filepath.Join(root, filepath.FromSlash(file))
	info, err := os.Stat(full)
	if err != nil {
		return nil, 0, err
	}
	if !info.Mode().IsRegular() {
		return nil, 0, ErrNotAFile
	}
	content, err := os.ReadFile(full)
	if err != nil {
		return nil, 0, err
	}
	return content, info.Mode().Perm(), nil
}

// moveFile renames from to to inside root, creating missing parent
// directories of the destination first.
func moveFile(root, from, to string) error {
	toFull := filepath.Join(root, filepath.FromSlash(to))
	if err := os.MkdirAll(filepath.Dir(toFull), 0o755); err != nil {
		return err
	}
	return os.Rename(filepath.Join(root, filepath.FromSlash(from)), toFull)
}

// fileExists checks if a file exists at the given path.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// pruneEmptyDirs removes the directories left empty after file moved away.
// It walks from the file's parent directory upward and stops at root or at
// the first directory that cannot be removed.
func pruneEmptyDirs(root, file string) []string {
	var removed []string
	dir := filepath.Dir(filepath.Join(root, filepath.FromSlash(file)))
	for {
		rel, err := filepath.Rel(root, dir)
		if err != nil {
			break
		}
		rel = filepath.ToSlash(rel)
		if rel == "." || rel == "" || strings.HasPrefix(rel, "..") {
			break // reached root
		}
		if err := os.Remove(dir); err != nil {
			break // non-empty or permission error
		}
		removed = append(removed, rel)
		dir = filepath.Dir(dir)
	}
	return removed
}

package core

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	git "github.com/libgit2/git2go/v34"
)

// dataDirName is where relmv keeps its journal inside the project root.
const dataDirName = ".relmv"

// Scanner enumerates candidate files below a project root.
type Scanner struct {
	root   string
	cfg    ScanConfig
	logger *slog.Logger
}

// NewScanner returns a scanner for root. A nil logger means slog.Default().
func NewScanner(root string, cfg ScanConfig, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{root: root, cfg: cfg, logger: logger}
}

// Scan returns root-relative slash paths of candidate files in lexical order.
func (s *Scanner) Scan(ctx context.Context) ([]string, error) {
	ignored := s.gitignoreMatcher()
	if ignored.repo != nil {
		defer ignored.repo.Free()
	}

	maxSize, err := s.cfg.maxBytes()
	if err != nil {
		return nil, err
	}
	exts := make([]string, len(s.cfg.Extensions))
	for i, e := range s.cfg.Extensions {
		exts[i] = "." + strings.ToLower(strings.TrimPrefix(e, "."))
	}

	var files []string
	err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.root {
				return err
			}
			s.logger.Warn("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == s.root {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if d.Name() == dataDirName || slices.Contains(s.cfg.IgnoreDirs, d.Name()) {
				return filepath.SkipDir
			}
			if ignored.match(path, true) {
				s.logger.Debug("skipping gitignored directory", "path", rel)
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if len(exts) > 0 && !slices.Contains(exts, strings.ToLower(filepath.Ext(rel))) {
			return nil
		}
		if matchesAny(s.cfg.Exclude, rel) {
			return nil
		}
		if ignored.match(path, false) {
			s.logger.Debug("skipping gitignored file", "path", rel)
			return nil
		}
		if maxSize > 0 {
			info, err := d.Info()
			if err != nil {
				s.logger.Warn("skipping unreadable file", "path", rel, "error", err)
				return nil
			}
			if info.Size() > maxSize {
				s.logger.Debug("skipping large file", "path", rel,
					"size", humanize.IBytes(uint64(info.Size())))
				return nil
			}
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// gitignore answers ignore queries against the enclosing git repository.
// A zero value ignores nothing.
type gitignore struct {
	repo    *git.Repository
	workdir string
}

func (s *Scanner) gitignoreMatcher() gitignore {
	if !s.cfg.Gitignore {
		return gitignore{}
	}
	abs, err := filepath.Abs(s.root)
	if err != nil {
		return gitignore{}
	}
	gitDir, err := git.Discover(abs, false, nil)
	if err != nil {
		s.logger.Debug("not a git repository, gitignore disabled", "root", s.root)
		return gitignore{}
	}
	repo, err := git.OpenRepository(gitDir)
	if err != nil {
		s.logger.Warn("cannot open git repository, gitignore disabled", "path", gitDir, "error", err)
		return gitignore{}
	}
	workdir := repo.Workdir()
	if workdir == "" {
		repo.Free()
		return gitignore{}
	}
	if resolved, err := filepath.EvalSymlinks(workdir); err == nil {
		workdir = resolved
	}
	return gitignore{repo: repo, workdir: workdir}
}

func (g gitignore) match(path string, isDir bool) bool {
	if g.repo == nil {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	rel, err := filepath.Rel(g.workdir, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)
	if isDir {
		rel += "/"
	}
	ignored, err := g.repo.IsPathIgnored(rel)
	return err == nil && ignored
}

// isDir reports whether path is an existing directory.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

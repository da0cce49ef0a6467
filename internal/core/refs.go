package core

import (
	"context"
	"path/filepath"
)

// FileRefs lists the relative-path references found in one file.
type FileRefs struct {
	Path       string
	Language   string
	Errors     int // error-recovery nodes reported by the parser
	References []FileRef
}

// FileRef is one reference together with its resolved target.
type FileRef struct {
	ResolvedReference
	Exists bool // the target exists on disk
}

// FileReferences parses a root-relative file and resolves each of its
// relative-path references. References that leave the root have an empty
// Target.
func FileReferences(ctx context.Context, root, file string, cfg *Config) (*FileRefs, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	file = NormalizePath(file)
	content, _, err := readCandidate(root, file)
	if err != nil {
		return nil, &FileError{Path: file, Op: "read", Err: err}
	}
	out := &FileRefs{Path: file}
	if isBinary(content) {
		return out, nil
	}
	out.Language = detectLanguage(file, content, cfg.Rewrite.languageOverrides())
	tree, err := parserFor(out.Language, cfg.Rewrite).Parse(ctx, content)
	if err != nil {
		return nil, &FileError{Path: file, Op: "parse", Err: err}
	}
	out.Errors = tree.Errors
	for _, ref := range ResolveReferences(file, tree) {
		fr := FileRef{ResolvedReference: ref}
		if ref.Target != "" {
			fr.Exists = fileExists(filepath.Join(root, filepath.FromSlash(ref.Target)))
		}
		out.References = append(out.References, fr)
	}
	return out, nil
}

package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// MoveOptions controls the move operation.
type MoveOptions struct {
	From string // root-relative old path
	To   string // root-relative new path

	// Apply rewrites files and moves the target. Without it the run only
	// reports what it would do and touches nothing.
	Apply bool
	// Outgoing also rewrites the moved file's own references to other files
	// so they stay valid from the new location.
	Outgoing bool
	// Files lists the candidate files (root-relative). Nil means scan the root.
	Files []string
	// PruneEmptyDirs removes the source directories left empty by the move.
	PruneEmptyDirs bool

	Config *Config      // nil means DefaultConfig()
	Logger *slog.Logger // nil means slog.Default()
	// Progress, if set, is called once per file that has edits or failed,
	// right after the file has been handled.
	Progress func(FileResult)
}

// FileResult reports what happened to one candidate file.
type FileResult struct {
	Path     string
	Language string
	Edits    []Edit
	Original []byte // content before rewriting; set when Edits is non-empty
	Updated  []byte // content after rewriting; set when Edits is non-empty
	Written  bool
	Err      error
}

// MoveResult reports the outcome of the move operation.
type MoveResult struct {
	From         string
	To           string
	Applied      bool
	Scanned      int
	Files        []FileResult
	Moved        bool
	AlreadyMoved bool
}

// EditCount returns the number of edits across all files.
func (r *MoveResult) EditCount() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Edits)
	}
	return n
}

// Move relocates From to To inside root and rewrites every relative-path
// reference to From in the candidate files.
//
// Files are handled one at a time: read, parse, resolve, plan, then (with
// Apply) written back. A file that cannot be read or parsed is reported on
// its FileResult and the run continues. The rename happens once, after all
// files. If the file has already been moved on disk (From absent, To
// present), only the references are rewritten.
//
// With Apply, a *RewriteError means some files could not be written and a
// *RenameError means the references were rewritten but the file was not
// moved.
func Move(ctx context.Context, root string, opts MoveOptions) (*MoveResult, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Phase 0: validation.
	if opts.From == "" || opts.To == "" {
		return nil, errors.New("both source and destination are required")
	}
	from, err := movePath(opts.From)
	if err != nil {
		return nil, err
	}
	to, err := movePath(opts.To)
	if err != nil {
		return nil, err
	}
	if from == to {
		return nil, fmt.Errorf("%w: %s", ErrSamePath, from)
	}

	fromFull := filepath.Join(root, filepath.FromSlash(from))
	fromOnDisk := fileExists(fromFull)
	toOnDisk := fileExists(filepath.Join(root, filepath.FromSlash(to)))

	var alreadyMoved bool
	switch {
	case fromOnDisk && !toOnDisk:
		if isDir(fromFull) {
			return nil, fmt.Errorf("%w: %s", ErrNotAFile, from)
		}
	case !fromOnDisk && toOnDisk:
		alreadyMoved = true
	case fromOnDisk && toOnDisk:
		return nil, fmt.Errorf("%w: %s", ErrDestinationExists, to)
	default:
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, from)
	}

	// Phase 1: candidates.
	files := opts.Files
	if files == nil {
		files, err = NewScanner(root, cfg.Scan, logger).Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
	} else {
		normalized := make([]string, len(files))
		for i, f := range files {
			normalized[i] = NormalizePath(f)
		}
		files = normalized
	}

	r := &runner{
		root:         root,
		apply:        opts.Apply,
		alreadyMoved: alreadyMoved,
		plan:         movePlan{from: from, to: to, outgoing: opts.Outgoing || cfg.Rewrite.Outgoing},
		overrides:    cfg.Rewrite.languageOverrides(),
		rewrite:      cfg.Rewrite,
		logger:       logger,
	}
	if opts.Apply && cfg.Journal.Enabled {
		r.openJournal()
		defer r.closeJournal()
	}

	result := &MoveResult{From: from, To: to, Applied: opts.Apply, AlreadyMoved: alreadyMoved}
	var writeFailures []*FileError

	// Phase 2: per-file rewrite.
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			r.finishJournal(RunInterrupted)
			return result, err
		}
		result.Scanned++
		fr := r.processFile(ctx, file)
		if len(fr.Edits) == 0 && fr.Err == nil {
			continue
		}
		var fe *FileError
		if errors.As(fr.Err, &fe) && fe.Op == "write" {
			writeFailures = append(writeFailures, fe)
		}
		result.Files = append(result.Files, fr)
		if opts.Progress != nil {
			opts.Progress(fr)
		}
	}

	if !opts.Apply {
		return result, nil
	}

	var rewriteErr error
	if len(writeFailures) > 0 {
		rewriteErr = &RewriteError{Failed: writeFailures}
	}

	// Phase 3: the move itself, exactly once.
	if !alreadyMoved {
		if err := moveFile(root, from, to); err != nil {
			r.finishJournal(RunRenameFailed)
			return result, &RenameError{From: from, To: to, Err: errors.Join(err, rewriteErr)}
		}
		result.Moved = true
		logger.Info("moved file", "from", from, "to", to)
		if opts.PruneEmptyDirs {
			for _, dir := range pruneEmptyDirs(root, from) {
				logger.Debug("removed empty directory", "path", dir)
			}
		}
	}

	switch {
	case rewriteErr != nil:
		r.finishJournal(RunRewriteFailed)
		return result, rewriteErr
	case alreadyMoved:
		r.finishJournal(RunAlreadyMoved)
	default:
		r.finishJournal(RunDone)
	}
	return result, nil
}

// movePath normalizes a user-supplied move path and rejects paths that are
// absolute or leave the project root.
func movePath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, p)
	}
	n := NormalizePath(p)
	if n == "." || escapesRoot(n) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, p)
	}
	return n, nil
}

// runner carries the read-only state of one Move call.
type runner struct {
	root         string
	apply        bool
	alreadyMoved bool
	plan         movePlan
	overrides    map[string]string
	rewrite      RewriteConfig
	logger       *slog.Logger

	journal *Journal
	runID   int64
}

func (r *runner) processFile(ctx context.Context, file string) FileResult {
	fr := FileResult{Path: file}

	content, perm, err := readCandidate(r.root, file)
	if err != nil {
		fr.Err = &FileError{Path: file, Op: "read", Err: err}
		r.logger.Warn("skipping file", "path", file, "error", err)
		return fr
	}
	if isBinary(content) {
		r.logger.Debug("skipping binary file", "path", file)
		return fr
	}

	// After an out-of-band move the moved file sits at the new path but its
	// references were written relative to the old one.
	logical := file
	if r.alreadyMoved && file == r.plan.to {
		logical = r.plan.from
	}

	fr.Language = detectLanguage(file, content, r.overrides)
	tree, err := parserFor(fr.Language, r.rewrite).Parse(ctx, content)
	if err != nil {
		fr.Err = &FileError{Path: file, Op: "parse", Err: err}
		r.logger.Warn("skipping file", "path", file, "error", err)
		return fr
	}
	if tree.Errors > 0 {
		r.logger.Debug("parsed with errors", "path", file, "language", fr.Language, "errors", tree.Errors)
	}

	edits, err := planFileEdits(logical, tree, r.plan)
	if err != nil {
		fr.Err = &FileError{Path: file, Op: "plan", Err: err}
		return fr
	}
	if len(edits) == 0 {
		return fr
	}
	updated, err := applyEdits(content, edits)
	if err != nil {
		fr.Err = &FileError{Path: file, Op: "plan", Err: err}
		return fr
	}
	fr.Edits = edits
	fr.Original = content
	fr.Updated = updated

	if !r.apply {
		return fr
	}
	if err := writeFilePreservePerm(filepath.Join(r.root, filepath.FromSlash(file)), updated, perm); err != nil {
		fr.Err = &FileError{Path: file, Op: "write", Err: err}
		r.logger.Error("rewrite failed", "path", file, "error", err)
		return fr
	}
	fr.Written = true
	r.logger.Debug("rewrote file", "path", file, "edits", len(edits))
	r.recordFile(file, edits)
	return fr
}

func (r *runner) openJournal() {
	j, err := OpenJournal(r.root)
	if err != nil {
		r.logger.Warn("journal unavailable", "error", err)
		return
	}
	id, err := j.BeginRun(r.plan.from, r.plan.to, time.Now())
	if err != nil {
		r.logger.Warn("journal unavailable", "error", err)
		j.Close()
		return
	}
	r.journal, r.runID = j, id
}

func (r *runner) recordFile(file string, edits []Edit) {
	if r.journal == nil {
		return
	}
	if err := r.journal.RecordFile(r.runID, file, edits); err != nil {
		r.logger.Warn("journal write failed", "path", file, "error", err)
	}
}

func (r *runner) finishJournal(status string) {
	if r.journal == nil {
		return
	}
	if err := r.journal.FinishRun(r.runID, status, time.Now()); err != nil {
		r.logger.Warn("journal write failed", "error", err)
	}
}

func (r *runner) closeJournal() {
	if r.journal == nil {
		return
	}
	if err := r.journal.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		r.logger.Warn("journal close failed", "error", err)
	}
}

package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSamePath is returned when source and destination are equal.
	ErrSamePath = errors.New("source and destination are the same")
	// ErrOutsideRoot is returned for move paths that climb above the project root.
	ErrOutsideRoot = errors.New("path escapes the project root")
	// ErrSourceNotFound is returned when neither source nor destination exist.
	ErrSourceNotFound = errors.New("source file not found on disk")
	// ErrDestinationExists is returned when both source and destination exist.
	ErrDestinationExists = errors.New("destination already exists on disk")
	// ErrNotAFile is returned when the source is a directory or other non-regular file.
	ErrNotAFile = errors.New("source is not a regular file")
)

// FileError reports a failure to process one candidate file. Op is one of
// "read", "parse", "plan" or "write".
type FileError struct {
	Path string
	Op   string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// RewriteError is returned when some files could not be written back.
// Files rewritten before or after a failure stay rewritten.
type RewriteError struct {
	Failed []*FileError
}

func (e *RewriteError) Error() string {
	paths := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		paths[i] = f.Path
	}
	return fmt.Sprintf("failed to rewrite %d file(s): %s (other files were rewritten and not rolled back)",
		len(e.Failed), strings.Join(paths, ", "))
}

// Unwrap exposes the individual write failures to errors.Is and errors.As.
func (e *RewriteError) Unwrap() []error {
	out := make([]error, len(e.Failed))
	for i, f := range e.Failed {
		out[i] = f
	}
	return out
}

// RenameError is returned when every reference was rewritten but the file
// itself could not be moved. References now point at To while the file is
// still at From.
type RenameError struct {
	From string
	To   string
	Err  error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("move %s -> %s failed after references were rewritten (they now point at %s): %v",
		e.From, e.To, e.To, e.Err)
}

func (e *RenameError) Unwrap() error { return e.Err }

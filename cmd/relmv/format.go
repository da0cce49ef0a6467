package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"gopkg.in/yaml.v3"

	"github.com/ryotapoi/relmv/internal/core"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// validateFormat checks that format is "text", "json" or "yaml".
func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("invalid format: %q (must be text, json or yaml)", format)
}

// --- Move output ---

type moveReport struct {
	From         string       `json:"from" yaml:"from"`
	To           string       `json:"to" yaml:"to"`
	Applied      bool         `json:"applied" yaml:"applied"`
	Moved        bool         `json:"moved" yaml:"moved"`
	AlreadyMoved bool         `json:"already_moved" yaml:"already_moved"`
	Scanned      int          `json:"scanned" yaml:"scanned"`
	Edits        int          `json:"edits" yaml:"edits"`
	Files        []fileReport `json:"files" yaml:"files"`
}

type fileReport struct {
	Path     string       `json:"path" yaml:"path"`
	Language string       `json:"language,omitempty" yaml:"language,omitempty"`
	Written  bool         `json:"written" yaml:"written"`
	Error    string       `json:"error,omitempty" yaml:"error,omitempty"`
	Edits    []editReport `json:"edits" yaml:"edits"`
}

type editReport struct {
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
	Old   string `json:"old" yaml:"old"`
	New   string `json:"new" yaml:"new"`
}

func buildMoveReport(r *core.MoveResult) moveReport {
	rep := moveReport{
		From:         r.From,
		To:           r.To,
		Applied:      r.Applied,
		Moved:        r.Moved,
		AlreadyMoved: r.AlreadyMoved,
		Scanned:      r.Scanned,
		Edits:        r.EditCount(),
		Files:        make([]fileReport, 0, len(r.Files)),
	}
	for _, f := range r.Files {
		fr := fileReport{
			Path:     f.Path,
			Language: f.Language,
			Written:  f.Written,
			Edits:    make([]editReport, 0, len(f.Edits)),
		}
		if f.Err != nil {
			fr.Error = f.Err.Error()
		}
		for _, e := range f.Edits {
			fr.Edits = append(fr.Edits, editReport{Start: e.Start, End: e.End, Old: e.Old, New: e.New})
		}
		rep.Files = append(rep.Files, fr)
	}
	return rep
}

// movePrinter renders the text report. file is used as the Progress
// callback so lines appear while the run is in progress.
type movePrinter struct {
	w    io.Writer
	diff bool

	path func(a ...any) string
	old  func(a ...any) string
	new  func(a ...any) string
	warn func(a ...any) string
}

func newMovePrinter(w io.Writer, diff, colored bool) *movePrinter {
	p := &movePrinter{w: w, diff: diff, path: fmt.Sprint, old: fmt.Sprint, new: fmt.Sprint, warn: fmt.Sprint}
	if colored {
		p.path = color.New(color.Bold).SprintFunc()
		p.old = color.New(color.FgRed).SprintFunc()
		p.new = color.New(color.FgGreen).SprintFunc()
		p.warn = color.New(color.FgYellow).SprintFunc()
	}
	return p
}

func (p *movePrinter) file(f core.FileResult) {
	fmt.Fprint(p.w, p.path(f.Path))
	if f.Language != "" {
		fmt.Fprintf(p.w, " (%s)", f.Language)
	}
	fmt.Fprintln(p.w)
	if f.Err != nil {
		fmt.Fprintf(p.w, "  %s %v\n", p.warn("error:"), f.Err)
	}
	for _, e := range f.Edits {
		fmt.Fprintf(p.w, "  %d-%d: %s -> %s\n", e.Start, e.End, p.old(e.Old), p.new(e.New))
	}
	if p.diff && f.Updated != nil {
		for _, line := range lineDiff(string(f.Original), string(f.Updated)) {
			paint := p.new
			if strings.HasPrefix(line, "-") {
				paint = p.old
			}
			fmt.Fprintf(p.w, "    %s\n", paint(line))
		}
	}
}

func (p *movePrinter) summary(r *core.MoveResult) {
	edits := r.EditCount()
	var written, failed int
	var bytes uint64
	for _, f := range r.Files {
		if f.Written {
			written++
			bytes += uint64(len(f.Updated))
		}
		if f.Err != nil {
			failed++
		}
	}

	if len(r.Files) > 0 {
		fmt.Fprintln(p.w)
	}
	if edits == 0 {
		fmt.Fprintf(p.w, "No references to %s found (%d files scanned).\n", r.From, r.Scanned)
	} else {
		fmt.Fprintf(p.w, "%d edits in %d files (%d files scanned).\n", edits, len(r.Files)-failedOnly(r), r.Scanned)
	}
	if failed > 0 {
		fmt.Fprintf(p.w, "%s %d files could not be processed.\n", p.warn("warning:"), failed)
	}

	switch {
	case !r.Applied:
		fmt.Fprintf(p.w, "Dry run: nothing written. Re-run with --apply to move %s -> %s.\n", r.From, r.To)
	case r.AlreadyMoved:
		fmt.Fprintf(p.w, "%s was already at %s; rewrote %d files (%s).\n", r.From, r.To, written, humanize.Bytes(bytes))
	case r.Moved:
		fmt.Fprintf(p.w, "Moved %s -> %s; rewrote %d files (%s).\n", r.From, r.To, written, humanize.Bytes(bytes))
	}
}

// failedOnly counts files that were reported only because of an error.
func failedOnly(r *core.MoveResult) int {
	n := 0
	for _, f := range r.Files {
		if len(f.Edits) == 0 && f.Err != nil {
			n++
		}
	}
	return n
}

// lineDiff returns the removed ("-") and added ("+") lines between before
// and after, in order.
func lineDiff(before, after string) []string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []string
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		default:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out = append(out, prefix+strings.TrimSuffix(line, "\n"))
		}
	}
	return out
}

// --- Refs output ---

type refsReport struct {
	Path       string      `json:"path" yaml:"path"`
	Language   string      `json:"language" yaml:"language"`
	Errors     int         `json:"parse_errors" yaml:"parse_errors"`
	References []refReport `json:"references" yaml:"references"`
}

type refReport struct {
	Start  int    `json:"start" yaml:"start"`
	End    int    `json:"end" yaml:"end"`
	Text   string `json:"text" yaml:"text"`
	Kind   string `json:"kind" yaml:"kind"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
	Exists bool   `json:"exists" yaml:"exists"`
}

func buildRefsReport(fr *core.FileRefs) refsReport {
	rep := refsReport{
		Path:       fr.Path,
		Language:   fr.Language,
		Errors:     fr.Errors,
		References: make([]refReport, 0, len(fr.References)),
	}
	for _, r := range fr.References {
		rep.References = append(rep.References, refReport{
			Start:  r.Start,
			End:    r.End,
			Text:   r.Text,
			Kind:   r.Kind,
			Target: r.Target,
			Exists: r.Exists,
		})
	}
	return rep
}

func printRefsText(w io.Writer, fr *core.FileRefs) {
	fmt.Fprintf(w, "%s (%s)\n", fr.Path, fr.Language)
	if len(fr.References) == 0 {
		fmt.Fprintln(w, "  no relative path references")
		return
	}
	for _, r := range fr.References {
		switch {
		case r.Target == "":
			fmt.Fprintf(w, "  %d-%d: %s (outside root)\n", r.Start, r.End, r.Text)
		case !r.Exists:
			fmt.Fprintf(w, "  %d-%d: %s -> %s (missing)\n", r.Start, r.End, r.Text, r.Target)
		default:
			fmt.Fprintf(w, "  %d-%d: %s -> %s\n", r.Start, r.End, r.Text, r.Target)
		}
	}
}

// --- History output ---

type runReport struct {
	ID         int64        `json:"id" yaml:"id"`
	From       string       `json:"from" yaml:"from"`
	To         string       `json:"to" yaml:"to"`
	Status     string       `json:"status" yaml:"status"`
	StartedAt  time.Time    `json:"started_at" yaml:"started_at"`
	FinishedAt *time.Time   `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Files      int          `json:"files" yaml:"files"`
	Edits      int          `json:"edits" yaml:"edits"`
	EditList   []editRecord `json:"edit_list,omitempty" yaml:"edit_list,omitempty"`
}

type editRecord struct {
	File string `json:"file" yaml:"file"`
	editReport `yaml:",inline"`
}

func buildRunReport(r core.RunRecord, edits []core.EditRecord) runReport {
	rep := runReport{
		ID:        r.ID,
		From:      r.From,
		To:        r.To,
		Status:    r.Status,
		StartedAt: r.StartedAt,
		Files:     r.Files,
		Edits:     r.Edits,
	}
	if !r.FinishedAt.IsZero() {
		finished := r.FinishedAt
		rep.FinishedAt = &finished
	}
	for _, e := range edits {
		rep.EditList = append(rep.EditList, editRecord{
			File:       e.File,
			editReport: editReport{Start: e.Start, End: e.End, Old: e.Old, New: e.New},
		})
	}
	return rep
}

func printRunText(w io.Writer, r core.RunRecord, now time.Time) {
	fmt.Fprintf(w, "#%d  %-14s  %s -> %s  (%d files, %d edits, %s)\n",
		r.ID, r.Status, r.From, r.To, r.Files, r.Edits, humanize.RelTime(r.StartedAt, now, "ago", "from now"))
}

func printEditsText(w io.Writer, edits []core.EditRecord) {
	for _, e := range edits {
		fmt.Fprintf(w, "    %s %d-%d: %s -> %s\n", e.File, e.Start, e.End, e.Old, e.New)
	}
}

// encode writes v as JSON or YAML.
func encode(w io.Writer, format string, v any) error {
	if format == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryotapoi/relmv/internal/core"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"json", false},
		{"text", false},
		{"yaml", false},
		{"xml", true},
		{"", true},
	}
	for _, tt := range tests {
		err := validateFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestLineDiff(t *testing.T) {
	before := "a\n./x\nb\n./x\n"
	after := "a\n../y/x\nb\n../y/x\n"
	assert.Equal(t, []string{"-./x", "+../y/x", "-./x", "+../y/x"}, lineDiff(before, after))
	assert.Empty(t, lineDiff("same\n", "same\n"))
}

func sampleResult() *core.MoveResult {
	return &core.MoveResult{
		From:    "docs/guide.md",
		To:      "docs/guides/guide.md",
		Applied: true,
		Moved:   true,
		Scanned: 4,
		Files: []core.FileResult{
			{
				Path:     "docs/index.md",
				Language: "markdown",
				Edits:    []core.Edit{{Start: 8, End: 18, Old: "./guide.md", New: "./guides/guide.md"}},
				Original: []byte("[Guide](./guide.md)\n"),
				Updated:  []byte("[Guide](./guides/guide.md)\n"),
				Written:  true,
			},
			{
				Path: "broken.md",
				Err:  &core.FileError{Path: "broken.md", Op: "read", Err: errors.New("permission denied")},
			},
		},
	}
}

func TestMovePrinter_Text(t *testing.T) {
	var buf bytes.Buffer
	p := newMovePrinter(&buf, false, false)
	r := sampleResult()
	for _, f := range r.Files {
		p.file(f)
	}
	p.summary(r)

	out := buf.String()
	assert.Contains(t, out, "docs/index.md (markdown)\n  8-18: ./guide.md -> ./guides/guide.md\n")
	assert.Contains(t, out, "broken.md\n  error: read broken.md: permission denied\n")
	assert.Contains(t, out, "1 edits in 1 files (4 files scanned).")
	assert.Contains(t, out, "warning: 1 files could not be processed.")
	assert.Contains(t, out, "Moved docs/guide.md -> docs/guides/guide.md; rewrote 1 files (27 B).")
	assert.NotContains(t, out, "\x1b[")
}

func TestMovePrinter_NoMatches(t *testing.T) {
	var buf bytes.Buffer
	newMovePrinter(&buf, false, false).summary(&core.MoveResult{From: "a.nix", To: "b.nix", Scanned: 7})
	assert.Equal(t, "No references to a.nix found (7 files scanned).\n"+
		"Dry run: nothing written. Re-run with --apply to move a.nix -> b.nix.\n", buf.String())
}

func TestBuildMoveReport(t *testing.T) {
	rep := buildMoveReport(sampleResult())
	assert.Equal(t, 1, rep.Edits)
	require.Len(t, rep.Files, 2)
	assert.Equal(t, []editReport{{Start: 8, End: 18, Old: "./guide.md", New: "./guides/guide.md"}}, rep.Files[0].Edits)
	assert.Empty(t, rep.Files[1].Edits)
	assert.NotNil(t, rep.Files[1].Edits)
	assert.Contains(t, rep.Files[1].Error, "permission denied")
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, encode(&buf, formatYAML, buildMoveReport(&core.MoveResult{From: "a", To: "b"})))
	assert.Contains(t, buf.String(), "from: a\n")
	assert.Contains(t, buf.String(), "files: []\n")

	buf.Reset()
	require.NoError(t, encode(&buf, formatJSON, buildMoveReport(&core.MoveResult{From: "a", To: "b"})))
	assert.True(t, strings.HasPrefix(buf.String(), "{\n  \"from\": \"a\""))
}

func TestPrintRefsText(t *testing.T) {
	var buf bytes.Buffer
	printRefsText(&buf, &core.FileRefs{
		Path:     "a/default.nix",
		Language: "nix",
		References: []core.FileRef{
			{ResolvedReference: core.ResolvedReference{Reference: core.Reference{Text: "./b.nix", Start: 1, End: 8}, Target: "a/b.nix"}, Exists: true},
			{ResolvedReference: core.ResolvedReference{Reference: core.Reference{Text: "./c.nix", Start: 9, End: 16}, Target: "a/c.nix"}},
			{ResolvedReference: core.ResolvedReference{Reference: core.Reference{Text: "../../x", Start: 17, End: 24}}},
		},
	})
	assert.Equal(t, "a/default.nix (nix)\n"+
		"  1-8: ./b.nix -> a/b.nix\n"+
		"  9-16: ./c.nix -> a/c.nix (missing)\n"+
		"  17-24: ../../x (outside root)\n", buf.String())
}

func TestPrintRunText(t *testing.T) {
	var buf bytes.Buffer
	now := time.Unix(1700003600, 0)
	printRunText(&buf, core.RunRecord{
		ID: 3, From: "a", To: "b", Status: core.RunDone, StartedAt: now.Add(-time.Hour), Files: 2, Edits: 5,
	}, now)
	assert.Equal(t, "#3  done            a -> b  (2 files, 5 edits, 1 hour ago)\n", buf.String())
}

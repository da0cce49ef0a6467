package core

import (
	"context"
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// markdownParser tokenizes a markdown document. Unless rewriteCode is set,
// fenced code blocks, indented code blocks and inline code spans stay opaque
// so paths shown as code samples are never rewritten.
type markdownParser struct {
	rewriteCode bool
}

type byteRange struct {
	start, end int
}

func (p markdownParser) Parse(_ context.Context, src []byte) (*Tree, error) {
	t := newTree(src, langMarkdown, "document")
	if p.rewriteCode {
		lexLines(t, 0, 0, len(src))
		return t, nil
	}

	doc := goldmark.DefaultParser().Parse(text.NewReader(src))
	code := mergeRanges(markdownCodeRanges(doc, len(src)))

	pos := 0
	for _, r := range code {
		if r.start > pos {
			lexLines(t, 0, pos, r.start)
		}
		t.add(0, "code", r.start, r.end, false)
		pos = r.end
	}
	if pos < len(src) {
		lexLines(t, 0, pos, len(src))
	}
	return t, nil
}

// markdownCodeRanges collects the source ranges of code in doc.
func markdownCodeRanges(doc ast.Node, size int) []byteRange {
	var out []byteRange
	stack := []ast.Node{doc}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if r, ok := linesRange(n.Lines()); ok {
				out = append(out, r)
			}
			continue
		case *ast.CodeSpan:
			if r, ok := childTextRange(n); ok {
				out = append(out, r)
			}
			continue
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			stack = append(stack, c)
		}
	}

	valid := out[:0]
	for _, r := range out {
		if r.start >= 0 && r.end <= size && r.start < r.end {
			valid = append(valid, r)
		}
	}
	return valid
}

func linesRange(lines *text.Segments) (byteRange, bool) {
	if lines == nil || lines.Len() == 0 {
		return byteRange{}, false
	}
	first := lines.At(0)
	last := lines.At(lines.Len() - 1)
	return byteRange{start: first.Start, end: last.Stop}, true
}

func childTextRange(n ast.Node) (byteRange, bool) {
	r := byteRange{start: -1}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		tn, ok := c.(*ast.Text)
		if !ok {
			continue
		}
		if r.start < 0 || tn.Segment.Start < r.start {
			r.start = tn.Segment.Start
		}
		if tn.Segment.Stop > r.end {
			r.end = tn.Segment.Stop
		}
	}
	return r, r.start >= 0
}

// mergeRanges sorts ranges and merges overlapping ones.
func mergeRanges(rs []byteRange) []byteRange {
	if len(rs) == 0 {
		return nil
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i].start < rs[j].start })
	out := []byteRange{rs[0]}
	for _, r := range rs[1:] {
		last := &out[len(out)-1]
		if r.start <= last.end {
			if r.end > last.end {
				last.end = r.end
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

package core

import "context"

// textParser is the built-in permissive tokenizer used for plain text and
// for languages without a grammar. It never fails.
type textParser struct{}

func (textParser) Parse(_ context.Context, src []byte) (*Tree, error) {
	t := newTree(src, langText, "document")
	lexLines(t, 0, 0, len(src))
	return t, nil
}

// isDelimiter reports whether b separates words. A path literal is a maximal
// run of non-delimiter bytes, so "/", ".", "#" and "?" are word bytes.
func isDelimiter(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v',
		'"', '\'', '`',
		'(', ')', '[', ']', '{', '}', '<', '>',
		',', ';', '=':
		return true
	}
	return false
}

func hasDelimiter(b []byte) bool {
	for _, c := range b {
		if isDelimiter(c) {
			return true
		}
	}
	return false
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// lexLines splits src[start:end] into line nodes under parent and tokenizes
// each line.
func lexLines(t *Tree, parent, start, end int) {
	lineStart := start
	for i := start; i <= end; i++ {
		if i < end && t.Source[i] != '\n' {
			continue
		}
		if i > lineStart {
			line := t.add(parent, "line", lineStart, i, false)
			lexWords(t, line, lineStart, i)
		}
		lineStart = i + 1
	}
}

// lexWords emits word and punct tokens for src[start:end] under parent.
func lexWords(t *Tree, parent, start, end int) {
	src := t.Source
	i := start
	for i < end {
		b := src[i]
		switch {
		case isSpace(b):
			i++
		case isDelimiter(b):
			t.add(parent, "punct", i, i+1, true)
			i++
		default:
			j := i
			for j < end && !isDelimiter(src[j]) {
				j++
			}
			t.add(parent, "word", i, j, true)
			i = j
		}
	}
}

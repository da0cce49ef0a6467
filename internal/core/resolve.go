package core

import "strings"

// Reference is a relative-path literal found in a file.
type Reference struct {
	File  string // root-relative path of the containing file
	Text  string // literal text as written
	Start int
	End   int
	Kind  string // syntax node kind of the token
}

// ResolvedReference is a Reference together with the root-relative path it
// points at. Target is empty when the reference cannot be resolved inside
// the project root.
type ResolvedReference struct {
	Reference
	Target string
}

// findReferences returns every relative-path token of t in document order.
func findReferences(file string, t *Tree) []Reference {
	var out []Reference
	for _, id := range t.Tokens() {
		n := &t.Nodes[id]
		text := t.Text(id)
		if !isRelativeRef(text) {
			continue
		}
		if n.Kind == "word" {
			text = trimSentencePunct(text)
		}
		out = append(out, Reference{File: file, Text: text, Start: n.Start, End: n.Start + len(text), Kind: n.Kind})
	}
	return out
}

// trimSentencePunct drops punctuation that ends a sentence after a path
// written in prose, as in "See ./guide.md." A trailing "." or ".." path
// component is kept.
func trimSentencePunct(text string) string {
	trimmed := strings.TrimRight(text, ".:!?")
	if trimmed == text || strings.HasSuffix(trimmed, "/") || !isRelativeRef(trimmed) {
		return text
	}
	return trimmed
}

// resolveReference resolves the literal text of a reference found in file to
// a normalized root-relative target. Any "#fragment" or "?query" suffix is
// returned separately. ok is false when the reference climbs above the root
// or cannot be normalized; such references are left alone.
func resolveReference(file, text string) (target, suffix string, ok bool) {
	pathPart, suffix := splitRefSuffix(text)
	target, err := joinRef(file, pathPart)
	if err != nil || target == "." || escapesRoot(target) {
		return "", "", false
	}
	return target, suffix, true
}

// ResolveReferences lists the relative-path references of one file and the
// targets they resolve to.
func ResolveReferences(file string, t *Tree) []ResolvedReference {
	refs := findReferences(file, t)
	out := make([]ResolvedReference, len(refs))
	for i, ref := range refs {
		target, _, _ := resolveReference(file, ref.Text)
		out[i] = ResolvedReference{Reference: ref, Target: target}
	}
	return out
}

// movePlan is the read-only move operation shared by every file of a run.
type movePlan struct {
	from     string
	to       string
	outgoing bool
}

// planFileEdits computes the edits for one file. file is the location the
// file's references are relative to, which is the old location for the file
// being moved.
//
// A reference resolving to the old path is rewritten relative to the new
// path; for the moved file itself the new text is computed from its new
// location. With outgoing set, other references inside the moved file are
// rewritten so they keep pointing at their targets from the new location.
func planFileEdits(file string, t *Tree, mp movePlan) ([]Edit, error) {
	isMoved := file == mp.from
	base := file
	if isMoved {
		base = mp.to
	}

	var edits []Edit
	for _, ref := range findReferences(file, t) {
		target, suffix, ok := resolveReference(file, ref.Text)
		if !ok {
			continue
		}
		var rel string
		var err error
		switch {
		case target == mp.from:
			rel, err = relativeRef(base, mp.to)
		case isMoved && mp.outgoing:
			rel, err = relativeRef(base, target)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		newText := rel + suffix
		if newText == ref.Text {
			continue
		}
		edits = append(edits, Edit{Start: ref.Start, End: ref.End, Old: ref.Text, New: newText})
	}
	return edits, nil
}

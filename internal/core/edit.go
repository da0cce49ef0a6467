package core

import (
	"errors"
	"fmt"
	"sort"

	"rsc.io/rf/edit"
)

var (
	errOverlappingEdits = errors.New("overlapping edits")
	errEditOutOfRange   = errors.New("edit out of range")
)

// Edit replaces the bytes [Start, End) of a file's original text with New.
// Old holds the replaced text as it appeared in the original.
type Edit struct {
	Start int
	End   int
	Old   string
	New   string
}

// checkEdits verifies that every edit lies inside a text of the given size
// and that no two edits share an offset.
func checkEdits(size int, edits []Edit) error {
	sorted := sortedByStart(edits)
	for i, e := range sorted {
		if e.Start < 0 || e.End > size || e.Start > e.End {
			return fmt.Errorf("%w: [%d,%d) in %d bytes", errEditOutOfRange, e.Start, e.End, size)
		}
		if i > 0 && sorted[i-1].End > e.Start {
			return fmt.Errorf("%w: [%d,%d) and [%d,%d)", errOverlappingEdits,
				sorted[i-1].Start, sorted[i-1].End, e.Start, e.End)
		}
	}
	return nil
}

// applyEdits returns src with every edit applied. All offsets refer to the
// original text: edits are queued in descending start order on an edit
// buffer that splices them against src, so a replacement that changes a
// span's length never shifts another edit. src is not modified.
func applyEdits(src []byte, edits []Edit) ([]byte, error) {
	if err := checkEdits(len(src), edits); err != nil {
		return nil, err
	}
	buf := edit.NewBuffer(src)
	sorted := sortedByStart(edits)
	for i := len(sorted) - 1; i >= 0; i-- {
		e := sorted[i]
		buf.Replace(e.Start, e.End, e.New)
	}
	return buf.Bytes(), nil
}

func sortedByStart(edits []Edit) []Edit {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	return sorted
}

// Package linepos converts byte offsets into 1-indexed line and 0-indexed
// column numbers, the same addressing scheme base.Provider derives from
// tree-sitter nodes. The structured parsers (json, xml) decode with
// libraries that report byte offsets, not positions, so they share this
// helper to keep core.TreeNode coordinates consistent across providers.
package linepos

// Index maps byte offsets into a source buffer to line/column pairs.
type Index struct {
	lineStarts []int
}

// NewIndex scans source once and records the byte offset each line begins at.
func NewIndex(source []byte) *Index {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Index{lineStarts: starts}
}

// Position returns the 1-indexed line and 0-indexed column for offset.
func (idx *Index) Position(offset int) (line, column int) {
	lo, hi := 0, len(idx.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if idx.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1, offset - idx.lineStarts[lo]
}

// LineCount returns the number of lines in the indexed source.
func (idx *Index) LineCount() int {
	return len(idx.lineStarts)
}

// Offset is Position's inverse: it returns the byte offset of the
// 1-indexed line and 0-indexed column, used by the edit engine to turn a
// TreeNode's line/column span back into the byte range it must splice.
func (idx *Index) Offset(line, column int) int {
	if line < 1 {
		line = 1
	}
	if line > len(idx.lineStarts) {
		line = len(idx.lineStarts)
	}
	return idx.lineStarts[line-1] + column
}

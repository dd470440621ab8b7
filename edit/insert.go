package edit

import (
	"strings"

	"github.com/oxhq/gnawtree/core"
	"github.com/oxhq/gnawtree/providers/structured/linepos"
)

// constructInsert locates the byte offset op.Position names relative to
// the resolved anchor node, measures the indentation at that point, and
// splices op.Content in with that indentation applied to every line
// (ported from the teacher's OpInsertBefore/OpInsertAfter handling in
// internal/manipulator.Manipulator.apply).
func (e *Engine) constructInsert(root *core.TreeNode, source string, op core.Operation) (string, error) {
	anchor, err := e.resolve(root, op.File, op.Target)
	if err != nil {
		return "", err
	}

	insertAt, err := insertionPoint(source, anchor, op)
	if err != nil {
		return "", err
	}

	content := op.Content
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	indented := preserveIndentation(source, insertAt, content)
	return splice(source, insertAt, insertAt, indented), nil
}

func insertionPoint(source string, anchor *core.TreeNode, op core.Operation) (int, error) {
	idx := linepos.NewIndex([]byte(source))

	switch op.Position {
	case core.Before:
		return idx.Offset(anchor.StartLine, 0), nil

	case core.After:
		return lineEndOffset(idx, len(source), anchor.EndLine), nil

	case core.ChildStart:
		if len(anchor.Children) == 0 {
			return lineEndOffset(idx, len(source), anchor.StartLine), nil
		}
		first := anchor.Children[0]
		return idx.Offset(first.StartLine, 0), nil

	case core.ChildEnd:
		if len(anchor.Children) == 0 {
			return idx.Offset(anchor.EndLine, 0), nil
		}
		last := anchor.Children[len(anchor.Children)-1]
		return lineEndOffset(idx, len(source), last.EndLine), nil

	case core.ChildAt:
		if op.ChildIndex < 0 || op.ChildIndex > len(anchor.Children) {
			return 0, &core.AddressError{
				Kind: core.ErrResolution, File: op.File, Selector: op.Target,
				Message: "child index out of range for insert",
			}
		}
		if op.ChildIndex == len(anchor.Children) {
			if len(anchor.Children) == 0 {
				return lineEndOffset(idx, len(source), anchor.StartLine), nil
			}
			last := anchor.Children[len(anchor.Children)-1]
			return lineEndOffset(idx, len(source), last.EndLine), nil
		}
		return idx.Offset(anchor.Children[op.ChildIndex].StartLine, 0), nil

	case core.AfterProperties:
		return afterPropertiesOffset(idx, len(source), anchor), nil

	default:
		return 0, &core.InputError{Message: "unknown insert position"}
	}
}

// afterPropertiesOffset anchors after the last property-like child
// (kind "pair", the shape the json/yaml/toml structured parsers give
// object entries) so inserting a new property lands alongside its
// siblings rather than at the very end of the object's children, e.g.
// after a trailing comment node. Falls back to ChildEnd's placement when
// no property child is found (spec.md §9 open question 2).
func afterPropertiesOffset(idx *linepos.Index, sourceLen int, anchor *core.TreeNode) int {
	lastProperty := -1
	for i, c := range anchor.Children {
		if c.Kind == "pair" || c.Kind == "property" {
			lastProperty = i
		}
	}
	if lastProperty == -1 {
		if len(anchor.Children) == 0 {
			return idx.Offset(anchor.EndLine, 0)
		}
		last := anchor.Children[len(anchor.Children)-1]
		return lineEndOffset(idx, sourceLen, last.EndLine)
	}
	return lineEndOffset(idx, sourceLen, anchor.Children[lastProperty].EndLine)
}

func lineEndOffset(idx *linepos.Index, sourceLen int, line int) int {
	if line+1 > idx.LineCount() {
		return sourceLen
	}
	return idx.Offset(line+1, 0)
}

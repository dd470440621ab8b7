// Package core implements the uniform tree model shared by every parser:
// TreeNode, path addressing, the semantic-selector alias table, and the
// operation types the edit engine and batch executor act on.
package core

import (
	"strconv"
	"strings"
)

// TreeNode is the uniform syntax unit every parser (grammar-backed,
// library-backed, or generic) produces. Paths are dot-separated
// non-negative integers locating the node from the root and are only
// stable within a single parse; callers who need cross-edit stability use
// tags or semantic selectors instead (see Resolve).
type TreeNode struct {
	ID          string
	Path        string
	Kind        string
	Source      string
	StartLine   int // 1-indexed, inclusive
	EndLine     int // 1-indexed, inclusive
	StartColumn int // 0-indexed byte offset within StartLine, -1 if unknown
	EndColumn   int // 0-indexed byte offset within EndLine, -1 if unknown
	Children    []*TreeNode
}

// RootPath is the canonical path of a parse tree's root node.
const RootPath = "root"

// HasColumns reports whether this node carries column-accurate source
// positions, which is required for surgical sub-line edits.
func (n *TreeNode) HasColumns() bool {
	return n.StartColumn >= 0 && n.EndColumn >= 0
}

// ChildPath computes the path a direct child at index i would have, given
// this node's own path.
func (n *TreeNode) ChildPath(i int) string {
	if n.Path == "" || n.Path == RootPath {
		return strconv.Itoa(i)
	}
	return n.Path + "." + strconv.Itoa(i)
}

// splitPath parses a dot-separated path into its integer indices. An empty
// or "root" path yields no indices (selects the root itself).
func splitPath(path string) ([]int, error) {
	if path == "" || path == RootPath {
		return nil, nil
	}
	parts := strings.Split(path, ".")
	idx := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, &AddressError{Kind: ErrResolution, Selector: path, Message: "malformed node path segment: " + p}
		}
		idx[i] = n
	}
	return idx, nil
}

// Name returns the node's identifying child source, following spec's rule:
// the first child whose kind looks identifier-like, or for pair/property
// nodes the left operand before ':' or '='. Returns "" if the node has no
// discoverable name.
func (n *TreeNode) Name() string {
	for _, c := range n.Children {
		if isIdentifierKind(c.Kind) {
			return c.Source
		}
	}
	if isPairKind(n.Kind) {
		if idx := strings.IndexAny(n.Source, ":="); idx >= 0 {
			return strings.TrimSpace(n.Source[:idx])
		}
	}
	return ""
}

// IsIdentifierKind reports whether kind is one of the identifier-like
// grammar kinds Name() and the cli layer's rename expansion look for.
func IsIdentifierKind(kind string) bool {
	return isIdentifierKind(kind)
}

func isIdentifierKind(kind string) bool {
	switch kind {
	case "identifier", "name", "type_identifier", "field_identifier",
		"property_identifier", "shorthand_property_identifier":
		return true
	}
	return false
}

func isPairKind(kind string) bool {
	switch kind {
	case "pair", "property", "object_property", "member", "ui_object_member":
		return true
	}
	return false
}

// IsStructural reports whether a node is pure grammar trivia (braces,
// punctuation) that default listings skip unless the caller opts in.
func IsStructural(kind string) bool {
	switch kind {
	case "{", "}", "(", ")", "[", "]", ",", ";", ":",
		"punctuation", "comma", "semicolon":
		return true
	}
	return false
}

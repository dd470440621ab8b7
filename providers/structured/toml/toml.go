// Package toml provides TOML support as a library-backed structured parser.
// BurntSushi/toml validates documents and enumerates keys, but (like most
// TOML libraries) doesn't expose a position-carrying AST, so Parse derives
// structure directly from source lines: a table header starts a new
// section, and every key = value line beneath it becomes a pair child.
// This is flatter than the grammar-backed providers' trees, but every node
// still carries an exact line number for editing.
package toml

import (
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/oxhq/gnawtree/core"
	"github.com/oxhq/gnawtree/providers"
)

// Parser implements providers.Parser for TOML documents.
type Parser struct{}

// New creates a TOML parser.
func New() *Parser { return &Parser{} }

func (p *Parser) Language() string              { return "toml" }
func (p *Parser) SupportedExtensions() []string { return []string{".toml"} }

// Parse walks source line by line, grouping key = value pairs under the
// most recent [table] or [[array table]] header.
func (p *Parser) Parse(source string) *core.TreeNode {
	root := &core.TreeNode{ID: core.RootPath, Path: core.RootPath, Kind: "document", Source: source, StartLine: 1}
	lines := strings.Split(source, "\n")
	root.EndLine = len(lines)

	var current *core.TreeNode
	for i, raw := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.HasPrefix(trimmed, "[") {
			kind := "table"
			if strings.HasPrefix(trimmed, "[[") {
				kind = "array_table"
			}
			current = &core.TreeNode{
				ID: root.ChildPath(len(root.Children)), Path: root.ChildPath(len(root.Children)),
				Kind: kind, Source: trimmed, StartLine: lineNo, EndLine: lineNo,
				StartColumn: 0, EndColumn: len(raw),
			}
			root.Children = append(root.Children, current)
			continue
		}
		pair := parsePair(raw, lineNo)
		if pair == nil {
			continue
		}
		if current != nil {
			pair.Path = current.ChildPath(len(current.Children))
			pair.ID = pair.Path
			for j, c := range pair.Children {
				c.ID, c.Path = pair.ChildPath(j), pair.ChildPath(j)
			}
			current.Children = append(current.Children, pair)
			current.EndLine = lineNo
			continue
		}
		pair.Path = root.ChildPath(len(root.Children))
		pair.ID = pair.Path
		for j, c := range pair.Children {
			c.ID, c.Path = pair.ChildPath(j), pair.ChildPath(j)
		}
		root.Children = append(root.Children, pair)
	}
	return root
}

func parsePair(raw string, lineNo int) *core.TreeNode {
	trimmed := strings.TrimSpace(raw)
	eq := strings.Index(trimmed, "=")
	if eq < 0 {
		return nil
	}
	keyCol := len(raw) - len(strings.TrimLeft(raw, " \t"))
	keyNode := &core.TreeNode{
		Kind: "property_identifier", Source: strings.TrimSpace(trimmed[:eq]),
		StartLine: lineNo, EndLine: lineNo, StartColumn: keyCol, EndColumn: keyCol + eq,
	}
	valNode := &core.TreeNode{
		Kind: "value", Source: strings.TrimSpace(trimmed[eq+1:]),
		StartLine: lineNo, EndLine: lineNo, StartColumn: keyCol + eq + 1, EndColumn: len(raw),
	}
	return &core.TreeNode{
		Kind: "pair", Source: trimmed, StartLine: lineNo, EndLine: lineNo,
		StartColumn: keyCol, EndColumn: len(raw),
		Children: []*core.TreeNode{keyNode, valNode},
	}
}

// Validate decodes source with BurntSushi/toml, the pack's TOML library,
// reporting any decode failure as a syntax error. The library's error type
// does not carry a reliable line/column for every failure mode, so callers
// relying on Validate for precise positions should prefer Parse's line
// numbers once a syntax error narrows the region.
func (p *Parser) Validate(source string) providers.ValidationResult {
	var into map[string]interface{}
	if _, err := toml.Decode(source, &into); err != nil {
		return providers.ValidationResult{Errors: []*core.SyntaxError{{
			Message: err.Error(),
			Hint:    "check for unterminated strings, unclosed tables, or duplicate keys",
		}}}
	}
	return providers.ValidationResult{Valid: true}
}

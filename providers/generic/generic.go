// Package generic provides the fallback parser for extensions with no
// registered language or structured provider (Zig, QML, Slint, Markdown,
// plain text, and anything unrecognized). It never rejects a document —
// the whole file becomes a single "text" node — so list/resolve/edit still
// work uniformly, just without sub-file addressing finer than the root.
//
// That single node is addressed the same way every other provider's root
// is: "" or core.RootPath ("root"), not the numeric child-index "0" a
// literal reading of spec.md §4.2 might suggest — there is no parent to
// be child 0 *of*, and every other parser's root already resolves the
// same way (core.Resolve treats "" and RootPath as synonyms).
package generic

import (
	"strings"

	"github.com/oxhq/gnawtree/core"
	"github.com/oxhq/gnawtree/providers"
)

// Parser is the single-node fallback implementation of providers.Parser.
type Parser struct{}

// New creates the generic fallback parser.
func New() *Parser { return &Parser{} }

func (p *Parser) Language() string              { return "text" }
func (p *Parser) SupportedExtensions() []string { return nil }

// Parse returns one root node spanning the entire source, with no children:
// an unrecognized format has no structure finer than "the whole file".
func (p *Parser) Parse(source string) *core.TreeNode {
	lines := strings.Count(source, "\n") + 1
	return &core.TreeNode{
		ID: core.RootPath, Path: core.RootPath, Kind: "text",
		Source: source, StartLine: 1, EndLine: lines, StartColumn: 0, EndColumn: -1,
	}
}

// Validate always reports a plain-text document as valid: there is no
// grammar to violate.
func (p *Parser) Validate(source string) providers.ValidationResult {
	return providers.ValidationResult{Valid: true}
}

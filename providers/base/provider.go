// Package base implements the shared tree-sitter-to-TreeNode conversion
// used by every grammar-backed language provider: one walk, one validation
// routine, parameterized by a per-language LanguageConfig.
package base

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/gnawtree/core"
	"github.com/oxhq/gnawtree/providers"
)

// LanguageConfig supplies everything a language needs beyond the generic
// tree-sitter walk: the grammar binding, its extensions, and the
// query-type aliases it contributes to core's semantic-selector table.
type LanguageConfig interface {
	Language() string
	Extensions() []string
	GetLanguage() *sitter.Language
	// KindAliases returns the query-type -> grammar-node-kind mapping this
	// language contributes (e.g. "fn" -> function_declaration). Registered
	// once at construction time via core.RegisterKindAliases.
	KindAliases() map[string][]string
}

// Provider is the shared implementation every providers/<lang> package
// wraps with its own Config. It owns one tree-sitter parser, guarded by a
// mutex since the core is single-process/sequential (spec.md §5) and
// tree-sitter parsers are not safe for concurrent Parse calls.
type Provider struct {
	config LanguageConfig
	mu     sync.Mutex
	parser *sitter.Parser

	borrowCount int64
	returnCount int64
}

// New creates a base provider for the given language config and registers
// its semantic-selector aliases with core.
func New(config LanguageConfig) *Provider {
	lang := config.GetLanguage()
	if lang == nil {
		panic(fmt.Sprintf("no tree-sitter grammar available for %s", config.Language()))
	}
	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	for queryType, kinds := range config.KindAliases() {
		core.RegisterKindAliases(queryType, kinds...)
	}

	return &Provider{config: config, parser: parser}
}

func (p *Provider) Language() string             { return p.config.Language() }
func (p *Provider) SupportedExtensions() []string { return p.config.Extensions() }

// Stats reports the parser borrow/return counters (spec.md §2's
// Observability column).
func (p *Provider) Stats() providers.Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return providers.Stats{
		BorrowCount: p.borrowCount,
		ReturnCount: p.returnCount,
		Active:      p.borrowCount - p.returnCount,
	}
}

// Parse always returns a tree; grammar errors become ERROR-kind nodes
// rather than failing the call, per the Parser contract.
func (p *Provider) Parse(source string) *core.TreeNode {
	tree := p.parseTree(source)
	defer tree.Close()

	src := []byte(source)
	root := convert(tree.RootNode(), src, "root")
	return root
}

// Validate reports every ERROR node tree-sitter produced as a SyntaxError.
func (p *Provider) Validate(source string) providers.ValidationResult {
	tree := p.parseTree(source)
	defer tree.Close()

	var errs []*core.SyntaxError
	collectErrors(tree.RootNode(), &errs, p.config.Language())

	return providers.ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func (p *Provider) parseTree(source string) *sitter.Tree {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.borrowCount++
	tree, err := p.parser.ParseCtx(context.Background(), nil, []byte(source))
	p.returnCount++
	if err != nil || tree == nil {
		// ParseCtx only fails on cancellation or a nil language; tree-sitter
		// itself never refuses malformed source, so fabricate an empty
		// single-node tree rather than violate the "always returns" contract.
		empty := sitter.NewParser()
		empty.SetLanguage(p.config.GetLanguage())
		tree, _ = empty.ParseCtx(context.Background(), nil, []byte(source))
	}
	return tree
}

// convert recursively maps a tree-sitter node onto a core.TreeNode,
// assigning stable-within-this-parse dot-paths as it goes.
func convert(n *sitter.Node, source []byte, path string) *core.TreeNode {
	start, end := n.StartPoint(), n.EndPoint()
	node := &core.TreeNode{
		ID:          path,
		Path:        path,
		Kind:        n.Type(),
		Source:      string(source[n.StartByte():n.EndByte()]),
		StartLine:   int(start.Row) + 1,
		EndLine:     int(end.Row) + 1,
		StartColumn: int(start.Column),
		EndColumn:   int(end.Column),
	}
	count := int(n.ChildCount())
	node.Children = make([]*core.TreeNode, 0, count)
	for i := 0; i < count; i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		node.Children = append(node.Children, convert(child, source, node.ChildPath(len(node.Children))))
	}
	return node
}

func collectErrors(n *sitter.Node, out *[]*core.SyntaxError, lang string) {
	if n.IsError() || n.Type() == "ERROR" {
		start := n.StartPoint()
		*out = append(*out, &core.SyntaxError{
			Line:    int(start.Row) + 1,
			Column:  int(start.Column) + 1,
			Message: "unexpected token",
			Hint:    hintFor(lang),
		})
	}
	if n.IsMissing() {
		start := n.StartPoint()
		*out = append(*out, &core.SyntaxError{
			Line:    int(start.Row) + 1,
			Column:  int(start.Column) + 1,
			Message: "missing " + n.Type(),
			Hint:    hintFor(lang),
		})
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		if child := n.Child(i); child != nil {
			collectErrors(child, out, lang)
		}
	}
}

func hintFor(lang string) string {
	switch lang {
	case "python":
		return "did you forget a colon, or mis-indent a block?"
	case "rust":
		return "did you close every brace and terminate the statement with a semicolon?"
	case "go":
		return "did you close all braces and parentheses?"
	case "c", "cpp", "java":
		return "did you terminate the statement with a semicolon?"
	default:
		return "did you close all braces and balance quotes?"
	}
}

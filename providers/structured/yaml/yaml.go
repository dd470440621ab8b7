// Package yaml provides YAML support as a library-backed structured
// parser. Unlike JSON, gopkg.in/yaml.v3 exposes a position-carrying AST
// directly (yaml.Node.Line/Column), so this parser converts it to
// core.TreeNode without the offset bookkeeping the JSON provider needs.
package yaml

import (
	"gopkg.in/yaml.v3"

	"github.com/oxhq/gnawtree/core"
	"github.com/oxhq/gnawtree/providers"
)

// Parser implements providers.Parser for YAML documents.
type Parser struct{}

// New creates a YAML parser.
func New() *Parser { return &Parser{} }

func (p *Parser) Language() string              { return "yaml" }
func (p *Parser) SupportedExtensions() []string { return []string{".yaml", ".yml"} }

// Parse decodes source into a yaml.Node tree and converts it into
// core.TreeNode, one level per yaml.Node (the document wrapper is
// flattened away so root is the top-level mapping or sequence).
func (p *Parser) Parse(source string) *core.TreeNode {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(source), &doc); err != nil || len(doc.Content) == 0 {
		return &core.TreeNode{ID: "root", Path: "root", Kind: "document", Source: source, StartLine: 1, EndLine: 1, StartColumn: 0, EndColumn: 0}
	}
	root := convert(doc.Content[0], "root")
	root.Path = core.RootPath
	root.ID = core.RootPath
	return root
}

// Validate reports a YAML syntax error with the line/column yaml.v3's
// TypeError or generic decode error carries.
func (p *Parser) Validate(source string) providers.ValidationResult {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(source), &doc); err != nil {
		return providers.ValidationResult{Errors: []*core.SyntaxError{{
			Message: err.Error(),
			Hint:    "check indentation and quoting; YAML is whitespace-significant",
		}}}
	}
	return providers.ValidationResult{Valid: true}
}

func convert(n *yaml.Node, path string) *core.TreeNode {
	node := &core.TreeNode{
		ID: path, Path: path, Kind: kindOf(n),
		StartLine: n.Line, EndLine: n.Line,
		StartColumn: n.Column - 1, EndColumn: n.Column - 1,
	}

	switch n.Kind {
	case yaml.MappingNode:
		node.Source = n.Value
		for i := 0; i+1 < len(n.Content); i += 2 {
			pairPath := node.ChildPath(len(node.Children))
			keyNode := convert(n.Content[i], pairPath+".0")
			keyNode.Kind = "property_identifier"
			valNode := convert(n.Content[i+1], pairPath+".1")
			pair := &core.TreeNode{
				ID: pairPath, Path: pairPath, Kind: "pair",
				Source:      keyNode.Source + ": " + valNode.Source,
				StartLine:   keyNode.StartLine, StartColumn: keyNode.StartColumn,
				EndLine:     valNode.EndLine, EndColumn: valNode.EndColumn,
				Children:    []*core.TreeNode{keyNode, valNode},
			}
			node.Children = append(node.Children, pair)
		}
	case yaml.SequenceNode:
		for _, c := range n.Content {
			node.Children = append(node.Children, convert(c, node.ChildPath(len(node.Children))))
		}
	case yaml.ScalarNode:
		node.Source = n.Value
	case yaml.AliasNode:
		node.Source = "*" + n.Value
	}

	if len(node.Children) > 0 {
		last := node.Children[len(node.Children)-1]
		node.EndLine, node.EndColumn = last.EndLine, last.EndColumn
	}
	return node
}

func kindOf(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "object"
	case yaml.SequenceNode:
		return "array"
	case yaml.ScalarNode:
		return scalarKind(n)
	case yaml.AliasNode:
		return "alias"
	default:
		return "node"
	}
}

func scalarKind(n *yaml.Node) string {
	switch n.Tag {
	case "!!int":
		return "number"
	case "!!float":
		return "number"
	case "!!bool":
		return "boolean"
	case "!!null":
		return "null"
	default:
		return "string"
	}
}

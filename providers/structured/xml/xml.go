// Package xml provides XML support as a structured parser. No example in
// this tree pulls in a third-party XML library, so this parser is built on
// encoding/xml alone — the one deliberately stdlib-only structured format,
// following the same offset-to-position approach as the JSON provider.
package xml

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/oxhq/gnawtree/core"
	"github.com/oxhq/gnawtree/providers"
	"github.com/oxhq/gnawtree/providers/structured/linepos"
)

// Parser implements providers.Parser for XML documents.
type Parser struct{}

// New creates an XML parser.
func New() *Parser { return &Parser{} }

func (p *Parser) Language() string              { return "xml" }
func (p *Parser) SupportedExtensions() []string { return []string{".xml"} }

// Parse decodes source with encoding/xml's token stream, tracking
// InputOffset before each StartElement/EndElement/CharData token to derive
// line/column spans via linepos.
func (p *Parser) Parse(source string) *core.TreeNode {
	idx := linepos.NewIndex([]byte(source))
	dec := xml.NewDecoder(strings.NewReader(source))

	type frame struct {
		node  *core.TreeNode
		start int
	}
	var stack []frame
	var root *core.TreeNode

	for {
		startOffset := int(dec.InputOffset())
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var parentPath string
			if len(stack) > 0 {
				parentPath = stack[len(stack)-1].node.ChildPath(len(stack[len(stack)-1].node.Children))
			} else {
				parentPath = "root"
			}
			node := &core.TreeNode{ID: parentPath, Path: parentPath, Kind: "element:" + t.Name.Local}
			for _, a := range t.Attr {
				attrPath := node.ChildPath(len(node.Children))
				node.Children = append(node.Children, &core.TreeNode{
					ID: attrPath, Path: attrPath,
					Kind: "attribute", Source: a.Name.Local + "=\"" + a.Value + "\"",
				})
			}
			stack = append(stack, frame{node: node, start: startOffset})
		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			endOffset := int(dec.InputOffset())
			stampSpan(top.node, top.start, endOffset, source, idx)
			if len(stack) > 0 {
				parent := stack[len(stack)-1].node
				parent.Children = append(parent.Children, top.node)
			} else {
				root = top.node
			}
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			top := stack[len(stack)-1]
			textPath := top.node.ChildPath(len(top.node.Children))
			textNode := &core.TreeNode{ID: textPath, Path: textPath, Kind: "text", Source: text}
			endOffset := startOffset + len(t)
			stampSpan(textNode, startOffset, endOffset, source, idx)
			top.node.Children = append(top.node.Children, textNode)
		}
	}

	if root == nil {
		line, col := idx.Position(0)
		return &core.TreeNode{ID: "root", Path: "root", Kind: "document", Source: source, StartLine: line, EndLine: line, StartColumn: col, EndColumn: col}
	}
	root.Path = core.RootPath
	root.ID = core.RootPath
	return root
}

// Validate decodes the full token stream with encoding/xml, reporting the
// first error (unclosed tag, mismatched end element, malformed entity) as a
// syntax error with its line derived from the decoder's InputOffset.
func (p *Parser) Validate(source string) providers.ValidationResult {
	idx := linepos.NewIndex([]byte(source))
	dec := xml.NewDecoder(strings.NewReader(source))
	for {
		offset := int(dec.InputOffset())
		_, err := dec.Token()
		if err == nil {
			continue
		}
		if err == io.EOF {
			return providers.ValidationResult{Valid: true}
		}
		line, col := idx.Position(offset)
		return providers.ValidationResult{Errors: []*core.SyntaxError{{
			Line: line, Column: col, Message: err.Error(),
			Hint: "check that every element is closed and entities are escaped",
		}}}
	}
}

func stampSpan(n *core.TreeNode, start, end int, source string, idx *linepos.Index) {
	sl, sc := idx.Position(start)
	el, ec := idx.Position(end)
	n.StartLine, n.StartColumn = sl, sc
	n.EndLine, n.EndColumn = el, ec
	if end > start && end <= len(source) {
		n.Source = source[start:end]
	}
}

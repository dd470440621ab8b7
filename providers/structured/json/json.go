// Package json provides JSON support as a library-backed structured parser:
// objects, arrays, and scalars become core.TreeNode children addressed by
// the same dot-path scheme the grammar-backed providers use, so the edit
// engine and selector resolution need no JSON-specific code path.
package json

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ohler55/ojg/oj"

	"github.com/oxhq/gnawtree/core"
	"github.com/oxhq/gnawtree/providers"
	"github.com/oxhq/gnawtree/providers/structured/linepos"
)

// Parser implements providers.Parser for JSON documents.
type Parser struct{}

// New creates a JSON parser.
func New() *Parser { return &Parser{} }

func (p *Parser) Language() string              { return "json" }
func (p *Parser) SupportedExtensions() []string { return []string{".json"} }

// Parse decodes source token-by-token with encoding/json, which reports the
// byte offset after each token via Decoder.InputOffset. encoding/json never
// exposes a value's start offset directly, so decodeValue records the offset
// before reading each token, steps past the whitespace and ':' or ','
// separator the decoder consumed on the way to it, and converts offsets to
// line/column with linepos as it builds each node, bottom-up.
func (p *Parser) Parse(source string) *core.TreeNode {
	idx := linepos.NewIndex([]byte(source))
	dec := json.NewDecoder(bytes.NewReader([]byte(source)))

	root, _, _, err := decodeValue(dec, source, idx, "root")
	if err != nil || root == nil {
		return blankRoot(source, idx)
	}
	root.Path = core.RootPath
	root.ID = core.RootPath
	return root
}

// Validate parses source with both encoding/json and ojg's oj package (used
// here only as this second validation pass), so a document either one
// rejects is reported the same way.
func (p *Parser) Validate(source string) providers.ValidationResult {
	if json.Valid([]byte(source)) {
		if _, err := oj.Parse([]byte(source)); err == nil {
			return providers.ValidationResult{Valid: true}
		}
	}
	idx := linepos.NewIndex([]byte(source))
	if err := json.Unmarshal([]byte(source), new(interface{})); err != nil {
		offset := 0
		if se, ok := err.(*json.SyntaxError); ok {
			offset = int(se.Offset)
		}
		line, col := idx.Position(offset)
		return providers.ValidationResult{Errors: []*core.SyntaxError{{
			Line: line, Column: col, Message: err.Error(),
		}}}
	}
	return providers.ValidationResult{Errors: []*core.SyntaxError{{Message: "document rejected by JSONPath parser"}}}
}

// decodeValue reads one JSON value from dec, recursing into objects and
// arrays, and returns the built node along with the byte offsets its source
// span covers.
func decodeValue(dec *json.Decoder, source string, idx *linepos.Index, path string) (*core.TreeNode, int, int, error) {
	start := int(dec.InputOffset())
	tok, err := dec.Token()
	if err != nil {
		return nil, 0, 0, err
	}
	start = skipSeparators(source, start)

	switch t := tok.(type) {
	case json.Delim:
		var kind string
		switch t {
		case '{':
			kind = "object"
		case '[':
			kind = "array"
		default:
			return nil, 0, 0, fmt.Errorf("unexpected delimiter %v", t)
		}
		node := &core.TreeNode{ID: path, Path: path, Kind: kind}
		for dec.More() {
			if kind == "object" {
				keyStart := int(dec.InputOffset())
				keyTok, err := dec.Token()
				if err != nil {
					return nil, 0, 0, err
				}
				keyStart = skipSeparators(source, keyStart)
				key, _ := keyTok.(string)
				childPath := node.ChildPath(len(node.Children))
				val, _, valEnd, err := decodeValue(dec, source, idx, childPath+".1")
				if err != nil {
					return nil, 0, 0, err
				}
				node.Children = append(node.Children, wrapPair(childPath, key, keyStart, val, valEnd, source, idx))
			} else {
				childPath := node.ChildPath(len(node.Children))
				elem, _, _, err := decodeValue(dec, source, idx, childPath)
				if err != nil {
					return nil, 0, 0, err
				}
				node.Children = append(node.Children, elem)
			}
		}
		if _, err := dec.Token(); err != nil {
			return nil, 0, 0, err
		}
		end := int(dec.InputOffset()) // just past the closing delimiter
		stampSpan(node, start, end, source, idx)
		return node, start, end, nil
	default:
		end := int(dec.InputOffset())
		node := &core.TreeNode{ID: path, Path: path, Kind: scalarKind(t)}
		stampSpan(node, start, end, source, idx)
		return node, start, end, nil
	}
}

// wrapPair builds the "key: value" pair node TreeNode.Name() expects for
// object members (mirrors the pair/property kinds grammar providers use).
// The key is child 0 and the value child 1, and the key node's span covers
// the key text inside its quotes.
func wrapPair(path, key string, keyOffset int, value *core.TreeNode, valueEnd int, source string, idx *linepos.Index) *core.TreeNode {
	pair := &core.TreeNode{ID: path, Path: path, Kind: "pair"}
	keyNode := &core.TreeNode{
		ID: pair.Path + ".0", Path: pair.Path + ".0",
		Kind: "property_identifier", Source: key,
	}
	stampSpan(keyNode, keyOffset+1, keyOffset+1+len(key), source, idx)
	pair.Children = []*core.TreeNode{keyNode, value}
	stampSpan(pair, keyOffset, valueEnd, source, idx)
	return pair
}

// skipSeparators advances offset past the whitespace and the ':' or ','
// that encoding/json consumes ahead of a token without reporting them.
func skipSeparators(source string, offset int) int {
	for offset < len(source) && strings.IndexByte(" \t\r\n:,", source[offset]) >= 0 {
		offset++
	}
	return offset
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

func blankRoot(source string, idx *linepos.Index) *core.TreeNode {
	line, col := idx.Position(0)
	return &core.TreeNode{
		ID: "root", Path: "root", Kind: "document", Source: source,
		StartLine: line, EndLine: line, StartColumn: col, EndColumn: col,
	}
}

func scalarKind(tok interface{}) string {
	switch tok.(type) {
	case string:
		return "string"
	case float64, json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return "scalar"
	}
}

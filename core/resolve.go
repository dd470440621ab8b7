package core

import (
	"strconv"
	"strings"
)

// TagResolver is implemented by the tags package so core can resolve
// "tag:<name>" selectors without importing it back (it would create an
// import cycle: tags imports core for its atomic writer and error types).
type TagResolver interface {
	ResolveTag(file, name string) (path string, ok bool)
}

// kindAliases maps a semantic-selector kind to the grammar-specific node
// kinds it may match, aggregated across every registered language. Each
// language provider additionally registers its own finer-grained aliases
// via RegisterKindAliases; this table holds the small cross-language set
// named directly in spec.md §4.1.
var kindAliases = map[string][]string{
	"fn":        {"function_definition", "function_item", "function_declaration", "method_declaration"},
	"func":      {"function_definition", "function_item", "function_declaration", "method_declaration"},
	"function":  {"function_definition", "function_item", "function_declaration", "method_declaration"},
	"class":     {"class_definition", "class_declaration"},
	"struct":    {"struct_item", "struct_specifier", "type_spec"},
	"mod":       {"mod_item", "module"},
	"module":    {"mod_item", "module"},
	"interface": {"interface_declaration", "type_spec"},
	"import":    {"import_declaration", "import_statement", "import_from_statement", "use_declaration"},
	"var":       {"var_declaration", "variable_declaration", "short_var_declaration", "let_declaration"},
	"const":     {"const_declaration", "const_item"},
}

// RegisterKindAliases lets a language provider extend the semantic-selector
// alias table with its own node kinds for a query type (idempotent,
// additive; later registrations append rather than replace).
func RegisterKindAliases(queryType string, nodeKinds ...string) {
	existing := kindAliases[queryType]
	seen := make(map[string]bool, len(existing))
	for _, k := range existing {
		seen[k] = true
	}
	for _, k := range nodeKinds {
		if !seen[k] {
			existing = append(existing, k)
			seen[k] = true
		}
	}
	kindAliases[queryType] = existing
}

// KindsFor returns the grammar node kinds a semantic-selector kind maps to.
// If the kind is not in the alias table, it is treated as a literal grammar
// kind (callers may always address a node by its raw grammar kind).
func KindsFor(kind string) []string {
	if ks, ok := kindAliases[kind]; ok {
		return ks
	}
	return []string{kind}
}

// Resolve walks a selector against a parsed tree. Three forms are accepted:
// a dot-separated numeric path, a "@kind:name" semantic selector, or a
// "tag:name" reference (requires a non-nil TagResolver and file path).
func Resolve(root *TreeNode, file, selector string, tags TagResolver) (*TreeNode, error) {
	switch {
	case strings.HasPrefix(selector, "@"):
		return resolveSemantic(root, selector)
	case strings.HasPrefix(selector, "tag:"):
		name := strings.TrimPrefix(selector, "tag:")
		if tags == nil {
			return nil, &AddressError{Kind: ErrResolution, File: file, Selector: selector, Message: "no tag store available"}
		}
		path, ok := tags.ResolveTag(file, name)
		if !ok {
			return nil, &AddressError{Kind: ErrResolution, File: file, Selector: selector, Message: "tag not found"}
		}
		return resolvePath(root, file, path)
	default:
		return resolvePath(root, file, selector)
	}
}

func resolvePath(root *TreeNode, file, path string) (*TreeNode, error) {
	idx, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	node := root
	for depth, i := range idx {
		if i < 0 || i >= len(node.Children) {
			return nil, &AddressError{
				Kind: ErrResolution, File: file, Selector: path,
				Message:      "path index out of range at depth " + strconv.Itoa(depth),
				TopLevelHint: topLevelKinds(root),
			}
		}
		node = node.Children[i]
	}
	return node, nil
}

// resolveSemantic performs a depth-first pre-order search for the first
// node whose kind matches the selector's kind (through the alias table) and
// whose Name() equals the selector's name.
func resolveSemantic(root *TreeNode, selector string) (*TreeNode, error) {
	body := strings.TrimPrefix(selector, "@")
	parts := strings.SplitN(body, ":", 2)
	if len(parts) != 2 {
		return nil, &AddressError{Kind: ErrResolution, Selector: selector, Message: "malformed semantic selector, want @kind:name"}
	}
	kind, name := parts[0], parts[1]
	wantKinds := KindsFor(kind)
	found := findFirst(root, func(n *TreeNode) bool {
		return containsString(wantKinds, n.Kind) && n.Name() == name
	})
	if found == nil {
		return nil, &AddressError{
			Kind: ErrResolution, Selector: selector,
			Message:      "no node of kind " + kind + " named " + name,
			TopLevelHint: topLevelKinds(root),
		}
	}
	return found, nil
}

func findFirst(n *TreeNode, pred func(*TreeNode) bool) *TreeNode {
	if pred(n) {
		return n
	}
	for _, c := range n.Children {
		if found := findFirst(c, pred); found != nil {
			return found
		}
	}
	return nil
}

func topLevelKinds(root *TreeNode) []string {
	out := make([]string, 0, len(root.Children))
	for _, c := range root.Children {
		out = append(out, c.Kind)
	}
	return out
}

func containsString(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}


// Package javascript provides JavaScript language support via the shared
// tree-sitter base provider.
package javascript

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/oxhq/gnawtree/providers/base"
)

type Config struct{}

func (c *Config) Language() string              { return "javascript" }
func (c *Config) Extensions() []string          { return []string{".js", ".jsx", ".mjs", ".cjs"} }
func (c *Config) GetLanguage() *sitter.Language { return javascript.GetLanguage() }

func (c *Config) KindAliases() map[string][]string {
	return map[string][]string{
		"function":    {"function_declaration", "function_expression", "arrow_function", "method_definition"},
		"func":        {"function_declaration", "function_expression", "arrow_function", "method_definition"},
		"fn":          {"function_declaration", "function_expression", "arrow_function", "method_definition"},
		"method":      {"method_definition"},
		"constructor": {"method_definition"},
		"class":       {"class_declaration", "class_expression"},
		"property":    {"field_definition"},
		"field":       {"field_definition"},
		"variable":    {"variable_declaration", "lexical_declaration", "variable_declarator"},
		"var":         {"variable_declaration", "lexical_declaration", "variable_declarator"},
		"const":       {"variable_declaration", "lexical_declaration", "variable_declarator"},
		"lambda":      {"arrow_function"},
		"import":      {"import_statement"},
		"comment":     {"comment"},
	}
}

// New creates a JavaScript provider using the shared base provider.
func New() *base.Provider {
	return base.New(&Config{})
}

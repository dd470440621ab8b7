// Package typescript provides TypeScript language support via the shared
// tree-sitter base provider.
package typescript

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/oxhq/gnawtree/providers/base"
)

type Config struct{}

func (c *Config) Language() string              { return "typescript" }
func (c *Config) Extensions() []string          { return []string{".ts", ".tsx"} }
func (c *Config) GetLanguage() *sitter.Language { return typescript.GetLanguage() }

func (c *Config) KindAliases() map[string][]string {
	return map[string][]string{
		"function":    {"function_declaration", "function_expression", "arrow_function", "method_definition", "method_signature"},
		"func":        {"function_declaration", "function_expression", "arrow_function", "method_definition", "method_signature"},
		"fn":          {"function_declaration", "function_expression", "arrow_function", "method_definition", "method_signature"},
		"class":       {"class_declaration", "class_expression"},
		"interface":   {"interface_declaration"},
		"iface":       {"interface_declaration"},
		"type":        {"type_alias_declaration"},
		"enum":        {"enum_declaration"},
		"method":      {"method_definition", "method_signature"},
		"constructor": {"method_definition"},
		"variable":    {"variable_declaration", "lexical_declaration", "variable_declarator"},
		"var":         {"variable_declaration", "lexical_declaration", "variable_declarator"},
		"const":       {"variable_declaration", "lexical_declaration", "variable_declarator"},
		"import":      {"import_statement"},
		"comment":     {"comment"},
	}
}

// New creates a TypeScript provider using the shared base provider.
func New() *base.Provider {
	return base.New(&Config{})
}

// Package java provides Java language support via the shared tree-sitter
// base provider.
package java

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/oxhq/gnawtree/providers/base"
)

type Config struct{}

func (c *Config) Language() string              { return "java" }
func (c *Config) Extensions() []string          { return []string{".java"} }
func (c *Config) GetLanguage() *sitter.Language { return java.GetLanguage() }

func (c *Config) KindAliases() map[string][]string {
	return map[string][]string{
		"function":  {"method_declaration", "constructor_declaration"},
		"func":      {"method_declaration", "constructor_declaration"},
		"fn":        {"method_declaration", "constructor_declaration"},
		"method":    {"method_declaration"},
		"class":     {"class_declaration"},
		"interface": {"interface_declaration"},
		"enum":      {"enum_declaration"},
		"field":     {"field_declaration"},
		"variable":  {"local_variable_declaration", "field_declaration"},
		"var":       {"local_variable_declaration", "field_declaration"},
		"import":    {"import_declaration"},
		"package":   {"package_declaration"},
		"annotation": {"annotation"},
		"comment":   {"comment", "line_comment", "block_comment"},
	}
}

// New creates a Java provider using the shared base provider.
func New() *base.Provider {
	return base.New(&Config{})
}

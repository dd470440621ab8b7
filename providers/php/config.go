// Package php provides PHP language support via the shared tree-sitter
// base provider.
package php

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"

	"github.com/oxhq/gnawtree/providers/base"
)

type Config struct{}

func (c *Config) Language() string { return "php" }
func (c *Config) Extensions() []string {
	return []string{".php", ".phtml", ".php4", ".php5", ".phps"}
}
func (c *Config) GetLanguage() *sitter.Language { return php.GetLanguage() }

func (c *Config) KindAliases() map[string][]string {
	return map[string][]string{
		"function":  {"function_definition", "method_declaration"},
		"func":      {"function_definition", "method_declaration"},
		"fn":        {"function_definition", "method_declaration"},
		"method":    {"method_declaration"},
		"class":     {"class_declaration"},
		"interface": {"interface_declaration"},
		"trait":     {"trait_declaration"},
		"variable":  {"simple_parameter", "property_declaration", "variable_name"},
		"var":       {"simple_parameter", "property_declaration", "variable_name"},
		"constant":  {"const_declaration"},
		"const":     {"const_declaration"},
		"namespace": {"namespace_definition"},
		"comment":   {"comment"},
	}
}

// New creates a PHP provider using the shared base provider.
func New() *base.Provider {
	return base.New(&Config{})
}

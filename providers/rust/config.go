// Package rust provides Rust language support via the shared tree-sitter
// base provider.
package rust

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/oxhq/gnawtree/providers/base"
)

type Config struct{}

func (c *Config) Language() string              { return "rust" }
func (c *Config) Extensions() []string          { return []string{".rs"} }
func (c *Config) GetLanguage() *sitter.Language { return rust.GetLanguage() }

func (c *Config) KindAliases() map[string][]string {
	return map[string][]string{
		"function":  {"function_item"},
		"func":      {"function_item"},
		"fn":        {"function_item"},
		"struct":    {"struct_item"},
		"enum":      {"enum_item"},
		"trait":     {"trait_item"},
		"impl":      {"impl_item"},
		"mod":       {"mod_item"},
		"module":    {"mod_item"},
		"use":       {"use_declaration"},
		"import":    {"use_declaration"},
		"variable":  {"let_declaration"},
		"var":       {"let_declaration"},
		"const":     {"const_item"},
		"static":    {"static_item"},
		"macro":     {"macro_definition"},
		"comment":   {"line_comment", "block_comment"},
	}
}

// New creates a Rust provider using the shared base provider.
func New() *base.Provider {
	return base.New(&Config{})
}

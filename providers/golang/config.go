// Package golang provides Go language support via the shared tree-sitter
// base provider and Go's node-kind alias table.
package golang

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/oxhq/gnawtree/providers/base"
)

// Config implements base.LanguageConfig for Go.
type Config struct{}

func (c *Config) Language() string              { return "go" }
func (c *Config) Extensions() []string          { return []string{".go"} }
func (c *Config) GetLanguage() *sitter.Language { return golang.GetLanguage() }

func (c *Config) KindAliases() map[string][]string {
	return map[string][]string{
		"function":  {"function_declaration", "method_declaration"},
		"func":      {"function_declaration", "method_declaration"},
		"fn":        {"function_declaration", "method_declaration"},
		"method":    {"method_declaration"},
		"struct":    {"type_spec"},
		"interface": {"type_spec"},
		"variable":  {"var_declaration", "short_var_declaration"},
		"var":       {"var_declaration", "short_var_declaration"},
		"constant":  {"const_declaration"},
		"const":     {"const_declaration"},
		"import":    {"import_declaration"},
		"type":      {"type_declaration", "type_spec"},
		"field":     {"field_declaration"},
		"comment":   {"comment"},
	}
}

// New creates a Go provider using the shared base provider with Go's config.
func New() *base.Provider {
	return base.New(&Config{})
}

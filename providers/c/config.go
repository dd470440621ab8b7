// Package c provides C language support via the shared tree-sitter base
// provider.
package c

import (
	"github.com/smacker/go-tree-sitter/c"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/gnawtree/providers/base"
)

type Config struct{}

func (cfg *Config) Language() string              { return "c" }
func (cfg *Config) Extensions() []string          { return []string{".c", ".h"} }
func (cfg *Config) GetLanguage() *sitter.Language { return c.GetLanguage() }

func (cfg *Config) KindAliases() map[string][]string {
	return map[string][]string{
		"function": {"function_definition"},
		"func":     {"function_definition"},
		"fn":       {"function_definition"},
		"struct":   {"struct_specifier"},
		"enum":     {"enum_specifier"},
		"union":    {"union_specifier"},
		"typedef":  {"type_definition"},
		"variable": {"declaration"},
		"var":      {"declaration"},
		"include":  {"preproc_include"},
		"import":   {"preproc_include"},
		"macro":    {"preproc_def", "preproc_function_def"},
		"comment":  {"comment"},
	}
}

// New creates a C provider using the shared base provider.
func New() *base.Provider {
	return base.New(&Config{})
}

// Package cpp provides C++ language support via the shared tree-sitter
// base provider.
package cpp

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"

	"github.com/oxhq/gnawtree/providers/base"
)

type Config struct{}

func (c *Config) Language() string              { return "cpp" }
func (c *Config) Extensions() []string          { return []string{".cpp", ".cc", ".cxx", ".hpp", ".hh"} }
func (c *Config) GetLanguage() *sitter.Language { return cpp.GetLanguage() }

func (c *Config) KindAliases() map[string][]string {
	return map[string][]string{
		"function":  {"function_definition"},
		"func":      {"function_definition"},
		"fn":        {"function_definition"},
		"class":     {"class_specifier"},
		"struct":    {"struct_specifier"},
		"namespace": {"namespace_definition"},
		"enum":      {"enum_specifier"},
		"template":  {"template_declaration"},
		"variable":  {"declaration"},
		"var":       {"declaration"},
		"include":   {"preproc_include"},
		"import":    {"preproc_include"},
		"comment":   {"comment"},
	}
}

// New creates a C++ provider using the shared base provider.
func New() *base.Provider {
	return base.New(&Config{})
}

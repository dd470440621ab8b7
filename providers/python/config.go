// Package python provides Python language support via the shared
// tree-sitter base provider.
package python

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/oxhq/gnawtree/providers/base"
)

type Config struct{}

func (c *Config) Language() string              { return "python" }
func (c *Config) Extensions() []string          { return []string{".py", ".pyw", ".pyi"} }
func (c *Config) GetLanguage() *sitter.Language { return python.GetLanguage() }

func (c *Config) KindAliases() map[string][]string {
	return map[string][]string{
		"function":  {"function_definition", "async_function_definition"},
		"func":      {"function_definition", "async_function_definition"},
		"fn":        {"function_definition", "async_function_definition"},
		"method":    {"function_definition", "async_function_definition"},
		"def":       {"function_definition", "async_function_definition"},
		"class":     {"class_definition"},
		"cls":       {"class_definition"},
		"variable":  {"assignment", "augmented_assignment"},
		"var":       {"assignment", "augmented_assignment"},
		"import":    {"import_statement", "import_from_statement"},
		"from":      {"import_from_statement"},
		"decorator": {"decorator"},
		"lambda":    {"lambda"},
		"comment":   {"comment"},
	}
}

// New creates a Python provider using the shared base provider.
func New() *base.Provider {
	return base.New(&Config{})
}

// Package bash provides Bash/shell language support via the shared
// tree-sitter base provider.
package bash

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"

	"github.com/oxhq/gnawtree/providers/base"
)

type Config struct{}

func (c *Config) Language() string              { return "bash" }
func (c *Config) Extensions() []string          { return []string{".sh", ".bash", ".zsh"} }
func (c *Config) GetLanguage() *sitter.Language { return bash.GetLanguage() }

func (c *Config) KindAliases() map[string][]string {
	return map[string][]string{
		"function": {"function_definition"},
		"func":     {"function_definition"},
		"fn":       {"function_definition"},
		"variable": {"variable_assignment"},
		"var":      {"variable_assignment"},
		"command":  {"command"},
		"comment":  {"comment"},
	}
}

// New creates a Bash provider using the shared base provider.
func New() *base.Provider {
	return base.New(&Config{})
}

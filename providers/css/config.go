// Package css provides CSS language support via the shared tree-sitter
// base provider.
package css

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/css"

	"github.com/oxhq/gnawtree/providers/base"
)

type Config struct{}

func (c *Config) Language() string              { return "css" }
func (c *Config) Extensions() []string          { return []string{".css"} }
func (c *Config) GetLanguage() *sitter.Language { return css.GetLanguage() }

func (c *Config) KindAliases() map[string][]string {
	return map[string][]string{
		"rule":       {"rule_set"},
		"ruleset":    {"rule_set"},
		"selector":   {"selectors"},
		"declaration": {"declaration"},
		"property":   {"declaration"},
		"media":      {"media_statement"},
		"import":     {"import_statement"},
		"comment":    {"comment"},
	}
}

// New creates a CSS provider using the shared base provider.
func New() *base.Provider {
	return base.New(&Config{})
}

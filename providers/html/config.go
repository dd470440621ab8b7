// Package html provides HTML language support via the shared tree-sitter
// base provider.
package html

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/html"

	"github.com/oxhq/gnawtree/providers/base"
)

type Config struct{}

func (c *Config) Language() string              { return "html" }
func (c *Config) Extensions() []string          { return []string{".html", ".htm"} }
func (c *Config) GetLanguage() *sitter.Language { return html.GetLanguage() }

func (c *Config) KindAliases() map[string][]string {
	return map[string][]string{
		"element":  {"element"},
		"tag":      {"element"},
		"script":   {"script_element"},
		"style":    {"style_element"},
		"attr":     {"attribute"},
		"comment":  {"comment"},
	}
}

// New creates an HTML provider using the shared base provider.
func New() *base.Provider {
	return base.New(&Config{})
}

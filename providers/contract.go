// Package providers defines the Parser contract every language backend
// implements and the Registry that dispatches a file extension to one.
package providers

import (
	"strings"
	"sync"

	"github.com/oxhq/gnawtree/core"
	"github.com/oxhq/gnawtree/providers/catalog"
)

// ValidationResult is the outcome of validating a candidate source string
// before it is written to disk (the "Duplex Loop").
type ValidationResult struct {
	Valid  bool
	Errors []*core.SyntaxError
}

// Parser is the contract every language backend must satisfy: Parse always
// returns a tree (grammar errors become ERROR nodes, never a failed call),
// Validate is the pre-write gate, and SupportedExtensions drives registry
// dispatch.
type Parser interface {
	Parse(source string) *core.TreeNode
	Validate(source string) ValidationResult
	SupportedExtensions() []string
	Language() string
}

// Stats captures parser-pool level metrics a Parser may optionally expose.
type Stats struct {
	BorrowCount int64
	ReturnCount int64
	Active      int64
}

// StatsProvider is implemented by parsers backed by a reusable resource
// pool (tree-sitter parsers, in this repo).
type StatsProvider interface {
	Stats() Stats
}

// Registry maps file extensions to a concrete Parser, falling back to a
// generic single-node parser for unregistered extensions.
type Registry struct {
	mu      sync.RWMutex
	byExt   map[string]Parser
	generic Parser
}

// NewRegistry creates an empty registry. Register the generic fallback
// parser with SetGeneric before calling Lookup on an unknown extension.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]Parser)}
}

// Register adds a parser for all of its declared extensions and publishes
// it to the shared extension catalog.
func (r *Registry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range p.SupportedExtensions() {
		r.byExt[normalizeExt(ext)] = p
	}
	catalog.Register(catalog.LanguageInfo{ID: p.Language(), Extensions: p.SupportedExtensions()})
}

// SetGeneric installs the fallback parser used for extensions with no
// registered language parser.
func (r *Registry) SetGeneric(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generic = p
}

// Lookup returns the parser registered for a file's extension, or the
// generic fallback if none is registered and one has been installed.
func (r *Registry) Lookup(filePath string) (Parser, error) {
	ext := extOf(filePath)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.byExt[ext]; ok {
		return p, nil
	}
	if r.generic != nil {
		return r.generic, nil
	}
	return nil, &core.UnsupportedError{Extension: ext}
}

// Languages lists every registered language identifier.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, p := range r.byExt {
		if !seen[p.Language()] {
			seen[p.Language()] = true
			out = append(out, p.Language())
		}
	}
	return out
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func extOf(filePath string) string {
	idx := strings.LastIndex(filePath, ".")
	slash := strings.LastIndexAny(filePath, "/\\")
	if idx < 0 || idx < slash {
		return ""
	}
	return strings.ToLower(filePath[idx:])
}

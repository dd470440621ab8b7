// Package tags implements the project-wide Tag Store: a persistent
// {file -> {name -> node path}} mapping that gives callers stable names
// for nodes whose numeric paths shift on every reparse. It is grounded on
// the teacher's content-hash validation pattern (mcp/transform_finalize.go's
// calculateSHA256 / BaseDigest checks), applied here to tag freshness
// instead of staged-edit freshness.
package tags

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oxhq/gnawtree/core"
)

// Tag is the persisted triple (file, name, node path) plus the content
// hash of the file at tag-creation time, used to detect a tag that has
// gone stale because the file changed underneath it.
type Tag struct {
	File string `json:"file"`
	Name string `json:"name"`
	Kind string `json:"kind"`
	Path string `json:"path"`
	Hash string `json:"hash"`
}

// IsStale reports whether source no longer matches the hash recorded when
// the tag was created — a cheap, exact check that the node a tag points
// to may have moved or vanished since.
func (t Tag) IsStale(source string) bool {
	return t.Hash != "" && t.Hash != HashSource(source)
}

// fileEntry is the on-disk shape: one record per file, names unique
// within it (spec.md §3's "Names are unique per file").
type fileEntry map[string]Tag

// document is the whole persisted tags file.
type document map[string]fileEntry

// Store is the in-process cache over the project-root tags file. It loads
// lazily on first read and invalidates the cache on every write, per
// spec.md §5's "Tag Store caches the mapping on first read per process;
// writers invalidate the cache on commit." A single mutex guards both the
// cache and the file, since tag reads/writes are rare relative to parsing
// and resolution — a read/write split buys nothing here.
type Store struct {
	path   string
	writer *core.AtomicWriter

	mu     sync.Mutex
	loaded bool
	doc    document
}

// New creates a tag store backed by the given project-root tags file
// (typically ".gnawtree/tags.json"). Nothing is read from disk until the
// first Resolve, List, or Put call.
func New(path string) *Store {
	return &Store{path: path, writer: core.NewAtomicWriter(core.DefaultAtomicConfig())}
}

func (s *Store) ensureLoaded() error {
	if s.loaded {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.doc = make(document)
			s.loaded = true
			return nil
		}
		return &core.IOError{Phase: "read", Path: s.path, Err: err}
	}
	doc := make(document)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return &core.IOError{Phase: "read", Path: s.path, Err: fmt.Errorf("malformed tags file: %w", err)}
		}
	}
	s.doc = doc
	s.loaded = true
	return nil
}

// ResolveTag implements core.TagResolver: looks up name under file,
// returning the last-known node path. Callers should cross-check Get's
// Tag.IsStale against the file's current source before trusting the path
// resolves to the node they expect.
func (s *Store) ResolveTag(file, name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return "", false
	}
	entry, ok := s.doc[file]
	if !ok {
		return "", false
	}
	tag, ok := entry[name]
	if !ok {
		return "", false
	}
	return tag.Path, true
}

// Get returns the full Tag record (including its content hash) so callers
// can detect staleness against the file's current bytes.
func (s *Store) Get(file, name string) (Tag, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return Tag{}, false
	}
	entry, ok := s.doc[file]
	if !ok {
		return Tag{}, false
	}
	tag, ok := entry[name]
	return tag, ok
}

// List returns every tag recorded for file.
func (s *Store) List(file string) []Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return nil
	}
	entry := s.doc[file]
	out := make([]Tag, 0, len(entry))
	for _, tag := range entry {
		out = append(out, tag)
	}
	return out
}

// Put creates or overwrites a tag. Callers resolve the target path
// against a fresh parse before calling Put, so a tag can never be
// persisted pointing at a path absent from the current parse (spec.md
// §3: "validated against the current parse when created").
func (s *Store) Put(file, name, kind, path, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	if s.doc[file] == nil {
		s.doc[file] = make(fileEntry)
	}
	s.doc[file][name] = Tag{File: file, Name: name, Kind: kind, Path: path, Hash: HashSource(source)}
	return s.flushLocked()
}

// Delete removes a tag; it is not an error to delete one that doesn't
// exist.
func (s *Store) Delete(file, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	if entry, ok := s.doc[file]; ok {
		delete(entry, name)
	}
	return s.flushLocked()
}

// Rename changes a tag's name in place, keeping its kind, path, and
// freshness hash untouched. It is an error to rename a tag that doesn't
// exist.
func (s *Store) Rename(file, oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	entry, ok := s.doc[file]
	if !ok {
		return &core.AddressError{Kind: core.ErrResolution, File: file, Selector: oldName, Message: "tag not found"}
	}
	tag, ok := entry[oldName]
	if !ok {
		return &core.AddressError{Kind: core.ErrResolution, File: file, Selector: oldName, Message: "tag not found"}
	}
	delete(entry, oldName)
	tag.Name = newName
	entry[newName] = tag
	return s.flushLocked()
}

// flushLocked writes the in-memory document to disk. Callers hold the
// lock already.
func (s *Store) flushLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return &core.IOError{Phase: "write", Path: s.path, Err: err}
	}
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return &core.IOError{Phase: "write", Path: s.path, Err: err}
	}
	return s.writer.WriteFile(s.path, data, 0o644)
}

// HashSource returns the hex SHA-256 digest of source, the same digest
// scheme the teacher uses for BaseDigest/AfterDigest on staged edits.
func HashSource(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Package backup implements the Backup Store: plain content-addressed
// file snapshots written before (and after) every mutating operation.
// Ported from the teacher's AtomicWriter.createBackup, generalized from a
// single ".bak" sidecar into the addressable, never-deleted envelope
// scheme spec.md §4.5 names.
package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/oxhq/gnawtree/core"
)

// Envelope is the small JSON record a backup file holds: the original
// path, its mtime at snapshot time, and the file's exact bytes. Storage
// is language-neutral — the store never interprets file content.
type Envelope struct {
	Path       string    `json:"path"`
	MTime      time.Time `json:"mtime"`
	Content    string    `json:"content"`
	TakenAt    time.Time `json:"taken_at"`
	ContentSHA string    `json:"content_sha256"`
}

// Store writes and reads backup envelopes under a project-root directory
// (typically ".gnawtree/backups"). It offers no GC policy, matching
// spec.md §4.5 exactly — deletion is left to operators.
type Store struct {
	dir    string
	writer *core.AtomicWriter
}

// New creates a backup store rooted at dir. The directory is created
// lazily on the first Snapshot call.
func New(dir string) *Store {
	return &Store{dir: dir, writer: core.NewAtomicWriter(core.DefaultAtomicConfig())}
}

// Ref identifies one stored envelope: <timestamp>_<path-hash>.<content-hash>.json,
// exactly spec.md §4.5's naming scheme.
type Ref string

// Snapshot stores content as it exists for path right now, returning a Ref
// that Get can later retrieve it by. now is passed in rather than read
// from time.Now() internally so callers control the timestamp used in the
// ref (batch/txlog callers share one "now" across a whole transaction).
func (s *Store) Snapshot(path, content string, now time.Time) (Ref, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", &core.IOError{Phase: "backup", Path: path, Err: err}
	}

	mtime := now
	if info, err := os.Stat(path); err == nil {
		mtime = info.ModTime()
	}

	contentHash := hashHex(content)
	env := Envelope{
		Path: path, MTime: mtime, Content: content,
		TakenAt: now, ContentSHA: contentHash,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return "", &core.IOError{Phase: "backup", Path: path, Err: err}
	}

	ref := Ref(fmt.Sprintf("%d_%s.%s.json", now.UnixNano(), hashHex(path), contentHash))
	full := filepath.Join(s.dir, string(ref))
	if err := s.writer.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}
	return ref, nil
}

// Get retrieves a previously stored envelope by its ref.
func (s *Store) Get(ref Ref) (Envelope, error) {
	full := filepath.Join(s.dir, string(ref))
	data, err := os.ReadFile(full)
	if err != nil {
		return Envelope{}, &core.IOError{Phase: "backup", Path: full, Err: err}
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, &core.IOError{Phase: "backup", Path: full, Err: fmt.Errorf("malformed envelope: %w", err)}
	}
	return env, nil
}

// Restore writes env's content back to its original path atomically.
func (s *Store) Restore(ref Ref) error {
	env, err := s.Get(ref)
	if err != nil {
		return err
	}
	return s.writer.WriteFile(env.Path, []byte(env.Content), 0o644)
}

func hashHex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:16]
}

// Timestamp extracts the UnixNano snapshot time encoded in a Ref, without
// re-reading the envelope.
func (ref Ref) Timestamp() (time.Time, error) {
	s := string(ref)
	us := 0
	for us < len(s) && s[us] != '_' {
		us++
	}
	if us == len(s) {
		return time.Time{}, fmt.Errorf("malformed ref %q", ref)
	}
	nanos, err := strconv.ParseInt(s[:us], 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed ref %q: %w", ref, err)
	}
	return time.Unix(0, nanos), nil
}

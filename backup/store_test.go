package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotAndGet(t *testing.T) {
	store := New(t.TempDir())
	now := time.Unix(1700000000, 0)

	ref, err := store.Snapshot("/src/main.go", "package main\n", now)
	require.NoError(t, err)

	env, err := store.Get(ref)
	require.NoError(t, err)
	assert.Equal(t, "/src/main.go", env.Path)
	assert.Equal(t, "package main\n", env.Content)
	assert.NotEmpty(t, env.ContentSHA)
}

func TestRestoreWritesBackToOriginalPath(t *testing.T) {
	dir := t.TempDir()
	store := New(filepath.Join(dir, "backups"))
	target := filepath.Join(dir, "main.go")
	now := time.Unix(1700000001, 0)

	ref, err := store.Snapshot(target, "package main\n\nfunc main() {}\n", now)
	require.NoError(t, err)

	require.NoError(t, store.Restore(ref))
	env, err := store.Get(ref)
	require.NoError(t, err)

	restored, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, env.Content, string(restored))
}

func TestRefTimestampRoundTrips(t *testing.T) {
	store := New(t.TempDir())
	now := time.Unix(1700000002, 500)

	ref, err := store.Snapshot("/a.go", "x", now)
	require.NoError(t, err)

	ts, err := ref.Timestamp()
	require.NoError(t, err)
	assert.Equal(t, now.UnixNano(), ts.UnixNano())
}

package txlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/gnawtree/backup"
	"github.com/oxhq/gnawtree/db"
	"github.com/oxhq/gnawtree/models"
)

// applyEdit writes newContent to path, snapshots both before/after states,
// appends the record describing the edit, and returns the record's id.
func applyEdit(t *testing.T, log *Log, store *backup.Store, path, before, after string) int64 {
	t.Helper()
	now := time.Now()

	require.NoError(t, os.WriteFile(path, []byte(before), 0o644))
	refBefore, err := store.Snapshot(path, before, now)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(after), 0o644))
	refAfter, err := store.Snapshot(path, after, now)
	require.NoError(t, err)

	id, err := log.Append(&models.TransactionRecord{
		FilePath:        path,
		OperationKind:   "edit",
		BackupBeforeRef: string(refBefore),
		BackupAfterRef:  string(refAfter),
	})
	require.NoError(t, err)
	return id
}

func TestUndoRestoresPreviousContent(t *testing.T) {
	dir := t.TempDir()
	gdb, err := db.Connect(":memory:", false)
	require.NoError(t, err)
	store := backup.New(filepath.Join(dir, "backups"))
	log := Open(gdb, store)

	target := filepath.Join(dir, "main.go")
	id := applyEdit(t, log, store, target, "package main\n", "package main\n\nfunc main() {}\n")

	session, err := log.CurrentSession()
	require.NoError(t, err)

	undone, err := log.Undo(session)
	require.NoError(t, err)
	assert.Equal(t, id, *undone.CompensatesID)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "package main\n", string(content))
}

func TestRedoReappliesUndoneEdit(t *testing.T) {
	dir := t.TempDir()
	gdb, err := db.Connect(":memory:", false)
	require.NoError(t, err)
	store := backup.New(filepath.Join(dir, "backups"))
	log := Open(gdb, store)

	target := filepath.Join(dir, "main.go")
	applyEdit(t, log, store, target, "package main\n", "package main\n\nfunc main() {}\n")

	session, err := log.CurrentSession()
	require.NoError(t, err)

	_, err = log.Undo(session)
	require.NoError(t, err)

	_, err = log.Redo(session)
	require.NoError(t, err)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "package main\n\nfunc main() {}\n", string(content))
}

func TestRedoFailsWithoutPrecedingUndo(t *testing.T) {
	dir := t.TempDir()
	gdb, err := db.Connect(":memory:", false)
	require.NoError(t, err)
	store := backup.New(filepath.Join(dir, "backups"))
	log := Open(gdb, store)

	target := filepath.Join(dir, "main.go")
	applyEdit(t, log, store, target, "package main\n", "package main\n\nfunc main() {}\n")

	session, err := log.CurrentSession()
	require.NoError(t, err)

	_, err = log.Redo(session)
	assert.Error(t, err)
}

func TestUndoFailsOnEmptySession(t *testing.T) {
	dir := t.TempDir()
	gdb, err := db.Connect(":memory:", false)
	require.NoError(t, err)
	store := backup.New(filepath.Join(dir, "backups"))
	log := Open(gdb, store)

	_, err = log.Undo("no-such-session")
	assert.Error(t, err)
}

// TestUndoTwiceStepsPastBothEditsInsteadOfPingPonging guards against
// latestUndoable picking its own compensating record back up: two forward
// edits A, B followed by undo, undo must land on the state before A, not
// bounce back to after A (the bug this test is named for reversed B then
// mistook its own compensating record for the next thing to undo).
func TestUndoTwiceStepsPastBothEditsInsteadOfPingPonging(t *testing.T) {
	dir := t.TempDir()
	gdb, err := db.Connect(":memory:", false)
	require.NoError(t, err)
	store := backup.New(filepath.Join(dir, "backups"))
	log := Open(gdb, store)

	target := filepath.Join(dir, "main.go")
	applyEdit(t, log, store, target, "package main\n", "package main // A\n")
	applyEdit(t, log, store, target, "package main // A\n", "package main // B\n")

	session, err := log.CurrentSession()
	require.NoError(t, err)

	_, err = log.Undo(session)
	require.NoError(t, err)
	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "package main // A\n", string(content))

	_, err = log.Undo(session)
	require.NoError(t, err)
	content, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "package main\n", string(content))
}

package restore

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
	"github.com/oxhq/gnawtree/txlog"
)

func newTestRestorer(t *testing.T) (*Restorer, *txlog.Log, *backup.Store, string) {
	t.Helper()
	dir := t.TempDir()
	backups := backup.New(filepath.Join(dir, "backups"))

	gdb, err := db.Connect(":memory:", false)
	require.NoError(t, err)
	log := txlog.Open(gdb, backups)

	return New(log, backups), log, backups, dir
}

func appendRecord(t *testing.T, log *txlog.Log, backups *backup.Store, file, before, after string, when time.Time) int64 {
	t.Helper()
	beforeRef, err := backups.Snapshot(file, before, when)
	require.NoError(t, err)
	afterRef, err := backups.Snapshot(file, after, when)
	require.NoError(t, err)

	id, err := log.Append(&models.TransactionRecord{
		Timestamp:       when,
		FilePath:        file,
		OperationKind:   "edit",
		BackupBeforeRef: string(beforeRef),
		BackupAfterRef:  string(afterRef),
	})
	require.NoError(t, err)
	return id
}

func TestForFileRestoresToTransactionAfterState(t *testing.T) {
	r, log, backups, dir := newTestRestorer(t)
	target := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(target, []byte("v3"), 0o644))

	id := appendRecord(t, log, backups, target, "v1", "v2", time.Now())

	targets, err := r.ForFile(target, id)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "v2", targets[0].Content)

	require.NoError(t, r.Apply(targets))
	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(content))
}

func TestForFileRejectsTransactionForAnotherFile(t *testing.T) {
	r, log, backups, dir := newTestRestorer(t)
	target := filepath.Join(dir, "a.txt")
	other := filepath.Join(dir, "b.txt")
	id := appendRecord(t, log, backups, other, "v1", "v2", time.Now())

	_, err := r.ForFile(target, id)
	assert.Error(t, err)
}

func TestForSessionRestoresToFirstRecordsBeforeState(t *testing.T) {
	r, log, backups, dir := newTestRestorer(t)
	target := filepath.Join(dir, "a.txt")

	appendRecord(t, log, backups, target, "v1", "v2", time.Now())
	appendRecord(t, log, backups, target, "v2", "v3", time.Now())

	sessionID, err := log.CurrentSession()
	require.NoError(t, err)

	targets, err := r.ForSession(sessionID)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "v1", targets[0].Content)
}

func TestForProjectRestoresToLatestAfterStateAtOrBeforeTimestamp(t *testing.T) {
	r, log, backups, dir := newTestRestorer(t)
	target := filepath.Join(dir, "a.txt")

	t0 := time.Now()
	appendRecord(t, log, backups, target, "v1", "v2", t0)
	cutoff := t0.Add(time.Second)
	appendRecord(t, log, backups, target, "v2", "v3", t0.Add(2*time.Second))

	targets, err := r.ForProject(cutoff)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "v2", targets[0].Content)
}

func TestForProjectFailsForFileWithNoHistoryBeforeTimestamp(t *testing.T) {
	r, log, backups, dir := newTestRestorer(t)
	target := filepath.Join(dir, "a.txt")

	future := time.Now().Add(time.Hour)
	appendRecord(t, log, backups, target, "v1", "v2", future)

	_, err := r.ForProject(time.Now())
	assert.Error(t, err)
}

func TestPreviewDiffsLiveContentAgainstTarget(t *testing.T) {
	_, _, _, dir := newTestRestorer(t)
	target := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(target, []byte("new\n"), 0o644))

	diffs, err := Preview([]Target{{File: target, Content: "old\n"}}, 3)
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Contains(t, diffs[0].Diff, "-new")
	assert.Contains(t, diffs[0].Diff, "+old")
}

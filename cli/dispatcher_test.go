package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/gnawtree/backup"
	"github.com/oxhq/gnawtree/batch"
	"github.com/oxhq/gnawtree/db"
	"github.com/oxhq/gnawtree/diffbatch"
	"github.com/oxhq/gnawtree/edit"
	"github.com/oxhq/gnawtree/providers"
	jsonprovider "github.com/oxhq/gnawtree/providers/structured/json"
	"github.com/oxhq/gnawtree/restore"
	"github.com/oxhq/gnawtree/tags"
	"github.com/oxhq/gnawtree/txlog"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, string) {
	t.Helper()
	dir := t.TempDir()

	registry := providers.NewRegistry()
	registry.Register(jsonprovider.New())

	tagStore := tags.New(filepath.Join(dir, "tags.json"))
	backups := backup.New(filepath.Join(dir, "backups"))

	gdb, err := db.Connect(":memory:", false)
	require.NoError(t, err)
	log := txlog.Open(gdb, backups)

	engine := edit.New(registry, tagStore, backups, log)
	return &Dispatcher{
		Registry:  registry,
		Engine:    engine,
		Batches:   batch.New(engine),
		Restorer:  restore.New(log, backups),
		DiffBatch: diffbatch.New(registry),
		Tags:      tagStore,
		Log:       log,
	}, dir
}

func TestRunEditAppliesAndRecords(t *testing.T) {
	d, dir := newTestDispatcher(t)
	target := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(target, []byte(`{"a": 1}`), 0o644))

	out := d.Run([]string{"edit", "--selector", "0.1", "--content", "2", target})
	require.NoError(t, out.Error)
	assert.Equal(t, 0, out.ExitCode)
	require.Len(t, out.Results, 1)
	assert.True(t, out.Results[0].Success)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(content), "2")
}

func TestRunEditPreviewDoesNotWrite(t *testing.T) {
	d, dir := newTestDispatcher(t)
	target := filepath.Join(dir, "config.json")
	original := `{"a": 1}`
	require.NoError(t, os.WriteFile(target, []byte(original), 0o644))

	out := d.Run([]string{"edit", "--selector", "0.1", "--content", "2", "--preview", target})
	require.NoError(t, out.Error)
	require.Len(t, out.Results, 1)
	assert.NotEmpty(t, out.Results[0].Diff)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, original, string(content))
}

func TestRunEditUnresolvedSelectorYieldsResolutionExitCode(t *testing.T) {
	d, dir := newTestDispatcher(t)
	target := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(target, []byte(`{"a": 1}`), 0o644))

	out := d.Run([]string{"edit", "--selector", "9.9", "--content", "2", target})
	assert.Error(t, out.Error)
	assert.Equal(t, 4, out.ExitCode)
}

func TestRunShowEmitsNodeSource(t *testing.T) {
	d, dir := newTestDispatcher(t)
	target := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(target, []byte(`{"a": 1}`), 0o644))

	out := d.Run([]string{"show", target, "0.1"})
	require.NoError(t, out.Error)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "1", out.Results[0].Message)
}

func TestRunListRespectsLimit(t *testing.T) {
	d, dir := newTestDispatcher(t)
	target := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(target, []byte(`{"a": 1, "b": 2}`), 0o644))

	out := d.Run([]string{"list", "--limit", "1", target})
	require.NoError(t, out.Error)
	require.Len(t, out.Results, 1)
	assert.NotEmpty(t, out.Results[0].Message)
	assert.Equal(t, 1, strings.Count(out.Results[0].Message, "\n"))
}

func TestRunBatchAppliesDecodedJSON(t *testing.T) {
	d, dir := newTestDispatcher(t)
	target := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(target, []byte(`{"a": 1}`), 0o644))

	batchFile := filepath.Join(dir, "batch.json")
	batchJSON := `{"description":"bump","operations":[{"type":"edit","file":"` + jsonEscape(target) + `","path":"0.1","content":"2"}]}`
	require.NoError(t, os.WriteFile(batchFile, []byte(batchJSON), 0o644))

	out := d.Run([]string{"batch", "--file", batchFile})
	require.NoError(t, out.Error)
	require.Len(t, out.Results, 1)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(content), "2")
}

func TestRunUndoRevertsLastEdit(t *testing.T) {
	d, dir := newTestDispatcher(t)
	target := filepath.Join(dir, "config.json")
	original := `{"a": 1}`
	require.NoError(t, os.WriteFile(target, []byte(original), 0o644))

	out := d.Run([]string{"edit", "--selector", "0.1", "--content", "2", target})
	require.NoError(t, out.Error)

	out = d.Run([]string{"undo"})
	require.NoError(t, out.Error)
	require.Len(t, out.Results, 1)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, original, string(content))
}

func TestRunUndoWithNoHistoryIsAStateError(t *testing.T) {
	d, _ := newTestDispatcher(t)
	out := d.Run([]string{"undo"})
	assert.Error(t, out.Error)
	assert.Equal(t, 6, out.ExitCode)
}

func TestRunTagAddListRemoveRename(t *testing.T) {
	d, dir := newTestDispatcher(t)
	target := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(target, []byte(`{"a": 1}`), 0o644))

	out := d.Run([]string{"tag", "add", "--file", target, "--path", "0.1", "--name", "value"})
	require.NoError(t, out.Error)

	out = d.Run([]string{"tag", "list", "--file", target})
	require.NoError(t, out.Error)
	assert.Contains(t, out.Results[0].Message, "value")

	out = d.Run([]string{"tag", "rename", "--file", target, "--name", "value", "--new-name", "renamed"})
	require.NoError(t, out.Error)

	out = d.Run([]string{"tag", "remove", "--file", target, "--name", "renamed"})
	require.NoError(t, out.Error)
}

func TestRunSessionStartReturnsAFreshSessionID(t *testing.T) {
	d, _ := newTestDispatcher(t)
	first := d.Run([]string{"session-start"})
	require.NoError(t, first.Error)
	second := d.Run([]string{"session-start"})
	require.NoError(t, second.Error)
	assert.NotEqual(t, first.Results[0].Message, second.Results[0].Message)
}

func TestRunUnknownCommandIsInputError(t *testing.T) {
	d, _ := newTestDispatcher(t)
	out := d.Run([]string{"frobnicate"})
	assert.Error(t, out.Error)
	assert.Equal(t, 2, out.ExitCode)
}

// jsonEscape escapes backslashes in Windows-style paths so they survive
// embedding in a hand-built JSON literal inside a test; on POSIX test
// runners this is a no-op.
func jsonEscape(path string) string {
	out := make([]byte, 0, len(path))
	for i := 0; i < len(path); i++ {
		if path[i] == '\\' {
			out = append(out, '\\', '\\')
			continue
		}
		out = append(out, path[i])
	}
	return string(out)
}

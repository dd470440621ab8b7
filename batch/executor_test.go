package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/gnawtree/backup"
	"github.com/oxhq/gnawtree/core"
	"github.com/oxhq/gnawtree/db"
	"github.com/oxhq/gnawtree/edit"
	"github.com/oxhq/gnawtree/providers"
	jsonprovider "github.com/oxhq/gnawtree/providers/structured/json"
	"github.com/oxhq/gnawtree/tags"
	"github.com/oxhq/gnawtree/txlog"
)

func newTestExecutor(t *testing.T) (*Executor, string) {
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
	return New(engine), dir
}

func TestPlanComposesOperationsAgainstTheSameFile(t *testing.T) {
	x, dir := newTestExecutor(t)
	target := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(target, []byte(`{"a": 1}`), 0o644))

	plan, err := x.Plan(Batch{Operations: []core.Operation{
		{Kind: core.OpEdit, File: target, Target: "0.1", NewContent: "2"},
		{Kind: core.OpInsert, File: target, Target: "", Position: core.AfterProperties, Content: `"b": 3`},
	}})
	require.NoError(t, err)
	require.Len(t, plan.files, 1)
	assert.Contains(t, plan.files[0].candidate, "2")
	assert.Contains(t, plan.files[0].candidate, `"b": 3`)
	assert.True(t, plan.Dirty())
}

func TestPlanFailsWhenALaterOperationIsInvalid(t *testing.T) {
	x, dir := newTestExecutor(t)
	target := filepath.Join(dir, "config.json")
	original := `{"a": 1}`
	require.NoError(t, os.WriteFile(target, []byte(original), 0o644))

	_, err := x.Plan(Batch{Operations: []core.Operation{
		{Kind: core.OpEdit, File: target, Target: "0.1", NewContent: "2"},
		{Kind: core.OpEdit, File: target, Target: "0.1", NewContent: "not valid json"},
	}})
	assert.Error(t, err)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, original, string(content))
}

func TestCommitWritesEveryChangedFile(t *testing.T) {
	x, dir := newTestExecutor(t)
	first := filepath.Join(dir, "a.json")
	second := filepath.Join(dir, "b.json")
	require.NoError(t, os.WriteFile(first, []byte(`{"a": 1}`), 0o644))
	require.NoError(t, os.WriteFile(second, []byte(`{"b": 1}`), 0o644))

	plan, err := x.Plan(Batch{Operations: []core.Operation{
		{Kind: core.OpEdit, File: first, Target: "0.1", NewContent: "2"},
		{Kind: core.OpEdit, File: second, Target: "0.1", NewContent: "3"},
	}})
	require.NoError(t, err)

	records, err := x.Commit(plan)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Contains(t, string(a), "2")

	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Contains(t, string(b), "3")
}

func TestCommitSkipsUnchangedFiles(t *testing.T) {
	x, dir := newTestExecutor(t)
	target := filepath.Join(dir, "config.json")
	original := `{"a": 1}`
	require.NoError(t, os.WriteFile(target, []byte(original), 0o644))

	plan, err := x.Plan(Batch{Operations: []core.Operation{
		{Kind: core.OpEdit, File: target, Target: "0.1", NewContent: "1"},
	}})
	require.NoError(t, err)
	assert.False(t, plan.Dirty())

	records, err := x.Commit(plan)
	require.NoError(t, err)
	assert.Empty(t, records)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, original, string(content))
}

func TestCommitRollsBackEarlierFilesWhenALaterOneFails(t *testing.T) {
	x, dir := newTestExecutor(t)
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"a": 1}`), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte(`{"b": 1}`), 0o644))

	plan, err := x.Plan(Batch{Operations: []core.Operation{
		{Kind: core.OpEdit, File: good, Target: "0.1", NewContent: "2"},
		{Kind: core.OpEdit, File: bad, Target: "0.1", NewContent: "3"},
	}})
	require.NoError(t, err)

	// Replace the second file with a directory of the same name under
	// the plan so its commit step fails after the first file has
	// already been written, exercising the rollback path.
	require.NoError(t, os.Remove(bad))
	require.NoError(t, os.Mkdir(bad, 0o755))
	t.Cleanup(func() { os.RemoveAll(bad) })

	_, err = x.Commit(plan)
	assert.Error(t, err)

	content, err := os.ReadFile(good)
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, string(content))
}

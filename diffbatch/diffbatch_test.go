package diffbatch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/gnawtree/backup"
	"github.com/oxhq/gnawtree/batch"
	"github.com/oxhq/gnawtree/core"
	"github.com/oxhq/gnawtree/db"
	"github.com/oxhq/gnawtree/edit"
	"github.com/oxhq/gnawtree/providers"
	jsonprovider "github.com/oxhq/gnawtree/providers/structured/json"
	"github.com/oxhq/gnawtree/tags"
	"github.com/oxhq/gnawtree/txlog"
)

func TestParseBuildsOneEditPerHunk(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.json")
	original := "{\n  \"a\": 1,\n  \"b\": 2\n}"
	require.NoError(t, os.WriteFile(target, []byte(original), 0o644))

	registry := providers.NewRegistry()
	registry.Register(jsonprovider.New())

	diffText := "" +
		"--- a/config.json\n" +
		"+++ b/" + target + "\n" +
		"@@ -1,4 +1,4 @@\n" +
		" {\n" +
		"-  \"a\": 1,\n" +
		"+  \"a\": 5,\n" +
		"   \"b\": 2\n" +
		" }\n"

	parsed, err := New(registry).Parse(diffText)
	require.NoError(t, err)
	require.Len(t, parsed.Operations, 1)

	op := parsed.Operations[0]
	assert.Equal(t, core.OpEdit, op.Kind)
	assert.Equal(t, target, op.File)
	assert.Contains(t, op.NewContent, `"a": 5`)
	assert.Contains(t, op.NewContent, `"b": 2`)
}

func TestParsedBatchAppliesThroughTheExecutor(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.json")
	original := "{\n  \"a\": 1,\n  \"b\": 2\n}"
	require.NoError(t, os.WriteFile(target, []byte(original), 0o644))

	registry := providers.NewRegistry()
	registry.Register(jsonprovider.New())

	diffText := "" +
		"--- a/config.json\n" +
		"+++ b/" + target + "\n" +
		"@@ -1,4 +1,4 @@\n" +
		" {\n" +
		"-  \"a\": 1,\n" +
		"+  \"a\": 5,\n" +
		"   \"b\": 2\n" +
		" }\n"

	parsed, err := New(registry).Parse(diffText)
	require.NoError(t, err)

	tagStore := tags.New(filepath.Join(dir, "tags.json"))
	backups := backup.New(filepath.Join(dir, "backups"))
	gdb, err := db.Connect(":memory:", false)
	require.NoError(t, err)
	log := txlog.Open(gdb, backups)
	engine := edit.New(registry, tagStore, backups, log)

	executor := batch.New(engine)
	plan, err := executor.Plan(parsed)
	require.NoError(t, err)

	_, err = executor.Commit(plan)
	require.NoError(t, err)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"a": 5`)
	assert.NotContains(t, string(content), `"a": 1`)
}

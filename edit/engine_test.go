package edit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/gnawtree/backup"
	"github.com/oxhq/gnawtree/core"
	"github.com/oxhq/gnawtree/db"
	jsonprovider "github.com/oxhq/gnawtree/providers/structured/json"
	"github.com/oxhq/gnawtree/providers"
	"github.com/oxhq/gnawtree/tags"
	"github.com/oxhq/gnawtree/txlog"
)

func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()

	registry := providers.NewRegistry()
	registry.Register(jsonprovider.New())

	tagStore := tags.New(filepath.Join(dir, "tags.json"))
	backups := backup.New(filepath.Join(dir, "backups"))

	gdb, err := db.Connect(":memory:", false)
	require.NoError(t, err)
	log := txlog.Open(gdb, backups)

	return New(registry, tagStore, backups, log), dir
}

func TestEngineAppliesEdit(t *testing.T) {
	engine, dir := newTestEngine(t)
	target := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(target, []byte(`{"name": "old", "version": 1}`), 0o644))

	rec, err := engine.Apply(core.Operation{
		Kind:       core.OpEdit,
		File:       target,
		Target:     "0.1",
		NewContent: `"new"`,
	})
	require.NoError(t, err)
	assert.NotZero(t, rec.ID)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"new"`)
	assert.NotContains(t, string(content), `"old"`)
}

func TestEngineRejectsEditThatBreaksSyntax(t *testing.T) {
	engine, dir := newTestEngine(t)
	target := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(target, []byte(`{"name": "old"}`), 0o644))

	_, err := engine.Apply(core.Operation{
		Kind:       core.OpEdit,
		File:       target,
		Target:     "0.1",
		NewContent: `not valid json`,
	})
	assert.Error(t, err)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, `{"name": "old"}`, string(content))
}

func TestNodeIndentReadsTargetLineLeadingWhitespace(t *testing.T) {
	source := "if true {\n    doStuff()\n}\n"
	node := &core.TreeNode{StartLine: 2, EndLine: 2, StartColumn: -1, EndColumn: -1}
	assert.Equal(t, "    ", nodeIndent(source, node))
}

func TestReanchorFirstLineIndentReplacesOnlyTheFirstLinesIndent(t *testing.T) {
	got := reanchorFirstLineIndent("  ", "func f() {\n\tbody()\n}")
	assert.Equal(t, "  func f() {\n\tbody()\n}", got)
}

func TestReanchorFirstLineIndentHandlesSingleLineContent(t *testing.T) {
	got := reanchorFirstLineIndent("\t\t", "x := 1")
	assert.Equal(t, "\t\tx := 1", got)
}

func TestEngineAppliesDelete(t *testing.T) {
	// A single-property object sidesteps the comma-adjacency problem any
	// line-splicing delete has for a middle/trailing list element (see
	// DESIGN.md's edit engine entry) while still exercising the pipeline.
	engine, dir := newTestEngine(t)
	target := filepath.Join(dir, "config.json")
	original := "{\n  \"a\": 1\n}\n"
	require.NoError(t, os.WriteFile(target, []byte(original), 0o644))

	_, err := engine.Apply(core.Operation{
		Kind:   core.OpDelete,
		File:   target,
		Target: "0",
	})
	require.NoError(t, err)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.NotContains(t, string(content), `"a"`)
}

package rpcserver

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/gnawtree/backup"
	"github.com/oxhq/gnawtree/batch"
	"github.com/oxhq/gnawtree/cli"
	"github.com/oxhq/gnawtree/db"
	"github.com/oxhq/gnawtree/diffbatch"
	"github.com/oxhq/gnawtree/edit"
	"github.com/oxhq/gnawtree/providers"
	jsonprovider "github.com/oxhq/gnawtree/providers/structured/json"
	"github.com/oxhq/gnawtree/restore"
	"github.com/oxhq/gnawtree/tags"
	"github.com/oxhq/gnawtree/txlog"
)

func newTestServer(t *testing.T) (*Server, string) {
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
	dispatcher := &cli.Dispatcher{
		Registry:  registry,
		Engine:    engine,
		Batches:   batch.New(engine),
		Restorer:  restore.New(log, backups),
		DiffBatch: diffbatch.New(registry),
		Tags:      tagStore,
		Log:       log,
	}

	srv := NewServer()
	srv.Register(&EditTool{Dispatcher: dispatcher})
	return srv, dir
}

func TestServeAppliesEditToolCall(t *testing.T) {
	srv, dir := newTestServer(t)
	target := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(target, []byte(`{"a": 1}`), 0o644))

	reqLine, err := json.Marshal(map[string]any{
		"id":   "1",
		"tool": "edit",
		"args": map[string]any{
			"file":     target,
			"selector": "0.1",
			"content":  "2",
		},
	})
	require.NoError(t, err)

	var out bytes.Buffer
	err = srv.Serve(context.Background(), strings.NewReader(string(reqLine)+"\n"), &out)
	require.NoError(t, err)

	var resp response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "1", resp.ID)
	assert.Empty(t, resp.Error)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(content), "2")
}

func TestServeUnknownToolYieldsErrorResponse(t *testing.T) {
	srv, _ := newTestServer(t)

	reqLine := `{"id":"2","tool":"frobnicate","args":{}}`

	var out bytes.Buffer
	err := srv.Serve(context.Background(), strings.NewReader(reqLine+"\n"), &out)
	require.NoError(t, err)

	var resp response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "2", resp.ID)
	assert.Contains(t, resp.Error, "unknown tool")
}

func TestServeMalformedLineYieldsErrorResponse(t *testing.T) {
	srv, _ := newTestServer(t)

	var out bytes.Buffer
	err := srv.Serve(context.Background(), strings.NewReader("not json\n"), &out)
	require.NoError(t, err)

	var resp response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Contains(t, resp.Error, "malformed request")
}

func TestToolsListsRegisteredDescriptors(t *testing.T) {
	srv, _ := newTestServer(t)
	descs := srv.Tools()
	require.Len(t, descs, 1)
	assert.Equal(t, "edit", descs[0].Name)
	assert.NotEmpty(t, descs[0].Parameters)
}

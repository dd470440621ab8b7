package toml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTableAndPairs(t *testing.T) {
	src := "title = \"gnaw\"\n\n[server]\nhost = \"localhost\"\nport = 8080\n"
	root := New().Parse(src)

	require.Len(t, root.Children, 2)
	assert.Equal(t, "pair", root.Children[0].Kind)
	assert.Equal(t, "title", root.Children[0].Name())

	server := root.Children[1]
	require.Equal(t, "table", server.Kind)
	require.Len(t, server.Children, 2)
	assert.Equal(t, "host", server.Children[0].Name())
	assert.Equal(t, 4, server.Children[0].StartLine)
}

func TestValidateRejectsMalformed(t *testing.T) {
	result := New().Validate("title = \n[server\nhost = \"x\"\n")
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
}

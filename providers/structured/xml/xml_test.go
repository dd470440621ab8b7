package xml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseElement(t *testing.T) {
	src := `<config><server host="localhost">8080</server></config>`
	root := New().Parse(src)

	require.Equal(t, "element:config", root.Kind)
	require.Len(t, root.Children, 1)

	server := root.Children[0]
	assert.Equal(t, "element:server", server.Kind)
	require.GreaterOrEqual(t, len(server.Children), 2)
}

func TestValidateRejectsUnclosedTag(t *testing.T) {
	result := New().Validate(`<config><server></config>`)
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
}

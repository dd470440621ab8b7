package yaml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMapping(t *testing.T) {
	src := "name: gnaw\ncount: 3\ntags:\n  - a\n  - b\n"
	root := New().Parse(src)

	require.Equal(t, "object", root.Kind)
	require.Len(t, root.Children, 3)
	assert.Equal(t, "name", root.Children[0].Name())

	tags := root.Children[2].Children[1]
	require.Equal(t, "array", tags.Kind)
	assert.Len(t, tags.Children, 2)
}

func TestValidateRejectsBadIndentation(t *testing.T) {
	result := New().Validate("a:\n  b: 1\n c: 2\n")
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
}

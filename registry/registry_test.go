package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistersEveryBuiltinLanguage(t *testing.T) {
	r := Default()

	for _, ext := range []string{".go", ".py", ".js", ".ts", ".java", ".c", ".cpp", ".rs", ".php", ".sh", ".html", ".css", ".json", ".yaml", ".toml", ".xml"} {
		_, err := r.Lookup("file" + ext)
		require.NoError(t, err, "expected a parser for %s", ext)
	}
}

func TestDefaultFallsBackToGenericForUnknownExtensions(t *testing.T) {
	r := Default()
	p, err := r.Lookup("file.unknownext")
	require.NoError(t, err)
	assert.NotNil(t, p)
}

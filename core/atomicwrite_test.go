package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWriterWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	w := NewAtomicWriter(DefaultAtomicConfig())

	require.NoError(t, w.WriteFile(path, []byte("hello"), 0o644))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	// Temp file must not survive a successful write.
	_, err = os.Stat(path + w.config.TempSuffix)
	assert.True(t, os.IsNotExist(err))
}

func TestAtomicWriterOverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	w := NewAtomicWriter(DefaultAtomicConfig())

	require.NoError(t, w.WriteFile(path, []byte("first"), 0o644))
	require.NoError(t, w.WriteFile(path, []byte("second"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestIsProcessAliveForSelf(t *testing.T) {
	assert.True(t, isProcessAlive(os.Getpid()))
}

func TestIsProcessAliveForImplausiblePid(t *testing.T) {
	assert.False(t, isProcessAlive(-1))
}

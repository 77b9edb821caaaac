package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSecretFrom(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db_password"), []byte("  s3cret\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty"), []byte("\n"), 0o600))

	t.Run("trims whitespace", func(t *testing.T) {
		v, err := ReadSecretFrom(dir, "db_password")
		require.NoError(t, err)
		assert.Equal(t, "s3cret", v)
	})

	t.Run("empty file is an error", func(t *testing.T) {
		_, err := ReadSecretFrom(dir, "empty")
		assert.Error(t, err)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := ReadSecretFrom(dir, "nope")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("optional missing file is empty", func(t *testing.T) {
		v, err := ReadOptionalSecret(dir, "nope")
		require.NoError(t, err)
		assert.Empty(t, v)
	})
}

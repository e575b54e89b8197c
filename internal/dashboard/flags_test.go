package dashboard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileFlagStore_MissingFileIsZero(t *testing.T) {
	s := NewFileFlagStore(filepath.Join(t.TempDir(), "session.yaml"))

	flags, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Flags{}, flags)

	token, err := s.Token()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestFileFlagStore_SaveKeepsToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	s := NewFileFlagStore(path)

	require.NoError(t, s.SaveToken("tok"))
	require.NoError(t, s.Save(Flags{Authenticated: true, PasskeyVerified: true}))

	reopened := NewFileFlagStore(path)
	flags, err := reopened.Load()
	require.NoError(t, err)
	assert.Equal(t, Flags{Authenticated: true, PasskeyVerified: true}, flags)

	token, err := reopened.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileFlagStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	s := NewFileFlagStore(path)
	require.NoError(t, s.SaveToken("tok"))

	require.NoError(t, s.Clear())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Clearing twice is fine.
	require.NoError(t, s.Clear())
}

func TestFileFlagStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("authenticated: [nope"), 0600))

	_, err := NewFileFlagStore(path).Load()
	assert.Error(t, err)
}

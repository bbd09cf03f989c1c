package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/interchat/interchat/internal/credential"
)

func TestStore_CredentialRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "prefs.json")

	s := Load(path)
	_, ok := s.Credential()
	require.False(t, ok)

	cred := credential.Credential{CustomerNo: "17953063", Token: "token-1", ExpiresAt: 99}
	require.NoError(t, s.SetCredential(cred))

	// A fresh load sees the persisted credential.
	got, ok := Load(path).Credential()
	require.True(t, ok)
	require.Equal(t, cred, got)

	require.NoError(t, s.ClearCredential())
	_, ok = Load(path).Credential()
	require.False(t, ok)
}

func TestStore_DarkTheme(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "prefs.json")

	s := Load(path)
	require.False(t, s.DarkTheme())

	require.NoError(t, s.SetDarkTheme(true))
	require.True(t, Load(path).DarkTheme())
}

func TestLoad_CorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	s := Load(path)
	_, ok := s.Credential()
	require.False(t, ok)
	require.False(t, s.DarkTheme())
}

func TestStore_CreatesMissingDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "prefs.json")
	s := Load(path)
	require.NoError(t, s.SetDarkTheme(true))
	require.True(t, Load(path).DarkTheme())
}

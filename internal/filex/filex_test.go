package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestEnsureSubDir(t *testing.T) {
	tmp := t.TempDir()
	chdir(t, tmp)

	got, err := EnsureSubDir("downloads")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(tmp, "downloads"), got)

	fi, err := os.Stat(got)
	require.NoError(t, err)
	require.True(t, fi.IsDir())

	// A second call is a no-op.
	again, err := EnsureSubDir("downloads")
	require.NoError(t, err)
	require.Equal(t, got, again)
}

func TestEnsureSubDirFileInTheWay(t *testing.T) {
	tmp := t.TempDir()
	chdir(t, tmp)

	require.NoError(t, os.WriteFile("downloads", []byte("x"), 0o660))

	_, err := EnsureSubDir("downloads")
	require.Error(t, err)
}

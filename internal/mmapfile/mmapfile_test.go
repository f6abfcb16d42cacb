package mmapfile_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/holger24/AFD-sub005/internal/mmapfile"
)

func TestOpenGrowAndPersist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "region")

	f, err := mmapfile.Open(path, 16)
	require.NoError(t, err)
	require.Equal(t, 16, f.Len())

	copy(f.Bytes(), []byte("hello world"))
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	f2, err := mmapfile.Open(path, 0)
	require.NoError(t, err)
	defer f2.Close()
	require.Equal(t, "hello world", string(f2.Bytes()[:11]))
}

func TestRemapGrows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "region")

	f, err := mmapfile.Open(path, 8)
	require.NoError(t, err)
	defer f.Close()

	copy(f.Bytes(), []byte("abcdefgh"))
	require.NoError(t, f.Remap(16))
	require.Equal(t, 16, f.Len())
	require.Equal(t, "abcdefgh", string(f.Bytes()[:8]))
}

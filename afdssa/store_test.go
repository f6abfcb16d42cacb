package afdssa_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/holger24/AFD-sub005/afdssa"
)

func TestStoreWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := afdssa.Open(filepath.Join(dir, "ssa.dat"), 4)
	require.NoError(t, err)
	defer store.Close()

	site := afdssa.Site{
		Alias:         "siteA",
		Host1:         "host-a.example",
		Port1:         21,
		RemoteCommand: "afd_rsd",
		RemoteVersion: "1.2.3",
	}
	site.FilesSend.Observe(42, nil)

	require.NoError(t, store.Write(0, site))

	got, err := store.Read(0)
	require.NoError(t, err)
	require.Equal(t, "siteA", got.Alias)
	require.Equal(t, "host-a.example", got.Host1)
	require.Equal(t, 21, got.Port1)
	require.Equal(t, "afd_rsd", got.RemoteCommand)
	require.False(t, got.IsGroup())
	require.Equal(t, uint64(42), got.FilesSend[afdssa.SlotCurrent])
	require.Equal(t, uint64(1), got.SeqNo)

	hdr := store.Header()
	require.Equal(t, uint64(1), hdr.NoOfSites)
}

func TestStoreGroupRowHasEmptyRemoteCommand(t *testing.T) {
	dir := t.TempDir()
	store, err := afdssa.Open(filepath.Join(dir, "ssa.dat"), 2)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Write(0, afdssa.Site{Alias: "group1"}))

	got, err := store.Read(0)
	require.NoError(t, err)
	require.True(t, got.IsGroup())
}

func TestStoreGrowPreservesExistingRecords(t *testing.T) {
	dir := t.TempDir()
	store, err := afdssa.Open(filepath.Join(dir, "ssa.dat"), 2)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Write(1, afdssa.Site{Alias: "siteB"}))
	require.NoError(t, store.Grow(5))
	require.Equal(t, 5, store.Capacity())

	got, err := store.Read(1)
	require.NoError(t, err)
	require.Equal(t, "siteB", got.Alias)
}

func TestStoreForEachWalksLiveRecords(t *testing.T) {
	dir := t.TempDir()
	store, err := afdssa.Open(filepath.Join(dir, "ssa.dat"), 3)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Write(0, afdssa.Site{Alias: "s0"}))
	require.NoError(t, store.Write(1, afdssa.Site{Alias: "s1"}))

	var aliases []string
	require.NoError(t, store.ForEach(func(i int, site afdssa.Site) bool {
		aliases = append(aliases, site.Alias)
		return true
	}))
	require.Equal(t, []string{"s0", "s1"}, aliases)
}

package snapshot_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/holger24/AFD-sub005/afdssa/snapshot"
)

func TestHostListWriteReadAndGroupDetection(t *testing.T) {
	dir := t.TempDir()
	hl, err := snapshot.OpenHostList(filepath.Join(dir, "host_list.alpha"), 4)
	require.NoError(t, err)
	defer hl.Close()

	hl.Write(0, snapshot.HostEntry{HostID: 1, Alias: "alpha", Real1: "host-a.example"})
	hl.Write(1, snapshot.HostEntry{HostID: 2, Alias: "group1"})

	got0 := hl.Read(0)
	require.Equal(t, "host-a.example", got0.Real1)
	require.False(t, got0.IsGroup())

	got1 := hl.Read(1)
	require.True(t, got1.IsGroup())
	require.Equal(t, uint32(2), hl.Header().Count)
}

func TestHostListGrowAligned(t *testing.T) {
	dir := t.TempDir()
	hl, err := snapshot.OpenHostList(filepath.Join(dir, "host_list.alpha"), 2)
	require.NoError(t, err)
	defer hl.Close()

	require.NoError(t, hl.Grow(11))
	require.Equal(t, 20, hl.Capacity())
}

func TestReshuffleDirsIdempotent(t *testing.T) {
	dir := t.TempDir()
	oldList, err := snapshot.OpenDirList(filepath.Join(dir, "old_dir_list.alpha"), 2)
	require.NoError(t, err)
	defer oldList.Close()

	tmpList, err := snapshot.OpenDirList(filepath.Join(dir, "tmp_dir_list.alpha"), 2)
	require.NoError(t, err)
	defer tmpList.Close()
	tmpList.Write(0, snapshot.DirEntry{DirID: 7, EntryTime: 1000, Alias: "gone"})

	activeList, err := snapshot.OpenDirList(filepath.Join(dir, "dir_list.alpha"), 2)
	require.NoError(t, err)
	defer activeList.Close()
	// dir 7 no longer present in the active (just-committed) snapshot

	err = snapshot.ReshuffleDirs(oldList, tmpList, activeList, 3600, 2000)
	require.NoError(t, err)
	firstCount := oldList.Header().Count
	require.Equal(t, uint32(1), firstCount)

	err = snapshot.ReshuffleDirs(oldList, tmpList, activeList, 3600, 2000)
	require.NoError(t, err)
	require.Equal(t, firstCount, oldList.Header().Count)
}

func TestReshuffleDirsNoOpOnEmptyTmp(t *testing.T) {
	dir := t.TempDir()
	oldList, err := snapshot.OpenDirList(filepath.Join(dir, "old_dir_list.alpha"), 2)
	require.NoError(t, err)
	defer oldList.Close()
	tmpList, err := snapshot.OpenDirList(filepath.Join(dir, "tmp_dir_list.alpha"), 2)
	require.NoError(t, err)
	defer tmpList.Close()
	activeList, err := snapshot.OpenDirList(filepath.Join(dir, "dir_list.alpha"), 2)
	require.NoError(t, err)
	defer activeList.Close()

	require.NoError(t, snapshot.ReshuffleDirs(oldList, tmpList, activeList, 3600, 2000))
	require.Equal(t, uint32(0), oldList.Header().Count)
}

func TestTypesizeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	tf, err := snapshot.OpenTypesizeFile(filepath.Join(dir, "typesize.alpha"))
	require.NoError(t, err)
	defer tf.Close()

	var v snapshot.Typesize
	v[0] = 12
	v[15] = 99
	tf.Write(v)

	got := tf.Read()
	require.Equal(t, uint32(12), got[0])
	require.Equal(t, uint32(99), got[15])
}

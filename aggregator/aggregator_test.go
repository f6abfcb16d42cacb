package aggregator_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/holger24/AFD-sub005/afdssa"
	"github.com/holger24/AFD-sub005/aggregator"
)

func openStore(t *testing.T, capacity int) *afdssa.Store {
	t.Helper()
	dir := t.TempDir()
	store, err := afdssa.Open(filepath.Join(dir, "ssa.dat"), capacity)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecomputeGroupsFoldsContiguousMembers(t *testing.T) {
	store := openStore(t, 3)

	group := afdssa.Site{Alias: "group1"}
	m1 := afdssa.Site{Alias: "m1", RemoteCommand: "afd_rsd", BytesPending: 10, ConnectStatus: afdssa.StatusConnected}
	m2 := afdssa.Site{Alias: "m2", RemoteCommand: "afd_rsd", BytesPending: 20, ConnectStatus: afdssa.StatusDisconnected}

	require.NoError(t, store.Write(0, group))
	require.NoError(t, store.Write(1, m1))
	require.NoError(t, store.Write(2, m2))

	agg := aggregator.New(store, hclog.NewNullLogger())
	require.NoError(t, agg.RecomputeGroups())

	got, err := store.Read(0)
	require.NoError(t, err)
	require.Equal(t, uint64(30), got.BytesPending)
	require.Equal(t, afdssa.StatusConnected, got.ConnectStatus)
}

func TestHourlyPassComputesDeltaAndRebaselines(t *testing.T) {
	store := openStore(t, 1)

	site := afdssa.Site{Alias: "siteA"}
	site.FilesSend.Observe(100, nil)
	site.FilesSend.SeedAll()
	site.FilesSend.Observe(140, nil)
	require.NoError(t, store.Write(0, site))

	agg := aggregator.New(store, hclog.NewNullLogger())

	prev := time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC)
	cur := time.Date(2026, 7, 29, 11, 0, 0, 0, time.UTC)
	require.NoError(t, agg.RunHourlyPass(prev, cur))

	got, err := store.Read(0)
	require.NoError(t, err)
	require.Equal(t, uint64(140), got.FilesSend[afdssa.SlotHour])
}

func TestHourlyPassRotatesTopNAtDayBoundary(t *testing.T) {
	store := openStore(t, 1)

	site := afdssa.Site{Alias: "siteA"}
	site.TopTransferRate.Observe(555, 1000)
	require.NoError(t, store.Write(0, site))

	agg := aggregator.New(store, hclog.NewNullLogger())

	prev := time.Date(2026, 7, 29, 23, 0, 0, 0, time.UTC)
	cur := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	require.NoError(t, agg.RunHourlyPass(prev, cur))

	got, err := store.Read(0)
	require.NoError(t, err)
	require.Equal(t, uint64(0), got.TopTransferRate.Value[0])
	require.Equal(t, uint64(555), got.TopTransferRate.Value[1])
}

func TestTickRunsHourlyPassOnlyOnBoundary(t *testing.T) {
	store := openStore(t, 1)
	site := afdssa.Site{Alias: "siteA"}
	site.Connections.Observe(7, nil)
	require.NoError(t, store.Write(0, site))

	agg := aggregator.New(store, hclog.NewNullLogger())

	now := time.Now().UTC()
	require.NoError(t, agg.Tick(now))

	got, err := store.Read(0)
	require.NoError(t, err)
	require.Equal(t, uint64(0), got.Connections[afdssa.SlotHour])
}

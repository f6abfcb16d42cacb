package afdssa_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/holger24/AFD-sub005/afdssa"
)

func TestRecomputeGroupSumsAndOrs(t *testing.T) {
	group := afdssa.Site{Alias: "group1"}
	members := []afdssa.Site{
		{FilesPending: 3, BytesPending: 100, ConnectStatus: afdssa.StatusConnected, RemoteAMG: true},
		{FilesPending: 2, BytesPending: 50, ConnectStatus: afdssa.StatusDisconnected},
	}
	members[0].FilesSend.Observe(10, nil)
	members[1].FilesSend.Observe(20, nil)

	afdssa.RecomputeGroup(&group, members)

	require.Equal(t, uint64(5), group.FilesPending)
	require.Equal(t, uint64(150), group.BytesPending)
	require.Equal(t, afdssa.StatusConnected, group.ConnectStatus)
	require.True(t, group.RemoteAMG)
	require.Equal(t, uint64(30), group.FilesSend[afdssa.SlotCurrent])
	require.True(t, group.IsGroup())
}

func TestRecomputeGroupMaxSeverity(t *testing.T) {
	group := afdssa.Site{Alias: "group2"}
	members := []afdssa.Site{
		{ConnectStatus: afdssa.StatusConnectionDefunct},
		{ConnectStatus: afdssa.StatusDisconnected},
	}
	afdssa.RecomputeGroup(&group, members)
	require.Equal(t, afdssa.StatusConnectionDefunct, group.ConnectStatus)
}

// TestRecomputeGroupScenario mirrors spec §8 scenario 3: members
// {Connected, ShuttingDown, ConnectionDefunct} must yield ShuttingDown,
// the maximum severity code, not the first or the healthiest member.
func TestRecomputeGroupScenario(t *testing.T) {
	group := afdssa.Site{Alias: "group3"}
	members := []afdssa.Site{
		{ConnectStatus: afdssa.StatusConnected},
		{ConnectStatus: afdssa.StatusShuttingDown},
		{ConnectStatus: afdssa.StatusConnectionDefunct},
	}
	afdssa.RecomputeGroup(&group, members)
	require.Equal(t, afdssa.StatusShuttingDown, group.ConnectStatus)
}

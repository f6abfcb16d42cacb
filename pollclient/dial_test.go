package pollclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFailoverFlipsAfterConsecutiveFailures(t *testing.T) {
	cfg := Config{
		Switching:     SwitchAuto,
		PollInterval:  time.Second,
		RetryInterval: 3 * time.Second,
	}
	n := consecutiveFailuresForFlip(cfg)
	require.Equal(t, 3, n)

	var fo failoverState
	for i := 0; i < n-1; i++ {
		fo.recordFailure(cfg, n)
	}
	require.Equal(t, 0, fo.toggle)

	fo.recordFailure(cfg, n)
	require.Equal(t, 1, fo.toggle)
	require.Equal(t, 0, fo.failureCount)
}

func TestFailoverSuccessResetsCounter(t *testing.T) {
	cfg := Config{Switching: SwitchAuto, PollInterval: time.Second, RetryInterval: 2 * time.Second}
	var fo failoverState
	fo.recordFailure(cfg, 2)
	require.Equal(t, 1, fo.failureCount)
	fo.recordSuccess()
	require.Equal(t, 0, fo.failureCount)
}

func TestFailoverNoneNeverSwitches(t *testing.T) {
	cfg := Config{Switching: SwitchNone, PollInterval: time.Second, RetryInterval: time.Second}
	var fo failoverState
	for i := 0; i < 10; i++ {
		fo.recordFailure(cfg, 1)
	}
	require.Equal(t, 0, fo.toggle)
}

func TestEndpointSelectsByToggle(t *testing.T) {
	cfg := Config{Host1: "a", Port1: 1, Host2: "b", Port2: 2}
	h, p := cfg.endpoint(0)
	require.Equal(t, "a", h)
	require.Equal(t, 1, p)
	h, p = cfg.endpoint(1)
	require.Equal(t, "b", h)
	require.Equal(t, 2, p)
}

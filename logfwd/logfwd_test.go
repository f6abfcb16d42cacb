package logfwd_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/holger24/AFD-sub005/logfwd"
)

func TestFeedAppendsToFile(t *testing.T) {
	dir := t.TempDir()
	fw, err := logfwd.New(logfwd.Config{Kind: logfwd.KindSite, Alias: "siteA", WorkDir: dir}, hclog.NewNullLogger())
	require.NoError(t, err)

	require.NoError(t, fw.Feed([]byte("line one\n")))
	require.NoError(t, fw.Feed([]byte("line two\n")))

	r := fw.Runner()
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, r.Start(ctx))
	cancel()
	require.NoError(t, r.Stop(context.Background()))

	data, err := os.ReadFile(filepath.Join(dir, "log", "site.siteA.log"))
	require.NoError(t, err)
	require.Equal(t, "line one\nline two\n", string(data))
}

func TestRunnerStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	fw, err := logfwd.New(logfwd.Config{Kind: logfwd.KindSystem, WorkDir: dir}, hclog.NewNullLogger())
	require.NoError(t, err)

	r := fw.Runner()
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, r.Start(ctx))
	require.Eventually(t, r.IsRunning, time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, r.Stop(context.Background()))
}

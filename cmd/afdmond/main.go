// Command afdmond is the process wrapper around the supervisor (spec
// §6.5): it resolves the working directory, checks the block sentinel,
// loads configuration and dispatches to one of the start/check/
// shutdown/initialize actions the flag set selects.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/holger24/AFD-sub005/supervisor"
)

// Exit codes (spec §6.5).
const (
	exitSuccess          = 0
	exitUsage            = 1
	exitAlreadyRunning   = 5
	exitIncorrect        = 2 // "INCORRECT": any other failure, implementation-defined non-zero
	exitDisabledBySysadm = 3 // block sentinel present
)

type flags struct {
	startOnly      bool // -a
	checkOnly      bool // -c
	checkAndStart  bool // -C
	uiOnly         bool // -d
	initFifo       bool // -i
	initFifoAndLog bool // -I
	shutdown       bool // -s
	silentShutdown bool // -S
	removeSentinel bool // -r
	all            bool // --all
	workDir        string
	profile        string
	fakeUser       string
	showVersion    bool
}

const version = "AFD-sub005 0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	f := &flags{}

	cmd := &cobra.Command{
		Use:           "afdmond",
		Short:         "fleet-monitoring supervisor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetArgs(args)

	cmd.Flags().BoolVarP(&f.startOnly, "start", "a", false, "start only")
	cmd.Flags().BoolVarP(&f.checkOnly, "check", "c", false, "check only")
	cmd.Flags().BoolVarP(&f.checkAndStart, "check-and-start", "C", false, "check then start")
	cmd.Flags().BoolVarP(&f.uiOnly, "ui", "d", false, "start UI only")
	cmd.Flags().BoolVarP(&f.initFifo, "init", "i", false, "initialize: delete fifo dir")
	cmd.Flags().BoolVarP(&f.initFifoAndLog, "init-all", "I", false, "initialize: delete fifo and log dirs")
	cmd.Flags().BoolVarP(&f.shutdown, "shutdown", "s", false, "shutdown")
	cmd.Flags().BoolVarP(&f.silentShutdown, "silent-shutdown", "S", false, "silent shutdown")
	cmd.Flags().BoolVarP(&f.removeSentinel, "remove-block", "r", false, "remove block sentinel")
	cmd.Flags().BoolVar(&f.all, "all", false, "with -s|-S, also stop auxiliary log writers")
	cmd.Flags().StringVarP(&f.workDir, "work-dir", "w", ".", "working directory")
	cmd.Flags().StringVarP(&f.profile, "profile", "p", "", "configuration profile")
	cmd.Flags().StringVarP(&f.fakeUser, "fake-user", "u", "", "run as a different fake user (testing only)")
	cmd.Flags().Lookup("fake-user").NoOptDefVal = "current"
	cmd.Flags().BoolVarP(&f.showVersion, "version", "v", false, "print version")

	code := exitSuccess
	cmd.RunE = func(*cobra.Command, []string) error {
		code = dispatch(f)
		return nil
	}

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}
	return code
}

func dispatch(f *flags) int {
	if f.showVersion {
		fmt.Println(version)
		return exitSuccess
	}

	workDir, err := filepath.Abs(f.workDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	if f.removeSentinel {
		if err := supervisor.RemoveBlockSentinel(workDir); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitIncorrect
		}
		return exitSuccess
	}

	if f.shutdown || f.silentShutdown {
		if err := supervisor.SignalShutdown(workDir, f.silentShutdown); err != nil {
			if f.silentShutdown {
				return exitSuccess
			}
			fmt.Fprintln(os.Stderr, err)
			return exitIncorrect
		}
		return exitSuccess
	}

	if f.initFifo || f.initFifoAndLog {
		if err := os.RemoveAll(filepath.Join(workDir, "fifo")); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitIncorrect
		}
		if f.initFifoAndLog {
			if err := os.RemoveAll(filepath.Join(workDir, "log")); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return exitIncorrect
			}
		}
		return exitSuccess
	}

	if supervisor.BlockSentinelPresent(workDir) {
		fmt.Fprintln(os.Stderr, "afdmond: disabled by sysadm (block sentinel present)")
		return exitDisabledBySysadm
	}

	if _, running := supervisor.RunningPID(workDir); running {
		fmt.Fprintln(os.Stderr, "afdmond: already running")
		return exitAlreadyRunning
	}

	configPath := filepath.Join(workDir, "etc", "config")
	if f.profile != "" {
		configPath = filepath.Join(workDir, "etc", "config-"+f.profile)
	}

	cfg, err := supervisor.LoadConfig(configPath)
	if err != nil {
		// Startup with unreadable configuration is FATAL (spec §7).
		fmt.Fprintln(os.Stderr, err)
		return exitIncorrect
	}
	cfg.WorkDir = workDir

	if f.checkOnly {
		return exitSuccess
	}

	if f.uiOnly {
		fmt.Fprintln(os.Stderr, "afdmond: UI is a separate collaborator, not built by this wrapper")
		return exitIncorrect
	}

	logger := newLogger(f, cfg)
	return start(cfg, configPath, logger)
}

// newLogger builds the hclog.Logger every downstream package expects,
// named after the fake user when one is given (spec §6.5 `-u` is for
// testing under a different identity, so it's useful to see in logs).
func newLogger(f *flags, cfg supervisor.ProcessConfig) hclog.Logger {
	name := "afdmond"
	if f.fakeUser != "" {
		name = "afdmond[" + f.fakeUser + "]"
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:  name,
		Level: hclog.LevelFromString(cfg.LogLevel),
	})
}

func start(cfg supervisor.ProcessConfig, configPath string, logger hclog.Logger) int {
	sup, err := supervisor.New(cfg, configPath, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitIncorrect
	}
	defer func() { _ = sup.Close() }()

	if err := supervisor.WritePIDFile(cfg.WorkDir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitIncorrect
	}
	defer func() { _ = supervisor.RemovePIDFile(cfg.WorkDir) }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sup.InstallSignals(cancel)

	if closeWatch, err := sup.WatchConfigFile(); err == nil {
		defer func() { _ = closeWatch() }()
	}

	if err := sup.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitIncorrect
	}
	return exitSuccess
}

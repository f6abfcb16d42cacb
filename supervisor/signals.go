package supervisor

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// InstallSignals wires the fatal-signal policy of spec §4.6: SIGSEGV
// and SIGBUS run the exit handler (teardown) and then abort for a core
// dump; SIGINT/SIGTERM/SIGQUIT run the same teardown but exit cleanly;
// SIGPIPE and SIGHUP are ignored. cancel should be the CancelFunc for
// the context Run was given, so a clean-exit signal unwinds Run's main
// loop through its own ctx.Done() path rather than calling teardown
// twice.
func (s *Supervisor) InstallSignals(cancel context.CancelFunc) chan<- os.Signal {
	sigCh := make(chan os.Signal, 4)
	signal.Notify(sigCh,
		syscall.SIGSEGV, syscall.SIGBUS,
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
		syscall.SIGPIPE, syscall.SIGHUP,
	)

	go func() {
		for sig := range sigCh {
			switch sig {
			case syscall.SIGPIPE, syscall.SIGHUP:
				continue

			case syscall.SIGSEGV, syscall.SIGBUS:
				s.logger.Error("fatal signal, tearing down for core dump", "signal", sig)
				s.teardown(context.Background())
				cancel()
				abort()

			default:
				s.logger.Warn("shutdown signal received", "signal", sig)
				cancel()
				return
			}
		}
	}()

	return sigCh
}

// abort mirrors spec §4.6/§7 "abort() for a core dump": raise SIGABRT
// against this process after the exit handler has already torn
// children down and unmapped the SSA.
func abort() {
	p, err := os.FindProcess(os.Getpid())
	if err != nil {
		os.Exit(2)
	}
	_ = p.Signal(syscall.SIGABRT)
}

// Package aggregator implements the periodic summarizer spec §4.5
// describes: group-aggregate recompute on every supervisor idle tick,
// and the hour/day/week/month/year counter rollover pass on hour
// boundaries. It rebaselines CounterRing slots 1..5 and rotates every
// TopN array in the Shared Status Area (spec §3.2 invariant 1). The
// Polling Client also writes them in two places: it seeds slots 1..5 on
// a site's first counter update, and it raises TopN slot 0 as new
// maxima arrive.
package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/holger24/AFD-sub005/afdssa"
	"github.com/holger24/AFD-sub005/internal/taskrunner"
)

// Aggregator drives both schedules spec §4.5 names. A single instance
// is owned by the Supervisor, whose control loop calls Tick on every
// timeout; Ticker can also wrap it as a one-second taskrunner.Ticker.
type Aggregator struct {
	store  *afdssa.Store
	logger hclog.Logger

	mu       sync.Mutex
	lastHour time.Time // UTC hour bucket of the last hourly pass run
}

// New builds an Aggregator seeded so the first tick never fires a
// spurious hourly pass - lastHour starts at the current hour bucket,
// matching a freshly-started Supervisor that hasn't crossed a boundary
// yet.
func New(store *afdssa.Store, logger hclog.Logger) *Aggregator {
	return &Aggregator{
		store:    store,
		logger:   logger.Named("aggregator"),
		lastHour: time.Now().UTC().Truncate(time.Hour),
	}
}

// Ticker wraps Tick in a one-second AFD_MON_RESCAN_TIME driver
// (spec §4.5 "every AFD_MON_RESCAN_TIME (1 second), on supervisor
// idle"). The Supervisor does not use it; it calls Tick directly.
func (a *Aggregator) Ticker() taskrunner.Ticker {
	return taskrunner.NewTicker(time.Second, func(ctx context.Context, _ *time.Ticker) error {
		return a.Tick(time.Now())
	})
}

// Tick runs the group-recompute pass every call, and the hourly pass
// only when an hour boundary has actually been crossed since the last
// call (spec §4.5's two schedules share this one entry point because
// the Supervisor's control loop has a single idle timeout, not two
// independent ones).
func (a *Aggregator) Tick(now time.Time) error {
	if err := a.RecomputeGroups(); err != nil {
		a.logger.Warn("group recompute failed", "error", err)
	}

	if err := a.advanceQuietHours(now); err != nil {
		a.logger.Warn("advance quiet hours failed", "error", err)
	}

	a.mu.Lock()
	due := now.UTC().Truncate(time.Hour).After(a.lastHour)
	prev := a.lastHour
	if due {
		a.lastHour = now.UTC().Truncate(time.Hour)
	}
	a.mu.Unlock()

	if !due {
		return nil
	}
	return a.RunHourlyPass(prev, now.UTC())
}

// RecomputeGroups walks the SSA once, folding each contiguous run of
// member rows into the group row immediately preceding them (spec
// §4.5 first bullet, §3.2 invariant 1, §9 "Cyclic group row").
func (a *Aggregator) RecomputeGroups() error {
	hdr := a.store.Header()
	total := int(hdr.NoOfSites)

	i := 0
	for i < total {
		site, err := a.store.Read(i)
		if err != nil {
			return err
		}
		if !site.IsGroup() {
			i++
			continue
		}

		members, next, err := a.readMembers(i+1, total)
		if err != nil {
			return err
		}

		afdssa.RecomputeGroup(&site, members)
		if err := a.store.Write(i, site); err != nil {
			return err
		}
		i = next
	}
	return nil
}

// advanceQuietHours fills every site's three log-history arrays with
// NoInformation placeholders for any hour that passed without a log
// line (spec §3.1, §8 "log history hourly shift" - a quiet hour still
// shifts a placeholder rather than silently compressing the gap).
func (a *Aggregator) advanceQuietHours(now time.Time) error {
	hourBucket := afdssa.HourBucket(now)

	hdr := a.store.Header()
	total := int(hdr.NoOfSites)

	for i := 0; i < total; i++ {
		site, err := a.store.Read(i)
		if err != nil {
			return err
		}
		site.ReceiveHistory.AdvanceQuietHours(hourBucket)
		site.TransferHistory.AdvanceQuietHours(hourBucket)
		site.SystemHistory.AdvanceQuietHours(hourBucket)
		if err := a.store.Write(i, site); err != nil {
			return err
		}
	}
	return nil
}

func (a *Aggregator) readMembers(start, total int) ([]afdssa.Site, int, error) {
	var members []afdssa.Site
	i := start
	for i < total {
		site, err := a.store.Read(i)
		if err != nil {
			return nil, i, err
		}
		if site.IsGroup() {
			break
		}
		members = append(members, site)
		i++
	}
	return members, i, nil
}

package pollclient

import (
	"time"

	"github.com/holger24/AFD-sub005/afdproto"
	"github.com/holger24/AFD-sub005/afdssa"
	"github.com/holger24/AFD-sub005/afdssa/snapshot"
)

// applyResult tells the session loop about updates that need a reaction
// beyond mutating the site record in place.
type applyResult struct {
	gotFirstLC bool
	logCaps    uint64
}

// applyUpdate folds one parsed Update into site and, for HL/DL/JL/TD
// tags, into the site's snapshot Manager (spec §4.1 "Target fields").
// It owns slot 0 of every counter ring and every live-status field
// (spec §3.2 invariant 1); the Aggregator and Supervisor never call
// this function.
func (c *Client) applyUpdate(site *afdssa.Site, snaps *snapshot.Manager, u afdproto.Update, now time.Time, firstLCSeen *bool) applyResult {
	var res applyResult

	switch u.Kind {
	case afdproto.KindIntervalSummary:
		is := u.IS
		site.FilesPending = is.FC
		site.BytesPending = is.FS
		site.TransferRate = is.TR
		site.FileRate = is.FR
		site.ErrorCounter = is.EC
		site.HostErrorCount = is.HostErrorCounter
		site.ActiveTransfers = is.NoOfTransfers
		site.QueueDepth = is.JobsInQueue
		site.LastDataTime = now.Unix()

		site.TopTransferRate.Observe(is.TR, now.Unix())
		site.TopFileRate.Observe(is.FR, now.Unix())
		site.TopTransfers.Observe(is.NoOfTransfers, now.Unix())

		if is.HasCounters {
			var overflow uint64
			site.FilesSend.Observe(is.FilesSend, &overflow)
			site.BytesSend.Observe(is.BytesSend, &overflow)
			site.Connections.Observe(is.Connections, &overflow)
			site.TotalErrors.Observe(is.TotalErrors, &overflow)
			site.FilesReceived.Observe(is.FilesReceived, &overflow)
			site.BytesReceived.Observe(is.BytesReceived, &overflow)
			if !site.CountersInitialized() {
				site.FilesSend.SeedAll()
				site.BytesSend.SeedAll()
				site.Connections.SeedAll()
				site.TotalErrors.SeedAll()
				site.FilesReceived.SeedAll()
				site.BytesReceived.SeedAll()
				site.SetCountersInitialized()
			}
		}

	case afdproto.KindNewHostCount:
		site.NoOfHosts = int(u.NewCount)
		if snaps != nil {
			_ = snaps.ResizeHosts(int(u.NewCount))
		}
	case afdproto.KindNewDirCount:
		site.NoOfDirs = int(u.NewCount)
		if snaps != nil {
			_ = snaps.ResizeDirs(int(u.NewCount))
		}
	case afdproto.KindNewJobCount:
		site.NoOfJobs = int(u.NewCount)
		if snaps != nil {
			_ = snaps.ResizeJobs(int(u.NewCount))
		}

	case afdproto.KindMaxConnections:
		site.MaxConnections = u.SingleInt
	case afdproto.KindRemoteAMG:
		site.RemoteAMG = u.SingleInt != 0
	case afdproto.KindRemoteFD:
		site.RemoteFD = u.SingleInt != 0
	case afdproto.KindRemoteArchiveWatch:
		site.RemoteArchiveWatch = u.SingleInt != 0
	case afdproto.KindDangerJobs:
		site.DangerNoOfJobs = u.SingleInt

	case afdproto.KindRemoteVersion:
		site.RemoteVersion = u.Str
	case afdproto.KindRemoteWorkDir:
		site.RemoteWorkDir = u.Str

	case afdproto.KindLogCapabilities:
		site.Capabilities = bitflagsFromCaps(u.LogCaps)
		if !*firstLCSeen {
			*firstLCSeen = true
			res.gotFirstLC = true
			res.logCaps = u.LogCaps
		}

	case afdproto.KindTypesize:
		if snaps != nil {
			var ts snapshot.Typesize
			for i, v := range u.Typesize {
				if i >= len(ts) {
					break
				}
				ts[i] = uint32(v)
			}
			snaps.Typesize.Write(ts)
		}

	case afdproto.KindHostList:
		if snaps != nil {
			h := u.Host
			snaps.Host.Write(h.Pos, snapshot.HostEntry{
				HostID: crc32String(h.Alias),
				Alias:  h.Alias,
				Real1:  hostReal(h),
				Real2:  h.Real2,
			})
		}

	case afdproto.KindDirList:
		if snaps != nil {
			d := u.Dir
			snaps.Dir.Write(d.Pos, snapshot.DirEntry{
				DirID:       d.DirID,
				EntryTime:   now.Unix(),
				Alias:       d.Alias,
				Name:        d.Name,
				OrigName:    d.OrigName,
				HomeDirUser: d.HomeUser,
				HomeDirLen:  d.HomeLen,
			})
			_ = snaps.CommitDirsIfComplete(d.Pos, site.NoOfDirs, c.retentionSeconds(), site.LastDataTime)
		}

	case afdproto.KindJobList:
		if snaps != nil {
			j := u.Job
			snaps.Job.Write(j.Pos, snapshot.JobEntry{
				JobID:        j.JobID,
				DirID:        j.DirID,
				NoOfLOptions: j.NoOptions,
				EntryTime:    now.Unix(),
				Priority:     j.Priority,
				Recipient:    j.Recipient,
			})
			_ = snaps.CommitJobsIfComplete(j.Pos, site.NoOfJobs, c.retentionSeconds(), site.LastDataTime)
		}

	case afdproto.KindErrorHistory:
		if snaps != nil {
			e := snaps.Host.Read(u.ErrHist.HostPos)
			e.ErrorHistory = u.ErrHist.History
			snaps.Host.Write(u.ErrHist.HostPos, e)
		}

	case afdproto.KindLogHistoryReceive:
		hourBucket := afdssa.HourBucket(now)
		site.ReceiveHistory.ShiftHourly(hourBucket, firstSeverity(u.LogHist.Bytes))
	case afdproto.KindLogHistoryTransfer:
		hourBucket := afdssa.HourBucket(now)
		site.TransferHistory.ShiftHourly(hourBucket, firstSeverity(u.LogHist.Bytes))
	case afdproto.KindLogHistorySystem:
		hourBucket := afdssa.HourBucket(now)
		site.SystemHistory.ShiftHourly(hourBucket, firstSeverity(u.LogHist.Bytes))

	case afdproto.KindSystemRadar:
		for _, b := range u.Radar.Bytes {
			site.AppendFifo(b)
		}

	case afdproto.KindNumericStatus, afdproto.KindShutdown:
		// handled by the caller directly from u.Kind; nothing to fold
		// into the site record for these.
	}

	return res
}

func firstSeverity(b []byte) byte {
	if len(b) == 0 {
		return afdproto.NoInformation
	}
	return b[0]
}

func hostReal(h *afdproto.HostListEntry) string {
	if h.IsGroup {
		return string(rune(snapshot.GroupSentinel))
	}
	return h.Real1
}

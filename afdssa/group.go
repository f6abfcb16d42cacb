package afdssa

// RecomputeGroup folds members (the contiguous run of non-group rows
// that follow a group row in the SSA, spec §3.2 invariant 1 "a group
// row immediately precedes the member rows it summarizes") into a
// single group-aggregate Site. It never touches identity fields -
// those are set once when the group row is created - only the
// aggregated live-status and counter fields spec §3.2 invariant 1
// actually defines a combination rule for:
//
//   - BytesPending/FilesPending/QueueDepth/ActiveTransfers: summed
//   - TransferRate/FileRate: summed (fleet-wide throughput)
//   - ConnectStatus: the maximum status code across members (spec
//     §4.5 "connect_status = max severity")
//   - RemoteAMG/RemoteFD/RemoteArchiveWatch: OR'd
//   - counter rings: summed slot by slot
func RecomputeGroup(group *Site, members []Site) {
	group.BytesPending = 0
	group.FilesPending = 0
	group.QueueDepth = 0
	group.ActiveTransfers = 0
	group.TransferRate = 0
	group.FileRate = 0
	group.ErrorCounter = 0
	group.HostErrorCount = 0
	group.RemoteAMG = false
	group.RemoteFD = false
	group.RemoteArchiveWatch = false
	group.ConnectStatus = StatusDisconnected

	var filesSend, bytesSend, filesRecv, bytesRecv, conns, errs, logBytes CounterRing

	for _, m := range members {
		group.BytesPending += m.BytesPending
		group.FilesPending += m.FilesPending
		group.QueueDepth += m.QueueDepth
		group.ActiveTransfers += m.ActiveTransfers
		group.TransferRate += m.TransferRate
		group.FileRate += m.FileRate
		group.ErrorCounter += m.ErrorCounter
		group.HostErrorCount += m.HostErrorCount
		group.RemoteAMG = group.RemoteAMG || m.RemoteAMG
		group.RemoteFD = group.RemoteFD || m.RemoteFD
		group.RemoteArchiveWatch = group.RemoteArchiveWatch || m.RemoteArchiveWatch

		if m.ConnectStatus > group.ConnectStatus {
			group.ConnectStatus = m.ConnectStatus
		}

		for i := 0; i < len(filesSend); i++ {
			filesSend[i] += m.FilesSend[i]
			bytesSend[i] += m.BytesSend[i]
			filesRecv[i] += m.FilesReceived[i]
			bytesRecv[i] += m.BytesReceived[i]
			conns[i] += m.Connections[i]
			errs[i] += m.TotalErrors[i]
			logBytes[i] += m.LogBytesReceived[i]
		}
	}

	group.FilesSend = filesSend
	group.BytesSend = bytesSend
	group.FilesReceived = filesRecv
	group.BytesReceived = bytesRecv
	group.Connections = conns
	group.TotalErrors = errs
	group.LogBytesReceived = logBytes
}

package afdssa

import (
	"encoding/binary"

	"github.com/holger24/AFD-sub005/afdproto"
)

// Fixed field widths for the on-disk record. These are this
// reimplementation's own choice - original_source's exact byte layout
// was filtered out of the retrieval pack (see SPEC_FULL.md §4) - chosen
// generous enough for real aliases/hostnames/paths while keeping one
// record a few kilobytes so a fleet of several hundred sites maps
// comfortably.
const (
	remoteCommandLen = 32
	aliasLen         = afdproto.MaxAliasLength
	hostLen          = afdproto.MaxHostnameLength
	versionLen       = afdproto.MaxVersionLength
	workDirLen       = afdproto.MaxPathLength
)

func topNSize() int {
	return afdproto.StorageTime*8 + afdproto.StorageTime*8
}

func logHistSize() int {
	return afdproto.MaxLogHistory + 1 + 8 // bytes + shiftDone + lastShiftHour
}

// RecordSize is the fixed byte length of one marshaled Site.
var RecordSize = aliasLen + hostLen*2 + 4*2 + remoteCommandLen + versionLen + workDirLen +
	4 + 1 + 1 + 1 + 8*8 + 8 + 8 + 4 + 4 + 4 + // live status (+ max_connections, danger_no_of_jobs, host/dir/job counts)
	topNSize()*3 + // rolling maxima
	6*8*7 + // seven counter rings, six slots each
	afdproto.LogFifoSize + 8 + logHistSize()*3 + // fifo + three histories
	8*3 + 8 + // timing
	4 + 4 + // failover
	8 + 8 + 4 + // options/capabilities/special_flag (as raw uint64 bitsets)
	8 // seqno

type cursor struct {
	buf []byte
	off int
}

func (c *cursor) putString(s string, width int) {
	b := make([]byte, width)
	copy(b, s)
	copy(c.buf[c.off:c.off+width], b)
	c.off += width
}

func (c *cursor) getString(width int) string {
	b := c.buf[c.off : c.off+width]
	c.off += width
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}

func (c *cursor) putU32(v uint32) {
	binary.LittleEndian.PutUint32(c.buf[c.off:], v)
	c.off += 4
}

func (c *cursor) getU32() uint32 {
	v := binary.LittleEndian.Uint32(c.buf[c.off:])
	c.off += 4
	return v
}

func (c *cursor) putU64(v uint64) {
	binary.LittleEndian.PutUint64(c.buf[c.off:], v)
	c.off += 8
}

func (c *cursor) getU64() uint64 {
	v := binary.LittleEndian.Uint64(c.buf[c.off:])
	c.off += 8
	return v
}

func (c *cursor) putI64(v int64) { c.putU64(uint64(v)) }
func (c *cursor) getI64() int64  { return int64(c.getU64()) }

func (c *cursor) putByte(b byte) { c.buf[c.off] = b; c.off++ }
func (c *cursor) getByte() byte  { b := c.buf[c.off]; c.off++; return b }

func (c *cursor) putBool(b bool) {
	if b {
		c.putByte(1)
	} else {
		c.putByte(0)
	}
}
func (c *cursor) getBool() bool { return c.getByte() != 0 }

func (c *cursor) putRing(r CounterRing) {
	for _, v := range r {
		c.putU64(v)
	}
}

func (c *cursor) getRing() CounterRing {
	var r CounterRing
	for i := range r {
		r[i] = c.getU64()
	}
	return r
}

func (c *cursor) putTopN(t TopN) {
	for _, v := range t.Value {
		c.putU64(v)
	}
	for _, v := range t.Time {
		c.putI64(v)
	}
}

func (c *cursor) getTopN() TopN {
	var t TopN
	for i := range t.Value {
		t.Value[i] = c.getU64()
	}
	for i := range t.Time {
		t.Time[i] = c.getI64()
	}
	return t
}

func (c *cursor) putLogHist(h LogHistory48) {
	copy(c.buf[c.off:], h.Bytes[:])
	c.off += len(h.Bytes)
	c.putBool(h.ShiftDone)
	c.putI64(h.LastShiftHour)
}

func (c *cursor) getLogHist() LogHistory48 {
	var h LogHistory48
	copy(h.Bytes[:], c.buf[c.off:c.off+len(h.Bytes)])
	c.off += len(h.Bytes)
	h.ShiftDone = c.getBool()
	h.LastShiftHour = c.getI64()
	return h
}

// MarshalInto serializes s into buf, which must be at least RecordSize
// bytes; it is the slice into the Store's mmap'd region, so writes land
// directly in shared memory.
func (s *Site) MarshalInto(buf []byte) {
	c := &cursor{buf: buf}
	c.putString(s.Alias, aliasLen)
	c.putString(s.Host1, hostLen)
	c.putString(s.Host2, hostLen)
	c.putU32(uint32(s.Port1))
	c.putU32(uint32(s.Port2))
	c.putString(s.RemoteCommand, remoteCommandLen)
	c.putString(s.RemoteVersion, versionLen)
	c.putString(s.RemoteWorkDir, workDirLen)

	c.putU32(uint32(s.ConnectStatus))
	c.putBool(s.RemoteAMG)
	c.putBool(s.RemoteFD)
	c.putBool(s.RemoteArchiveWatch)
	c.putU64(s.FilesPending)
	c.putU64(s.BytesPending)
	c.putU64(s.TransferRate)
	c.putU64(s.FileRate)
	c.putU64(s.ErrorCounter)
	c.putU64(s.QueueDepth)
	c.putU64(s.ActiveTransfers)
	c.putU64(s.HostErrorCount)
	c.putI64(s.MaxConnections)
	c.putI64(s.DangerNoOfJobs)
	c.putU32(uint32(s.NoOfHosts))
	c.putU32(uint32(s.NoOfDirs))
	c.putU32(uint32(s.NoOfJobs))

	c.putTopN(s.TopTransferRate)
	c.putTopN(s.TopFileRate)
	c.putTopN(s.TopTransfers)

	c.putRing(s.FilesSend)
	c.putRing(s.BytesSend)
	c.putRing(s.FilesReceived)
	c.putRing(s.BytesReceived)
	c.putRing(s.Connections)
	c.putRing(s.TotalErrors)
	c.putRing(s.LogBytesReceived)

	copy(c.buf[c.off:], s.LogFifo[:])
	c.off += len(s.LogFifo)
	c.putU64(s.LogFifoCount)
	c.putLogHist(s.ReceiveHistory)
	c.putLogHist(s.TransferHistory)
	c.putLogHist(s.SystemHistory)

	c.putI64(int64(s.PollInterval))
	c.putI64(int64(s.ConnectTime))
	c.putI64(int64(s.DisconnectTime))
	c.putI64(s.LastDataTime)

	c.putU32(uint32(s.AfdSwitching))
	c.putU32(uint32(s.AfdToggle))

	c.putU64(s.Options.Uint64())
	c.putU64(s.Capabilities.Uint64())
	c.putU32(s.SpecialFlag)

	c.putU64(s.SeqNo)
}

// Unmarshal decodes a Site out of buf (as produced by MarshalInto).
func Unmarshal(buf []byte) Site {
	c := &cursor{buf: buf}
	var s Site
	s.Alias = c.getString(aliasLen)
	s.Host1 = c.getString(hostLen)
	s.Host2 = c.getString(hostLen)
	s.Port1 = int(c.getU32())
	s.Port2 = int(c.getU32())
	s.RemoteCommand = c.getString(remoteCommandLen)
	s.RemoteVersion = c.getString(versionLen)
	s.RemoteWorkDir = c.getString(workDirLen)

	s.ConnectStatus = ConnectStatus(c.getU32())
	s.RemoteAMG = c.getBool()
	s.RemoteFD = c.getBool()
	s.RemoteArchiveWatch = c.getBool()
	s.FilesPending = c.getU64()
	s.BytesPending = c.getU64()
	s.TransferRate = c.getU64()
	s.FileRate = c.getU64()
	s.ErrorCounter = c.getU64()
	s.QueueDepth = c.getU64()
	s.ActiveTransfers = c.getU64()
	s.HostErrorCount = c.getU64()
	s.MaxConnections = c.getI64()
	s.DangerNoOfJobs = c.getI64()
	s.NoOfHosts = int(c.getU32())
	s.NoOfDirs = int(c.getU32())
	s.NoOfJobs = int(c.getU32())

	s.TopTransferRate = c.getTopN()
	s.TopFileRate = c.getTopN()
	s.TopTransfers = c.getTopN()

	s.FilesSend = c.getRing()
	s.BytesSend = c.getRing()
	s.FilesReceived = c.getRing()
	s.BytesReceived = c.getRing()
	s.Connections = c.getRing()
	s.TotalErrors = c.getRing()
	s.LogBytesReceived = c.getRing()

	copy(s.LogFifo[:], c.buf[c.off:c.off+len(s.LogFifo)])
	c.off += len(s.LogFifo)
	s.LogFifoCount = c.getU64()
	s.ReceiveHistory = c.getLogHist()
	s.TransferHistory = c.getLogHist()
	s.SystemHistory = c.getLogHist()

	s.PollInterval = timeDuration(c.getI64())
	s.ConnectTime = timeDuration(c.getI64())
	s.DisconnectTime = timeDuration(c.getI64())
	s.LastDataTime = c.getI64()

	s.AfdSwitching = Switching(c.getU32())
	s.AfdToggle = int(c.getU32())

	s.Options = bitflagsFromUint64(c.getU64())
	s.Capabilities = bitflagsFromUint64(c.getU64())
	s.SpecialFlag = c.getU32()

	s.SeqNo = c.getU64()
	return s
}

package snapshot

import (
	"github.com/holger24/AFD-sub005/afdproto"
	"github.com/holger24/AFD-sub005/internal/mmapfile"
)

// HostEntry is one row of a site's host-list snapshot (spec §3.1 "Host
// list snapshot").
type HostEntry struct {
	HostID       uint32
	Alias        string
	Real1, Real2 string
	ErrorHistory [errHistoryLen]uint32
}

// IsGroup reports whether this row is a group row: spec §3.1 says the
// first byte of Real1 carries GroupSentinel when the host has no real
// hostname of its own.
func (e HostEntry) IsGroup() bool {
	return len(e.Real1) == 0 || e.Real1[0] == GroupSentinel
}

const hostRecordSize = 4 + aliasLen + hostLen*2 + errHistoryLen*4

func (e HostEntry) marshalInto(buf []byte) {
	c := &cursor{buf: buf}
	c.putU32(e.HostID)
	c.putString(e.Alias, aliasLen)
	c.putString(e.Real1, hostLen)
	c.putString(e.Real2, hostLen)
	for _, v := range e.ErrorHistory {
		c.putU32(v)
	}
}

func unmarshalHost(buf []byte) HostEntry {
	c := &cursor{buf: buf}
	var e HostEntry
	e.HostID = c.getU32()
	e.Alias = c.getString(aliasLen)
	e.Real1 = c.getString(hostLen)
	e.Real2 = c.getString(hostLen)
	for i := range e.ErrorHistory {
		e.ErrorHistory[i] = c.getU32()
	}
	return e
}

// HostList is the memory-mapped host_list.<alias> file.
type HostList struct {
	file     *mmapfile.File
	capacity int
}

func sizeFor(capacity int) int64 {
	return int64(HeaderSize + capacity*hostRecordSize)
}

// OpenHostList attaches to (creating if necessary) the host-list file
// at path, sized to hold at least capacity entries.
func OpenHostList(path string, capacity int) (*HostList, error) {
	f, err := mmapfile.Open(path, sizeFor(capacity))
	if err != nil {
		return nil, err
	}
	return &HostList{file: f, capacity: capacity}, nil
}

func (l *HostList) Close() error { return l.file.Close() }

func (l *HostList) Capacity() int { return l.capacity }

func (l *HostList) Header() Header { return unmarshalHeader(l.file.Bytes()[:HeaderSize]) }

func (l *HostList) setHeader(h Header) { h.marshalInto(l.file.Bytes()[:HeaderSize]) }

// Grow extends the file to the next DataStepSize-aligned block that can
// hold newCapacity entries (spec §4.4 "resize policy").
func (l *HostList) Grow(newCapacity int) error {
	if newCapacity <= l.capacity {
		return nil
	}
	aligned := alignUp(newCapacity, afdproto.DataStepSize)
	if err := l.file.Remap(sizeFor(aligned)); err != nil {
		return err
	}
	l.capacity = aligned
	return nil
}

// Shrink truncates the file down to the next DataStepSize-aligned block
// that still holds newCapacity entries (spec §3.2 invariant 4 "reshuffle
// may also resize down after a net shrink").
func (l *HostList) Shrink(newCapacity int) error {
	aligned := alignUp(newCapacity, afdproto.DataStepSize)
	if aligned >= l.capacity {
		return nil
	}
	if err := l.file.Remap(sizeFor(aligned)); err != nil {
		return err
	}
	l.capacity = aligned
	return nil
}

func (l *HostList) offset(i int) int { return HeaderSize + i*hostRecordSize }

func (l *HostList) Read(i int) HostEntry {
	off := l.offset(i)
	return unmarshalHost(l.file.Bytes()[off : off+hostRecordSize])
}

func (l *HostList) Write(i int, e HostEntry) {
	off := l.offset(i)
	e.marshalInto(l.file.Bytes()[off : off+hostRecordSize])
	hdr := l.Header()
	if uint32(i+1) > hdr.Count {
		hdr.Count = uint32(i + 1)
		l.setHeader(hdr)
	}
}

func alignUp(n, step int) int {
	if step <= 0 {
		return n
	}
	if n%step == 0 {
		return n
	}
	return (n/step + 1) * step
}

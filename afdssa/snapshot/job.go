package snapshot

import (
	"github.com/holger24/AFD-sub005/afdproto"
	"github.com/holger24/AFD-sub005/internal/mmapfile"
)

// JobEntry is one row of a site's job-list snapshot (spec §3.1 "Job
// list snapshot"). Recipient may have arrived blurred and already been
// unblurred by the Tag Parser by the time it reaches here (spec §4.2).
type JobEntry struct {
	JobID       uint32
	DirID       uint32
	NoOfLOptions uint32
	EntryTime   int64
	Priority    byte
	Recipient   string
}

const jobRecordSize = 4 + 4 + 4 + 8 + 1 + recipientLen

func (e JobEntry) marshalInto(buf []byte) {
	c := &cursor{buf: buf}
	c.putU32(e.JobID)
	c.putU32(e.DirID)
	c.putU32(e.NoOfLOptions)
	c.putU64(uint64(e.EntryTime))
	c.putByte(e.Priority)
	c.putString(e.Recipient, recipientLen)
}

func unmarshalJob(buf []byte) JobEntry {
	c := &cursor{buf: buf}
	var e JobEntry
	e.JobID = c.getU32()
	e.DirID = c.getU32()
	e.NoOfLOptions = c.getU32()
	e.EntryTime = int64(c.getU64())
	e.Priority = c.getByte()
	e.Recipient = c.getString(recipientLen)
	return e
}

// JobList is the memory-mapped job_list.<alias> file.
type JobList struct {
	file     *mmapfile.File
	capacity int
}

func jobSizeFor(capacity int) int64 { return int64(HeaderSize + capacity*jobRecordSize) }

func OpenJobList(path string, capacity int) (*JobList, error) {
	f, err := mmapfile.Open(path, jobSizeFor(capacity))
	if err != nil {
		return nil, err
	}
	return &JobList{file: f, capacity: capacity}, nil
}

func (l *JobList) Close() error   { return l.file.Close() }
func (l *JobList) Capacity() int  { return l.capacity }
func (l *JobList) Header() Header { return unmarshalHeader(l.file.Bytes()[:HeaderSize]) }
func (l *JobList) setHeader(h Header) { h.marshalInto(l.file.Bytes()[:HeaderSize]) }

func (l *JobList) Grow(newCapacity int) error {
	if newCapacity <= l.capacity {
		return nil
	}
	aligned := alignUp(newCapacity, afdproto.DataStepSize)
	if err := l.file.Remap(jobSizeFor(aligned)); err != nil {
		return err
	}
	l.capacity = aligned
	return nil
}

func (l *JobList) Shrink(newCapacity int) error {
	aligned := alignUp(newCapacity, afdproto.DataStepSize)
	if aligned >= l.capacity {
		return nil
	}
	if err := l.file.Remap(jobSizeFor(aligned)); err != nil {
		return err
	}
	l.capacity = aligned
	return nil
}

func (l *JobList) offset(i int) int { return HeaderSize + i*jobRecordSize }

func (l *JobList) Read(i int) JobEntry {
	off := l.offset(i)
	return unmarshalJob(l.file.Bytes()[off : off+jobRecordSize])
}

func (l *JobList) Write(i int, e JobEntry) {
	off := l.offset(i)
	e.marshalInto(l.file.Bytes()[off : off+jobRecordSize])
	hdr := l.Header()
	if uint32(i+1) > hdr.Count {
		hdr.Count = uint32(i + 1)
		l.setHeader(hdr)
	}
}

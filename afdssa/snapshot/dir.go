package snapshot

import (
	"github.com/holger24/AFD-sub005/afdproto"
	"github.com/holger24/AFD-sub005/internal/mmapfile"
)

// DirEntry is one row of a site's directory-list snapshot (spec §3.1
// "Directory list snapshot").
type DirEntry struct {
	DirID        uint32
	EntryTime    int64
	Alias        string
	Name         string
	OrigName     string
	HomeDirUser  string
	HomeDirLen   uint32
}

const dirRecordSize = 4 + 8 + aliasLen + pathLen*2 + homeUserLen + 4

func (e DirEntry) marshalInto(buf []byte) {
	c := &cursor{buf: buf}
	c.putU32(e.DirID)
	c.putU64(uint64(e.EntryTime))
	c.putString(e.Alias, aliasLen)
	c.putString(e.Name, pathLen)
	c.putString(e.OrigName, pathLen)
	c.putString(e.HomeDirUser, homeUserLen)
	c.putU32(e.HomeDirLen)
}

func unmarshalDir(buf []byte) DirEntry {
	c := &cursor{buf: buf}
	var e DirEntry
	e.DirID = c.getU32()
	e.EntryTime = int64(c.getU64())
	e.Alias = c.getString(aliasLen)
	e.Name = c.getString(pathLen)
	e.OrigName = c.getString(pathLen)
	e.HomeDirUser = c.getString(homeUserLen)
	e.HomeDirLen = c.getU32()
	return e
}

// DirList is the memory-mapped dir_list.<alias> file.
type DirList struct {
	file     *mmapfile.File
	capacity int
}

func dirSizeFor(capacity int) int64 { return int64(HeaderSize + capacity*dirRecordSize) }

func OpenDirList(path string, capacity int) (*DirList, error) {
	f, err := mmapfile.Open(path, dirSizeFor(capacity))
	if err != nil {
		return nil, err
	}
	return &DirList{file: f, capacity: capacity}, nil
}

func (l *DirList) Close() error   { return l.file.Close() }
func (l *DirList) Capacity() int  { return l.capacity }
func (l *DirList) Header() Header { return unmarshalHeader(l.file.Bytes()[:HeaderSize]) }
func (l *DirList) setHeader(h Header) { h.marshalInto(l.file.Bytes()[:HeaderSize]) }

func (l *DirList) Grow(newCapacity int) error {
	if newCapacity <= l.capacity {
		return nil
	}
	aligned := alignUp(newCapacity, afdproto.DataStepSize)
	if err := l.file.Remap(dirSizeFor(aligned)); err != nil {
		return err
	}
	l.capacity = aligned
	return nil
}

func (l *DirList) Shrink(newCapacity int) error {
	aligned := alignUp(newCapacity, afdproto.DataStepSize)
	if aligned >= l.capacity {
		return nil
	}
	if err := l.file.Remap(dirSizeFor(aligned)); err != nil {
		return err
	}
	l.capacity = aligned
	return nil
}

func (l *DirList) offset(i int) int { return HeaderSize + i*dirRecordSize }

func (l *DirList) Read(i int) DirEntry {
	off := l.offset(i)
	return unmarshalDir(l.file.Bytes()[off : off+dirRecordSize])
}

func (l *DirList) Write(i int, e DirEntry) {
	off := l.offset(i)
	e.marshalInto(l.file.Bytes()[off : off+dirRecordSize])
	hdr := l.Header()
	if uint32(i+1) > hdr.Count {
		hdr.Count = uint32(i + 1)
		l.setHeader(hdr)
	}
}

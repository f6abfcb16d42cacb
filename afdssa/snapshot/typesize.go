package snapshot

import (
	"encoding/binary"

	"github.com/holger24/AFD-sub005/internal/mmapfile"
)

// TypesizeFields is the count of compile-time size fields the remote
// reports (spec §3.1 "Typesize record": "a fixed vector of 16
// integers").
const TypesizeFields = 16

// Typesize is the per-site record of the remote's compile-time field
// widths (message name length, filename length, hostname length, ...),
// fed into the Tag Parser at session start per spec §9 "Typesize data".
type Typesize [TypesizeFields]uint32

// TypesizeFile is the memory-mapped typesize.<alias> file. It never
// grows - it's always exactly TypesizeFields wide - so it has no resize
// policy of its own, unlike the three list files.
type TypesizeFile struct {
	file *mmapfile.File
}

const typesizeRecordSize = HeaderSize + TypesizeFields*4

func OpenTypesizeFile(path string) (*TypesizeFile, error) {
	f, err := mmapfile.Open(path, int64(typesizeRecordSize))
	if err != nil {
		return nil, err
	}
	return &TypesizeFile{file: f}, nil
}

func (t *TypesizeFile) Close() error { return t.file.Close() }

func (t *TypesizeFile) Read() Typesize {
	var v Typesize
	buf := t.file.Bytes()[HeaderSize:typesizeRecordSize]
	for i := range v {
		v[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
	return v
}

func (t *TypesizeFile) Write(v Typesize) {
	buf := t.file.Bytes()[HeaderSize:typesizeRecordSize]
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], x)
	}
}

package afdssa

import "encoding/binary"

// HeaderSize is the fixed byte length of the SSA header block that
// precedes the record array (spec §3.1 "SSA header").
const HeaderSize = 8 + 8 + 8

// Header carries the bookkeeping spec §3.1 groups with the SSA as a
// whole rather than with any one site: how many records are currently
// live, plus CreatedAt and LastResize timestamps. Store maintains only
// NoOfSites; it never writes CreatedAt or LastResize, so both stay zero.
type Header struct {
	NoOfSites  uint64
	CreatedAt  int64
	LastResize int64
}

func (h Header) marshalInto(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:], h.NoOfSites)
	binary.LittleEndian.PutUint64(buf[8:], uint64(h.CreatedAt))
	binary.LittleEndian.PutUint64(buf[16:], uint64(h.LastResize))
}

func unmarshalHeader(buf []byte) Header {
	return Header{
		NoOfSites:  binary.LittleEndian.Uint64(buf[0:]),
		CreatedAt:  int64(binary.LittleEndian.Uint64(buf[8:])),
		LastResize: int64(binary.LittleEndian.Uint64(buf[16:])),
	}
}

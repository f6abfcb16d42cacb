// Package snapshot implements the per-site persistent list files the
// Polling Client reconciles against as it streams host/dir/job list
// updates: host_list.<alias>, dir_list.<alias>, job_list.<alias>,
// typesize.<alias>, and the accumulated old_dir_list.<alias> /
// old_job_list.<alias> history files (spec §4.4, §6.4).
package snapshot

import (
	"encoding/binary"

	"github.com/holger24/AFD-sub005/afdproto"
)

const (
	aliasLen      = afdproto.MaxAliasLength
	hostLen       = afdproto.MaxHostnameLength
	pathLen       = afdproto.MaxPathLength
	homeUserLen   = 32
	recipientLen  = afdproto.MaxRecipientLength
	errHistoryLen = afdproto.ErrorHistoryLength
)

// GroupSentinel is the first byte of Real1 that marks a host-list row
// as a group row (spec §3.1 "a first real-hostname byte of the special
// group-identifier sentinel marks a group row").
const GroupSentinel = 0x01

// HeaderSize is the fixed "WORD_OFFSET" header every snapshot file
// carries ahead of its record array (spec §6.4).
const HeaderSize = 16

// Header is the small bookkeeping block stored at the start of every
// snapshot file.
type Header struct {
	Count      uint32
	Generation uint32
	Reserved   uint64
}

func (h Header) marshalInto(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:], h.Count)
	binary.LittleEndian.PutUint32(buf[4:], h.Generation)
	binary.LittleEndian.PutUint64(buf[8:], h.Reserved)
}

func unmarshalHeader(buf []byte) Header {
	return Header{
		Count:      binary.LittleEndian.Uint32(buf[0:]),
		Generation: binary.LittleEndian.Uint32(buf[4:]),
		Reserved:   binary.LittleEndian.Uint64(buf[8:]),
	}
}

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

func (c *cursor) putU32(v uint32) { binary.LittleEndian.PutUint32(c.buf[c.off:], v); c.off += 4 }
func (c *cursor) getU32() uint32  { v := binary.LittleEndian.Uint32(c.buf[c.off:]); c.off += 4; return v }
func (c *cursor) putU64(v uint64) { binary.LittleEndian.PutUint64(c.buf[c.off:], v); c.off += 8 }
func (c *cursor) getU64() uint64  { v := binary.LittleEndian.Uint64(c.buf[c.off:]); c.off += 8; return v }
func (c *cursor) putByte(b byte)  { c.buf[c.off] = b; c.off++ }
func (c *cursor) getByte() byte   { b := c.buf[c.off]; c.off++; return b }

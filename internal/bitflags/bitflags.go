// Package bitflags wraps github.com/bits-and-blooms/bitset for the two
// per-site bitsets spec §3.1 calls for: the locally-configured options
// bitset (enable TLS, enable compression, strict-host-key, one bit per
// log kind) and the feature-capabilities bitset the remote reports back.
package bitflags

import "github.com/bits-and-blooms/bitset"

// Site option bits (spec §3.1 "flags").
const (
	OptTLSEnabled uint = iota
	OptCompressionEnabled
	OptStrictHostKey
	OptStreamReceiveLog
	OptStreamTransferLog
	OptStreamSystemLog
)

// Set is a small typed wrapper kept distinct from a raw *bitset.BitSet so
// call sites read as "site options" / "remote capabilities" rather than
// an anonymous bit vector.
type Set struct {
	b *bitset.BitSet
}

// New returns an empty set sized to hold at least nbits without growing.
func New(nbits uint) Set {
	return Set{b: bitset.New(nbits)}
}

func (s Set) Set(bit uint) Set {
	if s.b == nil {
		s.b = bitset.New(bit + 1)
	}
	s.b.Set(bit)
	return s
}

func (s Set) Clear(bit uint) Set {
	if s.b == nil {
		return s
	}
	s.b.Clear(bit)
	return s
}

func (s Set) Test(bit uint) bool {
	if s.b == nil {
		return false
	}
	return s.b.Test(bit)
}

// Intersects reports whether any bit is set in both sets - used by the
// log-capability handshake (spec §4.3) to check the remote's reported
// capabilities against the site's requested log streams.
func (s Set) Intersects(other Set) bool {
	if s.b == nil || other.b == nil {
		return false
	}
	return s.b.IntersectionCardinality(other.b) > 0
}

// Uint64 returns the set as a single word, for storage in a fixed-size
// SSA record field.
func (s Set) Uint64() uint64 {
	if s.b == nil {
		return 0
	}
	words := s.b.Bytes()
	if len(words) == 0 {
		return 0
	}
	return words[0]
}

// FromUint64 rebuilds a Set from a single stored word.
func FromUint64(v uint64) Set {
	s := New(64)
	for i := uint(0); i < 64; i++ {
		if v&(1<<i) != 0 {
			s.b.Set(i)
		}
	}
	return s
}

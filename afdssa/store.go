package afdssa

import (
	"fmt"
	"sync"

	"github.com/holger24/AFD-sub005/internal/afderr"
	"github.com/holger24/AFD-sub005/internal/mmapfile"
)

// Store owns the mmap'd SSA file: a Header block followed by a flat
// array of fixed-size Site records (spec §3.1 "Shared Status Area").
// One Store per afdmond process; the Polling Clients, the Aggregator
// and the Supervisor all share the same Store instance and rely on its
// mutex rather than the memory mapping itself for safe concurrent
// access within the process. Other processes (a status UI) that map the
// same file read-only rely on Site.SeqNo instead (spec §5, §9).
type Store struct {
	mu       sync.RWMutex
	file     *mmapfile.File
	capacity int // number of record slots currently allocated
}

func recordOffset(i int) int { return HeaderSize + i*RecordSize }

// Open attaches to (creating if necessary) the SSA file at path, sized
// to hold at least capacity sites.
func Open(path string, capacity int) (*Store, error) {
	size := int64(HeaderSize + capacity*RecordSize)
	f, err := mmapfile.Open(path, size)
	if err != nil {
		return nil, err
	}

	s := &Store{file: f, capacity: capacity}
	return s, nil
}

// Close flushes and unmaps the backing file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// Capacity reports the number of record slots currently allocated.
func (s *Store) Capacity() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.capacity
}

// Header returns the current header block.
func (s *Store) Header() Header {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return unmarshalHeader(s.file.Bytes()[:HeaderSize])
}

func (s *Store) setHeader(h Header) {
	h.marshalInto(s.file.Bytes()[:HeaderSize])
}

// Grow extends the record array to hold newCapacity sites, remapping
// the backing file to exactly HeaderSize + newCapacity*RecordSize
// bytes. Unlike the per-site snapshot files, the SSA is not rounded up
// to DataStepSize-sized blocks. A newCapacity at or below the current
// capacity is a no-op.
func (s *Store) Grow(newCapacity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if newCapacity <= s.capacity {
		return nil
	}

	if err := s.file.Remap(int64(HeaderSize + newCapacity*RecordSize)); err != nil {
		return err
	}
	s.capacity = newCapacity
	return nil
}

// Read decodes the record at index i.
func (s *Store) Read(i int) (Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i < 0 || i >= s.capacity {
		return Site{}, afderr.New(afderr.CodeListIndexRange, fmt.Sprintf("afdssa: index %d out of range [0,%d)", i, s.capacity))
	}

	off := recordOffset(i)
	return Unmarshal(s.file.Bytes()[off : off+RecordSize]), nil
}

// Write encodes site into the record at index i, incrementing its
// sequence number once (spec §5 "Shared-resource policy", §9 "per-record
// sequence number"). SeqNo is encoded as the record's last field, after
// all the others; it is not made odd while a write is in progress, so a
// reader that samples mid-write is not told that a write is under way.
func (s *Store) Write(i int, site Site) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= s.capacity {
		return afderr.New(afderr.CodeListIndexRange, fmt.Sprintf("afdssa: index %d out of range [0,%d)", i, s.capacity))
	}

	site.SeqNo++
	off := recordOffset(i)
	site.MarshalInto(s.file.Bytes()[off : off+RecordSize])

	hdr := unmarshalHeader(s.file.Bytes()[:HeaderSize])
	if uint64(i+1) > hdr.NoOfSites {
		hdr.NoOfSites = uint64(i + 1)
		s.setHeader(hdr)
	}
	return nil
}

// Sync flushes the mapped region to disk.
func (s *Store) Sync() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.file.Sync()
}

// ForEach calls fn for every currently live record, stopping early if
// fn returns false. Used by the Aggregator to walk the fleet once per
// tick and by the Supervisor to recompute group-aggregate rows.
func (s *Store) ForEach(fn func(i int, site Site) bool) error {
	hdr := s.Header()
	for i := 0; i < int(hdr.NoOfSites); i++ {
		site, err := s.Read(i)
		if err != nil {
			return err
		}
		if !fn(i, site) {
			break
		}
	}
	return nil
}

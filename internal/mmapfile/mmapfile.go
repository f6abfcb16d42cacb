// Package mmapfile provides the fixed-size memory-mapped file primitive
// that backs the Shared Status Area and the per-site host/dir/job/typesize
// snapshot files (spec §3.1, §4.4, §6.4).
//
// It wraps github.com/xujiajun/mmap-go, the same mmap binding the
// teacher's nutsdb dependency is built on, rather than rolling a raw
// syscall.Mmap call: growth/truncate/remap is common enough across the
// SSA and every snapshot kind that one primitive is worth sharing.
package mmapfile

import (
	"os"

	"github.com/xujiajun/mmap-go"

	"github.com/holger24/AFD-sub005/internal/afderr"
)

// File is a fixed-size region of a regular file mapped into memory.
// It is not safe for concurrent use by multiple goroutines without
// external synchronization; afdssa.Store guards its File with its own
// mutex, while the afdssa/snapshot list files take no lock.
type File struct {
	path string
	fh   *os.File
	m    mmap.MMap
}

// Open maps path, creating it and growing it to size bytes if it does
// not exist or is smaller. size == 0 maps the file at its current length
// (the caller must ensure it is non-empty).
func Open(path string, size int64) (*File, error) {
	fh, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, afderr.Wrap(afderr.CodeFilesystem, "open "+path, err)
	}

	if size > 0 {
		if st, serr := fh.Stat(); serr == nil && st.Size() < size {
			if terr := fh.Truncate(size); terr != nil {
				_ = fh.Close()
				return nil, afderr.Wrap(afderr.CodeFilesystem, "truncate "+path, terr)
			}
		}
	}

	m, err := mmap.Map(fh, mmap.RDWR, 0)
	if err != nil {
		_ = fh.Close()
		return nil, afderr.Wrap(afderr.CodeFilesystem, "mmap "+path, err)
	}

	return &File{path: path, fh: fh, m: m}, nil
}

// Bytes returns the mapped region. Callers must not retain slices of it
// across a Remap.
func (f *File) Bytes() []byte {
	if f == nil {
		return nil
	}
	return f.m
}

// Len returns the current mapped length.
func (f *File) Len() int {
	if f == nil {
		return 0
	}
	return len(f.m)
}

// Sync flushes dirty pages to disk.
func (f *File) Sync() error {
	if f == nil {
		return nil
	}
	if err := f.m.Flush(); err != nil {
		return afderr.Wrap(afderr.CodeFilesystem, "sync "+f.path, err)
	}
	return nil
}

// Remap unmaps the current region, truncates (or grows) the underlying
// file to newSize, and remaps it. Used by the snapshot manager's resize
// policy (spec §4.4) and by SSA growth when a reloaded configuration adds
// sites.
func (f *File) Remap(newSize int64) error {
	if f == nil {
		return nil
	}

	if err := f.m.Unmap(); err != nil {
		return afderr.Wrap(afderr.CodeFilesystem, "unmap "+f.path, err)
	}

	if err := f.fh.Truncate(newSize); err != nil {
		return afderr.Wrap(afderr.CodeFilesystem, "truncate "+f.path, err)
	}

	m, err := mmap.Map(f.fh, mmap.RDWR, 0)
	if err != nil {
		return afderr.Wrap(afderr.CodeFilesystem, "remap "+f.path, err)
	}

	f.m = m
	return nil
}

// Close unmaps and closes the backing file.
func (f *File) Close() error {
	if f == nil {
		return nil
	}

	var err error
	if f.m != nil {
		if uerr := f.m.Unmap(); uerr != nil {
			err = afderr.Wrap(afderr.CodeFilesystem, "unmap "+f.path, uerr)
		}
	}
	if cerr := f.fh.Close(); cerr != nil && err == nil {
		err = afderr.Wrap(afderr.CodeFilesystem, "close "+f.path, cerr)
	}
	return err
}

// Path returns the backing file path.
func (f *File) Path() string {
	if f == nil {
		return ""
	}
	return f.path
}

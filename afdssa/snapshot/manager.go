package snapshot

import (
	"fmt"
	"path/filepath"
)

// Manager owns the full set of persistent snapshot files for one site:
// the three live list files, their tmp_ copies-in-progress, the two
// accumulated old_ history files, and the typesize vector (spec §4.4,
// §6.4).
type Manager struct {
	dir   string
	alias string

	Host *HostList

	Dir    *DirList
	TmpDir *DirList
	OldDir *DirList

	Job    *JobList
	TmpJob *JobList
	OldJob *JobList

	Typesize *TypesizeFile
}

// OpenManager attaches to (creating as needed) every snapshot file for
// alias under workDir/fifo (spec §6.4 lists the exact file names).
func OpenManager(workDir, alias string) (*Manager, error) {
	m := &Manager{dir: workDir, alias: alias}

	var err error
	if m.Host, err = OpenHostList(m.path("host_list"), 0); err != nil {
		return nil, err
	}
	if m.Dir, err = OpenDirList(m.path("dir_list"), 0); err != nil {
		return nil, err
	}
	if m.TmpDir, err = OpenDirList(m.path("tmp_dir_list"), 0); err != nil {
		return nil, err
	}
	if m.OldDir, err = OpenDirList(m.path("old_dir_list"), 0); err != nil {
		return nil, err
	}
	if m.Job, err = OpenJobList(m.path("job_list"), 0); err != nil {
		return nil, err
	}
	if m.TmpJob, err = OpenJobList(m.path("tmp_job_list"), 0); err != nil {
		return nil, err
	}
	if m.OldJob, err = OpenJobList(m.path("old_job_list"), 0); err != nil {
		return nil, err
	}
	if m.Typesize, err = OpenTypesizeFile(m.path("typesize")); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) path(kind string) string {
	return filepath.Join(m.dir, fmt.Sprintf("%s.%s", kind, m.alias))
}

// Close unmaps every file this manager owns, logging nothing itself -
// callers decide how to report a partial close (spec §4.4 "Failure
// semantics: map/unmap errors are logged; the function proceeds with
// whichever side it could map").
func (m *Manager) Close() error {
	var firstErr error
	for _, c := range []interface{ Close() error }{m.Host, m.Dir, m.TmpDir, m.OldDir, m.Job, m.TmpJob, m.OldJob, m.Typesize} {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ResizeHosts grows the host list to newCount entries (spec §4.4
// "Resize policy"). The host list carries no "old" history of its own
// in spec §3.1, so unlike dirs/jobs there is no tmp_/reshuffle step.
func (m *Manager) ResizeHosts(newCount int) error {
	return m.Host.Grow(newCount)
}

// ResizeDirs copies the current active dir list into tmp_dir_list
// (spec §4.4 "The old content is first copied to a tmp_ companion
// file") and then grows the active list to newCount.
func (m *Manager) ResizeDirs(newCount int) error {
	if err := copyDirList(m.Dir, m.TmpDir); err != nil {
		return err
	}
	return m.Dir.Grow(newCount)
}

// ResizeJobs is ResizeDirs' job-list counterpart.
func (m *Manager) ResizeJobs(newCount int) error {
	if err := copyJobList(m.Job, m.TmpJob); err != nil {
		return err
	}
	return m.Job.Grow(newCount)
}

func copyDirList(active, tmp *DirList) error {
	count := int(active.Header().Count)
	if err := tmp.Grow(count); err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		tmp.Write(i, active.Read(i))
	}
	hdr := tmp.Header()
	hdr.Count = uint32(count)
	tmp.setHeader(hdr)
	return nil
}

func copyJobList(active, tmp *JobList) error {
	count := int(active.Header().Count)
	if err := tmp.Grow(count); err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		tmp.Write(i, active.Read(i))
	}
	hdr := tmp.Header()
	hdr.Count = uint32(count)
	tmp.setHeader(hdr)
	return nil
}

// CommitDirsIfComplete runs the reshuffle (spec §4.4 "Commit") once the
// stream has written the last position of the new dir-list snapshot.
func (m *Manager) CommitDirsIfComplete(pos, count int, retentionSeconds, lastDataTime int64) error {
	if pos+1 != count {
		return nil
	}
	return ReshuffleDirs(m.OldDir, m.TmpDir, m.Dir, retentionSeconds, lastDataTime)
}

// CommitJobsIfComplete is CommitDirsIfComplete's job-list counterpart.
func (m *Manager) CommitJobsIfComplete(pos, count int, retentionSeconds, lastDataTime int64) error {
	if pos+1 != count {
		return nil
	}
	return ReshuffleJobs(m.OldJob, m.TmpJob, m.Job, retentionSeconds, lastDataTime)
}

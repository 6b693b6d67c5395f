package mydups

import (
	"fmt"
	"strconv"
)

// DuplicateType classifies where a source file's duplicates were found
type DuplicateType int

const (
	DupType1 DuplicateType = iota + 1 // one source file, matched in the repository
	DupType2                          // several identical source files, matched in the repository
	DupType3                          // several identical source files, no repository match
)

// String returns the number used in reports ("1", "2" or "3")
func (t DuplicateType) String() string {
	return strconv.Itoa(int(t))
}

// DuplicateGroup represents a group of source files reported together
type DuplicateGroup struct {
	Type  DuplicateType `json:"type" yaml:"type" msgpack:"type"`
	Hash  string        `json:"fingerprint" yaml:"fingerprint" msgpack:"fingerprint"`
	Files []string      `json:"files" yaml:"files" msgpack:"files"`
	Count int           `json:"count" yaml:"count" msgpack:"count"`
}

// NewDuplicateGroup builds a group from classified records
func NewDuplicateGroup(dupType DuplicateType, fp Fingerprint, records []FileRecord) DuplicateGroup {
	files := make([]string, 0, len(records))
	for _, record := range records {
		files = append(files, record.Path())
	}
	return DuplicateGroup{
		Type:  dupType,
		Hash:  fp.String(),
		Files: files,
		Count: len(files),
	}
}

// Reporter receives duplicates as they are classified
type Reporter interface {
	// ReportGroup reports every record of one classified group
	ReportGroup(dupType DuplicateType, fp Fingerprint, records []FileRecord) error
	// Finish writes the summary once all passes completed
	Finish(summary *Summary) error
	// Flush pushes out anything already produced; used when a run aborts
	Flush() error
}

// Summary counts what a run found. Total is the number of reported files.
type Summary struct {
	Type1           int `json:"type1" yaml:"type1" msgpack:"type1"`
	Type2           int `json:"type2" yaml:"type2" msgpack:"type2"`
	Type3           int `json:"type3" yaml:"type3" msgpack:"type3"`
	Total           int `json:"total" yaml:"total" msgpack:"total"`
	SourceFiles     int `json:"source_files" yaml:"source_files" msgpack:"source_files"`
	RepositoryFiles int `json:"repository_files" yaml:"repository_files" msgpack:"repository_files"`
}

func (s *Summary) add(dupType DuplicateType, files int) {
	switch dupType {
	case DupType1:
		s.Type1 += files
	case DupType2:
		s.Type2 += files
	case DupType3:
		s.Type3 += files
	}
	s.Total += files
}

// Finder runs the three classification passes over a source and a repository tree
type Finder struct {
	config RunConfig
	walker *Walker
	index  *SourceIndex
}

// NewFinder creates a finder for one run
func NewFinder(cfg RunConfig) *Finder {
	return &Finder{
		config: cfg,
		walker: NewWalker(cfg),
		index:  NewSourceIndex(),
	}
}

// FindDuplicates indexes the source tree, classifies the repository tree
// against it, then reports what remains duplicated inside the source tree.
// Duplicates reach the reporter as soon as they are classified.
func (f *Finder) FindDuplicates(shutdownChan <-chan struct{}, reporter Reporter) (*Summary, error) {
	defer VerboseEnter()()
	summary := &Summary{}

	indexed, err := f.BuildSourceIndex(shutdownChan)
	if err != nil {
		return summary, fmt.Errorf("failed to index source directory: %w", err)
	}
	summary.SourceFiles = indexed
	VerboseLog(1, "indexed %d source file(s) under %d fingerprint(s)", indexed, f.index.Len())

	if err := f.ClassifyRepository(shutdownChan, reporter, summary); err != nil {
		return summary, fmt.Errorf("failed to classify repository directory: %w", err)
	}
	VerboseLog(1, "observed %d repository file(s), %d source file(s) under %d fingerprint(s) left unresolved",
		summary.RepositoryFiles, f.index.RecordCount(), f.index.Len())

	if err := f.ScanResidual(reporter, summary); err != nil {
		return summary, fmt.Errorf("failed to report source-only duplicates: %w", err)
	}

	if err := reporter.Finish(summary); err != nil {
		return summary, fmt.Errorf("failed to write summary: %w", err)
	}
	return summary, nil
}

// BuildSourceIndex walks the source tree and adds every file to the index
func (f *Finder) BuildSourceIndex(shutdownChan <-chan struct{}) (int, error) {
	defer VerboseEnter()()
	count := 0

	err := f.walker.Walk(f.config.SourceDir, TrackRecords, shutdownChan, func(entry WalkEntry) error {
		record, ok := entry.Tracked()
		if !ok {
			return fmt.Errorf("source walk produced an untracked entry for %s", entry.Fingerprint)
		}
		if err := f.index.Add(record, entry.Fingerprint); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}

// ClassifyRepository walks the repository tree and resolves each fingerprint
// found in the index exactly once: a lone source record is Type 1, a group of
// several is Type 2. The resolved entry leaves the index, so further
// repository copies of the same content are ignored.
func (f *Finder) ClassifyRepository(shutdownChan <-chan struct{}, reporter Reporter, summary *Summary) error {
	defer VerboseEnter()()

	return f.walker.Walk(f.config.RepositoryDir, ObserveOnly, shutdownChan, func(entry WalkEntry) error {
		summary.RepositoryFiles++

		records, found := f.index.Take(entry.Fingerprint)
		if !found {
			return nil
		}

		dupType := DupType1
		if len(records) > 1 {
			dupType = DupType2
		}
		DebugLog("classify", "%s resolved as Type %s (%d source file(s))", entry.Fingerprint, dupType, len(records))

		if err := reporter.ReportGroup(dupType, entry.Fingerprint, records); err != nil {
			return fmt.Errorf("failed to report duplicates: %w", err)
		}
		summary.add(dupType, len(records))
		return nil
	})
}

// ScanResidual reports every fingerprint still holding several source records
// as Type 3. Singletons are unique files and are not reported.
func (f *Finder) ScanResidual(reporter Reporter, summary *Summary) error {
	defer VerboseEnter()()

	var reportErr error
	f.index.ForEachGroup(func(fp Fingerprint, records []FileRecord) bool {
		if len(records) < 2 {
			return true
		}
		DebugLog("classify", "%s left with %d source file(s), Type 3", fp, len(records))

		if err := reporter.ReportGroup(DupType3, fp, records); err != nil {
			reportErr = fmt.Errorf("failed to report duplicates: %w", err)
			return false
		}
		summary.add(DupType3, len(records))
		return true
	})
	return reportErr
}

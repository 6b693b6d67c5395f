package mydups

import (
	"fmt"
	"sort"
)

// SourceIndex maps fingerprints to the source records that share them.
// Every record in the index came from the source tree and has not been
// reported yet. A fingerprint taken out of the index is never added back.
//
// The index has a single writer: the goroutine that drives the walks.
type SourceIndex struct {
	groups  map[Fingerprint]*recordSkiplist
	records int
}

// NewSourceIndex creates an empty index
func NewSourceIndex() *SourceIndex {
	return &SourceIndex{
		groups: make(map[Fingerprint]*recordSkiplist),
	}
}

// Add inserts a record under its fingerprint, keyed by full path.
// It fails only if the same path was already added.
func (si *SourceIndex) Add(record FileRecord, fp Fingerprint) error {
	group, exists := si.groups[fp]
	if !exists {
		group = newRecordSkiplist(skiplistMaxLevels)
		si.groups[fp] = group
	}

	if !group.Insert(record, SourceContext) {
		return fmt.Errorf("duplicate source path in index: %s", record.Path())
	}
	si.records++

	DebugLog("index", "added %s under %s (%d in group)", record.Path(), fp, group.Length())
	return nil
}

// Take removes the whole entry for fp and returns its records in path order
func (si *SourceIndex) Take(fp Fingerprint) ([]FileRecord, bool) {
	group, exists := si.groups[fp]
	if !exists {
		return nil, false
	}
	delete(si.groups, fp)

	records := group.Records()
	si.records -= len(records)
	return records, true
}

// Len returns the number of fingerprints in the index
func (si *SourceIndex) Len() int {
	return len(si.groups)
}

// RecordCount returns the number of records in the index
func (si *SourceIndex) RecordCount() int {
	return si.records
}

// Fingerprints returns the remaining fingerprints in ascending order
func (si *SourceIndex) Fingerprints() []Fingerprint {
	fps := make([]Fingerprint, 0, len(si.groups))
	for fp := range si.groups {
		fps = append(fps, fp)
	}
	sort.Slice(fps, func(i, j int) bool {
		return fps[i].Less(fps[j])
	})
	return fps
}

// ForEachGroup visits the remaining groups in fingerprint order until
// callback returns false; records come in path order
func (si *SourceIndex) ForEachGroup(callback func(Fingerprint, []FileRecord) bool) {
	for _, fp := range si.Fingerprints() {
		if !callback(fp, si.groups[fp].Records()) {
			return
		}
	}
}

package mydups

import (
	"strings"
	"unsafe"

	zcsl "github.com/mattkeenan/zerocopyskiplist"
)

// recordSkiplist is the set of source records sharing one fingerprint, keyed
// and ordered by full path
type recordSkiplist struct {
	skiplist *zcsl.ZeroCopySkiplist[FileRecord, string, string]
}

// newRecordSkiplist creates an empty record set
func newRecordSkiplist(maxLevels int) *recordSkiplist {
	if maxLevels < 4 {
		maxLevels = skiplistMaxLevels
	}

	getKeyFromItem := func(record *FileRecord) string {
		return record.Path()
	}

	getItemSize := func(record *FileRecord) int {
		return int(unsafe.Sizeof(*record)) + len(record.Dir) + len(record.Name)
	}

	cmpKey := func(a, b string) int {
		return strings.Compare(a, b)
	}

	return &recordSkiplist{
		skiplist: zcsl.MakeZeroCopySkiplist[FileRecord, string, string](
			maxLevels,
			getKeyFromItem,
			getItemSize,
			cmpKey,
		),
	}
}

// Insert adds a record with a context; false means the path is already present
func (rs *recordSkiplist) Insert(record FileRecord, context string) bool {
	if existing, _ := rs.Find(record.Path()); existing != nil {
		return false
	}
	return rs.skiplist.Insert(&record, context)
}

// Find looks a record up by full path and returns it with its context
func (rs *recordSkiplist) Find(path string) (*FileRecord, string) {
	itemPtr, context := rs.skiplist.Find(path)
	if itemPtr != nil {
		return itemPtr.Item(), context
	}
	return nil, ""
}

// ForEach visits records in path order until callback returns false
func (rs *recordSkiplist) ForEach(callback func(*FileRecord, string) bool) {
	for current := rs.skiplist.First(); current != nil; current = current.Next() {
		if !callback(current.Item(), current.Context()) {
			break
		}
	}
}

// Records copies the records out in path order
func (rs *recordSkiplist) Records() []FileRecord {
	records := make([]FileRecord, 0, rs.Length())
	rs.ForEach(func(record *FileRecord, _ string) bool {
		records = append(records, *record)
		return true
	})
	return records
}

// Length returns the number of records
func (rs *recordSkiplist) Length() int {
	return rs.skiplist.Length()
}

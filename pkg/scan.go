package mydups

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrInterrupted is returned when a walk stops because of a shutdown signal
var ErrInterrupted = errors.New("scan interrupted by shutdown")

// ============================================================================
// TYPE DEFINITIONS
// ============================================================================

// FileRecord describes one regular file of the source tree
type FileRecord struct {
	Dir     string
	Name    string
	Size    int64
	ModTime time.Time
}

// Path returns the record's full path
func (r FileRecord) Path() string {
	return filepath.Join(r.Dir, r.Name)
}

// WalkMode selects whether a walk keeps file metadata
type WalkMode int

const (
	TrackRecords WalkMode = iota // source tree: keep a FileRecord per file
	ObserveOnly                  // repository tree: fingerprints only
)

// EntryKind discriminates the two shapes of WalkEntry
type EntryKind uint8

const (
	EntryTracked  EntryKind = iota // Record is populated
	EntryObserved                  // Record is the zero value
)

// WalkEntry is one file produced by a walk
type WalkEntry struct {
	Kind        EntryKind
	Record      FileRecord
	Fingerprint Fingerprint
}

// Tracked returns the record when the entry carries one
func (e WalkEntry) Tracked() (FileRecord, bool) {
	return e.Record, e.Kind == EntryTracked
}

// scannedPath is a regular file found during enumeration, not yet hashed
type scannedPath struct {
	Dir  string
	Name string
	Info os.FileInfo
}

func (sp *scannedPath) AbsPath() string {
	return filepath.Join(sp.Dir, sp.Name)
}

// Walker enumerates and fingerprints the regular files of a tree
type Walker struct {
	fingerprinter *Fingerprinter
	includeZero   bool
	hashWorkers   int
	ignoreManager *IgnoreManager
}

// NewWalker creates a walker for the given run configuration
func NewWalker(cfg RunConfig) *Walker {
	workers := cfg.HashWorkers
	if workers < 1 {
		workers = 1
	}
	return &Walker{
		fingerprinter: NewFingerprinter(cfg.Algorithm, cfg.HashBuffer, int64(cfg.MmapLimit)),
		includeZero:   cfg.IncludeZero,
		hashWorkers:   workers,
		ignoreManager: NewIgnoreManager(cfg.IgnoreFile),
	}
}

// ============================================================================
// WALKING
// ============================================================================

// Walk visits every regular file under root depth-first, calling fn with its
// fingerprint. Symbolic links are never followed and zero-size files are
// skipped unless the run includes them. fn is always called from the calling
// goroutine, one entry at a time, even when hashing runs on several workers.
// The first error from enumeration, hashing or fn stops the walk.
func (w *Walker) Walk(root string, mode WalkMode, shutdownChan <-chan struct{}, fn func(WalkEntry) error) error {
	defer VerboseEnter()()

	if err := w.ignoreManager.LoadIgnorePatterns(); err != nil {
		return fmt.Errorf("failed to load ignore patterns: %w", err)
	}

	VerboseLog(2, "walking %s with %d hash worker(s)", root, w.hashWorkers)

	if w.hashWorkers <= 1 {
		return w.scanTree(root, shutdownChan, func(sp *scannedPath) error {
			entry, err := w.fingerprintPath(sp, mode)
			if err != nil {
				return err
			}
			return fn(entry)
		})
	}
	return w.walkParallel(root, mode, shutdownChan, fn)
}

// walkParallel streams enumerated paths to a pool of hash workers and feeds
// the results back to fn on the calling goroutine
func (w *Walker) walkParallel(root string, mode WalkMode, shutdownChan <-chan struct{}, fn func(WalkEntry) error) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	paths := make(chan *scannedPath, w.hashWorkers*4)
	results := make(chan WalkEntry, w.hashWorkers*4)

	g.Go(func() error {
		defer close(paths)
		return w.scanTree(root, shutdownChan, func(sp *scannedPath) error {
			select {
			case paths <- sp:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	})

	var hashers sync.WaitGroup
	for i := 0; i < w.hashWorkers; i++ {
		hashers.Add(1)
		g.Go(func() error {
			defer hashers.Done()
			for sp := range paths {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				entry, err := w.fingerprintPath(sp, mode)
				if err != nil {
					return err
				}
				select {
				case results <- entry:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}

	go func() {
		hashers.Wait()
		close(results)
	}()

	var callbackErr error
	for entry := range results {
		if callbackErr != nil {
			continue
		}
		if err := fn(entry); err != nil {
			callbackErr = err
			cancel()
		}
	}

	err := g.Wait()
	if callbackErr != nil {
		return callbackErr
	}
	return err
}

// fingerprintPath hashes one scanned file and shapes the entry for the walk mode
func (w *Walker) fingerprintPath(sp *scannedPath, mode WalkMode) (WalkEntry, error) {
	fp, err := w.fingerprinter.Fingerprint(sp.AbsPath())
	if err != nil {
		return WalkEntry{}, err
	}

	if mode == ObserveOnly {
		return WalkEntry{Kind: EntryObserved, Fingerprint: fp}, nil
	}

	return WalkEntry{
		Kind: EntryTracked,
		Record: FileRecord{
			Dir:     sp.Dir,
			Name:    sp.Name,
			Size:    fp.Size,
			ModTime: sp.Info.ModTime(),
		},
		Fingerprint: fp,
	}, nil
}

// ============================================================================
// FILESYSTEM ENUMERATION
// ============================================================================

// scanTree enumerates root recursively, handing each candidate file to visit
func (w *Walker) scanTree(root string, shutdownChan <-chan struct{}, visit func(*scannedPath) error) error {
	return w.scanDir(root, root, shutdownChan, visit)
}

// scanDir lists dir and descends into each subdirectory as soon as it is met
func (w *Walker) scanDir(root, dir string, shutdownChan <-chan struct{}, visit func(*scannedPath) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		select {
		case <-shutdownChan:
			DebugLog("scan", "filesystem scan interrupted by shutdown")
			return ErrInterrupted
		default:
		}

		fullPath := filepath.Join(dir, entry.Name())
		mode := entry.Type()

		switch {
		case mode&fs.ModeSymlink != 0:
			DebugLog("scan", "skipping symlink %s", fullPath)

		case entry.IsDir():
			if w.isIgnored(root, fullPath+string(filepath.Separator)) {
				DebugLog("scan", "ignoring directory %s", fullPath)
				continue
			}
			if err := w.scanDir(root, fullPath, shutdownChan, visit); err != nil {
				return err
			}

		case mode.IsRegular():
			if w.isIgnored(root, fullPath) {
				DebugLog("scan", "ignoring file %s", fullPath)
				continue
			}
			info, err := entry.Info()
			if err != nil {
				return fmt.Errorf("failed to stat %s: %w", fullPath, err)
			}
			if info.Size() == 0 && !w.includeZero {
				DebugLog("scan", "skipping zero-size file %s", fullPath)
				continue
			}
			if err := visit(&scannedPath{Dir: dir, Name: entry.Name(), Info: info}); err != nil {
				return err
			}

		default:
			DebugLog("scan", "skipping non-regular file %s", fullPath)
		}
	}

	return nil
}

// isIgnored checks a path relative to the walk root against the ignore patterns
func (w *Walker) isIgnored(root, fullPath string) bool {
	if !w.ignoreManager.HasPatterns() {
		return false
	}
	relPath, err := filepath.Rel(root, fullPath)
	if err != nil {
		return false
	}
	if len(fullPath) > 0 && os.IsPathSeparator(fullPath[len(fullPath)-1]) {
		relPath += "/"
	}
	return w.ignoreManager.ShouldIgnore(relPath)
}

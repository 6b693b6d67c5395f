package mydups

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"golang.org/x/sys/unix"
)

// errMmapUnavailable marks a file that could not be mapped; it is read instead
var errMmapUnavailable = errors.New("mmap failed")

// Fingerprinter computes content fingerprints with one algorithm for a whole run
type Fingerprinter struct {
	algorithm  *HashAlgorithm
	bufferSize int
	mmapLimit  int64
	mmap       func(fd int, offset int64, length int, prot int, flags int) ([]byte, error)
}

// NewFingerprinter creates a fingerprinter. Files up to mmapLimit bytes are
// mapped and hashed in one piece, larger ones are streamed through a buffer
// of bufferSize bytes.
func NewFingerprinter(algorithm *HashAlgorithm, bufferSize int, mmapLimit int64) *Fingerprinter {
	if bufferSize <= 0 {
		bufferSize = 2 * 1024 * 1024
	}
	return &Fingerprinter{
		algorithm:  algorithm,
		bufferSize: bufferSize,
		mmapLimit:  mmapLimit,
		mmap:       unix.Mmap,
	}
}

// Fingerprint reads the whole file and returns its size and digest.
// The size comes from the open descriptor so it always matches the hashed bytes.
func (fp *Fingerprinter) Fingerprint(filePath string) (Fingerprint, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Fingerprint{}, fmt.Errorf("failed to stat file %s: %w", filePath, err)
	}
	size := info.Size()

	var digest string
	switch {
	case size == 0:
		digest = HashBytesToString(nil, fp.algorithm)
	case size <= fp.mmapLimit:
		digest, err = fp.hashMapped(file, size)
		if errors.Is(err, errMmapUnavailable) {
			DebugLog("hash", "%v, reading %s instead", err, filePath)
			digest, err = fp.hashStreamed(file)
		}
	default:
		digest, err = fp.hashStreamed(file)
	}
	if err != nil {
		return Fingerprint{}, fmt.Errorf("failed to hash file %s: %w", filePath, err)
	}

	DebugLog("hash", "%s %s", NewFingerprint(size, digest), filePath)
	return NewFingerprint(size, digest), nil
}

// hashMapped hashes the file through a read-only private mapping
func (fp *Fingerprinter) hashMapped(file *os.File, size int64) (digest string, err error) {
	data, err := fp.mmap(int(file.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errMmapUnavailable, err)
	}
	defer unix.Munmap(data)

	// A file truncated while mapped raises SIGBUS on access.
	defer debug.SetPanicOnFault(debug.SetPanicOnFault(true))
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("file changed while being read: %v", r)
		}
	}()

	return HashBytesToString(data, fp.algorithm), nil
}

// hashStreamed hashes the file with buffered reads
func (fp *Fingerprinter) hashStreamed(file *os.File) (string, error) {
	hasher := fp.algorithm.NewFunc()
	buffer := make([]byte, fp.bufferSize)

	for {
		n, err := file.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read failed: %w", err)
		}
	}

	return fp.algorithm.Render(hasher.Sum(nil)), nil
}

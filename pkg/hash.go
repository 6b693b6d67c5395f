package mydups

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/crc32"
	"strconv"
	"strings"
)

// HashAlgorithm represents a hash algorithm configuration
type HashAlgorithm struct {
	Name    string
	NewFunc func() hash.Hash
	Render  func(sum []byte) string
}

// GetHashAlgorithm returns the hash algorithm configuration for the given name
func GetHashAlgorithm(name string) (*HashAlgorithm, error) {
	switch strings.ToLower(name) {
	case "crc32":
		return &HashAlgorithm{
			Name:    "crc32",
			NewFunc: func() hash.Hash { return crc32.NewIEEE() },
			Render:  renderChecksum,
		}, nil
	case "sha256":
		return &HashAlgorithm{
			Name:    "sha256",
			NewFunc: func() hash.Hash { return sha256.New() },
			Render:  hex.EncodeToString,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", name)
	}
}

// renderChecksum prints a 32-bit checksum as an unpadded 0x-prefixed hex number
func renderChecksum(sum []byte) string {
	return "0x" + strconv.FormatUint(uint64(binary.BigEndian.Uint32(sum)), 16)
}

// HashBytesToString hashes data in memory and renders the digest
func HashBytesToString(data []byte, algorithm *HashAlgorithm) string {
	hasher := algorithm.NewFunc()
	hasher.Write(data)
	return algorithm.Render(hasher.Sum(nil))
}

// Fingerprint identifies file contents by byte size and rendered digest.
// Equal fingerprints are treated as duplicates without comparing contents.
type Fingerprint struct {
	Size   int64
	Digest string
}

// NewFingerprint combines a size and a rendered digest
func NewFingerprint(size int64, digest string) Fingerprint {
	return Fingerprint{Size: size, Digest: digest}
}

// String returns the "<size>#<digest>" form
func (f Fingerprint) String() string {
	return strconv.FormatInt(f.Size, 10) + "#" + f.Digest
}

// Less orders fingerprints by size, then digest
func (f Fingerprint) Less(other Fingerprint) bool {
	if f.Size != other.Size {
		return f.Size < other.Size
	}
	return f.Digest < other.Digest
}

package mydups

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHashAlgorithm(t *testing.T) {
	testCases := []struct {
		input string
		name  string
		size  int
	}{
		{"crc32", "crc32", 4},
		{"CRC32", "crc32", 4},
		{"sha256", "sha256", 32},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			algo, err := GetHashAlgorithm(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.name, algo.Name)
			assert.Equal(t, tc.size, algo.NewFunc().Size())
		})
	}

	_, err := GetHashAlgorithm("md5")
	assert.Error(t, err)
}

func TestHashBytesToString(t *testing.T) {
	crc, err := GetHashAlgorithm("crc32")
	require.NoError(t, err)
	sha, err := GetHashAlgorithm("sha256")
	require.NoError(t, err)

	assert.Equal(t, "0xcbf43926", HashBytesToString([]byte("123456789"), crc))
	assert.Equal(t, "0x0", HashBytesToString(nil, crc))
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		HashBytesToString([]byte("hello"), sha))
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		HashBytesToString(nil, sha))
}

func TestRenderChecksumUnpadded(t *testing.T) {
	assert.Equal(t, "0xabc", renderChecksum([]byte{0x00, 0x00, 0x0a, 0xbc}))
	assert.Equal(t, "0xffffffff", renderChecksum([]byte{0xff, 0xff, 0xff, 0xff}))
}

func TestFingerprint(t *testing.T) {
	fp := NewFingerprint(5, "0x3610a686")
	assert.Equal(t, "5#0x3610a686", fp.String())

	// Same digest, different size: distinct keys.
	other := NewFingerprint(6, "0x3610a686")
	assert.NotEqual(t, fp, other)

	groups := map[Fingerprint]int{fp: 1}
	groups[NewFingerprint(5, "0x3610a686")]++
	assert.Equal(t, 2, groups[fp])

	assert.True(t, fp.Less(other))
	assert.False(t, other.Less(fp))
	assert.True(t, NewFingerprint(5, "0x1").Less(NewFingerprint(5, "0x2")))
	assert.False(t, fp.Less(fp))
}

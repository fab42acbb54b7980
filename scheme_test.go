package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	extract "github.com/jotaki/Extract-Kernel-Initramfs"
)

func TestSchemesOrder(t *testing.T) {
	var names []string
	for _, s := range extract.Schemes() {
		names = append(names, s.Name)
	}

	// detection priority; raw cpio must stay last
	assert.Equal(t, []string{"gzip", "bzip2", "lzma", "xz", "lz4", "zstd", "none"}, names)
}

func TestLookupScheme(t *testing.T) {
	s, err := extract.LookupScheme("gzip")
	require.NoError(t, err)
	assert.Equal(t, "gzip", s.Name)
	assert.False(t, s.Raw())

	s, err = extract.LookupScheme("none")
	require.NoError(t, err)
	assert.True(t, s.Raw())

	_, err = extract.LookupScheme("lzop")
	require.ErrorIs(t, err, extract.ErrUnknownScheme)
}

func TestFormatChecks(t *testing.T) {
	archive := newTestArchive(t, defaultArchiveFiles)

	tests := []struct {
		name   string
		header []byte
		check  func([]byte) bool
	}{
		{name: "gzip", header: compressGzip(t, archive), check: extract.IsGZip},
		{name: "lzma", header: compressLZMA(t, archive), check: extract.IsLZMA},
		{name: "zstd", header: compressZstd(t, archive), check: extract.IsZstd},
		{name: "cpio", header: archive, check: extract.IsCPIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.header))
			assert.False(t, tt.check(stubBytes(16)))
			assert.False(t, tt.check(nil))
		})
	}
}

func TestIsBzip2(t *testing.T) {
	// stream header plus the block magic the scanner keys on
	header := append([]byte("BZh9"), 0x31, 0x41, 0x59, 0x26, 0x53, 0x59)
	assert.True(t, extract.IsBzip2(header))
	assert.False(t, extract.IsBzip2([]byte("BZh9")))
	assert.False(t, extract.IsBzip2(stubBytes(10)))
}

func TestIsXz(t *testing.T) {
	assert.True(t, extract.IsXz([]byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00, 0x00}))
	assert.False(t, extract.IsXz(stubBytes(8)))
}

func TestIsLZ4(t *testing.T) {
	assert.True(t, extract.IsLZ4([]byte{0x04, 0x22, 0x4d, 0x18, 0x00}), "frame format")
	assert.True(t, extract.IsLZ4([]byte{0x02, 0x21, 0x4c, 0x18, 0x00}), "legacy format")
	assert.False(t, extract.IsLZ4(stubBytes(8)))
}

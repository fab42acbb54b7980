package extract

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanPattern(t *testing.T) {
	tests := []struct {
		name    string
		buf     []byte
		pattern Pattern
		want    []int
	}{
		{
			name:    "single match",
			buf:     []byte{0x00, 0x1f, 0x8b, 0x08, 0x00},
			pattern: NewPattern([]byte{0x1f, 0x8b, 0x08}),
			want:    []int{1},
		},
		{
			name:    "multiple matches ascending",
			buf:     []byte{0x1f, 0x8b, 0x00, 0x1f, 0x8b, 0xff, 0x1f, 0x8b},
			pattern: NewPattern([]byte{0x1f, 0x8b}),
			want:    []int{0, 3, 6},
		},
		{
			name:    "no match returns empty not error",
			buf:     []byte{0x00, 0x01, 0x02, 0x03},
			pattern: NewPattern([]byte{0xde, 0xad}),
			want:    nil,
		},
		{
			name:    "match at buffer end",
			buf:     []byte{0x00, 0x00, 0xab, 0xcd},
			pattern: NewPattern([]byte{0xab, 0xcd}),
			want:    []int{2},
		},
		{
			name:    "pattern longer than buffer",
			buf:     []byte{0xab},
			pattern: NewPattern([]byte{0xab, 0xcd}),
			want:    nil,
		},
		{
			name:    "embedded zero bytes are ordinary bytes",
			buf:     []byte{0x5d, 0x00, 0x00, 0x00, 0x5d, 0x00, 0x00},
			pattern: NewPattern([]byte{0x5d, 0x00, 0x00}),
			want:    []int{0, 4},
		},
		{
			name: "wildcard positions accept any byte",
			buf:  []byte{0x5d, 0x00, 0x00, 0xaa, 0xbb, 0x5d, 0x00, 0x01, 0xcc, 0xdd},
			pattern: Pattern{
				Bytes: []byte{0x5d, 0x00, 0x00, 0x00, 0x00},
				Mask:  []bool{true, true, true, false, false},
			},
			want: []int{0},
		},
		{
			name: "wildcard over zero byte",
			buf:  []byte{0x5d, 0x00, 0x00, 0x00, 0x00},
			pattern: Pattern{
				Bytes: []byte{0x5d, 0x00, 0x00, 0x00, 0x00},
				Mask:  []bool{true, true, true, false, false},
			},
			want: []int{0},
		},
		{
			name:    "empty pattern matches nothing",
			buf:     []byte{0x00, 0x01},
			pattern: NewPattern(nil),
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scanPattern(tt.buf, tt.pattern)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScanPatternOverlapping(t *testing.T) {
	buf := []byte{0xaa, 0xaa, 0xaa, 0xaa}
	got := scanPattern(buf, NewPattern([]byte{0xaa, 0xaa}))
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestScanPatterns(t *testing.T) {
	legacy := NewPattern(magicBytesLZ4Legacy)
	frame := NewPattern(magicBytesLZ4Frame)

	buf := bytes.Join([][]byte{
		{0x00, 0x00},
		magicBytesLZ4Frame,
		{0x00, 0x00},
		magicBytesLZ4Legacy,
	}, nil)

	got := scanPatterns(buf, []Pattern{legacy, frame})
	assert.Equal(t, []int{2, 8}, got, "alternative magics must merge into one ascending list")
}

func TestScanSchemeUsesAllPatterns(t *testing.T) {
	buf := append(append([]byte{0xff}, magicBytesLZ4Legacy...), 0xff)
	got := scanScheme(buf, schemeLZ4)
	assert.Equal(t, []int{1}, got)
}

// Copyright (c) The Extract-Kernel-Initramfs Authors
// SPDX-License-Identifier: MIT

package extract

import (
	"fmt"
	"io"
)

// decompressionFunc returns an io.Reader that decodes src with the scheme's
// algorithm. A nil func means the data is used as-is (raw cpio).
type decompressionFunc func(src io.Reader) (io.Reader, error)

// Scheme describes one way an initramfs may be stored inside the kernel:
// the signature patterns that identify it, the decompression algorithm, and
// the byte adjustment from a raw signature match to the start of decodable
// data. Schemes are immutable; they are defined once and passed by value.
type Scheme struct {
	// Name identifies the scheme (gzip, bzip2, lzma, xz, lz4, zstd, none).
	Name string

	// Patterns are the signature alternatives for this scheme. A scan
	// matches at an offset if any pattern matches there.
	Patterns []Pattern

	// Adjust is added to a raw pattern-match offset to find the byte at
	// which the decompressor must start. It is negative for schemes whose
	// signature sits inside the stream rather than at its start.
	Adjust int

	decompress decompressionFunc
}

// Raw reports whether the scheme stores the archive uncompressed.
func (s Scheme) Raw() bool {
	return s.decompress == nil
}

// schemes is the registry, in detection priority order. The order is
// significant: the candidate finder returns the first scheme with at least
// one signature match. Raw cpio must stay last since its magic also appears
// in every decompressed archive.
var schemes = []Scheme{
	schemeGZip,
	schemeBzip2,
	schemeLZMA,
	schemeXz,
	schemeLZ4,
	schemeZstd,
	schemeNone,
}

// Schemes returns the registered schemes in priority order.
func Schemes() []Scheme {
	out := make([]Scheme, len(schemes))
	copy(out, schemes)
	return out
}

// LookupScheme returns the scheme registered under name.
func LookupScheme(name string) (Scheme, error) {
	for _, s := range schemes {
		if s.Name == name {
			return s, nil
		}
	}
	return Scheme{}, fmt.Errorf("%w: %s", ErrUnknownScheme, name)
}

// scanScheme returns all offsets in buf that match any of the scheme's
// signature patterns, ascending.
func scanScheme(buf []byte, s Scheme) []int {
	return scanPatterns(buf, s.Patterns)
}

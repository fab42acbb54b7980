// Copyright (c) The Extract-Kernel-Initramfs Authors
// SPDX-License-Identifier: MIT

package extract

import (
	"compress/bzip2"
	"io"
)

// schemeNameBzip2 is the registry name for bzip2 compressed archives.
const schemeNameBzip2 = "bzip2"

// magicBytesBzip2 is the block magic (the BCD digits of pi) that follows
// the "BZh" header and the block-size digit. Matching on it instead of
// "BZh" avoids the nine level variants, but it puts the match four bytes
// into the stream, hence the negative offset adjustment.
//
// reference: https://en.wikipedia.org/wiki/Bzip2 // https://github.com/dsnet/compress/blob/master/doc/bzip2-format.pdf
var magicBytesBzip2 = []byte("1AY&SY")

// adjustBzip2 moves a block-magic match back to the "BZh" stream start.
const adjustBzip2 = -4

var schemeBzip2 = Scheme{
	Name:       schemeNameBzip2,
	Patterns:   []Pattern{NewPattern(magicBytesBzip2)},
	Adjust:     adjustBzip2,
	decompress: decompressBzip2Stream,
}

// IsBzip2 checks if the header matches the magic bytes for bzip2 compressed
// streams, i.e. "BZh" followed by a block-size digit and the block magic.
func IsBzip2(header []byte) bool {
	if len(header) < 4 || header[0] != 'B' || header[1] != 'Z' || header[2] != 'h' {
		return false
	}
	if header[3] < '1' || header[3] > '9' {
		return false
	}
	return NewPattern(magicBytesBzip2).matchAt(header, 4)
}

// decompressBzip2Stream returns an io.Reader that decompresses src with the
// bzip2 algorithm.
func decompressBzip2Stream(src io.Reader) (io.Reader, error) {
	return bzip2.NewReader(src), nil
}

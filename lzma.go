// Copyright (c) The Extract-Kernel-Initramfs Authors
// SPDX-License-Identifier: MIT

package extract

import (
	"io"

	"github.com/ulikunitz/xz/lzma"
)

// schemeNameLZMA is the registry name for lzma-alone compressed archives.
const schemeNameLZMA = "lzma"

// signatureLZMA matches the lzma-alone header: the properties byte 0x5d
// (lc=3, lp=0, pb=2) followed by the little-endian dictionary size. The
// low dictionary-size bytes are zero for every power-of-two dictionary;
// the two high bytes vary with the builder's -d setting, so they are
// wildcarded.
//
// reference: https://github.com/ulikunitz/xz/blob/master/doc/xz-file-format.txt
var signatureLZMA = Pattern{
	Bytes: []byte{0x5d, 0x00, 0x00, 0x00, 0x00},
	Mask:  []bool{true, true, true, false, false},
}

var schemeLZMA = Scheme{
	Name:       schemeNameLZMA,
	Patterns:   []Pattern{signatureLZMA},
	decompress: decompressLZMAStream,
}

// IsLZMA checks if the header matches the lzma-alone signature.
func IsLZMA(header []byte) bool {
	return signatureLZMA.matchAt(header, 0)
}

// decompressLZMAStream returns an io.Reader that decompresses src with the
// lzma algorithm. Kernel images typically encode an unknown uncompressed
// size, so the reader runs until the end-of-stream marker.
func decompressLZMAStream(src io.Reader) (io.Reader, error) {
	return lzma.NewReader(src)
}

// Copyright (c) The Extract-Kernel-Initramfs Authors
// SPDX-License-Identifier: MIT

package extract

import (
	"io"

	"github.com/ulikunitz/xz"
)

// schemeNameXz is the registry name for xz compressed archives.
const schemeNameXz = "xz"

// magicBytesXz is the magic bytes for xz streams.
// reference https://tukaani.org/xz/xz-file-format-1.0.4.txt
var magicBytesXz = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}

var schemeXz = Scheme{
	Name:       schemeNameXz,
	Patterns:   []Pattern{NewPattern(magicBytesXz)},
	decompress: decompressXzStream,
}

// IsXz checks if the header matches the xz magic bytes.
func IsXz(header []byte) bool {
	return NewPattern(magicBytesXz).matchAt(header, 0)
}

// decompressXzStream returns an io.Reader that decompresses src with the xz
// algorithm.
func decompressXzStream(src io.Reader) (io.Reader, error) {
	return xz.NewReader(src)
}

// Copyright (c) The Extract-Kernel-Initramfs Authors
// SPDX-License-Identifier: MIT

package extract

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// schemeNameZstd is the registry name for zstandard compressed archives.
const schemeNameZstd = "zstd"

// magicBytesZstd is the magic bytes for zstandard frames.
// reference: https://www.rfc-editor.org/rfc/rfc8878.html
var magicBytesZstd = []byte{0x28, 0xb5, 0x2f, 0xfd}

var schemeZstd = Scheme{
	Name:       schemeNameZstd,
	Patterns:   []Pattern{NewPattern(magicBytesZstd)},
	decompress: decompressZstdStream,
}

// IsZstd checks if the header matches the zstandard magic bytes.
func IsZstd(header []byte) bool {
	return NewPattern(magicBytesZstd).matchAt(header, 0)
}

// decompressZstdStream returns an io.Reader that decompresses src with the
// zstandard algorithm.
func decompressZstdStream(src io.Reader) (io.Reader, error) {
	r, err := zstd.NewReader(src)
	if err != nil {
		return nil, err
	}
	return r.IOReadCloser(), nil
}

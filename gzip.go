// Copyright (c) The Extract-Kernel-Initramfs Authors
// SPDX-License-Identifier: MIT

package extract

import (
	"compress/gzip"
	"io"
)

// schemeNameGZip is the registry name for gzip compressed archives.
const schemeNameGZip = "gzip"

// magicBytesGZip are the magic bytes for gzip compressed streams: the two
// ID bytes plus the deflate method byte, as emitted by the kernel build.
//
// reference: https://datatracker.ietf.org/doc/html/rfc1952
var magicBytesGZip = []byte{0x1f, 0x8b, 0x08}

var schemeGZip = Scheme{
	Name:       schemeNameGZip,
	Patterns:   []Pattern{NewPattern(magicBytesGZip)},
	decompress: decompressGZipStream,
}

// IsGZip checks if the header matches the magic bytes for gzip compressed
// streams.
func IsGZip(header []byte) bool {
	return NewPattern(magicBytesGZip).matchAt(header, 0)
}

// decompressGZipStream returns an io.Reader that decompresses src with the
// gzip algorithm. Multistream mode is disabled so the reader stops cleanly
// at the end of the first stream instead of choking on the binary data that
// follows the archive inside the kernel.
func decompressGZipStream(src io.Reader) (io.Reader, error) {
	r, err := gzip.NewReader(src)
	if err != nil {
		return nil, err
	}
	r.Multistream(false)
	return r, nil
}

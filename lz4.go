// Copyright (c) The Extract-Kernel-Initramfs Authors
// SPDX-License-Identifier: MIT

package extract

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// schemeNameLZ4 is the registry name for lz4 compressed archives.
const schemeNameLZ4 = "lz4"

// magicBytesLZ4Legacy is the legacy frame magic used by the kernel build
// since lz4 support was added; magicBytesLZ4Frame is the modern frame
// format. Both occur in the wild, so the scheme scans for either.
//
// reference https://android.googlesource.com/platform/external/lz4/+/HEAD/doc/lz4_Frame_format.md
var (
	magicBytesLZ4Legacy = []byte{0x02, 0x21, 0x4c, 0x18}
	magicBytesLZ4Frame  = []byte{0x04, 0x22, 0x4d, 0x18}
)

var schemeLZ4 = Scheme{
	Name: schemeNameLZ4,
	Patterns: []Pattern{
		NewPattern(magicBytesLZ4Legacy),
		NewPattern(magicBytesLZ4Frame),
	},
	decompress: decompressLZ4Stream,
}

// IsLZ4 checks if the header matches either lz4 frame magic.
func IsLZ4(header []byte) bool {
	return NewPattern(magicBytesLZ4Legacy).matchAt(header, 0) ||
		NewPattern(magicBytesLZ4Frame).matchAt(header, 0)
}

// decompressLZ4Stream returns an io.Reader that decompresses src with the
// lz4 algorithm. The reader detects legacy and modern framing itself.
func decompressLZ4Stream(src io.Reader) (io.Reader, error) {
	return lz4.NewReader(src), nil
}

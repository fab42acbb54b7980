// Copyright (c) The Extract-Kernel-Initramfs Authors
// SPDX-License-Identifier: MIT

package extract

import (
	"bytes"
	"fmt"
	"io"
)

// LocateKernelPayload finds the compressed kernel payload inside a raw
// kernel image and returns the decompressed kernel plus the image offset
// the payload started at.
//
// The bootstrap stub precedes the payload and carries no gzip signature of
// its own, so the first (lowest-offset) gzip match marks the payload start.
// This is inherited first-match-wins behavior: an unlucky stub byte
// sequence would defeat it, but a failed decompression here is unambiguous
// and fatal since nothing can proceed without the kernel.
func LocateKernelPayload(image []byte) ([]byte, int, error) {
	offsets := scanScheme(image, schemeGZip)
	if len(offsets) == 0 {
		return nil, 0, ErrNoCompressedPayload
	}

	start := offsets[0]
	stream, err := schemeGZip.decompress(bytes.NewReader(image[start:]))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: gzip at offset %d: %v", ErrKernelDecompression, start, err)
	}

	kernel, err := io.ReadAll(stream)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: gzip at offset %d: %v", ErrKernelDecompression, start, err)
	}
	if len(kernel) == 0 {
		return nil, 0, fmt.Errorf("%w: gzip at offset %d: empty payload", ErrKernelDecompression, start)
	}

	return kernel, start, nil
}

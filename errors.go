// Copyright (c) The Extract-Kernel-Initramfs Authors
// SPDX-License-Identifier: MIT

package extract

import (
	"errors"
	"fmt"
)

// Error kinds reported by the pipeline. Every stage failure wraps one of
// these, so callers can test with [errors.Is] which stage gave up.
var (
	// ErrNoCompressedPayload is returned if the kernel image contains no
	// gzip signature at all.
	ErrNoCompressedPayload = errors.New("no compressed kernel payload found")

	// ErrKernelDecompression is returned if the data following the first
	// gzip signature does not decompress.
	ErrKernelDecompression = errors.New("kernel payload decompression failed")

	// ErrNoArchiveSignature is returned if no known archive scheme matches
	// anywhere in the decompressed kernel.
	ErrNoArchiveSignature = errors.New("no archive signature found in kernel")

	// ErrAllCandidatesFailed is returned if every candidate offset of the
	// detected scheme fails to decompress to a valid archive.
	ErrAllCandidatesFailed = errors.New("all candidate offsets failed")

	// ErrInvalidOffsetAdjustment marks a single candidate whose adjusted
	// start index falls outside the kernel buffer.
	ErrInvalidOffsetAdjustment = errors.New("adjusted offset out of bounds")

	// ErrUnknownScheme is returned by [LookupScheme] for names that are not
	// in the registry.
	ErrUnknownScheme = errors.New("unknown compression scheme")
)

// candidateError describes why one candidate offset was rejected. It is
// collected per attempt and reported as part of [ErrAllCandidatesFailed].
type candidateError struct {
	Scheme string
	Offset int
	Err    error
}

func (e *candidateError) Error() string {
	return fmt.Sprintf("%s candidate at offset %d: %v", e.Scheme, e.Offset, e.Err)
}

func (e *candidateError) Unwrap() error {
	return e.Err
}

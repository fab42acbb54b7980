// Copyright (c) The Extract-Kernel-Initramfs Authors
// SPDX-License-Identifier: MIT

package extract

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Extract runs the full recovery pipeline on a kernel image read from src
// and returns the embedded initramfs cpio archive.
//
// The stages run strictly in sequence: locate and decompress the kernel
// payload, scan it for archive signatures, then try the candidate offsets
// until one yields a valid archive. A stage failure aborts the pipeline
// with that stage's error kind; retries happen only inside the candidate
// loop of [ExtractArchive].
func Extract(ctx context.Context, src io.Reader, cfg *Config) ([]byte, error) {
	td := &TelemetryData{}
	defer cfg.TelemetryHook()(ctx, td)
	defer captureExtractionDuration(td, now())

	limitedReader := newLimitErrorReader(src, cfg.MaxInputSize())
	defer captureInputSize(td, limitedReader)

	image, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, handleError(cfg, td, "cannot read kernel image", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, handleError(cfg, td, "context error", err)
	}

	kernel, kernelOffset, err := LocateKernelPayload(image)
	if err != nil {
		return nil, handleError(cfg, td, "cannot locate kernel payload", err)
	}
	td.KernelOffset = int64(kernelOffset)
	td.KernelSize = int64(len(kernel))
	cfg.Logger().Info("kernel payload decompressed", "offset", kernelOffset, "size", len(kernel))

	if err := ctx.Err(); err != nil {
		return nil, handleError(cfg, td, "context error", err)
	}

	scheme, offsets, err := FindArchiveCandidates(kernel)
	if err != nil {
		return nil, handleError(cfg, td, "cannot find archive candidates", err)
	}
	td.ExtractedType = scheme.Name
	td.CandidateOffsets = int64(len(offsets))
	cfg.Logger().Info("archive signature detected", "scheme", scheme.Name, "candidates", len(offsets))

	if err := ctx.Err(); err != nil {
		return nil, handleError(cfg, td, "context error", err)
	}

	archive, archiveOffset, err := ExtractArchive(kernel, scheme, offsets, cfg)
	if err != nil {
		td.FailedCandidates = int64(len(offsets))
		return nil, handleError(cfg, td, "cannot extract archive", err)
	}
	td.ArchiveOffset = int64(archiveOffset)
	td.ArchiveSize = int64(len(archive))

	// every candidate before the accepted one was tried and rejected
	for i, offset := range offsets {
		if offset+scheme.Adjust == archiveOffset {
			td.FailedCandidates = int64(i)
			break
		}
	}

	return archive, nil
}

// ExtractFile is a convenience wrapper around [Extract] that reads the
// kernel image from path.
func ExtractFile(ctx context.Context, path string, cfg *Config) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open kernel image: %w", err)
	}
	defer f.Close()

	return Extract(ctx, f, cfg)
}

// Copyright (c) The Extract-Kernel-Initramfs Authors
// SPDX-License-Identifier: MIT

package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ExtractArchive tries each candidate offset in discovery order until one
// decompresses to a valid archive. It returns the archive bytes and the
// kernel offset they were recovered from.
//
// For every offset the scheme's adjustment is applied, the kernel is
// sliced from the adjusted start to its end and a real decompression is
// attempted. A candidate fails if its adjusted start is out of bounds, if
// no output is produced, or if the output does not look like a cpio
// archive; the next offset is then tried. Attempts are strictly serial:
// correctness depends on accepting the first success.
func ExtractArchive(kernel []byte, scheme Scheme, offsets []int, cfg *Config) ([]byte, int, error) {
	if len(offsets) == 0 {
		return nil, 0, fmt.Errorf("%w: scheme %s: no candidate offsets", ErrAllCandidatesFailed, scheme.Name)
	}

	var failures []error

	for _, offset := range offsets {
		start := offset + scheme.Adjust
		if start < 0 || start >= len(kernel) {
			cfg.Logger().Debug("candidate start out of bounds", "scheme", scheme.Name, "offset", offset, "start", start)
			failures = append(failures, &candidateError{
				Scheme: scheme.Name,
				Offset: offset,
				Err:    fmt.Errorf("%w: start %d", ErrInvalidOffsetAdjustment, start),
			})
			continue
		}

		archive, err := tryCandidate(kernel[start:], scheme, cfg)
		if err != nil {
			cfg.Logger().Debug("candidate rejected", "scheme", scheme.Name, "offset", offset, "error", err)
			failures = append(failures, &candidateError{Scheme: scheme.Name, Offset: offset, Err: err})
			continue
		}

		cfg.Logger().Info("archive recovered", "scheme", scheme.Name, "offset", offset, "size", len(archive))
		return archive, start, nil
	}

	return nil, 0, fmt.Errorf("%w: scheme %s: %w", ErrAllCandidatesFailed, scheme.Name, errors.Join(failures...))
}

// tryCandidate attempts a full decompression of data and validates the
// result. Decoder errors after useful output are tolerated: the archive is
// followed by arbitrary kernel bytes, and most decoders complain about
// that trailing data even though the archive itself came out intact. The
// cpio magic check is what separates a truncated false positive from a
// stream that merely had company.
func tryCandidate(data []byte, scheme Scheme, cfg *Config) ([]byte, error) {
	if scheme.Raw() {
		return data, nil
	}

	stream, err := scheme.decompress(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot start decompression: %w", err)
	}
	defer func() {
		if closer, ok := stream.(io.Closer); ok {
			closer.Close()
		}
	}()

	out, err := io.ReadAll(newLimitErrorReader(stream, cfg.MaxExtractionSize()))
	if errors.Is(err, errLimitExceeded) {
		return nil, err
	}
	if len(out) == 0 {
		if err != nil {
			return nil, fmt.Errorf("decompression failed: %w", err)
		}
		return nil, fmt.Errorf("decompression produced no data")
	}
	if err != nil && !IsCPIO(out) {
		return nil, fmt.Errorf("decompression failed: %w", err)
	}
	if cfg.StrictCPIOCheck() && !IsCPIO(out) {
		return nil, fmt.Errorf("decompressed data is not a cpio archive")
	}

	return out, nil
}

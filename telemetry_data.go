// Copyright (c) The Extract-Kernel-Initramfs Authors
// SPDX-License-Identifier: MIT

package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// TelemetryData holds all telemetry data of a recovery run.
type TelemetryData struct {
	// ArchiveOffset is the kernel offset the archive was recovered from
	ArchiveOffset int64 `json:"archive_offset"`

	// ArchiveSize is the size of the recovered archive
	ArchiveSize int64 `json:"archive_size"`

	// CandidateOffsets is the number of signature matches for the
	// detected scheme
	CandidateOffsets int64 `json:"candidate_offsets"`

	// ExtractedDirs is the number of extracted directories
	ExtractedDirs int64 `json:"extracted_dirs"`

	// ExtractedFiles is the number of extracted files
	ExtractedFiles int64 `json:"extracted_files"`

	// ExtractedSymlinks is the number of extracted symlinks
	ExtractedSymlinks int64 `json:"extracted_symlinks"`

	// ExtractedType names what this data describes (scheme name or cpio)
	ExtractedType string `json:"extracted_type"`

	// ExtractionDuration is the time the run took
	ExtractionDuration time.Duration `json:"extraction_duration"`

	// ExtractionErrors is the number of errors during the run
	ExtractionErrors int64 `json:"extraction_errors"`

	// ExtractionSize is the total size of extracted entries
	ExtractionSize int64 `json:"extraction_size"`

	// FailedCandidates is the number of candidate offsets that were tried
	// and rejected before one succeeded
	FailedCandidates int64 `json:"failed_candidates"`

	// InputSize is the size of the input kernel image
	InputSize int64 `json:"input_size"`

	// KernelOffset is the image offset of the compressed kernel payload
	KernelOffset int64 `json:"kernel_offset"`

	// KernelSize is the size of the decompressed kernel
	KernelSize int64 `json:"kernel_size"`

	// LastExtractionError is the last error during the run
	LastExtractionError error `json:"last_extraction_error"`

	// LastUnsupportedFile is the last skipped unsupported entry
	LastUnsupportedFile string `json:"last_unsupported_file"`

	// UnsupportedFiles is the number of skipped unsupported entries
	UnsupportedFiles int64 `json:"unsupported_files"`
}

// String returns a string representation of [TelemetryData].
func (td TelemetryData) String() string {
	b, _ := json.Marshal(td)
	return string(b)
}

// MarshalJSON implements the [encoding/json.Marshaler] interface.
func (td TelemetryData) MarshalJSON() ([]byte, error) {
	var lastError string
	if td.LastExtractionError != nil {
		lastError = td.LastExtractionError.Error()
	}

	type Alias TelemetryData
	return json.Marshal(&struct {
		LastExtractionError string `json:"last_extraction_error"`
		*Alias
	}{
		LastExtractionError: lastError,
		Alias:               (*Alias)(&td),
	})
}

// TelemetryHook is a function type that consumes [TelemetryData] after a
// run has finished, e.g. to log it or submit it to a telemetry service.
type TelemetryHook func(context.Context, *TelemetryData)

// now is a function pointer that returns time.Now to the caller; tests
// replace it.
var now = time.Now

// captureExtractionDuration captures the duration of the run.
func captureExtractionDuration(td *TelemetryData, start time.Time) {
	td.ExtractionDuration = now().Sub(start)
}

// captureInputSize captures the input size of the run.
func captureInputSize(td *TelemetryData, ler *limitErrorReader) {
	td.InputSize = int64(ler.ReadBytes())
}

// handleError increases the error counter, sets the latest error and
// decides if extraction should continue.
func handleError(c *Config, td *TelemetryData, msg string, err error) error {
	td.ExtractionErrors++
	td.LastExtractionError = fmt.Errorf("%s: %w", msg, err)

	if c.ContinueOnError() {
		c.Logger().Error(msg, "error", err)
		return nil
	}

	return td.LastExtractionError
}

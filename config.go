// Copyright (c) The Extract-Kernel-Initramfs Authors
// SPDX-License-Identifier: MIT

package extract

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
)

// ConfigOption is a function pointer to implement the option pattern.
type ConfigOption func(*Config)

// Config holds all tunables of the recovery pipeline and the archive
// unpacker.
type Config struct {
	// continueOnError decides if archive unpacking continues after an
	// entry failed to extract
	continueOnError bool

	// continueOnUnsupportedFiles skips entry types that cannot be
	// materialized (device nodes, fifos, sockets)
	continueOnUnsupportedFiles bool

	// createDestination creates the destination directory if missing
	createDestination bool

	// customCreateDirMode is the mode for implicitly created directories
	customCreateDirMode fs.FileMode

	// denySymlinkExtraction refuses symlink entries altogether
	denySymlinkExtraction bool

	// logger for pipeline progress, disabled by default
	logger logger

	// maxExtractionSize is the maximum total size of decompressed data.
	// Set value to -1 to disable the check.
	maxExtractionSize int64

	// maxFiles is the maximum number of entries materialized from an
	// archive. Set value to -1 to disable the check.
	maxFiles int64

	// maxInputSize is the maximum size of the input kernel image.
	// Set value to -1 to disable the check.
	maxInputSize int64

	// overwrite allows replacing existing files in the destination
	overwrite bool

	// preserveFileTimes restores archive modification times on extracted
	// entries
	preserveFileTimes bool

	// strictCPIOCheck requires trial decompression output to begin with
	// the cpio magic before a candidate is accepted
	strictCPIOCheck bool

	// telemetryHook consumes telemetry data after a finished run.
	// Important: do not adjust this value after the run started.
	telemetryHook TelemetryHook
}

// NewConfig creates a default configuration and applies opts in order.
func NewConfig(opts ...ConfigOption) *Config {
	const (
		continueOnError            = false
		continueOnUnsupportedFiles = true
		createDestination          = false
		customCreateDirMode        = 0750
		denySymlinkExtraction      = false
		maxExtractionSize          = 1 << (10 * 3) // 1 Gb
		maxFiles                   = 100000
		maxInputSize               = 1 << (10 * 3) // 1 Gb
		overwrite                  = false
		preserveFileTimes          = true
		strictCPIOCheck            = true
	)

	// disable logging by default
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	config := &Config{
		continueOnError:            continueOnError,
		continueOnUnsupportedFiles: continueOnUnsupportedFiles,
		createDestination:          createDestination,
		customCreateDirMode:        customCreateDirMode,
		denySymlinkExtraction:      denySymlinkExtraction,
		logger:                     logger,
		maxExtractionSize:          maxExtractionSize,
		maxFiles:                   maxFiles,
		maxInputSize:               maxInputSize,
		overwrite:                  overwrite,
		preserveFileTimes:          preserveFileTimes,
		strictCPIOCheck:            strictCPIOCheck,
		telemetryHook:              func(ctx context.Context, td *TelemetryData) {},
	}

	for _, opt := range opts {
		opt(config)
	}

	return config
}

// ContinueOnError returns true if archive unpacking continues after an
// entry failed to extract.
func (c *Config) ContinueOnError() bool {
	return c.continueOnError
}

// ContinueOnUnsupportedFiles returns true if unsupported entry types are
// skipped.
func (c *Config) ContinueOnUnsupportedFiles() bool {
	return c.continueOnUnsupportedFiles
}

// CreateDestination returns true if the destination directory should be
// created if it does not exist.
func (c *Config) CreateDestination() bool {
	return c.createDestination
}

// CustomCreateDirMode returns the mode for implicitly created directories.
func (c *Config) CustomCreateDirMode() fs.FileMode {
	return c.customCreateDirMode
}

// DenySymlinkExtraction returns true if symlinks are NOT allowed.
func (c *Config) DenySymlinkExtraction() bool {
	return c.denySymlinkExtraction
}

// Logger returns the logger.
func (c *Config) Logger() logger {
	return c.logger
}

// MaxExtractionSize returns the maximum total size of decompressed data.
func (c *Config) MaxExtractionSize() int64 {
	return c.maxExtractionSize
}

// MaxFiles returns the maximum number of entries in an archive.
func (c *Config) MaxFiles() int64 {
	return c.maxFiles
}

// MaxInputSize returns the maximum size of the input kernel image.
func (c *Config) MaxInputSize() int64 {
	return c.maxInputSize
}

// Overwrite returns true if existing files may be replaced.
func (c *Config) Overwrite() bool {
	return c.overwrite
}

// PreserveFileTimes returns true if archive modification times should be
// restored on extracted entries.
func (c *Config) PreserveFileTimes() bool {
	return c.preserveFileTimes
}

// StrictCPIOCheck returns true if candidate output must begin with the
// cpio magic.
func (c *Config) StrictCPIOCheck() bool {
	return c.strictCPIOCheck
}

// TelemetryHook returns the hook to consume telemetry data.
func (c *Config) TelemetryHook() TelemetryHook {
	return c.telemetryHook
}

// CheckMaxObjects returns an error if counter exceeds the configured entry
// limit.
func (c *Config) CheckMaxObjects(counter int64) error {
	if c.maxFiles == -1 {
		return nil
	}
	if counter > c.maxFiles {
		return fmt.Errorf("to many files in archive")
	}
	return nil
}

// CheckExtractionSize returns an error if fileSize exceeds the configured
// extraction size limit.
func (c *Config) CheckExtractionSize(fileSize int64) error {
	if c.maxExtractionSize == -1 {
		return nil
	}
	if fileSize > c.maxExtractionSize {
		return fmt.Errorf("maximum extraction size exceeded")
	}
	return nil
}

// WithContinueOnError options pattern function to continue on error during
// archive unpacking.
func WithContinueOnError(yes bool) ConfigOption {
	return func(c *Config) {
		c.continueOnError = yes
	}
}

// WithContinueOnUnsupportedFiles options pattern function to enable/disable
// skipping unsupported entry types.
func WithContinueOnUnsupportedFiles(ctd bool) ConfigOption {
	return func(c *Config) {
		c.continueOnUnsupportedFiles = ctd
	}
}

// WithCreateDestination options pattern function to create the destination
// directory if it does not exist.
func WithCreateDestination(create bool) ConfigOption {
	return func(c *Config) {
		c.createDestination = create
	}
}

// WithCustomCreateDirMode options pattern function to set the mode for
// implicitly created directories.
func WithCustomCreateDirMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.customCreateDirMode = mode
	}
}

// WithDenySymlinkExtraction options pattern function to deny symlink
// extraction.
func WithDenySymlinkExtraction(deny bool) ConfigOption {
	return func(c *Config) {
		c.denySymlinkExtraction = deny
	}
}

// WithLogger options pattern function to set a custom logger.
func WithLogger(logger logger) ConfigOption {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithMaxExtractionSize options pattern function to set the maximum total
// size of decompressed data (-1 to disable check).
func WithMaxExtractionSize(maxExtractionSize int64) ConfigOption {
	return func(c *Config) {
		c.maxExtractionSize = maxExtractionSize
	}
}

// WithMaxFiles options pattern function to set the archive entry limit
// (-1 to disable check).
func WithMaxFiles(maxFiles int64) ConfigOption {
	return func(c *Config) {
		c.maxFiles = maxFiles
	}
}

// WithMaxInputSize options pattern function to set the input image size
// limit (-1 to disable check).
func WithMaxInputSize(maxInputSize int64) ConfigOption {
	return func(c *Config) {
		c.maxInputSize = maxInputSize
	}
}

// WithOverwrite options pattern function to allow replacing existing files.
func WithOverwrite(enable bool) ConfigOption {
	return func(c *Config) {
		c.overwrite = enable
	}
}

// WithPreserveFileTimes options pattern function to restore archive
// modification times on extracted entries.
func WithPreserveFileTimes(preserve bool) ConfigOption {
	return func(c *Config) {
		c.preserveFileTimes = preserve
	}
}

// WithStrictCPIOCheck options pattern function to require the cpio magic
// on trial decompression output.
func WithStrictCPIOCheck(strict bool) ConfigOption {
	return func(c *Config) {
		c.strictCPIOCheck = strict
	}
}

// WithTelemetryHook options pattern function to set a telemetry hook.
func WithTelemetryHook(hook TelemetryHook) ConfigOption {
	return func(c *Config) {
		c.telemetryHook = hook
	}
}

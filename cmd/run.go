// Copyright (c) The Extract-Kernel-Initramfs Authors
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	extract "github.com/jotaki/Extract-Kernel-Initramfs"
)

// CLI are the cli parameters for the extract-kernel-initramfs binary.
type CLI struct {
	Image             string           `arg:"" name:"image" help:"Path to the compressed kernel image." type:"existingfile"`
	List              bool             `short:"l" xor:"mode" help:"List the archive contents (query mode)."`
	Output            string           `short:"o" xor:"mode" type:"path" help:"Write the recovered cpio archive to this file."`
	Destination       string           `short:"C" xor:"mode" type:"path" help:"Extract the archive contents below this directory."`
	ContinueOnError   bool             `short:"E" help:"Continue directory extraction on error."`
	DenySymlinks      bool             `short:"D" help:"Deny symlink extraction."`
	LooseCpioCheck    bool             `optional:"" help:"Accept candidates without verifying the cpio magic."`
	MaxFiles          int64            `optional:"" default:"100000" help:"Maximum entries extracted before stop. (disable check: -1)"`
	MaxExtractionSize int64            `optional:"" default:"1073741824" help:"Maximum decompressed size allowed (in bytes). (disable check: -1)"`
	MaxInputSize      int64            `optional:"" default:"1073741824" help:"Maximum input size allowed (in bytes). (disable check: -1)"`
	NoTimes           bool             `optional:"" help:"Do not restore modification times from the archive."`
	Overwrite         bool             `short:"O" help:"Overwrite if exist."`
	Telemetry         bool             `short:"T" optional:"" default:"false" help:"Print telemetry data to log after extraction."`
	Verbose           bool             `short:"v" optional:"" help:"Verbose logging."`
	Version           kong.VersionFlag `short:"V" optional:"" help:"Print release version information."`
}

// Run is the entrypoint into extract-kernel-initramfs as a cli tool.
func Run(version, commit, date string) {
	ctx := context.Background()
	var cli CLI
	parser := kong.Parse(&cli,
		kong.Description("Recover the initramfs cpio archive embedded in a compressed Linux kernel image"),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("%s (%s), commit %s, built at %s", filepath.Base(os.Args[0]), version, commit, date),
		},
	)

	if !cli.List && cli.Output == "" && cli.Destination == "" {
		parser.Fatalf("one of --list, --output or --destination is required")
	}

	logLevel := slog.LevelError
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	telemetryToLog := func(ctx context.Context, td *extract.TelemetryData) {
		if cli.Telemetry {
			logger.Info("run finished", "telemetry", td)
		}
	}

	cfg := extract.NewConfig(
		extract.WithContinueOnError(cli.ContinueOnError),
		extract.WithCreateDestination(true),
		extract.WithDenySymlinkExtraction(cli.DenySymlinks),
		extract.WithLogger(logger),
		extract.WithMaxExtractionSize(cli.MaxExtractionSize),
		extract.WithMaxFiles(cli.MaxFiles),
		extract.WithMaxInputSize(cli.MaxInputSize),
		extract.WithOverwrite(cli.Overwrite),
		extract.WithPreserveFileTimes(!cli.NoTimes),
		extract.WithStrictCPIOCheck(!cli.LooseCpioCheck),
		extract.WithTelemetryHook(telemetryToLog),
	)

	// the output path must not already exist, except in query mode
	for _, path := range []string{cli.Output, cli.Destination} {
		if path == "" || cli.Overwrite {
			continue
		}
		if _, err := os.Lstat(path); err == nil {
			logger.Error("output path already exists", "path", path)
			os.Exit(1)
		}
	}

	archive, err := extract.ExtractFile(ctx, cli.Image, cfg)
	if err != nil {
		logger.Error("recovering initramfs failed", "image", cli.Image, "error", err)
		os.Exit(1)
	}

	switch {
	case cli.List:
		entries, err := extract.ListArchive(archive)
		if err != nil {
			logger.Error("listing archive failed", "error", err)
			os.Exit(1)
		}
		for _, entry := range entries {
			name := entry.Name
			if entry.Linkname != "" {
				name = fmt.Sprintf("%s -> %s", name, entry.Linkname)
			}
			fmt.Printf("%s %10d %s %s\n", entry.Mode, entry.Size, entry.ModTime.Format("2006-01-02 15:04"), name)
		}

	case cli.Output != "":
		if err := writeArchive(cli.Output, archive, cli.Overwrite); err != nil {
			logger.Error("saving archive failed", "path", cli.Output, "error", err)
			os.Exit(1)
		}
		logger.Info("archive saved", "path", cli.Output, "size", len(archive))

	case cli.Destination != "":
		if err := extract.UnpackArchive(ctx, archive, cli.Destination, extract.NewTargetDisk(), cfg); err != nil {
			logger.Error("extracting archive failed", "destination", cli.Destination, "error", err)
			os.Exit(1)
		}
		logger.Info("archive extracted", "destination", cli.Destination)
	}
}

// writeArchive stores the raw archive bytes at path.
func writeArchive(path string, archive []byte, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return err
	}

	if _, err := f.Write(archive); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

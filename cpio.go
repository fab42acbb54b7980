// Copyright (c) The Extract-Kernel-Initramfs Authors
// SPDX-License-Identifier: MIT

package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/cavaliergopher/cpio"
)

// schemeNameNone is the registry name for archives stored uncompressed.
const schemeNameNone = "none"

// magicBytesCPIO is the ASCII magic of a newc cpio header. The "none"
// scheme matches the archive itself rather than a compression container.
var magicBytesCPIO = []byte("070701")

// magicBytesCPIOCRC is the checksum variant of the newc format. It is
// accepted during validation but not scanned for, matching the original
// tool.
var magicBytesCPIOCRC = []byte("070702")

var schemeNone = Scheme{
	Name:     schemeNameNone,
	Patterns: []Pattern{NewPattern(magicBytesCPIO)},
}

// IsCPIO checks if the header starts with a newc cpio magic.
func IsCPIO(header []byte) bool {
	return bytes.HasPrefix(header, magicBytesCPIO) ||
		bytes.HasPrefix(header, magicBytesCPIOCRC)
}

// ArchiveEntry describes one member of a recovered cpio archive.
type ArchiveEntry struct {
	// Name is the path of the entry as stored in the archive.
	Name string

	// Size is the size of the entry body in bytes.
	Size int64

	// Mode is the file mode including the type bits.
	Mode fs.FileMode

	// ModTime is the modification time stored in the archive.
	ModTime time.Time

	// Linkname is the target of a symbolic link, empty otherwise.
	Linkname string
}

// ListArchive enumerates the entries of a newc cpio archive without
// materializing anything.
func ListArchive(archive []byte) ([]ArchiveEntry, error) {
	var entries []ArchiveEntry

	r := cpio.NewReader(bytes.NewReader(archive))
	for {
		hdr, err := r.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read cpio header: %w", err)
		}

		fi := hdr.FileInfo()
		entry := ArchiveEntry{
			Name:    hdr.Name,
			Size:    hdr.Size,
			Mode:    fi.Mode(),
			ModTime: hdr.ModTime,
		}

		// the body of a symlink is its target path
		if fi.Mode()&fs.ModeSymlink != 0 {
			target, err := io.ReadAll(r)
			if err != nil {
				return nil, fmt.Errorf("read link target of %s: %w", hdr.Name, err)
			}
			entry.Linkname = string(target)
		}

		entries = append(entries, entry)
	}
}

// UnpackArchive materializes a recovered cpio archive under dst on t. Entry
// names are checked against path traversal and absolute paths before
// anything is written; modification times are restored if the config asks
// for it. The function walks the archive in order and honors the config's
// file count and extraction size limits.
func UnpackArchive(ctx context.Context, archive []byte, dst string, t Target, cfg *Config) error {
	cfg.Logger().Info("unpack archive", "dst", dst, "size", len(archive))

	td := &TelemetryData{ExtractedType: "cpio"}
	defer cfg.TelemetryHook()(ctx, td)
	defer captureExtractionDuration(td, now())

	if cfg.CreateDestination() {
		if err := t.CreateDir(dst, cfg.CustomCreateDirMode()); err != nil {
			return handleError(cfg, td, "cannot create destination", err)
		}
	}
	if _, err := t.Lstat(dst); err != nil {
		return handleError(cfg, td, "destination does not exist", err)
	}

	var objectCounter int64
	var extractedBytes int64
	deferredTimes := map[string]time.Time{}

	r := cpio.NewReader(bytes.NewReader(archive))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		hdr, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return handleError(cfg, td, "error reading archive", err)
		}

		objectCounter++
		if err := cfg.CheckMaxObjects(objectCounter); err != nil {
			return handleError(cfg, td, "max objects check failed", err)
		}

		// refuse absolute entry names before any path joining strips the
		// leading separator
		if strings.HasPrefix(hdr.Name, "/") {
			if err := handleError(cfg, td, "refusing absolute entry path", fmt.Errorf("absolute path: %s", hdr.Name)); err != nil {
				return err
			}
			continue
		}

		fi := hdr.FileInfo()
		mode := fi.Mode()

		switch {
		case mode.IsDir():
			if err := createDir(t, dst, hdr.Name, mode.Perm(), cfg); err != nil {
				if err := handleError(cfg, td, "failed to create directory", err); err != nil {
					return err
				}
				continue
			}
			if cfg.PreserveFileTimes() {
				deferredTimes[hdr.Name] = hdr.ModTime
			}
			td.ExtractedDirs++

		case mode.IsRegular():
			if err := cfg.CheckExtractionSize(extractedBytes + hdr.Size); err != nil {
				return handleError(cfg, td, "max extraction size exceeded", err)
			}

			n, err := createFile(t, dst, hdr.Name, r, mode.Perm(), cfg.MaxExtractionSize()-extractedBytes, cfg)
			if err != nil {
				if err := handleError(cfg, td, "failed to create file", err); err != nil {
					return err
				}
				continue
			}
			extractedBytes += n

			if cfg.PreserveFileTimes() {
				if err := chtimes(t, dst, hdr.Name, hdr.ModTime); err != nil {
					cfg.Logger().Warn("cannot restore file times", "name", hdr.Name, "error", err)
				}
			}

			td.ExtractionSize = extractedBytes
			td.ExtractedFiles++

		case mode&fs.ModeSymlink != 0:
			target, err := io.ReadAll(r)
			if err != nil {
				if err := handleError(cfg, td, "failed to read link target", err); err != nil {
					return err
				}
				continue
			}

			if err := createSymlink(t, dst, hdr.Name, string(target), cfg); err != nil {
				if err := handleError(cfg, td, "failed to create symlink", err); err != nil {
					return err
				}
				continue
			}

			if cfg.PreserveFileTimes() {
				if err := symlinkChtimes(t, dst, hdr.Name, hdr.ModTime); err != nil {
					cfg.Logger().Warn("cannot restore symlink times", "name", hdr.Name, "error", err)
				}
			}
			td.ExtractedSymlinks++

		default:
			// device nodes, fifos and sockets need privileges the tool
			// does not assume
			if cfg.ContinueOnUnsupportedFiles() {
				td.UnsupportedFiles++
				td.LastUnsupportedFile = hdr.Name
				continue
			}
			if err := handleError(cfg, td, "cannot extract entry", fmt.Errorf("unsupported filetype in archive (%s)", mode)); err != nil {
				return err
			}
		}
	}

	// restore directory times last so file creation does not bump them again
	if cfg.PreserveFileTimes() {
		for name, modTime := range deferredTimes {
			if err := chtimes(t, dst, name, modTime); err != nil {
				cfg.Logger().Warn("cannot restore directory times", "name", name, "error", err)
			}
		}
	}

	return nil
}

// chtimes restores access and modification time of an extracted entry.
func chtimes(t Target, dst, name string, modTime time.Time) error {
	parts := splitPath(name)
	return t.Chtimes(filepath.Join(dst, filepath.Join(parts...)), modTime, modTime)
}

// symlinkChtimes restores access and modification time of an extracted
// symlink without following it.
func symlinkChtimes(t Target, dst, name string, modTime time.Time) error {
	parts := splitPath(name)
	return t.Lchtimes(filepath.Join(dst, filepath.Join(parts...)), modTime, modTime)
}

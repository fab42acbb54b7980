// Copyright (c) The Extract-Kernel-Initramfs Authors
// SPDX-License-Identifier: MIT

package extract

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Target specifies all functions that are needed to materialize the
// contents of a recovered initramfs archive.
type Target interface {
	// CreateFile creates a file at the specified path with src as content. The mode parameter is the file mode that
	// should be set on the file. If the file already exists and overwrite is false, an error should be returned. If the
	// file does not exist, it should be created. The size of the file should not exceed maxSize. If the file is created
	// successfully, the number of bytes written should be returned. If an error occurs, the number of bytes written
	// should be returned along with the error. If maxSize < 0, the file size is not limited.
	CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error)

	// CreateDir creates at the specified path with the specified mode. If the directory already exists, nothing is done.
	CreateDir(path string, mode fs.FileMode) error

	// CreateSymlink creates a symbolic link from newname to oldname. If newname already exists and overwrite is false,
	// the function returns an error.
	CreateSymlink(oldname string, newname string, overwrite bool) error

	// Lstat see docs for os.Lstat. Main purpose is to check for symlinks in the extraction path.
	Lstat(path string) (fs.FileInfo, error)

	// Stat see docs for os.Stat.
	Stat(path string) (fs.FileInfo, error)

	// Chtimes see docs for os.Chtimes. Used to restore the modification times stored in the archive.
	Chtimes(name string, atime, mtime time.Time) error

	// Lchtimes changes the access and modification times of name without following symlinks. Used to restore the
	// modification times of symlink entries where the platform supports it; implementations without support return nil.
	Lchtimes(name string, atime, mtime time.Time) error
}

// splitPath converts an archive path (always slash separated) into its
// elements for platform specific joining.
func splitPath(name string) []string {
	return strings.Split(name, "/")
}

// createFile is a wrapper around Target.CreateFile that refuses unsafe
// paths and creates missing parent directories first.
func createFile(t Target, dst string, name string, src io.Reader, mode fs.FileMode, maxSize int64, cfg *Config) (int64, error) {
	if len(name) == 0 {
		return 0, fmt.Errorf("cannot create file without name")
	}

	parts := splitPath(name)
	name = filepath.Join(parts...)

	fDir := filepath.Dir(name)
	if err := createDir(t, dst, fDir, cfg.CustomCreateDirMode(), cfg); err != nil {
		return 0, fmt.Errorf("cannot create directory: %w", err)
	}

	if err := securityCheck(t, dst, name, cfg); err != nil {
		return 0, fmt.Errorf("security check path failed: %w", err)
	}

	return t.CreateFile(filepath.Join(dst, name), src, mode, cfg.Overwrite(), maxSize)
}

// createDir is a wrapper around Target.CreateDir that refuses unsafe paths.
func createDir(t Target, dst string, name string, mode fs.FileMode, cfg *Config) error {
	if name == "." {
		return nil
	}

	if err := securityCheck(t, dst, name, cfg); err != nil {
		return fmt.Errorf("security check path failed: %w", err)
	}

	parts := splitPath(name)
	path := filepath.Join(dst, filepath.Join(parts...))
	return t.CreateDir(path, mode)
}

// createSymlink is a wrapper around Target.CreateSymlink that refuses
// absolute link targets and targets escaping the extraction root.
func createSymlink(t Target, dst string, name string, linkTarget string, cfg *Config) error {
	if cfg.DenySymlinkExtraction() {
		return fmt.Errorf("symlinks are not allowed")
	}

	if len(name) == 0 {
		return fmt.Errorf("empty name")
	}

	if filepath.IsAbs(linkTarget) {
		return fmt.Errorf("symlink with absolute path as target: %s", linkTarget)
	}

	parts := splitPath(name)
	name = filepath.Join(parts...)

	linkDirectory := filepath.Dir(name)
	if err := createDir(t, dst, linkDirectory, cfg.CustomCreateDirMode(), cfg); err != nil {
		return fmt.Errorf("cannot create directory for symlink: %w", err)
	}

	// the resolved target must stay below the extraction root
	targetCleaned := filepath.Join(linkDirectory, linkTarget)
	if err := securityCheck(t, dst, targetCleaned, cfg); err != nil {
		return fmt.Errorf("symlink target security check path failed: %w", err)
	}

	return t.CreateSymlink(linkTarget, filepath.Join(dst, name), cfg.Overwrite())
}

// securityCheck rejects absolute paths, path traversal and writes through
// symlinked directories inside the extraction root.
func securityCheck(t Target, dst string, path string, cfg *Config) error {
	if filepath.IsAbs(path) {
		return fmt.Errorf("absolute path detected: %s", path)
	}

	parts := splitPath(path)
	path = filepath.Join(parts...)

	rel, err := filepath.Rel(dst, filepath.Join(dst, path))
	if err != nil {
		return fmt.Errorf("failed to get relative path: %w", err)
	}
	if !filepath.IsLocal(rel) {
		return fmt.Errorf("path traversal detected")
	}

	// check each dir in path for symlinks
	targetPathElements := strings.Split(path, string(os.PathSeparator))
	for i := 0; i < len(targetPathElements); i++ {
		subDirs := filepath.Join(targetPathElements[0 : i+1]...)
		checkDir := filepath.Join(dst, subDirs)

		if len(checkDir) == 0 || checkDir == "." {
			continue
		}

		stat, err := t.Lstat(checkDir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("invalid path: %w", err)
		}

		if stat.Mode()&fs.ModeSymlink != 0 {
			return fmt.Errorf("symlink in path: %s", subDirs)
		}
	}

	return nil
}

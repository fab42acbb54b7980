// Copyright (c) The Extract-Kernel-Initramfs Authors
// SPDX-License-Identifier: MIT

package extract

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sync"
	"time"
)

// TargetMemory is an in-memory implementation of [Target]. It keeps all
// created entries in a map keyed by path. Permissions are stored but not
// enforced. It is mainly useful for inspecting an archive without touching
// the filesystem and for tests.
type TargetMemory struct {
	files sync.Map // map[string]*memoryEntry
}

// NewTargetMemory creates a new in-memory target.
func NewTargetMemory() *TargetMemory {
	return &TargetMemory{}
}

type memoryEntry struct {
	info     memoryFileInfo
	data     []byte
	linkname string
}

type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (fi memoryFileInfo) Name() string       { return fi.name }
func (fi memoryFileInfo) Size() int64        { return fi.size }
func (fi memoryFileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi memoryFileInfo) ModTime() time.Time { return fi.modTime }
func (fi memoryFileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi memoryFileInfo) Sys() any           { return nil }

// CreateFile creates a new file in the in-memory filesystem.
func (m *TargetMemory) CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error) {
	if !overwrite {
		if _, ok := m.files.Load(path); ok {
			return 0, fmt.Errorf("%w: %s", fs.ErrExist, path)
		}
	}

	var buf bytes.Buffer
	n, err := io.Copy(limitWriter(&buf, maxSize), src)
	if err != nil {
		return n, err
	}

	m.files.Store(path, &memoryEntry{
		info: memoryFileInfo{name: filepath.Base(path), size: n, mode: mode.Perm(), modTime: time.Now()},
		data: buf.Bytes(),
	})

	return n, nil
}

// CreateDir creates a directory entry. Existing directories are left alone.
func (m *TargetMemory) CreateDir(path string, mode fs.FileMode) error {
	if entry, ok := m.files.Load(path); ok {
		if entry.(*memoryEntry).info.IsDir() {
			return nil
		}
		return fmt.Errorf("%w: %s", fs.ErrExist, path)
	}

	m.files.Store(path, &memoryEntry{
		info: memoryFileInfo{name: filepath.Base(path), mode: mode.Perm() | fs.ModeDir, modTime: time.Now()},
	})

	return nil
}

// CreateSymlink creates a symlink entry pointing to oldname.
func (m *TargetMemory) CreateSymlink(oldname string, newname string, overwrite bool) error {
	if !overwrite {
		if _, ok := m.files.Load(newname); ok {
			return fmt.Errorf("%w: %s", fs.ErrExist, newname)
		}
	}

	m.files.Store(newname, &memoryEntry{
		info:     memoryFileInfo{name: filepath.Base(newname), mode: fs.ModeSymlink | 0777, modTime: time.Now()},
		linkname: oldname,
	})

	return nil
}

// Lstat returns the FileInfo of the entry at path without following links.
func (m *TargetMemory) Lstat(path string) (fs.FileInfo, error) {
	entry, ok := m.files.Load(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", fs.ErrNotExist, path)
	}
	return entry.(*memoryEntry).info, nil
}

// maxSymlinkHops caps symlink resolution in [TargetMemory.Stat], matching
// the kernel's ELOOP limit.
const maxSymlinkHops = 40

// Stat returns the FileInfo of the entry at path, following symlinks.
func (m *TargetMemory) Stat(path string) (fs.FileInfo, error) {
	return m.stat(path, 0)
}

func (m *TargetMemory) stat(path string, hops int) (fs.FileInfo, error) {
	if hops > maxSymlinkHops {
		return nil, fmt.Errorf("%w: too many levels of symbolic links: %s", fs.ErrInvalid, path)
	}

	entry, ok := m.files.Load(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", fs.ErrNotExist, path)
	}

	me := entry.(*memoryEntry)
	if me.info.mode&fs.ModeSymlink != 0 {
		resolved := me.linkname
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(filepath.Dir(path), resolved)
		}
		return m.stat(resolved, hops+1)
	}

	return me.info, nil
}

// Chtimes updates the modification time of the entry at path.
func (m *TargetMemory) Chtimes(path string, _, mtime time.Time) error {
	entry, ok := m.files.Load(path)
	if !ok {
		return fmt.Errorf("%w: %s", fs.ErrNotExist, path)
	}
	entry.(*memoryEntry).info.modTime = mtime
	return nil
}

// Lchtimes updates the modification time of the entry at path without
// following symlinks. Entries are keyed by path, so this is the same
// operation as Chtimes.
func (m *TargetMemory) Lchtimes(path string, atime, mtime time.Time) error {
	return m.Chtimes(path, atime, mtime)
}

// ReadFile returns the content of the file at path.
func (m *TargetMemory) ReadFile(path string) ([]byte, error) {
	entry, ok := m.files.Load(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", fs.ErrNotExist, path)
	}

	me := entry.(*memoryEntry)
	if !me.info.mode.IsRegular() {
		return nil, fmt.Errorf("%w: not a regular file: %s", fs.ErrInvalid, path)
	}

	return append([]byte(nil), me.data...), nil
}

// Readlink returns the target of the symlink at path.
func (m *TargetMemory) Readlink(path string) (string, error) {
	entry, ok := m.files.Load(path)
	if !ok {
		return "", fmt.Errorf("%w: %s", fs.ErrNotExist, path)
	}

	me := entry.(*memoryEntry)
	if me.info.mode&fs.ModeSymlink == 0 {
		return "", fmt.Errorf("%w: not a symlink: %s", fs.ErrInvalid, path)
	}

	return me.linkname, nil
}

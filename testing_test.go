package extract_test

import (
	"bytes"
	"compress/gzip"
	"io"
	"testing"
	"time"

	"github.com/cavaliergopher/cpio"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz/lzma"
)

// fixtureModTime is the modification time stored in all test archives.
// cpio keeps second granularity only.
var fixtureModTime = time.Unix(1234567890, 0)

// testArchiveFile is one entry of a synthetic test archive.
type testArchiveFile struct {
	name     string
	body     string
	linkname string
	dir      bool
}

// defaultArchiveFiles is a small initramfs-shaped file tree.
var defaultArchiveFiles = []testArchiveFile{
	{name: "bin", dir: true},
	{name: "bin/sh", body: "#!/bin/false\n"},
	{name: "init", body: "#!/bin/sh\nexec /bin/sh\n"},
	{name: "etc", dir: true},
	{name: "etc/hostname", body: "testbox\n"},
	{name: "linuxrc", linkname: "init"},
}

// newTestArchive builds a newc cpio archive from the given entries.
func newTestArchive(t *testing.T, files []testArchiveFile) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := cpio.NewWriter(&buf)

	for _, f := range files {
		hdr := &cpio.Header{
			Name:    f.name,
			ModTime: fixtureModTime,
			Links:   1,
		}

		switch {
		case f.dir:
			hdr.Mode = cpio.TypeDir | 0755
			hdr.Links = 2
			if err := w.WriteHeader(hdr); err != nil {
				t.Fatalf("write dir header: %v", err)
			}

		case f.linkname != "":
			hdr.Mode = cpio.TypeSymlink | 0777
			hdr.Size = int64(len(f.linkname))
			if err := w.WriteHeader(hdr); err != nil {
				t.Fatalf("write symlink header: %v", err)
			}
			if _, err := w.Write([]byte(f.linkname)); err != nil {
				t.Fatalf("write symlink body: %v", err)
			}

		default:
			hdr.Mode = cpio.TypeReg | 0644
			hdr.Size = int64(len(f.body))
			if err := w.WriteHeader(hdr); err != nil {
				t.Fatalf("write file header: %v", err)
			}
			if _, err := w.Write([]byte(f.body)); err != nil {
				t.Fatalf("write file body: %v", err)
			}
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}

	return buf.Bytes()
}

// compressGzip compresses data with gzip.
func compressGzip(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	return buf.Bytes()
}

// compressLZMA compresses data in lzma-alone format.
func compressLZMA(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := lzma.NewWriter(&buf)
	if err != nil {
		t.Fatalf("lzma writer: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("lzma write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("lzma close: %v", err)
	}

	return buf.Bytes()
}

// compressZstd compresses data as a zstandard frame.
func compressZstd(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("zstd write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zstd close: %v", err)
	}

	return buf.Bytes()
}

// stubBytes returns n bytes of bootstrap-stub filler that contains no
// scheme signature.
func stubBytes(n int) []byte {
	stub := make([]byte, n)
	for i := range stub {
		stub[i] = byte([]byte{0xde, 0xad, 0xbe, 0xef}[i%4])
	}
	return stub
}

// newTestKernel assembles a fake decompressed kernel: filler, the archive
// blob at a known offset, more filler.
func newTestKernel(archiveBlob []byte) []byte {
	var kernel bytes.Buffer
	kernel.Write(stubBytes(512))
	kernel.Write(archiveBlob)
	kernel.Write(stubBytes(128))
	return kernel.Bytes()
}

// newTestImage wraps a kernel into a self-decompressing image layout:
// bootstrap stub followed by the gzip compressed kernel.
func newTestImage(t *testing.T, kernel []byte) []byte {
	t.Helper()

	var image bytes.Buffer
	image.Write(stubBytes(256))
	image.Write(compressGzip(t, kernel))
	return image.Bytes()
}

// readAll fails the test on error.
func readAll(t *testing.T, r io.Reader) []byte {
	t.Helper()

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	return data
}

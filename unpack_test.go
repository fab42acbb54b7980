package extract_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	extract "github.com/jotaki/Extract-Kernel-Initramfs"
)

func TestExtract(t *testing.T) {
	archive := newTestArchive(t, defaultArchiveFiles)

	tests := []struct {
		name string
		blob []byte
	}{
		{name: "gzip archive", blob: compressGzip(t, archive)},
		{name: "lzma archive", blob: compressLZMA(t, archive)},
		{name: "zstd archive", blob: compressZstd(t, archive)},
		{name: "uncompressed archive", blob: archive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			image := newTestImage(t, newTestKernel(tt.blob))

			got, err := extract.Extract(context.Background(), bytes.NewReader(image), extract.NewConfig())
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(got), len(archive))
			assert.Equal(t, archive, got[:len(archive)])

			// the recovered archive must enumerate exactly the packed tree
			entries, err := extract.ListArchive(got)
			require.NoError(t, err)
			var names []string
			for _, e := range entries {
				names = append(names, e.Name)
			}
			assert.Equal(t, []string{"bin", "bin/sh", "init", "etc", "etc/hostname", "linuxrc"}, names)
		})
	}
}

func TestExtractTelemetry(t *testing.T) {
	archive := newTestArchive(t, defaultArchiveFiles)
	image := newTestImage(t, newTestKernel(compressGzip(t, archive)))

	var td extract.TelemetryData
	hook := func(ctx context.Context, d *extract.TelemetryData) { td = *d }

	_, err := extract.Extract(context.Background(), bytes.NewReader(image), extract.NewConfig(extract.WithTelemetryHook(hook)))
	require.NoError(t, err)

	assert.Equal(t, int64(len(image)), td.InputSize)
	assert.Equal(t, int64(256), td.KernelOffset)
	assert.Equal(t, int64(512), td.ArchiveOffset)
	assert.Equal(t, "gzip", td.ExtractedType)
	assert.Positive(t, td.KernelSize)
	assert.Positive(t, td.ArchiveSize)
	assert.Positive(t, td.CandidateOffsets)
	assert.Zero(t, td.FailedCandidates)
	assert.Empty(t, td.LastExtractionError)
}

func TestExtractErrorStages(t *testing.T) {
	tests := []struct {
		name    string
		image   []byte
		wantErr error
	}{
		{
			name:    "no compressed payload",
			image:   stubBytes(1024),
			wantErr: extract.ErrNoCompressedPayload,
		},
		{
			name:    "kernel decompression fails",
			image:   append(stubBytes(16), 0x1f, 0x8b, 0x08, 0xff, 0xff, 0xff),
			wantErr: extract.ErrKernelDecompression,
		},
		{
			name:    "no archive signature in kernel",
			image:   newTestImage(t, stubBytes(2048)),
			wantErr: extract.ErrNoArchiveSignature,
		},
		{
			name:    "all candidates fail",
			image:   newTestImage(t, append(stubBytes(64), 0x1f, 0x8b, 0x08, 0xff, 0xff, 0xff)),
			wantErr: extract.ErrAllCandidatesFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extract.Extract(context.Background(), bytes.NewReader(tt.image), extract.NewConfig())
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, got)
		})
	}
}

func TestExtractCanceledContext(t *testing.T) {
	archive := newTestArchive(t, defaultArchiveFiles)
	image := newTestImage(t, newTestKernel(compressGzip(t, archive)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := extract.Extract(ctx, bytes.NewReader(image), extract.NewConfig())
	require.ErrorIs(t, err, context.Canceled)
}

func TestExtractInputSizeLimit(t *testing.T) {
	archive := newTestArchive(t, defaultArchiveFiles)
	image := newTestImage(t, newTestKernel(compressGzip(t, archive)))

	_, err := extract.Extract(context.Background(), bytes.NewReader(image),
		extract.NewConfig(extract.WithMaxInputSize(64)))
	require.Error(t, err)
}

func TestExtractFile(t *testing.T) {
	archive := newTestArchive(t, defaultArchiveFiles)
	image := newTestImage(t, newTestKernel(compressGzip(t, archive)))

	path := filepath.Join(t.TempDir(), "vmlinuz")
	require.NoError(t, os.WriteFile(path, image, 0644))

	got, err := extract.ExtractFile(context.Background(), path, extract.NewConfig())
	require.NoError(t, err)
	assert.Equal(t, archive, got[:len(archive)])

	_, err = extract.ExtractFile(context.Background(), path+".missing", extract.NewConfig())
	require.Error(t, err)
}

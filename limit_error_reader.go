// Copyright (c) The Extract-Kernel-Initramfs Authors
// SPDX-License-Identifier: MIT

package extract

import (
	"errors"
	"io"
)

// errLimitExceeded is returned by limitErrorReader and limitErrorWriter
// when a configured size cap is hit. Candidates aborted by it are never
// accepted, no matter what they produced so far.
var errLimitExceeded = errors.New("read limit exceeded")

// limitErrorReader is a reader that returns an error if the limit is
// exceeded before the underlying reader is fully read. If the limit is -1,
// all data from the original reader is read.
type limitErrorReader struct {
	R io.Reader // underlying reader
	L int64     // limit
	N int64     // number of bytes read
}

// Read reads from the underlying reader and fills up p. It returns an
// error if the limit is exceeded, even if the underlying reader is not
// fully read.
func (l *limitErrorReader) Read(p []byte) (int, error) {
	m := l.L - l.N
	if l.L == -1 || m > int64(len(p)) {
		m = int64(len(p))
	}

	if m == 0 {
		return 0, errLimitExceeded
	}

	n, err := l.R.Read(p[:m])
	l.N += int64(n)
	return n, err
}

// ReadBytes returns how many bytes have been read from the underlying
// reader.
func (l *limitErrorReader) ReadBytes() int {
	return int(l.N)
}

// newLimitErrorReader returns a new limitErrorReader that reads from r.
func newLimitErrorReader(r io.Reader, limit int64) *limitErrorReader {
	return &limitErrorReader{R: r, L: limit}
}

// Copyright (c) The Extract-Kernel-Initramfs Authors
// SPDX-License-Identifier: MIT

package extract

// FindArchiveCandidates scans the decompressed kernel for archive
// signatures, trying schemes in registry priority order, and returns the
// first scheme with at least one match together with the full ordered list
// of its match offsets.
//
// All offsets stay candidates: magic numbers are short enough to collide
// with incidental binary data, and not even the first match is guaranteed
// to be the archive. The trial loop in [ExtractArchive] sorts that out.
func FindArchiveCandidates(kernel []byte) (Scheme, []int, error) {
	for _, s := range schemes {
		if offsets := scanScheme(kernel, s); len(offsets) > 0 {
			return s, offsets, nil
		}
	}

	return Scheme{}, nil, ErrNoArchiveSignature
}

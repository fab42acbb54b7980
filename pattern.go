// Copyright (c) The Extract-Kernel-Initramfs Authors
// SPDX-License-Identifier: MIT

package extract

import "sort"

// Pattern is a byte signature. Mask marks which positions must match Bytes
// exactly; unmasked positions accept any byte. A nil mask means every
// position is fixed.
type Pattern struct {
	Bytes []byte
	Mask  []bool
}

// NewPattern returns a Pattern that matches b literally.
func NewPattern(b []byte) Pattern {
	return Pattern{Bytes: b}
}

// Len returns the length of the pattern in bytes.
func (p Pattern) Len() int {
	return len(p.Bytes)
}

// matchAt reports whether the pattern matches buf at offset. The comparison
// is pure byte equality, so embedded zero bytes and non-text bytes are
// handled like any other value.
func (p Pattern) matchAt(buf []byte, offset int) bool {
	if offset < 0 || offset+len(p.Bytes) > len(buf) {
		return false
	}
	for i, b := range p.Bytes {
		if p.Mask != nil && !p.Mask[i] {
			continue
		}
		if buf[offset+i] != b {
			return false
		}
	}
	return true
}

// scanPattern returns every offset in buf where p matches, in ascending
// order. It returns an empty slice when there is no match. The scan is eager
// since callers need the complete candidate list before trial extraction
// starts.
func scanPattern(buf []byte, p Pattern) []int {
	var offsets []int

	if p.Len() == 0 {
		return offsets
	}

	for i := 0; i+p.Len() <= len(buf); i++ {
		if p.matchAt(buf, i) {
			offsets = append(offsets, i)
		}
	}

	return offsets
}

// scanPatterns merges the matches of all patterns into one ascending offset
// list. Schemes with alternative magic bytes (e.g. the two lz4 framings)
// contribute the union of their matches.
func scanPatterns(buf []byte, patterns []Pattern) []int {
	if len(patterns) == 1 {
		return scanPattern(buf, patterns[0])
	}

	var offsets []int
	seen := make(map[int]struct{})
	for _, p := range patterns {
		for _, off := range scanPattern(buf, p) {
			if _, ok := seen[off]; ok {
				continue
			}
			seen[off] = struct{}{}
			offsets = append(offsets, off)
		}
	}

	// restore ascending order after merging alternatives
	sort.Ints(offsets)

	return offsets
}

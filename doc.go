// Copyright (c) The Extract-Kernel-Initramfs Authors
// SPDX-License-Identifier: MIT

// Package extract recovers the initramfs cpio archive that is embedded in a
// self-decompressing Linux kernel image.
//
// A bzImage-style kernel is a bootstrap stub followed by a compressed kernel
// payload. The payload in turn carries one or more cpio archives, compressed
// with one of several schemes or stored raw. Because compression magic
// numbers are short, they collide with incidental binary data; the package
// therefore scans for every signature match and verifies each candidate by
// actually decompressing it, accepting the first offset that yields a valid
// cpio stream.
//
// The pipeline is strictly sequential: [Extract] locates the compressed
// kernel payload via its gzip signature, scans the decompressed kernel for
// archive signatures in scheme priority order, and tries each candidate
// offset until one decompresses. The recovered archive can then be listed
// with [ListArchive] or materialized with [UnpackArchive].
package extract

// Copyright (c) The Extract-Kernel-Initramfs Authors
// SPDX-License-Identifier: MIT

package main

import "github.com/jotaki/Extract-Kernel-Initramfs/cmd"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main starts the extract-kernel-initramfs cli
func main() {
	cmd.Run(version, commit, date)
}

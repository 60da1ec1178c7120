// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Snapframe - Sensor Frame Encoder and Analyzer
//
// A CLI tool for encoding sensor readings into compact uplink frames,
// decoding and validating them, and generating the matching firmware packer.

package main

import (
	"os"

	"github.com/Thermoquad/snapframe/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"

	"github.com/Thermoquad/snapframe/internal/config"
	"github.com/spf13/cobra"
)

// manifestEnv supplies the default manifest path
const manifestEnv = "SNAPFRAME_MANIFEST"

var (
	manifestPath string

	// Serial sink flags
	portName string
	baudRate int
)

var rootCmd = &cobra.Command{
	Use:   "snapframe",
	Short: "Sensor Frame Encoder and Analyzer",
	Long: `Snapframe - A CLI tool for building and analyzing compact sensor uplink frames.

A frame is a sequence of groups: an optional battery group followed by up to
16 custom groups of typed sensor fields. The field manifest (YAML) names each
field id, its kind and its unit, and is shared with the device firmware.

Commands:
  encode   Encode a readings file into a frame (optionally send it to a serial port)
  decode   Decode one hex or base64 frame
  inspect  Decode and validate a stream of frames, one per line
  gen      Generate the firmware C packer for a manifest
  check    Validate a manifest and report its worst-case frame size

The manifest path defaults to the SNAPFRAME_MANIFEST environment variable.`,
	Version:      "1.0.0",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&manifestPath, "manifest", "m", os.Getenv(manifestEnv), "Field manifest (YAML)")
}

// loadManifest loads the manifest named by --manifest. When required is
// false a missing flag yields a nil manifest.
func loadManifest(required bool) (*config.Manifest, error) {
	if manifestPath == "" {
		if required {
			return nil, fmt.Errorf("--manifest (or %s) must be specified", manifestEnv)
		}
		return nil, nil
	}
	return config.Load(manifestPath)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

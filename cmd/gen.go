// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"log"
	"path/filepath"

	"github.com/Thermoquad/snapframe/internal/cgen"
	"github.com/spf13/cobra"
)

var outDir string

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate the firmware C packer",
	Long: `Generate sensor_data_packet.h and sensor_data_packet.c for the manifest.

The generated sensor_data_packet() takes one parameter per manifest field
(arrays take a pointer and a length) plus battery and charging when the
manifest enables them, and emits the same frame the encode command does.`,
	RunE: runGen,
}

func init() {
	rootCmd.AddCommand(genCmd)
	genCmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
}

func runGen(cmd *cobra.Command, args []string) error {
	m, err := loadManifest(true)
	if err != nil {
		return err
	}

	files, err := cgen.Generate(m)
	if err != nil {
		return err
	}
	if err := cgen.WriteFiles(outDir, files); err != nil {
		return err
	}

	for _, f := range files {
		log.Printf("Wrote %s (%d bytes)", filepath.Join(outDir, f.Name), len(f.Content))
	}
	return nil
}

// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Thermoquad/snapframe/pkg/snapframe"
	"github.com/spf13/cobra"
)

var decodeFormat string

var decodeCmd = &cobra.Command{
	Use:   "decode [FRAME]",
	Short: "Decode one frame",
	Long: `Decode a single frame given as hex or base64 text, or read from stdin.

With --manifest, custom fields are shown with their names and units.

Output formats:
  text  Human-readable groups and fields, followed by any anomalies
  hex   Hex dump of the frame bytes
  cbor  The decoded readings as a CBOR reading set (raw bytes)`,
	Example: `  snapframe decode F0FF02052A
  snapframe decode -m probe.yaml AAAEBVATAQ==
  echo F0FF02052A | snapframe decode --format cbor > readings.cbor`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().StringVarP(&decodeFormat, "format", "f", "text", "Output format: text, hex, cbor")
}

func runDecode(cmd *cobra.Command, args []string) error {
	m, err := loadManifest(false)
	if err != nil {
		return err
	}

	text := ""
	if len(args) == 1 {
		text = args[0]
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}

	data, err := snapframe.ParseFrameText(text)
	if err != nil {
		return err
	}

	f, err := snapframe.DecodeFrame(data)
	if err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}

	switch strings.ToLower(decodeFormat) {
	case "text":
		var namer snapframe.FieldNamer
		if m != nil {
			namer = m
		}
		fmt.Print(snapframe.FormatFrame(f, namer))
		printAnomalies(snapframe.ValidateFrame(f))
	case "hex":
		fmt.Print(snapframe.FormatHex(data))
	case "cbor":
		out, err := snapframe.MarshalReadings(f.Readings())
		if err != nil {
			return err
		}
		if _, err := os.Stdout.Write(out); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q (use text, hex or cbor)", decodeFormat)
	}
	return nil
}

// printAnomalies prints validation errors for a frame
func printAnomalies(errors []snapframe.ValidationError) {
	for i, err := range errors {
		fmt.Printf("  %s %s\n", warningStyle.Render(fmt.Sprintf("Issue %d [%s]:", i+1, err.Type)), err.Message)
	}
}

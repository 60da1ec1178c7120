// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Thermoquad/snapframe/internal/config"
	"github.com/Thermoquad/snapframe/pkg/snapframe"
	"github.com/spf13/cobra"
)

var (
	readingsPath string
	maxLength    int
	encodeFormat string
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode readings into a frame",
	Long: `Encode a readings file into a frame using the field manifest.

Readings are YAML (battery, charging, and values keyed by field name) or a
CBOR reading set when the file ends in .cbor. Values are emitted in manifest
order and fields without a value are left out.

The frame is printed as hex (default), base64, or raw bytes. With --port the
frame is also written to a serial device, e.g. a LoRa module on the bench.`,
	Example: `  snapframe encode -m probe.yaml --readings now.yaml
  snapframe encode -m probe.yaml --readings now.cbor --format base64
  snapframe encode -m probe.yaml --readings now.yaml --port /dev/ttyUSB0`,
	RunE: runEncode,
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().StringVarP(&readingsPath, "readings", "r", "", "Readings file (.yaml or .cbor)")
	encodeCmd.Flags().IntVar(&maxLength, "max-length", 0, "Maximum frame length (default from manifest)")
	encodeCmd.Flags().StringVarP(&encodeFormat, "format", "f", "hex", "Output format: hex, base64, raw")
	encodeCmd.Flags().StringVarP(&portName, "port", "p", "", "Serial port to send the frame to")
	encodeCmd.Flags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")
	_ = encodeCmd.MarkFlagRequired("readings")
}

func runEncode(cmd *cobra.Command, args []string) error {
	m, err := loadManifest(true)
	if err != nil {
		return err
	}

	readings, err := config.LoadReadings(readingsPath, m)
	if err != nil {
		return err
	}

	limit := m.MaxLength
	if maxLength != 0 {
		limit = maxLength
	}

	frame, err := snapframe.NewEncoder(limit).Encode(readings)
	if err != nil {
		return fmt.Errorf("encode failed: %w", err)
	}

	out, err := formatFrameOutput(frame, encodeFormat)
	if err != nil {
		return err
	}
	if _, err := os.Stdout.Write(out); err != nil {
		return err
	}

	if portName != "" {
		sink, err := OpenSerialSink(portName, baudRate)
		if err != nil {
			return err
		}
		defer sink.Close()

		if err := sendFrame(sink, frame); err != nil {
			return err
		}
		log.Printf("Sent %d byte frame to %s @ %d baud", len(frame), portName, baudRate)
	}

	return nil
}

// formatFrameOutput renders a frame in the requested output format
func formatFrameOutput(frame []byte, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "hex":
		return []byte(strings.ToUpper(hex.EncodeToString(frame)) + "\n"), nil
	case "base64":
		return []byte(base64.StdEncoding.EncodeToString(frame) + "\n"), nil
	case "raw":
		return frame, nil
	}
	return nil, fmt.Errorf("unknown format %q (use hex, base64 or raw)", format)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Thermoquad/snapframe/pkg/snapframe"
	"github.com/spf13/cobra"
)

var (
	inputPath     string
	showAll       bool
	statsInterval int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Decode and validate a stream of frames",
	Long: `Decode frames one per line (hex or base64) and report errors and anomalies.

This command validates each frame and detects:
  - Malformed frames (truncated groups, unknown tags or group ids)
  - Text that is neither hex nor base64
  - Anomalies (battery out of range or out of place, repeated groups,
    duplicate field ids, non-finite floats, empty groups)

By default, only problems are displayed. Use --show-all to display every frame.
Blank lines and lines starting with # are skipped. Statistics are printed at
the configured interval and once more when the input ends.`,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input file (default stdin)")
	inspectCmd.Flags().BoolVar(&showAll, "show-all", false, "Show all frames (not just errors)")
	inspectCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Statistics update interval in seconds (0 disables)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	m, err := loadManifest(false)
	if err != nil {
		return err
	}
	var namer snapframe.FieldNamer
	if m != nil {
		namer = m
	}

	var input io.Reader = os.Stdin
	source := "stdin"
	if inputPath != "" {
		file, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer file.Close()
		input = file
		source = inputPath
	}

	fmt.Println(titleStyle.Render("Snapframe - Frame Inspector"))
	fmt.Printf("%s %s\n\n", labelStyle.Render("Input:"), source)

	stats := snapframe.NewStatistics()
	lines := make(chan string, 16)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(input)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			log.Printf("Read error: %v", err)
		}
	}()

	var tick <-chan time.Time
	if statsInterval > 0 {
		ticker := time.NewTicker(time.Duration(statsInterval) * time.Second)
		defer ticker.Stop()
		tick = ticker.C
	}

	lineNo := 0
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				fmt.Println()
				fmt.Print(boxStyle.Render(strings.TrimSuffix(stats.String(), "\n")))
				fmt.Println()
				return nil
			}
			lineNo++
			inspectLine(lineNo, line, stats, namer)

		case <-tick:
			fmt.Println()
			fmt.Print(stats.String())
			fmt.Println()
		}
	}
}

// inspectLine decodes, validates and reports one input line
func inspectLine(lineNo int, line string, stats *snapframe.Statistics, namer snapframe.FieldNamer) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	data, err := snapframe.ParseFrameText(line)
	if err != nil {
		stats.Update(nil, err, nil)
		printDecodeError(lineNo, err)
		return
	}

	f, err := snapframe.DecodeFrame(data)
	if err != nil {
		stats.Update(nil, err, nil)
		printDecodeError(lineNo, err)
		fmt.Print(snapframe.FormatHex(data))
		fmt.Println()
		return
	}

	validationErrors := snapframe.ValidateFrame(f)
	stats.Update(f, nil, validationErrors)

	if len(validationErrors) > 0 {
		fmt.Printf("[line %d] %s\n", lineNo, warningStyle.Render("ANOMALY"))
		fmt.Print(snapframe.FormatFrame(f, namer))
		printAnomalies(validationErrors)
		fmt.Println()
	} else if showAll {
		fmt.Printf("[line %d] %s\n", lineNo, okStyle.Render("OK"))
		fmt.Print(snapframe.FormatFrame(f, namer))
		fmt.Println()
	}
}

// printDecodeError prints a decode error in highlighted format
func printDecodeError(lineNo int, err error) {
	fmt.Printf("[line %d] %s %v\n", lineNo, errorStyle.Render("DECODE ERROR:"), err)
}

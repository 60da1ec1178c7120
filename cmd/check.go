// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"

	"github.com/Thermoquad/snapframe/pkg/snapframe"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a manifest",
	Long: `Validate the field manifest and report the worst-case frame size.

The worst case is the frame produced when every field and the enabled battery
sub-fields are present. The command fails when that frame would exceed the
manifest's max_length or when a group would exceed 255 bytes.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	m, err := loadManifest(true)
	if err != nil {
		return err
	}

	device := m.Device
	if device == "" {
		device = "(unnamed)"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Device:    "), device)
	fmt.Fprintf(&sb, "%s %d\n", labelStyle.Render("Fields:    "), len(m.Fields))
	fmt.Fprintf(&sb, "%s %v / %v\n", labelStyle.Render("Battery:   "), m.Battery, m.Charging)

	// group sizes, in first-seen order
	var order []int
	sizes := make(map[int]int)
	for _, f := range m.Fields {
		g := f.ID / snapframe.ChildsPerGroup
		if _, ok := sizes[g]; !ok {
			order = append(order, g)
		}
		sizes[g] += f.WireSize()
	}

	overflow := false
	for _, g := range order {
		line := fmt.Sprintf("%s len=%d", snapframe.FormatGroupName(snapframe.CustomGroupID(uint8(g))), sizes[g])
		if sizes[g] > snapframe.MaxGroupLength {
			overflow = true
			line = errorStyle.Render(line + " (exceeds 255)")
		}
		fmt.Fprintf(&sb, "  %s\n", line)
	}

	worst := m.WorstCaseSize()
	status := okStyle.Render("OK")
	if worst > m.MaxLength || overflow {
		status = errorStyle.Render("TOO LARGE")
	}
	fmt.Fprintf(&sb, "%s %d / %d bytes %s", labelStyle.Render("Worst case:"), worst, m.MaxLength, status)

	fmt.Println(boxStyle.Render(sb.String()))

	if overflow {
		return fmt.Errorf("%w: a group exceeds %d bytes", snapframe.ErrCapacityExceeded, snapframe.MaxGroupLength)
	}
	if worst > m.MaxLength {
		return fmt.Errorf("%w: worst-case frame is %d bytes, max_length is %d", snapframe.ErrCapacityExceeded, worst, m.MaxLength)
	}
	return nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package snapframe

import (
	"fmt"
	"strings"
)

// FieldNamer resolves the informational name and unit of a field id.
// Names and units are never encoded; a manifest supplies them.
type FieldNamer interface {
	FieldName(id uint8) (name, unit string, ok bool)
}

// FormatFrame formats a decoded frame into a human-readable string.
// namer may be nil.
func FormatFrame(f *Frame, namer FieldNamer) string {
	result := fmt.Sprintf("Frame: %d bytes, %d groups\n", f.Size, len(f.Groups))

	for i := range f.Groups {
		g := &f.Groups[i]
		result += fmt.Sprintf("  %s (0x%04X) len=%d\n", FormatGroupName(g.ID), g.ID, g.Length)

		for _, v := range g.Fields {
			if g.IsBattery() {
				result += formatBatteryField(v)
				continue
			}
			result += formatCustomField(v, namer)
		}
	}

	return result
}

// FormatGroupName returns the human-readable name for a group id
func FormatGroupName(id uint16) string {
	switch {
	case id == BatteryGroupID:
		return "BATTERY"
	case id >= CustomGroupBase:
		return fmt.Sprintf("CUSTOM_%X", id-CustomGroupBase)
	default:
		return "UNKNOWN"
	}
}

func formatBatteryField(v Value) string {
	switch {
	case v.id == BatteryLevelChild && v.kind == KindUint8:
		return fmt.Sprintf("    Battery Level: %d%%\n", v.Uint())
	case v.id == BatteryChargingChild && v.kind == KindBool:
		charging := "No"
		if v.Bool() {
			charging = "Yes"
		}
		return fmt.Sprintf("    Charging: %s\n", charging)
	}
	return fmt.Sprintf("    Child %d: %s = %s (unexpected)\n", v.id, v.kind, v.formatValue())
}

func formatCustomField(v Value, namer FieldNamer) string {
	label := fmt.Sprintf("#%d", v.id)
	unit := ""
	if namer != nil {
		if name, u, ok := namer.FieldName(v.id); ok {
			label = fmt.Sprintf("#%d %s", v.id, name)
			unit = u
		}
	}

	value := v.formatValue()
	if unit != "" {
		value += " " + unit
	}
	return fmt.Sprintf("    %s: %s = %s (child %d)\n", label, v.kind, value, v.Child())
}

// FormatHex formats raw frame bytes as a hex dump, 16 bytes per line
func FormatHex(data []byte) string {
	var sb strings.Builder
	for i := 0; i < len(data); i += 16 {
		end := i + 16
		if end > len(data) {
			end = len(data)
		}
		fmt.Fprintf(&sb, "  %04X: % X\n", i, data[i:end])
	}
	return sb.String()
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package snapframe implements the sensor telemetry frame codec shared with
// SnapEmu node firmware.
//
// A frame is a sequence of groups. Each group is a 2-byte little-endian group
// id, a 1-byte length, and the packed fields of that group. Each field is a
// header byte (child id in the high nibble, type tag in the low nibble)
// followed by the little-endian value bytes. The layout is fixed by the
// firmware and must be reproduced byte for byte.
package snapframe

// Group header layout
const (
	GroupIDSize     = 2
	GroupLengthSize = 1
	GroupHeaderSize = GroupIDSize + GroupLengthSize

	// MaxGroupLength is the largest field byte count a group length byte holds.
	MaxGroupLength = 0xFF
)

// Field header layout
const (
	FieldHeaderSize = 1
	ArrayLengthSize = 1

	// MaxArrayLength is the largest byte array a single field can carry.
	MaxArrayLength = 0xFF

	childShift = 4
	childMask  = 0x0F
	tagMask    = 0x0F
)

// Group identifiers. These are protocol constants shared with the firmware:
// a field id splits into group = id / 16 and child = id % 16, and the group
// selects one of 16 custom group ids starting at CustomGroupBase.
const (
	BatteryGroupID  uint16 = 0x0000
	CustomGroupBase uint16 = 0xFFF0

	ChildsPerGroup  = 16
	MaxCustomGroups = 16

	// MaxFieldID is the largest field id that maps onto a custom group.
	MaxFieldID = MaxCustomGroups*ChildsPerGroup - 1
)

// Battery group child ids
const (
	BatteryLevelChild    uint8 = 0x00 // UInt8, 0-100 percent
	BatteryChargingChild uint8 = 0x01 // Bool, 0: discharging, 1: charging

	MaxBatteryLevel = 100
)

// DefaultMaxLength is the frame limit of the reference LoRa node firmware.
const DefaultMaxLength = 200

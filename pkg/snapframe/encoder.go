// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package snapframe

import "fmt"

// Battery holds the optional battery telemetry emitted in the battery group.
// A nil field is left out of the frame.
type Battery struct {
	Level    *uint8 // 0-100 percent
	Charging *bool
}

// NewBattery creates a Battery with both level and charging state set
func NewBattery(level uint8, charging bool) *Battery {
	return &Battery{Level: &level, Charging: &charging}
}

// BatteryLevel creates a Battery carrying only a level
func BatteryLevel(level uint8) *Battery {
	return &Battery{Level: &level}
}

// empty reports whether the battery group would carry no fields
func (b *Battery) empty() bool {
	return b == nil || (b.Level == nil && b.Charging == nil)
}

func (b *Battery) validate() error {
	if b != nil && b.Level != nil && *b.Level > MaxBatteryLevel {
		return fmt.Errorf("%w: battery level %d exceeds %d", ErrInvalidValue, *b.Level, MaxBatteryLevel)
	}
	return nil
}

func (b *Battery) values() []Value {
	if b.empty() {
		return nil
	}
	vals := make([]Value, 0, 2)
	if b.Level != nil {
		vals = append(vals, NewUint8(BatteryLevelChild, *b.Level))
	}
	if b.Charging != nil {
		vals = append(vals, NewBool(BatteryChargingChild, *b.Charging))
	}
	return vals
}

// Readings is the input of one encode call: optional battery telemetry and
// the ordered custom field values.
type Readings struct {
	Battery *Battery
	Values  []Value
}

// CustomGroupID returns the wire group id for a custom group index
func CustomGroupID(group uint8) uint16 {
	return CustomGroupBase + uint16(group&childMask)
}

// groupPlan is the insertion-ordered partition of values by group index.
// Groups appear in the order their first field was seen, and fields keep
// their input order within a group.
type groupPlan struct {
	order   []uint8
	members [MaxCustomGroups][]Value
}

func planGroups(values []Value) *groupPlan {
	p := &groupPlan{}
	for _, v := range values {
		g := v.Group()
		if p.members[g] == nil {
			p.order = append(p.order, g)
		}
		p.members[g] = append(p.members[g], v)
	}
	return p
}

// Compose encodes readings into a frame of at most maxLength bytes.
//
// The battery group comes first when it has at least one field, followed by
// one custom group per distinct field group in first-seen order. Compose
// either returns the complete frame or fails with ErrInvalidValue or
// ErrCapacityExceeded; no partial frame is ever returned.
func Compose(values []Value, battery *Battery, maxLength int) ([]byte, error) {
	if err := battery.validate(); err != nil {
		return nil, err
	}

	w := newFrameWriter(maxLength)

	if !battery.empty() {
		if err := w.writeGroup(BatteryGroupID, battery.values()); err != nil {
			return nil, fmt.Errorf("battery group: %w", err)
		}
	}

	plan := planGroups(values)
	for _, g := range plan.order {
		id := CustomGroupID(g)
		if err := w.writeGroup(id, plan.members[g]); err != nil {
			return nil, fmt.Errorf("group 0x%04X: %w", id, err)
		}
	}

	return w.bytes(), nil
}

// ComposeInto encodes readings into dst, using len(dst) as the maximum frame
// length, and returns the number of bytes written. dst is only written when
// encoding succeeds.
func ComposeInto(dst []byte, values []Value, battery *Battery) (int, error) {
	frame, err := Compose(values, battery, len(dst))
	if err != nil {
		return 0, err
	}
	return copy(dst, frame), nil
}

// writeGroup emits a group header, its fields, and back-patches the length.
func (w *frameWriter) writeGroup(id uint16, fields []Value) error {
	header, err := w.reserve(GroupHeaderSize)
	if err != nil {
		return err
	}
	header[0] = byte(id)
	header[1] = byte(id >> 8)
	start := w.offset()

	for _, v := range fields {
		length := w.offset() - start
		if length+FieldSize(v) > MaxGroupLength {
			return fmt.Errorf("field %d (%s): %w: group length %d exceeds %d",
				v.id, v.kind, ErrCapacityExceeded, length+FieldSize(v), MaxGroupLength)
		}
		if err := w.packField(v.Child(), v); err != nil {
			return err
		}
	}

	// header may be stale after append reallocated; index the buffer instead
	w.buf[start-1] = uint8(w.offset() - start)
	return nil
}

// FrameSize returns the exact length of the frame Compose would produce for
// the given input, without encoding it.
func FrameSize(values []Value, battery *Battery) int {
	size := 0
	if !battery.empty() {
		size += GroupHeaderSize
		for _, v := range battery.values() {
			size += FieldSize(v)
		}
	}
	plan := planGroups(values)
	size += len(plan.order) * GroupHeaderSize
	for _, v := range values {
		size += FieldSize(v)
	}
	return size
}

// Encoder encodes readings into frames bounded by a device maximum length.
type Encoder struct {
	maxLength int
}

// NewEncoder creates an encoder for frames of at most maxLength bytes
func NewEncoder(maxLength int) *Encoder {
	return &Encoder{maxLength: maxLength}
}

// MaxLength returns the encoder's frame limit
func (e *Encoder) MaxLength() int {
	return e.maxLength
}

// Encode encodes readings to wire format
func (e *Encoder) Encode(r *Readings) ([]byte, error) {
	if r == nil {
		return Compose(nil, nil, e.maxLength)
	}
	return Compose(r.Values, r.Battery, e.maxLength)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package snapframe

import (
	"encoding/binary"
	"fmt"
)

// Group is one decoded group of a frame. Fields of a custom group carry their
// full field id; fields of the battery group carry their child id.
type Group struct {
	ID     uint16
	Length uint8
	Fields []Value
}

// IsBattery returns true for the battery telemetry group
func (g *Group) IsBattery() bool {
	return g.ID == BatteryGroupID
}

// IsCustom returns true for one of the 16 custom groups
func (g *Group) IsCustom() bool {
	return g.ID >= CustomGroupBase
}

// Index returns the custom group index (0-15)
func (g *Group) Index() uint8 {
	return uint8(g.ID - CustomGroupBase)
}

// Frame is a decoded frame
type Frame struct {
	Groups []Group
	Size   int
}

// Readings reconstructs the encoder input from a decoded frame
func (f *Frame) Readings() *Readings {
	r := &Readings{}
	for i := range f.Groups {
		g := &f.Groups[i]
		if g.IsBattery() {
			r.Battery = batteryFromFields(r.Battery, g.Fields)
			continue
		}
		r.Values = append(r.Values, g.Fields...)
	}
	return r
}

func batteryFromFields(b *Battery, fields []Value) *Battery {
	for _, v := range fields {
		switch {
		case v.id == BatteryLevelChild && v.kind == KindUint8:
			if b == nil {
				b = &Battery{}
			}
			level := uint8(v.bits)
			b.Level = &level
		case v.id == BatteryChargingChild && v.kind == KindBool:
			if b == nil {
				b = &Battery{}
			}
			charging := v.Bool()
			b.Charging = &charging
		}
	}
	return b
}

// Decode decodes a frame straight into readings
func Decode(data []byte) (*Readings, error) {
	f, err := DecodeFrame(data)
	if err != nil {
		return nil, err
	}
	return f.Readings(), nil
}

// DecodeFrame walks a frame group by group: group header, then fields
// (header byte, tag, fixed or variable width, value) until the group length
// is consumed. Any structural inconsistency fails with ErrMalformedFrame.
func DecodeFrame(data []byte) (*Frame, error) {
	f := &Frame{Size: len(data)}
	offset := 0

	for offset < len(data) {
		if len(data)-offset < GroupHeaderSize {
			return nil, fmt.Errorf("%w: truncated group header at offset %d", ErrMalformedFrame, offset)
		}
		id := binary.LittleEndian.Uint16(data[offset:])
		length := int(data[offset+GroupIDSize])
		offset += GroupHeaderSize

		if id != BatteryGroupID && id < CustomGroupBase {
			return nil, fmt.Errorf("%w: unknown group id 0x%04X at offset %d", ErrMalformedFrame, id, offset-GroupHeaderSize)
		}
		if offset+length > len(data) {
			return nil, fmt.Errorf("%w: group 0x%04X length %d overruns frame (%d bytes left)",
				ErrMalformedFrame, id, length, len(data)-offset)
		}

		g := Group{ID: id, Length: uint8(length)}
		fields, err := decodeFields(&g, data[offset:offset+length])
		if err != nil {
			return nil, fmt.Errorf("group 0x%04X: %w", id, err)
		}
		g.Fields = fields
		f.Groups = append(f.Groups, g)
		offset += length
	}

	return f, nil
}

func decodeFields(g *Group, body []byte) ([]Value, error) {
	var fields []Value
	pos := 0
	for pos < len(body) {
		header := body[pos]
		kind := Kind(header & tagMask)
		child := header >> childShift
		if !kind.Valid() {
			return nil, fmt.Errorf("%w: unknown type tag %d at group offset %d", ErrMalformedFrame, uint8(kind), pos)
		}
		pos += FieldHeaderSize

		id := child
		if g.IsCustom() {
			id = g.Index()*ChildsPerGroup + child
		}

		if kind == KindArray {
			if pos+ArrayLengthSize > len(body) {
				return nil, fmt.Errorf("%w: missing array length for field %d", ErrMalformedFrame, id)
			}
			n := int(body[pos])
			pos += ArrayLengthSize
			if pos+n > len(body) {
				return nil, fmt.Errorf("%w: array field %d needs %d bytes, %d left in group", ErrMalformedFrame, id, n, len(body)-pos)
			}
			v, _ := NewArray(id, body[pos:pos+n])
			fields = append(fields, v)
			pos += n
			continue
		}

		width := kind.Width()
		if pos+width > len(body) {
			return nil, fmt.Errorf("%w: %s field %d needs %d bytes, %d left in group", ErrMalformedFrame, kind, id, width, len(body)-pos)
		}
		var raw uint64
		for i := 0; i < width; i++ {
			raw |= uint64(body[pos+i]) << (8 * i)
		}
		fields = append(fields, valueFromBits(id, kind, raw))
		pos += width
	}
	return fields, nil
}

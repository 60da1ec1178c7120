// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package snapframe

import (
	"bytes"
	"fmt"
	"math"
	"strings"
)

// Kind identifies the type of a sensor value. The numeric value of a Kind is
// its wire type tag.
type Kind uint8

// Value kinds and their wire tags
const (
	KindArray   Kind = 0
	KindFloat64 Kind = 1
	KindFloat32 Kind = 2
	KindBool    Kind = 3
	KindInt8    Kind = 4
	KindUint8   Kind = 5
	KindInt16   Kind = 6
	KindUint16  Kind = 7
	KindInt32   Kind = 8
	KindUint32  Kind = 9

	kindCount = 10
)

var kindNames = [kindCount]string{
	KindArray:   "Array",
	KindFloat64: "F64",
	KindFloat32: "F32",
	KindBool:    "Bool",
	KindInt8:    "I8",
	KindUint8:   "U8",
	KindInt16:   "I16",
	KindUint16:  "U16",
	KindInt32:   "I32",
	KindUint32:  "U32",
}

var kindAliases = map[string]Kind{
	"array":  KindArray,
	"bytes":  KindArray,
	"f64":    KindFloat64,
	"double": KindFloat64,
	"f32":    KindFloat32,
	"float":  KindFloat32,
	"bool":   KindBool,
	"i8":     KindInt8,
	"int8":   KindInt8,
	"u8":     KindUint8,
	"uint8":  KindUint8,
	"i16":    KindInt16,
	"int16":  KindInt16,
	"u16":    KindUint16,
	"uint16": KindUint16,
	"i32":    KindInt32,
	"int32":  KindInt32,
	"u32":    KindUint32,
	"uint32": KindUint32,
}

// ParseKind resolves a manifest kind name such as "U16", "float" or "bytes".
func ParseKind(name string) (Kind, error) {
	k, ok := kindAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown kind %q", name)
	}
	return k, nil
}

// Valid reports whether k is a known kind
func (k Kind) Valid() bool {
	return k < kindCount
}

// String returns the manifest name of the kind
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Width returns the number of value bytes for fixed-width kinds, and 0 for
// KindArray whose width depends on its payload.
func (k Kind) Width() int {
	switch k {
	case KindBool, KindInt8, KindUint8:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindUint32, KindFloat32:
		return 4
	case KindFloat64:
		return 8
	}
	return 0
}

func (k Kind) signed() bool {
	return k == KindInt8 || k == KindInt16 || k == KindInt32
}

func (k Kind) float() bool {
	return k == KindFloat32 || k == KindFloat64
}

// Value is a single typed sensor reading keyed by its field id.
// Values are immutable once constructed.
type Value struct {
	id   uint8
	kind Kind
	bits uint64 // raw bit pattern of fixed-width kinds, sign extended
	data []byte // KindArray payload
}

// NewBool creates a Bool value
func NewBool(id uint8, v bool) Value {
	var bits uint64
	if v {
		bits = 1
	}
	return Value{id: id, kind: KindBool, bits: bits}
}

// NewInt8 creates an Int8 value
func NewInt8(id uint8, v int8) Value {
	return Value{id: id, kind: KindInt8, bits: uint64(int64(v))}
}

// NewUint8 creates a UInt8 value
func NewUint8(id uint8, v uint8) Value {
	return Value{id: id, kind: KindUint8, bits: uint64(v)}
}

// NewInt16 creates an Int16 value
func NewInt16(id uint8, v int16) Value {
	return Value{id: id, kind: KindInt16, bits: uint64(int64(v))}
}

// NewUint16 creates a UInt16 value
func NewUint16(id uint8, v uint16) Value {
	return Value{id: id, kind: KindUint16, bits: uint64(v)}
}

// NewInt32 creates an Int32 value
func NewInt32(id uint8, v int32) Value {
	return Value{id: id, kind: KindInt32, bits: uint64(int64(v))}
}

// NewUint32 creates a UInt32 value
func NewUint32(id uint8, v uint32) Value {
	return Value{id: id, kind: KindUint32, bits: uint64(v)}
}

// NewFloat32 creates a Float32 value, packed as its IEEE-754 bit pattern
func NewFloat32(id uint8, v float32) Value {
	return Value{id: id, kind: KindFloat32, bits: uint64(math.Float32bits(v))}
}

// NewFloat64 creates a Float64 value, packed as its IEEE-754 bit pattern
func NewFloat64(id uint8, v float64) Value {
	return Value{id: id, kind: KindFloat64, bits: math.Float64bits(v)}
}

// NewArray creates a byte array value. The payload is copied.
func NewArray(id uint8, data []byte) (Value, error) {
	if len(data) > MaxArrayLength {
		return Value{}, fmt.Errorf("%w: field %d: array length %d exceeds %d", ErrInvalidValue, id, len(data), MaxArrayLength)
	}
	return Value{id: id, kind: KindArray, data: bytes.Clone(data)}, nil
}

// NewDeclaredArray creates a byte array value whose declared length must
// match the supplied payload.
func NewDeclaredArray(id uint8, declared int, data []byte) (Value, error) {
	if declared != len(data) {
		return Value{}, fmt.Errorf("%w: field %d: declared array length %d, got %d bytes", ErrInvalidValue, id, declared, len(data))
	}
	return NewArray(id, data)
}

// NewValue validates a (field id, kind, raw value) triple and builds a Value.
//
// Integer kinds accept any Go integer type, or an integral float, within the
// kind's range. Float kinds accept floats and integers. Bool accepts bool or
// the integers 0 and 1. Array accepts []byte. Anything else fails with
// ErrInvalidValue.
func NewValue(id int, kind Kind, raw any) (Value, error) {
	if id < 0 || id > MaxFieldID {
		return Value{}, fmt.Errorf("%w: field id %d out of range 0-%d", ErrInvalidValue, id, MaxFieldID)
	}
	fid := uint8(id)

	switch kind {
	case KindArray:
		data, ok := raw.([]byte)
		if !ok {
			return Value{}, mismatch(id, kind, raw)
		}
		return NewArray(fid, data)

	case KindBool:
		switch v := raw.(type) {
		case bool:
			return NewBool(fid, v), nil
		}
		if n, ok := asInt(raw); ok && (n == 0 || n == 1) {
			return NewBool(fid, n == 1), nil
		}
		return Value{}, mismatch(id, kind, raw)

	case KindFloat32:
		f, ok := asFloat(raw)
		if !ok {
			return Value{}, mismatch(id, kind, raw)
		}
		if !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
			return Value{}, fmt.Errorf("%w: field %d: %v overflows F32", ErrInvalidValue, id, f)
		}
		return NewFloat32(fid, float32(f)), nil

	case KindFloat64:
		f, ok := asFloat(raw)
		if !ok {
			return Value{}, mismatch(id, kind, raw)
		}
		return NewFloat64(fid, f), nil

	case KindInt8, KindInt16, KindInt32:
		n, ok := asInt(raw)
		if !ok {
			return Value{}, mismatch(id, kind, raw)
		}
		bits := uint(kind.Width() * 8)
		lo, hi := -(int64(1) << (bits - 1)), int64(1)<<(bits-1)-1
		if n < lo || n > hi {
			return Value{}, fmt.Errorf("%w: field %d: %d out of %s range", ErrInvalidValue, id, n, kind)
		}
		return Value{id: fid, kind: kind, bits: uint64(n)}, nil

	case KindUint8, KindUint16, KindUint32:
		n, ok := asUint(raw)
		if !ok {
			return Value{}, mismatch(id, kind, raw)
		}
		if n > uint64(1)<<uint(kind.Width()*8)-1 {
			return Value{}, fmt.Errorf("%w: field %d: %d out of %s range", ErrInvalidValue, id, n, kind)
		}
		return Value{id: fid, kind: kind, bits: n}, nil
	}

	return Value{}, fmt.Errorf("%w: field %d: unknown kind %d", ErrInvalidValue, id, uint8(kind))
}

func mismatch(id int, kind Kind, raw any) error {
	return fmt.Errorf("%w: field %d: %T is not a valid %s value", ErrInvalidValue, id, raw, kind)
}

// asInt converts integer-like raw values, including integral floats
func asInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), uint64(v) <= math.MaxInt64
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), v <= math.MaxInt64
	case float32:
		return asInt(float64(v))
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}

func asUint(raw any) (uint64, bool) {
	switch v := raw.(type) {
	case uint:
		return uint64(v), true
	case uint64:
		return v, true
	case float64:
		if v >= 0 && v == math.Trunc(v) && v < math.MaxUint64 {
			return uint64(v), true
		}
		return 0, false
	}
	n, ok := asInt(raw)
	if !ok || n < 0 {
		return 0, false
	}
	return uint64(n), true
}

func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case uint64:
		return float64(v), true
	case uint:
		return float64(v), true
	}
	n, ok := asInt(raw)
	if !ok {
		return 0, false
	}
	return float64(n), true
}

// ID returns the field id
func (v Value) ID() uint8 { return v.id }

// Kind returns the value kind
func (v Value) Kind() Kind { return v.kind }

// Group returns the custom group index (field id / 16)
func (v Value) Group() uint8 { return v.id / ChildsPerGroup }

// Child returns the child id within the group (field id % 16)
func (v Value) Child() uint8 { return v.id % ChildsPerGroup }

// Bool returns the value of a Bool, or whether an integer value is non-zero
func (v Value) Bool() bool {
	return v.bits != 0
}

// Int returns the value of an integer kind as int64
func (v Value) Int() int64 {
	return int64(v.bits)
}

// Uint returns the value of an unsigned kind as uint64
func (v Value) Uint() uint64 {
	return v.bits
}

// Float returns the value of a float kind as float64
func (v Value) Float() float64 {
	if v.kind == KindFloat32 {
		return float64(math.Float32frombits(uint32(v.bits)))
	}
	return math.Float64frombits(v.bits)
}

// Bytes returns the array payload. The returned slice must not be modified.
func (v Value) Bytes() []byte {
	return v.data
}

// Interface returns the value as its natural Go type
func (v Value) Interface() any {
	switch v.kind {
	case KindArray:
		return bytes.Clone(v.data)
	case KindFloat64:
		return math.Float64frombits(v.bits)
	case KindFloat32:
		return math.Float32frombits(uint32(v.bits))
	case KindBool:
		return v.bits != 0
	case KindInt8:
		return int8(v.bits)
	case KindUint8:
		return uint8(v.bits)
	case KindInt16:
		return int16(v.bits)
	case KindUint16:
		return uint16(v.bits)
	case KindInt32:
		return int32(v.bits)
	case KindUint32:
		return uint32(v.bits)
	}
	return nil
}

// Equal reports whether two values have the same id, kind and bit pattern.
// Floats compare by bits, so a NaN equals an identical NaN.
func (v Value) Equal(o Value) bool {
	return v.id == o.id && v.kind == o.kind && v.bits == o.bits && bytes.Equal(v.data, o.data)
}

// String formats the value for logs and dumps
func (v Value) String() string {
	return fmt.Sprintf("#%d %s=%s", v.id, v.kind, v.formatValue())
}

func (v Value) formatValue() string {
	switch {
	case v.kind == KindArray:
		return fmt.Sprintf("[% X]", v.data)
	case v.kind.float():
		return fmt.Sprintf("%g", v.Float())
	case v.kind == KindBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case v.kind.signed():
		return fmt.Sprintf("%d", v.Int())
	}
	return fmt.Sprintf("%d", v.Uint())
}

// valueFromBits rebuilds a fixed-width value from its little-endian wire
// bits, sign extending signed kinds and normalizing bools to 0/1.
func valueFromBits(id uint8, kind Kind, raw uint64) Value {
	switch kind {
	case KindInt8:
		raw = uint64(int64(int8(raw)))
	case KindInt16:
		raw = uint64(int64(int16(raw)))
	case KindInt32:
		raw = uint64(int64(int32(raw)))
	case KindBool:
		if raw != 0 {
			raw = 1
		}
	}
	return Value{id: id, kind: kind, bits: raw}
}

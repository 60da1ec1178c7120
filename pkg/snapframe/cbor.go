// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package snapframe

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// A reading set is the CBOR interchange form of Readings:
//
//	[battery_level / null, charging / null, [[field_id, tag, value], ...]]
//
// Field order is preserved. Floats keep their width and exact bit pattern.

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		ShortestFloat: cbor.ShortestFloatNone,
		NaNConvert:    cbor.NaNConvertNone,
		InfConvert:    cbor.InfConvertNone,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthAllowed,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

type readingSet struct {
	_        struct{} `cbor:",toarray"`
	Level    *uint8
	Charging *bool
	Fields   []readingField
}

type readingField struct {
	_     struct{} `cbor:",toarray"`
	ID    uint8
	Tag   uint8
	Value interface{}
}

// MarshalReadings encodes readings as a CBOR reading set
func MarshalReadings(r *Readings) ([]byte, error) {
	set := readingSet{Fields: []readingField{}}
	if r != nil {
		if r.Battery != nil {
			set.Level = r.Battery.Level
			set.Charging = r.Battery.Charging
		}
		for _, v := range r.Values {
			value := v.Interface()
			if v.kind == KindArray {
				// a nil slice would encode as null
				value = append([]byte{}, v.data...)
			}
			set.Fields = append(set.Fields, readingField{ID: v.id, Tag: uint8(v.kind), Value: value})
		}
	}

	data, err := encMode.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reading set: %w", err)
	}
	return data, nil
}

// UnmarshalReadings decodes a CBOR reading set, validating every value
// against its tag.
func UnmarshalReadings(data []byte) (*Readings, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty CBOR reading set")
	}

	var set readingSet
	if err := decMode.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to decode CBOR reading set: %w", err)
	}

	r := &Readings{}
	if set.Level != nil || set.Charging != nil {
		r.Battery = &Battery{Level: set.Level, Charging: set.Charging}
		if err := r.Battery.validate(); err != nil {
			return nil, err
		}
	}

	for i, f := range set.Fields {
		v, err := NewValue(int(f.ID), Kind(f.Tag), f.Value)
		if err != nil {
			return nil, fmt.Errorf("reading %d: %w", i, err)
		}
		r.Values = append(r.Values, v)
	}
	return r, nil
}

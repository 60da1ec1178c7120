// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Thermoquad/snapframe/pkg/snapframe"
	"gopkg.in/yaml.v3"
)

// ReadingsFile is the YAML form of one set of readings. Values are keyed by
// manifest field name.
type ReadingsFile struct {
	Battery  *int                   `yaml:"battery"`
	Charging *bool                  `yaml:"charging"`
	Values   map[string]interface{} `yaml:"values"`
}

// LoadReadings reads a readings file for the manifest. Files ending in .cbor
// hold a CBOR reading set; anything else is YAML.
func LoadReadings(path string, m *Manifest) (*snapframe.Readings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read readings: %w", err)
	}

	var r *snapframe.Readings
	if strings.EqualFold(filepath.Ext(path), ".cbor") {
		r, err = CheckReadings(data, m)
	} else {
		r, err = ParseReadings(data, m)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// ParseReadings converts YAML readings into codec input. Values are emitted
// in manifest order; fields without a value are skipped.
func ParseReadings(data []byte, m *Manifest) (*snapframe.Readings, error) {
	var rf ReadingsFile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse readings: %w", err)
	}

	return rf.Build(m)
}

// Build resolves the readings against the manifest
func (rf *ReadingsFile) Build(m *Manifest) (*snapframe.Readings, error) {
	r := &snapframe.Readings{}

	if rf.Battery != nil || rf.Charging != nil {
		b := &snapframe.Battery{}
		if rf.Battery != nil {
			if !m.Battery {
				return nil, fmt.Errorf("battery level given but not enabled in manifest")
			}
			if *rf.Battery < 0 || *rf.Battery > snapframe.MaxBatteryLevel {
				return nil, fmt.Errorf("%w: battery level %d out of range 0-%d",
					snapframe.ErrInvalidValue, *rf.Battery, snapframe.MaxBatteryLevel)
			}
			level := uint8(*rf.Battery)
			b.Level = &level
		}
		if rf.Charging != nil {
			if !m.Charging {
				return nil, fmt.Errorf("charging state given but not enabled in manifest")
			}
			b.Charging = rf.Charging
		}
		r.Battery = b
	}

	for name := range rf.Values {
		if _, ok := m.Field(name); !ok {
			return nil, fmt.Errorf("unknown field %q", name)
		}
	}

	for _, f := range m.Fields {
		raw, ok := rf.Values[f.Name]
		if !ok || raw == nil {
			continue
		}
		v, err := f.value(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		r.Values = append(r.Values, v)
	}

	return r, nil
}

// value converts a YAML scalar or list into a typed value
func (f FieldConfig) value(raw interface{}) (snapframe.Value, error) {
	kind := f.ValueKind()
	if kind != snapframe.KindArray {
		return snapframe.NewValue(f.ID, kind, raw)
	}

	data, err := arrayBytes(raw)
	if err != nil {
		return snapframe.Value{}, err
	}
	return snapframe.NewDeclaredArray(uint8(f.ID), f.Length, data)
}

// arrayBytes accepts a list of byte values or a hex string
func arrayBytes(raw interface{}) ([]byte, error) {
	switch v := raw.(type) {
	case string:
		data, err := hex.DecodeString(strings.ReplaceAll(v, " ", ""))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid hex array: %v", snapframe.ErrInvalidValue, err)
		}
		return data, nil
	case []interface{}:
		data := make([]byte, len(v))
		for i, item := range v {
			n, ok := item.(int)
			if !ok || n < 0 || n > 0xFF {
				return nil, fmt.Errorf("%w: array element %d (%v) is not a byte", snapframe.ErrInvalidValue, i, item)
			}
			data[i] = byte(n)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %T is not a byte array", snapframe.ErrInvalidValue, raw)
}

// CheckReadings decodes a CBOR reading set and verifies every field against
// the manifest's id and kind.
func CheckReadings(data []byte, m *Manifest) (*snapframe.Readings, error) {
	r, err := snapframe.UnmarshalReadings(data)
	if err != nil {
		return nil, err
	}

	if r.Battery != nil {
		if r.Battery.Level != nil && !m.Battery {
			return nil, fmt.Errorf("battery level given but not enabled in manifest")
		}
		if r.Battery.Charging != nil && !m.Charging {
			return nil, fmt.Errorf("charging state given but not enabled in manifest")
		}
	}

	for _, v := range r.Values {
		f, ok := m.FieldByID(v.ID())
		if !ok {
			return nil, fmt.Errorf("field id %d not in manifest", v.ID())
		}
		if f.ValueKind() != v.Kind() {
			return nil, fmt.Errorf("%w: field %q is %s, reading set has %s",
				snapframe.ErrInvalidValue, f.Name, f.ValueKind(), v.Kind())
		}
		if v.Kind() == snapframe.KindArray && len(v.Bytes()) != f.Length {
			return nil, fmt.Errorf("%w: field %q: declared array length %d, got %d bytes",
				snapframe.ErrInvalidValue, f.Name, f.Length, len(v.Bytes()))
		}
	}
	return r, nil
}

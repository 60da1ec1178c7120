// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads field manifests and readings files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Thermoquad/snapframe/pkg/snapframe"
	"gopkg.in/yaml.v3"
)

// Manifest describes the sensor fields a device reports.
// It is the contract shared by the encoder, the decoder and the firmware.
type Manifest struct {
	Device    string        `yaml:"device"`
	MaxLength int           `yaml:"max_length"`
	Battery   bool          `yaml:"battery"`
	Charging  bool          `yaml:"charging"`
	Fields    []FieldConfig `yaml:"fields"`
}

// ---- FIELD ----

type FieldConfig struct {
	ID     int    `yaml:"id"`
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"`
	Unit   string `yaml:"unit"`
	Length int    `yaml:"length"` // arrays only
}

// ValueKind returns the resolved kind. Only meaningful after Validate.
func (f FieldConfig) ValueKind() snapframe.Kind {
	k, _ := snapframe.ParseKind(f.Kind)
	return k
}

// Load reads, normalizes and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a manifest from YAML, then normalizes and validates it.
// Unknown keys are rejected.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest is empty")
		}
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	Normalize(&m)
	if err := Validate(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Field looks up a field by name
func (m *Manifest) Field(name string) (FieldConfig, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldConfig{}, false
}

// FieldByID looks up a field by id
func (m *Manifest) FieldByID(id uint8) (FieldConfig, bool) {
	for _, f := range m.Fields {
		if f.ID == int(id) {
			return f, true
		}
	}
	return FieldConfig{}, false
}

// FieldName implements snapframe.FieldNamer
func (m *Manifest) FieldName(id uint8) (string, string, bool) {
	f, ok := m.FieldByID(id)
	if !ok {
		return "", "", false
	}
	return f.Name, f.Unit, true
}

// Encoder returns an encoder bounded by the manifest's max length
func (m *Manifest) Encoder() *snapframe.Encoder {
	return snapframe.NewEncoder(m.MaxLength)
}

// WorstCaseSize returns the frame size when every declared field and the
// enabled battery sub-fields are present.
func (m *Manifest) WorstCaseSize() int {
	values := make([]snapframe.Value, 0, len(m.Fields))
	for _, f := range m.Fields {
		values = append(values, f.zero())
	}

	var battery *snapframe.Battery
	if m.Battery || m.Charging {
		battery = &snapframe.Battery{}
		if m.Battery {
			level := uint8(0)
			battery.Level = &level
		}
		if m.Charging {
			charging := false
			battery.Charging = &charging
		}
	}
	return snapframe.FrameSize(values, battery)
}

// WireSize returns the number of bytes the field occupies in a frame
func (f FieldConfig) WireSize() int {
	return snapframe.FieldSize(f.zero())
}

// zero returns a placeholder value with the field's wire size
func (f FieldConfig) zero() snapframe.Value {
	kind := f.ValueKind()
	if kind == snapframe.KindArray {
		v, _ := snapframe.NewArray(uint8(f.ID), make([]byte, f.Length))
		return v
	}
	v, _ := snapframe.NewValue(f.ID, kind, 0)
	return v
}

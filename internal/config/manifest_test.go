// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Thermoquad/snapframe/internal/config"
	"github.com/Thermoquad/snapframe/pkg/snapframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const weatherManifest = `
device: weather-node
max_length: 64
battery: true
charging: true
fields:
  - id: 1
    name: temperature
    kind: f32
    unit: C
  - id: 2
    name: humidity
    kind: U8
    unit: "%"
  - id: 17
    name: pressure
    kind: uint16
    unit: hPa
  - id: 32
    name: serial
    kind: bytes
    length: 4
`

// TestParse_Manifest tests parsing and normalization of a full manifest.
func TestParse_Manifest(t *testing.T) {
	m, err := config.Parse([]byte(weatherManifest))
	require.NoError(t, err)

	assert.Equal(t, "weather-node", m.Device)
	assert.Equal(t, 64, m.MaxLength)
	assert.True(t, m.Battery)
	assert.True(t, m.Charging)
	require.Len(t, m.Fields, 4)

	// kinds are canonicalized
	assert.Equal(t, "F32", m.Fields[0].Kind)
	assert.Equal(t, "U16", m.Fields[2].Kind)
	assert.Equal(t, "Array", m.Fields[3].Kind)
	assert.Equal(t, snapframe.KindArray, m.Fields[3].ValueKind())

	f, ok := m.Field("pressure")
	require.True(t, ok)
	assert.Equal(t, 17, f.ID)

	name, unit, ok := m.FieldName(2)
	require.True(t, ok)
	assert.Equal(t, "humidity", name)
	assert.Equal(t, "%", unit)

	_, _, ok = m.FieldName(99)
	assert.False(t, ok)
}

// TestParse_DefaultMaxLength tests that max_length defaults to the device limit.
func TestParse_DefaultMaxLength(t *testing.T) {
	m, err := config.Parse([]byte("fields:\n  - {id: 0, name: a, kind: bool}\n"))
	require.NoError(t, err)
	assert.Equal(t, snapframe.DefaultMaxLength, m.MaxLength)
	assert.Equal(t, snapframe.DefaultMaxLength, m.Encoder().MaxLength())
}

// TestParse_Invalid tests manifest validation failures.
func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		errMsg   string
	}{
		{"empty", "", "empty"},
		{"unknown key", "device: x\ncolour: red\n", "colour"},
		{"max length too large", "max_length: 70000\n", "max_length"},
		{"negative max length", "max_length: -1\n", "max_length"},
		{"id out of range", "fields:\n  - {id: 256, name: a, kind: u8}\n", "out of range"},
		{"duplicate id", "fields:\n  - {id: 3, name: a, kind: u8}\n  - {id: 3, name: b, kind: u8}\n", "already used"},
		{"duplicate name", "fields:\n  - {id: 3, name: a, kind: u8}\n  - {id: 4, name: a, kind: u8}\n", "duplicate name"},
		{"missing name", "fields:\n  - {id: 3, kind: u8}\n", "name is required"},
		{"bad identifier", "fields:\n  - {id: 3, name: 2fast, kind: u8}\n", "C identifier"},
		{"reserved name", "fields:\n  - {id: 3, name: offset, kind: u8}\n", "reserved"},
		{"unknown kind", "fields:\n  - {id: 3, name: a, kind: u64}\n", "unknown kind"},
		{"array without length", "fields:\n  - {id: 3, name: a, kind: array}\n", "array length"},
		{"array too long", "fields:\n  - {id: 3, name: a, kind: array, length: 256}\n", "array length"},
		{"length on scalar", "fields:\n  - {id: 3, name: a, kind: u8, length: 2}\n", "only valid for arrays"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.manifest))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

// TestLoad_File tests loading a manifest from disk.
func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(weatherManifest), 0o644))

	m, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "weather-node", m.Device)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

// TestWorstCaseSize tests the full-frame size estimate.
func TestWorstCaseSize(t *testing.T) {
	m, err := config.Parse([]byte(weatherManifest))
	require.NoError(t, err)

	// battery 3+2+2, group 0: 3+5+2, group 1: 3+3, group 2: 3+6
	assert.Equal(t, 32, m.WorstCaseSize())

	m.Battery, m.Charging = false, false
	assert.Equal(t, 25, m.WorstCaseSize())
}

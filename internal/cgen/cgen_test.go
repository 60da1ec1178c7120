// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cgen_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Thermoquad/snapframe/internal/cgen"
	"github.com/Thermoquad/snapframe/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifest = `
device: soil-probe
max_length: 51
battery: true
charging: true
fields:
  - {id: 17, name: moisture, kind: u16}
  - {id: 1, name: temperature, kind: f32}
  - {id: 18, name: salinity, kind: i32}
  - {id: 2, name: raining, kind: bool}
  - {id: 255, name: tag, kind: array, length: 8}
  - {id: 3, name: depth, kind: f64}
`

func generate(t *testing.T, src string) (string, string) {
	t.Helper()
	m, err := config.Parse([]byte(src))
	require.NoError(t, err)

	files, err := cgen.Generate(m)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, cgen.HeaderName, files[0].Name)
	assert.Equal(t, cgen.SourceName, files[1].Name)
	return string(files[0].Content), string(files[1].Content)
}

// TestGenerate_Header tests the generated prototype and enums.
func TestGenerate_Header(t *testing.T) {
	header, _ := generate(t, manifest)

	assert.Contains(t, header, "Generated by snapframe gen for soil-probe")
	assert.Contains(t, header, "#define SENSOR_DATA_MAX_LEN (51)")
	assert.Contains(t, header, "CUSTOM_PARENT_ID0 = 0xFFF0,")
	assert.Contains(t, header, "CUSTOM_PARENT_IDF = 0xFFFF,")
	assert.Contains(t, header, "TYPE_U32 = 9,")
	assert.Contains(t, header,
		"int32_t sensor_data_packet(uint8_t *output, uint16_t output_max, uint8_t battery, bool charging, "+
			"uint16_t moisture, float temperature, int32_t salinity, bool raining, "+
			"const uint8_t *tag, uint8_t tag_len, double depth);")
}

// TestGenerate_GroupOrder tests that groups follow first appearance in the manifest.
func TestGenerate_GroupOrder(t *testing.T) {
	_, source := generate(t, manifest)

	battery := strings.Index(source, "/* battery */")
	group1 := strings.Index(source, "/* group 1 */")
	group0 := strings.Index(source, "/* group 0 */")
	group15 := strings.Index(source, "/* group 15 */")
	require.True(t, battery >= 0 && group1 >= 0 && group0 >= 0 && group15 >= 0, source)
	assert.Less(t, battery, group1)
	assert.Less(t, group1, group0)
	assert.Less(t, group0, group15)

	// fields keep manifest order within their group
	moisture := strings.Index(source, "/* moisture: U16 */")
	salinity := strings.Index(source, "/* salinity: I32 */")
	temperature := strings.Index(source, "/* temperature: F32 */")
	raining := strings.Index(source, "/* raining: Bool */")
	depth := strings.Index(source, "/* depth: F64 */")
	assert.Less(t, moisture, salinity)
	assert.Less(t, salinity, temperature)
	assert.Less(t, temperature, raining)
	assert.Less(t, raining, depth)
}

// TestGenerate_FieldCalls tests the per-kind packer calls.
func TestGenerate_FieldCalls(t *testing.T) {
	_, source := generate(t, manifest)

	for _, call := range []string{
		"put_scalar(&p, 1, TYPE_U16, (uint64_t)moisture, 2)",
		"put_f32(&p, 1, temperature)",
		"put_scalar(&p, 2, TYPE_I32, (uint64_t)(int64_t)salinity, 4)",
		"put_scalar(&p, 2, TYPE_BOOL, raining ? 1u : 0u, 1)",
		"put_array(&p, 15, tag, tag_len)",
		"put_f64(&p, 3, depth)",
		"put_scalar(&p, BATTERY_LEVEL_CHILD_ID, TYPE_U8, battery, 1)",
		"start = group_begin(&p, CUSTOM_PARENT_IDF);",
	} {
		assert.Contains(t, source, call)
	}

	// one centralized bounds check
	assert.Equal(t, 1, strings.Count(source, "p->offset + n > p->max"))
}

// TestGenerate_NoBattery tests that the battery group is omitted when disabled.
func TestGenerate_NoBattery(t *testing.T) {
	header, source := generate(t, "fields:\n  - {id: 0, name: level, kind: u8}\n")

	assert.Contains(t, header, "sensor_data_packet(uint8_t *output, uint16_t output_max, uint8_t level);")
	assert.NotContains(t, source, "/* battery */")
	assert.NotContains(t, source, "battery > 100")
	assert.Contains(t, source, "/* group 0 */")
}

// TestGenerate_LengthParamCollision tests array length parameter names.
func TestGenerate_LengthParamCollision(t *testing.T) {
	m, err := config.Parse([]byte(`
fields:
  - {id: 0, name: blob, kind: array, length: 2}
  - {id: 1, name: blob_len, kind: u8}
`))
	require.NoError(t, err)

	_, err = cgen.Generate(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collides")
}

// TestWriteFiles tests writing generated files to disk.
func TestWriteFiles(t *testing.T) {
	m, err := config.Parse([]byte(manifest))
	require.NoError(t, err)
	files, err := cgen.Generate(m)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, cgen.WriteFiles(dir, files))

	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(dir, f.Name))
		require.NoError(t, err)
		assert.Equal(t, f.Content, data)
	}
}

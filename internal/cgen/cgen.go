// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package cgen generates the firmware-side C packer for a field manifest.
// The generated sensor_data_packet() emits the same bytes as
// snapframe.Compose for the same readings.
package cgen

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Thermoquad/snapframe/internal/config"
	"github.com/Thermoquad/snapframe/pkg/snapframe"
)

const (
	HeaderName = "sensor_data_packet.h"
	SourceName = "sensor_data_packet.c"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").
	Funcs(template.FuncMap{"join": strings.Join}).
	ParseFS(templateFS, "templates/*.tmpl"))

// File is one generated source file
type File struct {
	Name    string
	Content []byte
}

type cField struct {
	Name  string
	Kind  string
	Child uint8
	Param string // C parameter declaration
	Call  string // packer call, without the error check
}

type cGroup struct {
	Index  uint8
	ID     uint16
	Enum   string
	Fields []cField
}

type cData struct {
	Device    string
	MaxLength int
	Battery   bool
	Charging  bool
	Params    []string
	Groups    []cGroup
	GroupIDs  []cGroup // all 16 custom groups, for the enum
}

// Generate renders the header and source for a validated manifest
func Generate(m *config.Manifest) ([]File, error) {
	data, err := buildData(m)
	if err != nil {
		return nil, err
	}

	files := []File{
		{Name: HeaderName},
		{Name: SourceName},
	}
	for i := range files {
		var buf bytes.Buffer
		if err := templates.ExecuteTemplate(&buf, files[i].Name+".tmpl", data); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", files[i].Name, err)
		}
		files[i].Content = buf.Bytes()
	}
	return files, nil
}

// WriteFiles writes generated files into dir, creating it if needed
func WriteFiles(dir string, files []File) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.Name), f.Content, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
	}
	return nil
}

func buildData(m *config.Manifest) (*cData, error) {
	d := &cData{
		Device:    m.Device,
		MaxLength: m.MaxLength,
		Battery:   m.Battery,
		Charging:  m.Charging,
		Params:    []string{"uint8_t *output", "uint16_t output_max"},
	}
	if m.Battery {
		d.Params = append(d.Params, "uint8_t battery")
	}
	if m.Charging {
		d.Params = append(d.Params, "bool charging")
	}

	for g := 0; g < snapframe.MaxCustomGroups; g++ {
		d.GroupIDs = append(d.GroupIDs, cGroup{
			Index: uint8(g),
			ID:    snapframe.CustomGroupID(uint8(g)),
			Enum:  groupEnum(uint8(g)),
		})
	}

	// groups in order of first appearance, as the encoder plans them
	index := make(map[uint8]int)
	names := make(map[string]bool)
	for _, f := range m.Fields {
		names[f.Name] = true
	}
	for _, f := range m.Fields {
		cf, err := field(f)
		if err != nil {
			return nil, err
		}
		if f.ValueKind() == snapframe.KindArray && names[f.Name+"_len"] {
			return nil, fmt.Errorf("field %q: length parameter %s_len collides with another field", f.Name, f.Name)
		}
		d.Params = append(d.Params, cf.Param)

		g := uint8(f.ID / snapframe.ChildsPerGroup)
		i, ok := index[g]
		if !ok {
			i = len(d.Groups)
			index[g] = i
			d.Groups = append(d.Groups, cGroup{Index: g, ID: snapframe.CustomGroupID(g), Enum: groupEnum(g)})
		}
		d.Groups[i].Fields = append(d.Groups[i].Fields, cf)
	}

	return d, nil
}

func groupEnum(g uint8) string {
	return fmt.Sprintf("CUSTOM_PARENT_ID%X", g)
}

var cTypes = map[snapframe.Kind]string{
	snapframe.KindFloat64: "double",
	snapframe.KindFloat32: "float",
	snapframe.KindBool:    "bool",
	snapframe.KindInt8:    "int8_t",
	snapframe.KindUint8:   "uint8_t",
	snapframe.KindInt16:   "int16_t",
	snapframe.KindUint16:  "uint16_t",
	snapframe.KindInt32:   "int32_t",
	snapframe.KindUint32:  "uint32_t",
}

var tagNames = map[snapframe.Kind]string{
	snapframe.KindArray:   "TYPE_ARRAY",
	snapframe.KindFloat64: "TYPE_F64",
	snapframe.KindFloat32: "TYPE_F32",
	snapframe.KindBool:    "TYPE_BOOL",
	snapframe.KindInt8:    "TYPE_I8",
	snapframe.KindUint8:   "TYPE_U8",
	snapframe.KindInt16:   "TYPE_I16",
	snapframe.KindUint16:  "TYPE_U16",
	snapframe.KindInt32:   "TYPE_I32",
	snapframe.KindUint32:  "TYPE_U32",
}

func field(f config.FieldConfig) (cField, error) {
	kind := f.ValueKind()
	child := uint8(f.ID % snapframe.ChildsPerGroup)
	cf := cField{Name: f.Name, Kind: kind.String(), Child: child}

	switch kind {
	case snapframe.KindArray:
		cf.Param = fmt.Sprintf("const uint8_t *%s, uint8_t %s_len", f.Name, f.Name)
		cf.Call = fmt.Sprintf("put_array(&p, %d, %s, %s_len)", child, f.Name, f.Name)
	case snapframe.KindFloat64:
		cf.Param = "double " + f.Name
		cf.Call = fmt.Sprintf("put_f64(&p, %d, %s)", child, f.Name)
	case snapframe.KindFloat32:
		cf.Param = "float " + f.Name
		cf.Call = fmt.Sprintf("put_f32(&p, %d, %s)", child, f.Name)
	case snapframe.KindBool:
		cf.Param = "bool " + f.Name
		cf.Call = fmt.Sprintf("put_scalar(&p, %d, TYPE_BOOL, %s ? 1u : 0u, 1)", child, f.Name)
	case snapframe.KindInt8, snapframe.KindInt16, snapframe.KindInt32:
		cf.Param = cTypes[kind] + " " + f.Name
		cf.Call = fmt.Sprintf("put_scalar(&p, %d, %s, (uint64_t)(int64_t)%s, %d)", child, tagNames[kind], f.Name, kind.Width())
	case snapframe.KindUint8, snapframe.KindUint16, snapframe.KindUint32:
		cf.Param = cTypes[kind] + " " + f.Name
		cf.Call = fmt.Sprintf("put_scalar(&p, %d, %s, (uint64_t)%s, %d)", child, tagNames[kind], f.Name, kind.Width())
	default:
		return cField{}, fmt.Errorf("field %q: unsupported kind %s", f.Name, kind)
	}
	return cf, nil
}

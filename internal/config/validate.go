// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"fmt"
	"math"
	"regexp"

	"github.com/Thermoquad/snapframe/pkg/snapframe"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// names the generated C packer already uses, plus C keywords
var reservedNames = map[string]bool{
	"battery": true, "charging": true, "output": true, "output_max": true, "offset": true,
	"auto": true, "break": true, "case": true, "char": true, "const": true, "continue": true,
	"default": true, "do": true, "double": true, "else": true, "enum": true, "extern": true,
	"float": true, "for": true, "goto": true, "if": true, "inline": true, "int": true,
	"long": true, "register": true, "restrict": true, "return": true, "short": true,
	"signed": true, "sizeof": true, "static": true, "struct": true, "switch": true,
	"typedef": true, "union": true, "unsigned": true, "void": true, "volatile": true,
	"while": true, "bool": true,
}

// Validate checks manifest correctness.
// It performs declarative validation only and does not mutate the manifest.
func Validate(m *Manifest) error {
	if m.MaxLength < 1 || m.MaxLength > math.MaxUint16 {
		return fmt.Errorf("max_length %d out of range 1-%d", m.MaxLength, math.MaxUint16)
	}

	ids := make(map[int]string)
	names := make(map[string]bool)

	for i, f := range m.Fields {
		where := fmt.Sprintf("field %d", i)
		if f.Name != "" {
			where = fmt.Sprintf("field %q", f.Name)
		}

		if f.ID < 0 || f.ID > snapframe.MaxFieldID {
			return fmt.Errorf("%s: id %d out of range 0-%d", where, f.ID, snapframe.MaxFieldID)
		}
		if other, ok := ids[f.ID]; ok {
			return fmt.Errorf("%s: id %d already used by %q", where, f.ID, other)
		}
		ids[f.ID] = f.Name

		if f.Name == "" {
			return fmt.Errorf("%s: name is required", where)
		}
		if !identifier.MatchString(f.Name) {
			return fmt.Errorf("%s: name must be a C identifier", where)
		}
		if reservedNames[f.Name] {
			return fmt.Errorf("%s: name is reserved", where)
		}
		if names[f.Name] {
			return fmt.Errorf("%s: duplicate name", where)
		}
		names[f.Name] = true

		kind, err := snapframe.ParseKind(f.Kind)
		if err != nil {
			return fmt.Errorf("%s: %w", where, err)
		}

		// ---- ARRAY LENGTH ----

		if kind == snapframe.KindArray {
			if f.Length < 1 || f.Length > snapframe.MaxArrayLength {
				return fmt.Errorf("%s: array length %d out of range 1-%d", where, f.Length, snapframe.MaxArrayLength)
			}
		} else if f.Length != 0 {
			return fmt.Errorf("%s: length is only valid for arrays", where)
		}
	}

	return nil
}

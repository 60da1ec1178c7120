// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"strings"

	"github.com/Thermoquad/snapframe/pkg/snapframe"
)

// Normalize fills defaults and canonicalizes names.
// It runs before Validate and never rejects input.
func Normalize(m *Manifest) {
	if m == nil {
		return
	}

	m.Device = strings.TrimSpace(m.Device)
	if m.MaxLength == 0 {
		m.MaxLength = snapframe.DefaultMaxLength
	}

	for i := range m.Fields {
		f := &m.Fields[i]
		f.Name = strings.TrimSpace(f.Name)
		f.Unit = strings.TrimSpace(f.Unit)

		// canonical kind spelling; unknown kinds are left for Validate
		if k, err := snapframe.ParseKind(f.Kind); err == nil {
			f.Kind = k.String()
		}
	}
}

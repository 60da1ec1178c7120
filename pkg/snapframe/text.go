// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package snapframe

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// ParseFrameText parses a frame written as hex or base64 text.
//
// An explicit "hex:" or "base64:" prefix selects the encoding. Otherwise hex
// is tried first (whitespace, colons and a leading 0x are ignored), then
// standard and URL-safe base64 with or without padding.
func ParseFrameText(s string) ([]byte, error) {
	s = strings.TrimSpace(s)

	switch {
	case strings.HasPrefix(s, "hex:"):
		return parseHex(strings.TrimPrefix(s, "hex:"))
	case strings.HasPrefix(s, "base64:"):
		return parseBase64(strings.TrimPrefix(s, "base64:"))
	}

	if data, err := parseHex(s); err == nil {
		return data, nil
	}
	if data, err := parseBase64(s); err == nil {
		return data, nil
	}
	return nil, fmt.Errorf("frame text %q is neither hex nor base64", s)
}

func parseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', ':', '-':
			return -1
		}
		return r
	}, s)
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex frame: %w", err)
	}
	return data, nil
}

func parseBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if data, err := enc.DecodeString(s); err == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("invalid base64 frame")
}

// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Thermoquad/snapframe/pkg/snapframe"
)

func TestFormatFrameOutput(t *testing.T) {
	frame := []byte{0xF0, 0xFF, 0x02, 0x05, 0x2A}

	tests := []struct {
		format string
		expect string
	}{
		{"hex", "F0FF02052A\n"},
		{"HEX", "F0FF02052A\n"},
		{"base64", "8P8CBSo=\n"},
		{"raw", string(frame)},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := formatFrameOutput(frame, tt.format)
			if err != nil {
				t.Fatalf("formatFrameOutput error: %v", err)
			}
			if string(out) != tt.expect {
				t.Errorf("output = %q, want %q", out, tt.expect)
			}
		})
	}

	if _, err := formatFrameOutput(frame, "octal"); err == nil {
		t.Error("expected error for unknown format")
	}
}

// encoded frame text must parse back to the same bytes
func TestFormatFrameOutput_ParsesBack(t *testing.T) {
	frame := []byte{0x00, 0x00, 0x04, 0x05, 0x50, 0x13, 0x01}
	for _, format := range []string{"hex", "base64"} {
		out, err := formatFrameOutput(frame, format)
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		data, err := snapframe.ParseFrameText(string(out))
		if err != nil {
			t.Fatalf("%s: ParseFrameText error: %v", format, err)
		}
		if !bytes.Equal(data, frame) {
			t.Errorf("%s: parsed % X, want % X", format, data, frame)
		}
	}
}

func TestInspectLine_Statistics(t *testing.T) {
	stats := snapframe.NewStatistics()

	lines := []string{
		"# comment",
		"",
		"F0FF02052A",                  // clean
		"F0FF0205 01 F0FF020502",      // repeated group, duplicate field
		"F0FF05",                      // malformed
		"this is not a frame at all!", // bad text
	}
	for i, line := range lines {
		inspectLine(i+1, line, stats, nil)
	}

	if stats.TotalFrames != 4 {
		t.Errorf("TotalFrames = %d, want 4", stats.TotalFrames)
	}
	if stats.ValidFrames != 1 || stats.AnomalyFrames != 1 {
		t.Errorf("Valid/Anomaly = %d/%d, want 1/1", stats.ValidFrames, stats.AnomalyFrames)
	}
	if stats.DecodeErrors != 1 || stats.ParseErrors != 1 {
		t.Errorf("Decode/Parse = %d/%d, want 1/1", stats.DecodeErrors, stats.ParseErrors)
	}
}

func TestLoadManifest(t *testing.T) {
	saved := manifestPath
	defer func() { manifestPath = saved }()

	manifestPath = ""
	if _, err := loadManifest(true); err == nil {
		t.Error("expected error when the manifest is required but unset")
	}
	m, err := loadManifest(false)
	if err != nil || m != nil {
		t.Errorf("optional manifest: got %v, %v", m, err)
	}

	path := filepath.Join(t.TempDir(), "m.yaml")
	if err := os.WriteFile(path, []byte("fields:\n  - {id: 0, name: level, kind: u8}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	manifestPath = path
	m, err = loadManifest(true)
	if err != nil {
		t.Fatalf("loadManifest error: %v", err)
	}
	if len(m.Fields) != 1 {
		t.Errorf("expected 1 field, got %d", len(m.Fields))
	}
}

func TestSendFrame(t *testing.T) {
	var buf bytes.Buffer
	if err := sendFrame(&buf, []byte{1, 2, 3}); err != nil {
		t.Fatalf("sendFrame error: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{1, 2, 3}) {
		t.Errorf("sink got % X", buf.Bytes())
	}

	if err := sendFrame(shortWriter{}, []byte{1, 2, 3}); err == nil {
		t.Error("expected short write error")
	}
	if err := sendFrame(failWriter{}, []byte{1}); err == nil {
		t.Error("expected write error")
	}
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) { return len(p) - 1, nil }

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, errors.New("port gone") }

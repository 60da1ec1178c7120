// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package snapframe

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Statistics tracks frame statistics over a stream of decoded frames
type Statistics struct {
	StartTime time.Time

	// Counters
	TotalFrames   uint64
	ValidFrames   uint64
	ParseErrors   uint64 // text that was neither hex nor base64
	DecodeErrors  uint64
	AnomalyFrames uint64
	TotalBytes    uint64
	TotalFields   uint64
	LargestFrame  int

	Anomalies map[AnomalyType]uint64
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	return &Statistics{
		StartTime: time.Now(),
		Anomalies: make(map[AnomalyType]uint64),
	}
}

// Update updates statistics based on a frame and its errors.
// f may be nil when decodeErr is set.
func (s *Statistics) Update(f *Frame, decodeErr error, validationErrors []ValidationError) {
	s.TotalFrames++

	if decodeErr != nil {
		if errors.Is(decodeErr, ErrMalformedFrame) {
			s.DecodeErrors++
		} else {
			s.ParseErrors++
		}
		return
	}

	s.TotalBytes += uint64(f.Size)
	if f.Size > s.LargestFrame {
		s.LargestFrame = f.Size
	}
	for i := range f.Groups {
		s.TotalFields += uint64(len(f.Groups[i].Fields))
	}

	if len(validationErrors) == 0 {
		s.ValidFrames++
		return
	}

	s.AnomalyFrames++
	for _, err := range validationErrors {
		s.Anomalies[err.Type]++
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	var validPercent, decodePercent, anomalyPercent float64
	if s.TotalFrames > 0 {
		validPercent = float64(s.ValidFrames) * 100.0 / float64(s.TotalFrames)
		decodePercent = float64(s.DecodeErrors+s.ParseErrors) * 100.0 / float64(s.TotalFrames)
		anomalyPercent = float64(s.AnomalyFrames) * 100.0 / float64(s.TotalFrames)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.1f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Frames:    %8d\n", s.TotalFrames)
	result += fmt.Sprintf("Valid Frames:    %8d (%.1f%%)\n", s.ValidFrames, validPercent)

	if s.DecodeErrors+s.ParseErrors > 0 {
		result += fmt.Sprintf("Decode Errors:   %8d (%.1f%%)\n", s.DecodeErrors+s.ParseErrors, decodePercent)
		if s.ParseErrors > 0 {
			result += fmt.Sprintf("  Bad Text:         %5d\n", s.ParseErrors)
		}
	}
	if s.AnomalyFrames > 0 {
		result += fmt.Sprintf("Anomalous:       %8d (%.1f%%)\n", s.AnomalyFrames, anomalyPercent)
		types := make([]AnomalyType, 0, len(s.Anomalies))
		for t := range s.Anomalies {
			types = append(types, t)
		}
		sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
		for _, t := range types {
			result += fmt.Sprintf("  %-16s %5d\n", t.String()+":", s.Anomalies[t])
		}
	}

	decoded := s.TotalFrames - s.DecodeErrors - s.ParseErrors
	if decoded > 0 {
		result += fmt.Sprintf("Average Size:    %8.1f bytes\n", float64(s.TotalBytes)/float64(decoded))
		result += fmt.Sprintf("Largest Frame:   %8d bytes\n", s.LargestFrame)
		result += fmt.Sprintf("Fields Decoded:  %8d\n", s.TotalFields)
	}
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = Statistics{
		StartTime: time.Now(),
		Anomalies: make(map[AnomalyType]uint64),
	}
}

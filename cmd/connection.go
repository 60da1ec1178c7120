// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

// FrameSink receives encoded frames, e.g. a radio module on a serial port
type FrameSink interface {
	io.Writer
	io.Closer
}

// SerialSink wraps a serial port
type SerialSink struct {
	port serial.Port
}

func (s *SerialSink) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *SerialSink) Close() error {
	return s.port.Close()
}

// OpenSerialSink opens a serial port for writing frames
func OpenSerialSink(portName string, baudRate int) (FrameSink, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}

	return &SerialSink{port: port}, nil
}

// sendFrame writes one complete frame to the sink
func sendFrame(sink io.Writer, frame []byte) error {
	n, err := sink.Write(frame)
	if err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	if n != len(frame) {
		return fmt.Errorf("short write: %d of %d bytes", n, len(frame))
	}
	return nil
}

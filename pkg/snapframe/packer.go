// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package snapframe

import (
	"encoding/binary"
	"fmt"
)

// FieldSize returns the number of bytes a value occupies on the wire:
// 1 header byte plus the value width, or 2 + len for byte arrays.
func FieldSize(v Value) int {
	if v.kind == KindArray {
		return FieldHeaderSize + ArrayLengthSize + len(v.data)
	}
	return FieldHeaderSize + v.kind.Width()
}

// FieldHeader returns the header byte for a child id and kind
func FieldHeader(child uint8, kind Kind) byte {
	return (child&childMask)<<childShift | byte(kind)&tagMask
}

// PackField encodes one value into its tagged wire representation.
// It fails with ErrCapacityExceeded, without producing any bytes, when the
// field needs more than remaining bytes.
func PackField(v Value, remaining int) ([]byte, error) {
	w := newFrameWriter(remaining)
	if err := w.packField(v.Child(), v); err != nil {
		return nil, err
	}
	return w.bytes(), nil
}

// frameWriter accumulates a frame into a buffer bounded by max bytes.
// Every write goes through reserve, so nothing lands past the limit.
type frameWriter struct {
	buf []byte
	max int
}

func newFrameWriter(max int) *frameWriter {
	size := max
	if size > DefaultMaxLength {
		size = DefaultMaxLength
	}
	if size < 0 {
		size = 0
	}
	return &frameWriter{buf: make([]byte, 0, size), max: max}
}

// offset returns the number of bytes committed so far
func (w *frameWriter) offset() int {
	return len(w.buf)
}

func (w *frameWriter) bytes() []byte {
	return w.buf
}

// reserve extends the frame by n bytes and returns them for writing.
// It fails without changing the frame when the limit would be exceeded.
func (w *frameWriter) reserve(n int) ([]byte, error) {
	if n > w.max-len(w.buf) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d (max %d)", ErrCapacityExceeded, n, len(w.buf), w.max)
	}
	off := len(w.buf)
	w.buf = append(w.buf, make([]byte, n)...)
	return w.buf[off : off+n], nil
}

// packField reserves space for v under the given child id and writes it
func (w *frameWriter) packField(child uint8, v Value) error {
	dst, err := w.reserve(FieldSize(v))
	if err != nil {
		return fmt.Errorf("field %d (%s): %w", v.id, v.kind, err)
	}
	putField(dst, child, v)
	return nil
}

// putField writes header and value bytes into dst, which must be exactly
// FieldSize(v) bytes long.
func putField(dst []byte, child uint8, v Value) {
	dst[0] = FieldHeader(child, v.kind)
	body := dst[FieldHeaderSize:]

	switch v.kind.Width() {
	case 0:
		body[0] = uint8(len(v.data))
		copy(body[ArrayLengthSize:], v.data)
	case 1:
		body[0] = uint8(v.bits)
	case 2:
		binary.LittleEndian.PutUint16(body, uint16(v.bits))
	case 4:
		binary.LittleEndian.PutUint32(body, uint32(v.bits))
	case 8:
		binary.LittleEndian.PutUint64(body, v.bits)
	}
}

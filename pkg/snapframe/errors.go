// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package snapframe

import "errors"

var (
	// ErrInvalidValue reports a value that disagrees with its declared kind,
	// or a field id that does not map onto a custom group.
	ErrInvalidValue = errors.New("invalid value")

	// ErrCapacityExceeded reports that the requested fields do not fit in the
	// maximum frame length, or that a group outgrew its 1-byte length.
	// Shrink the field set or raise the limit.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrMalformedFrame is returned by the decoder for structurally invalid input.
	ErrMalformedFrame = errors.New("malformed frame")
)

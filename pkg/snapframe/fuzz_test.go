// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package snapframe

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// randomValue builds a random value of a random kind. Arrays are kept short
// most of the time so that frames usually fit.
func randomValue(rng *rand.Rand) Value {
	id := uint8(rng.Intn(MaxFieldID + 1))
	switch Kind(rng.Intn(kindCount)) {
	case KindArray:
		n := rng.Intn(12)
		if rng.Intn(8) == 0 {
			n = rng.Intn(MaxArrayLength + 1)
		}
		data := make([]byte, n)
		rng.Read(data)
		v, _ := NewArray(id, data)
		return v
	case KindFloat64:
		return NewFloat64(id, math.Float64frombits(rng.Uint64()))
	case KindFloat32:
		return NewFloat32(id, math.Float32frombits(rng.Uint32()))
	case KindBool:
		return NewBool(id, rng.Intn(2) == 1)
	case KindInt8:
		return NewInt8(id, int8(rng.Uint32()))
	case KindUint8:
		return NewUint8(id, uint8(rng.Uint32()))
	case KindInt16:
		return NewInt16(id, int16(rng.Uint32()))
	case KindUint16:
		return NewUint16(id, uint16(rng.Uint32()))
	case KindInt32:
		return NewInt32(id, int32(rng.Uint32()))
	default:
		return NewUint32(id, rng.Uint32())
	}
}

func randomBattery(rng *rand.Rand) *Battery {
	b := &Battery{}
	if rng.Intn(2) == 1 {
		level := uint8(rng.Intn(MaxBatteryLevel + 1))
		b.Level = &level
	}
	if rng.Intn(2) == 1 {
		charging := rng.Intn(2) == 1
		b.Charging = &charging
	}
	if rng.Intn(4) == 0 {
		return nil
	}
	return b
}

// groupOverflows reports whether any group would carry more than 255 bytes
func groupOverflows(values []Value) bool {
	var sums [MaxCustomGroups]int
	for _, v := range values {
		sums[v.Group()] += FieldSize(v)
		if sums[v.Group()] > MaxGroupLength {
			return true
		}
	}
	return false
}

// TestFuzzCompose_RandomReadings composes random readings under random limits
// and checks the outcome against FrameSize.
func TestFuzzCompose_RandomReadings(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		values := make([]Value, rng.Intn(24))
		for j := range values {
			values[j] = randomValue(rng)
		}
		battery := randomBattery(rng)
		maxLength := rng.Intn(300)

		frame, err := Compose(values, battery, maxLength)

		if groupOverflows(values) || FrameSize(values, battery) > maxLength {
			if !errors.Is(err, ErrCapacityExceeded) {
				t.Fatalf("round %d: expected ErrCapacityExceeded, got %v", i, err)
			}
			if frame != nil {
				t.Fatalf("round %d: partial frame returned on failure", i)
			}
			continue
		}

		if err != nil {
			t.Fatalf("round %d: Compose error: %v", i, err)
		}
		if len(frame) != FrameSize(values, battery) {
			t.Fatalf("round %d: frame is %d bytes, FrameSize says %d", i, len(frame), FrameSize(values, battery))
		}

		r, err := Decode(frame)
		if err != nil {
			t.Fatalf("round %d: Decode error: %v\nframe: % X", i, err, frame)
		}
		want := groupedOrder(values)
		if len(r.Values) != len(want) {
			t.Fatalf("round %d: decoded %d values, want %d", i, len(r.Values), len(want))
		}
		for j := range want {
			if !r.Values[j].Equal(want[j]) {
				t.Fatalf("round %d: value %d = %v, want %v", i, j, r.Values[j], want[j])
			}
		}

		again, err := NewEncoder(maxLength).Encode(r)
		if err != nil || !bytes.Equal(again, frame) {
			t.Fatalf("round %d: re-encode mismatch (err %v)", i, err)
		}
	}
}

// TestFuzzDecoder_RandomBytes feeds random bytes to the decoder. It must
// either decode or fail with ErrMalformedFrame, never panic.
func TestFuzzDecoder_RandomBytes(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		length := rng.Intn(256)
		data := make([]byte, length)
		rng.Read(data)

		// bias toward valid group ids so the field walker gets exercised
		if length >= 2 && rng.Intn(2) == 1 {
			data[0] = byte(0xF0 + rng.Intn(16))
			data[1] = 0xFF
		}

		f, err := DecodeFrame(data)
		if err != nil {
			if !errors.Is(err, ErrMalformedFrame) {
				t.Fatalf("round %d: unexpected error type: %v", i, err)
			}
			continue
		}
		_ = ValidateFrame(f)
		_ = FormatFrame(f, nil)
	}
}

// TestFuzzDecoder_TruncatedFrames cuts valid frames short. Every strict
// prefix that ends inside a group must be rejected.
func TestFuzzDecoder_TruncatedFrames(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		values := make([]Value, rng.Intn(8)+1)
		for j := range values {
			values[j] = randomValue(rng)
		}
		frame, err := Compose(values, nil, 4096)
		if err != nil {
			continue
		}

		// group boundaries are the only valid cut points
		boundaries := map[int]bool{0: true}
		for off := 0; off < len(frame); {
			off += GroupHeaderSize + int(frame[off+GroupIDSize])
			boundaries[off] = true
		}

		cut := rng.Intn(len(frame))
		_, err = DecodeFrame(frame[:cut])
		if boundaries[cut] {
			if err != nil {
				t.Fatalf("round %d: cut at group boundary %d should decode: %v", i, cut, err)
			}
		} else if !errors.Is(err, ErrMalformedFrame) {
			t.Fatalf("round %d: cut at %d of %d should be malformed, got %v", i, cut, len(frame), err)
		}
	}
}

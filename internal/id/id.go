// Package id generates the identifiers used across the codebase: ULID-style
// capture registration ids and UUID event ids.
package id

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CapturePrefix marks capture registration ids.
const CapturePrefix = "cap_"

// Event generates a UUID v4 for an event record. Both snapshots of one call
// share a single event id, so the id is generated once per call.
func Event() string {
	return uuid.NewString()
}

// Capture generates a registration id: "cap_" plus a ULID, so ids sort by
// creation time.
func Capture() string {
	return CapturePrefix + ULID()
}

// ulidEncoding uses Crockford's Base32 (excludes I, L, O, U to avoid ambiguity)
const ulidEncoding = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var (
	ulidMu      sync.Mutex
	ulidLastMs  int64
	ulidCounter uint16
)

// ULID generates a Universally Unique Lexicographically Sortable Identifier:
// 26 characters, 10 of timestamp plus 16 of randomness.
func ULID() string {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	now := time.Now().UnixMilli()

	// Within the same millisecond the counter keeps ids unique.
	if now == ulidLastMs {
		ulidCounter++
		if ulidCounter == 0 {
			// Counter overflow, wait for the next millisecond.
			for now == ulidLastMs {
				time.Sleep(time.Millisecond)
				now = time.Now().UnixMilli()
			}
		}
	} else {
		ulidLastMs = now
		ulidCounter = 0
	}

	return encodeULID(now, ulidCounter)
}

// encodeULID encodes a millisecond timestamp and counter into a ULID string.
func encodeULID(ms int64, counter uint16) string {
	out := make([]byte, 26)

	// Timestamp, 48 bits across the first 10 characters.
	for i := 9; i >= 0; i-- {
		out[i] = ulidEncoding[ms&0x1F]
		ms >>= 5
	}

	// 80 bits of randomness across the last 16 characters, with the counter
	// folded into the first two bytes for same-millisecond uniqueness.
	rnd := make([]byte, 10)
	_, _ = rand.Read(rnd)
	rnd[0] ^= byte(counter >> 8)
	rnd[1] ^= byte(counter)

	var acc uint
	var bits uint
	pos := 10
	for _, b := range rnd {
		acc = acc<<8 | uint(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out[pos] = ulidEncoding[(acc>>bits)&0x1F]
			pos++
		}
	}

	return string(out)
}

// IsValidULID reports whether s is a well-formed ULID.
func IsValidULID(s string) bool {
	if len(s) != 26 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if decodeULIDChar(s[i]) < 0 {
			return false
		}
	}
	return true
}

// ULIDTime extracts the embedded timestamp from a ULID.
func ULIDTime(ulid string) (time.Time, error) {
	if !IsValidULID(ulid) {
		return time.Time{}, fmt.Errorf("invalid ULID: %s", ulid)
	}

	var ms int64
	for i := 0; i < 10; i++ {
		ms = (ms << 5) | int64(decodeULIDChar(ulid[i]))
	}

	return time.UnixMilli(ms), nil
}

// decodeULIDChar decodes a single ULID character to its value, -1 if invalid.
func decodeULIDChar(c byte) int {
	for i := 0; i < len(ulidEncoding); i++ {
		if ulidEncoding[i] == c {
			return i
		}
	}
	return -1
}

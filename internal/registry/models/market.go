package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// MarketID is the account ID of a deployed market contract. It is opaque to the
// query path: format and uniqueness are guaranteed by the factory that wrote it.
type MarketID string

// String returns the account ID.
func (id MarketID) String() string {
	return string(id)
}

// U64 is an unsigned 64-bit integer that travels as a decimal JSON string, so
// values above 2^53 survive clients that decode numbers as float64.
// It decodes from either a JSON string or a JSON number.
type U64 uint64

// MaxU64 is the largest representable U64.
const MaxU64 = U64(math.MaxUint64)

// ParseU64 parses a base-10 unsigned integer.
func ParseU64(s string) (U64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse u64 %q: %w", s, err)
	}
	return U64(v), nil
}

// String returns the decimal representation.
func (u U64) String() string {
	return strconv.FormatUint(uint64(u), 10)
}

// MarshalJSON encodes the value as a quoted decimal string.
func (u U64) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(u.String())), nil
}

// UnmarshalJSON accepts "123" or 123. Negative, fractional or exponent forms
// are rejected.
func (u *U64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decode u64: %w", err)
		}
	}
	v, err := ParseU64(raw)
	if err != nil {
		return err
	}
	*u = v
	return nil
}

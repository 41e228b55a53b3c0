package average

import (
	"database/sql/driver"
	"encoding/json"
	"strconv"
)

// Value is a float64 that may be absent. The zero Value is the "no value"
// result returned for empty input and is distinct from a computed 0.
type Value struct {
	Float64 float64
	Valid   bool
}

// Some wraps a computed result.
func Some(v float64) Value {
	return Value{Float64: v, Valid: true}
}

// Get returns the wrapped float and whether it is present.
func (v Value) Get() (float64, bool) {
	return v.Float64, v.Valid
}

func (v Value) String() string {
	if !v.Valid {
		return "<none>"
	}
	return strconv.FormatFloat(v.Float64, 'g', -1, 64)
}

// MarshalJSON encodes a missing value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float64)
}

// Value implements driver.Valuer so a missing result is stored as NULL.
func (v Value) Value() (driver.Value, error) {
	if !v.Valid {
		return nil, nil
	}
	return v.Float64, nil
}

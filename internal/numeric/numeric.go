// Package numeric coerces loosely-typed driver input into float64 values.
// Nothing here returns an error: anything unparsable becomes zero.
package numeric

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Parse converts a user-entered string to a float64.
// Empty, non-numeric, NaN and infinite inputs become 0.
// Both "12.5" and "12,5" are accepted. A lone comma followed by exactly
// three digits is a thousands separator, so "1,200" is 1200.
func Parse(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.TrimSpace(strings.TrimPrefix(s, "$"))
	if isDecimalComma(s) {
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return Finite(f)
}

func isDecimalComma(s string) bool {
	if strings.Count(s, ",") != 1 || strings.Contains(s, ".") {
		return false
	}
	return len(s)-strings.Index(s, ",")-1 != 3
}

// Coerce converts a decoded JSON value (number, string, bool, nil) to a float64.
func Coerce(v any) float64 {
	switch t := v.(type) {
	case float64:
		return Finite(t)
	case float32:
		return Finite(float64(t))
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		return Parse(t.String())
	case string:
		return Parse(t)
	default:
		return 0
	}
}

// Finite replaces NaN and ±Inf with 0.
func Finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// NonNegative clamps negative and non-finite values to 0.
func NonNegative(f float64) float64 {
	f = Finite(f)
	if f < 0 {
		return 0
	}
	return f
}

// Round rounds to the given number of decimal places.
func Round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(Finite(f)*p) / p
}

// Float is a float64 that unmarshals from a JSON number, a numeric string,
// null or anything else. Values that cannot be read decode as 0.
type Float float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		*f = 0
		return nil
	}
	*f = Float(Coerce(v))
	return nil
}

// Float64 returns the value as a float64.
func (f Float) Float64() float64 {
	return float64(f)
}

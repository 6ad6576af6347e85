package utils

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var errNotFinite = errors.New("value is not a finite number")

// ParseFloat parses a trimmed decimal string, rejecting NaN and infinities.
func ParseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if !IsFinite(f) {
		return 0, errNotFinite
	}
	return f, nil
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// IsIntegral reports whether f has no fractional part.
func IsIntegral(f float64) bool {
	return IsFinite(f) && f == math.Trunc(f)
}

// ParseKeyValue splits "key=value"; ok is false when there is no '='.
func ParseKeyValue(s string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	return key, value, ok && key != ""
}

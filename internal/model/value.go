package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Value is a field value as seen by filters and grouping: null, a string or
// a number. The zero Value is null.
type Value struct {
	num   float64
	str   string
	isNum bool
	valid bool
}

// Null returns the null value.
func Null() Value { return Value{} }

// StringValue wraps s. The empty string is a valid, blank value.
func StringValue(s string) Value { return Value{str: s, valid: true} }

// NumberValue wraps n.
func NumberValue(n float64) Value { return Value{num: n, isNum: true, valid: true} }

// IsNull reports whether the value is absent.
func (v Value) IsNull() bool { return !v.valid }

// IsBlank reports whether the value is null or the empty string.
func (v Value) IsBlank() bool { return !v.valid || (!v.isNum && v.str == "") }

// IsNumber reports whether the value holds a number.
func (v Value) IsNumber() bool { return v.valid && v.isNum }

// Float returns the numeric payload.
func (v Value) Float() (float64, bool) {
	if !v.IsNumber() {
		return 0, false
	}
	return v.num, true
}

// Str returns the string payload.
func (v Value) Str() (string, bool) {
	if !v.valid || v.isNum {
		return "", false
	}
	return v.str, true
}

// Equal compares on the native type: a number never equals a string.
func (v Value) Equal(o Value) bool {
	if v.valid != o.valid {
		return false
	}
	if !v.valid {
		return true
	}
	if v.isNum != o.isNum {
		return false
	}
	if v.isNum {
		return v.num == o.num
	}
	return v.str == o.str
}

// Compare orders null first, then numbers numerically, then strings
// lexicographically.
func (v Value) Compare(o Value) int {
	if v.rank() != o.rank() {
		return v.rank() - o.rank()
	}
	switch {
	case !v.valid:
		return 0
	case v.isNum:
		switch {
		case v.num < o.num:
			return -1
		case v.num > o.num:
			return 1
		}
		return 0
	default:
		return strings.Compare(v.str, o.str)
	}
}

func (v Value) rank() int {
	switch {
	case !v.valid:
		return 0
	case v.isNum:
		return 1
	default:
		return 2
	}
}

// Key returns a string that is unique per distinct value, suitable as a map
// key. Numbers and strings never collide.
func (v Value) Key() string {
	switch {
	case !v.valid:
		return "\x00"
	case v.isNum:
		n := v.num
		if n == 0 {
			n = 0 // folds -0 into 0
		}
		return "n:" + strconv.FormatFloat(n, 'g', -1, 64)
	default:
		return "s:" + v.str
	}
}

func (v Value) String() string {
	switch {
	case !v.valid:
		return ""
	case v.isNum:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return v.str
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch {
	case !v.valid:
		return []byte("null"), nil
	case v.isNum:
		return json.Marshal(v.num)
	default:
		return json.Marshal(v.str)
	}
}

// Number is an optional numeric record field.
type Number struct {
	Float float64
	Valid bool
}

// Num returns a defined Number.
func Num(f float64) Number { return Number{Float: f, Valid: true} }

// Value converts n to a Value.
func (n Number) Value() Value {
	if !n.Valid {
		return Null()
	}
	return NumberValue(n.Float)
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float)
}

// UnmarshalJSON accepts null, "", numbers and numeric strings.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseNumber(s)
		if err != nil {
			return err
		}
		*n = parsed
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid number %s: %w", data, err)
	}
	*n = Num(f)
	return nil
}

// ParseNumber parses a possibly blank numeric string. Blank input yields an
// undefined Number.
func ParseNumber(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number{}, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return Num(f), nil
}

// Text is an optional string record field.
type Text struct {
	String string
	Valid  bool
}

// Str returns a defined Text.
func Str(s string) Text { return Text{String: s, Valid: true} }

// Value converts t to a Value.
func (t Text) Value() Value {
	if !t.Valid {
		return Null()
	}
	return StringValue(t.String)
}

func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.String)
}

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Text{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid text %s: %w", data, err)
	}
	*t = Str(s)
	return nil
}

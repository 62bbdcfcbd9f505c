package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type valueKind uint8

const (
	kindNull valueKind = iota
	kindString
	kindNumber
)

// Value is an answer value: null, a string, or a number. The zero Value is
// null.
type Value struct {
	kind valueKind
	str  string
	num  float64
}

// Null returns the empty answer.
func Null() Value { return Value{} }

// String wraps a textual answer.
func String(s string) Value { return Value{kind: kindString, str: s} }

// Number wraps a numeric answer.
func Number(f float64) Value { return Value{kind: kindNumber, num: f} }

// IsNull reports whether v carries no answer.
func (v Value) IsNull() bool { return v.kind == kindNull }

// IsEmpty reports whether v is null or the empty string.
func (v Value) IsEmpty() bool {
	return v.kind == kindNull || (v.kind == kindString && v.str == "")
}

// Str returns the string payload when v holds a string.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == kindString
}

// Num returns the numeric payload when v holds a number.
func (v Value) Num() (float64, bool) {
	return v.num, v.kind == kindNumber
}

// Float returns v as a number, parsing string payloads. Terminal and HTML
// inputs deliver numbers as text, so "12.5" counts as numeric. NaN and the
// infinities are never numeric, whether stored or spelled out.
func (v Value) Float() (float64, bool) {
	var f float64
	switch v.kind {
	case kindNumber:
		f = v.num
	case kindString:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// String renders v for display. Null renders as "".
func (v Value) String() string {
	switch v.kind {
	case kindString:
		return v.str
	case kindNumber:
		return FormatNumber(v.num)
	default:
		return ""
	}
}

// FormatNumber prints f in its shortest decimal form ("10", "2.5").
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// MarshalJSON encodes null, a JSON string, or a JSON number.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindString:
		return json.Marshal(v.str)
	case kindNumber:
		return json.Marshal(v.num)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, strings, and numbers.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = Null()
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = String(s)
		return nil
	default:
		var f float64
		if err := json.Unmarshal(trimmed, &f); err != nil {
			return fmt.Errorf("model: answer value must be null, string or number: %w", err)
		}
		*v = Number(f)
		return nil
	}
}

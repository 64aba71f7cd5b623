package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Value is a single JSON field exactly as the caller sent it. The zero value
// means the field was absent from the object; a JSON null is present.
type Value struct {
	raw json.RawMessage
}

// NewValue wraps raw JSON. Passing nil yields an absent value.
func NewValue(raw json.RawMessage) Value {
	if raw == nil {
		return Value{}
	}
	return Value{raw: append(json.RawMessage(nil), raw...)}
}

// ValueOf marshals v into a present Value. It panics on unmarshalable input and
// is meant for fixtures and defaults.
func ValueOf(v any) Value {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return Value{raw: b}
}

// Present reports whether the key existed in the source object.
func (v Value) Present() bool { return v.raw != nil }

// Raw returns the original JSON bytes, or nil when absent.
func (v Value) Raw() json.RawMessage { return v.raw }

// IsNull reports an explicit JSON null.
func (v Value) IsNull() bool {
	return bytes.Equal(bytes.TrimSpace(v.raw), []byte("null"))
}

func (v Value) kind() byte {
	t := bytes.TrimSpace(v.raw)
	if len(t) == 0 {
		return 0
	}
	return t[0]
}

// Truthy follows the usual dynamic-language notion: absent, null, false, 0,
// "", [] and {} are falsy.
func (v Value) Truthy() bool {
	t := bytes.TrimSpace(v.raw)
	switch v.kind() {
	case 0, 'n', 'f':
		return false
	case '"':
		s, _ := v.String()
		return s != ""
	case '[':
		return !bytes.Equal(compact(t), []byte("[]"))
	case '{':
		return !bytes.Equal(compact(t), []byte("{}"))
	case 't':
		return true
	default:
		f, err := strconv.ParseFloat(string(t), 64)
		return err != nil || f != 0
	}
}

// String returns the decoded text when the value is a JSON string.
func (v Value) String() (string, bool) {
	if v.kind() != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v.raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Text renders a scalar as an identifier: strings verbatim, everything else
// as its compact JSON text. Falsy values render as "".
func (v Value) Text() string {
	if !v.Truthy() {
		return ""
	}
	if s, ok := v.String(); ok {
		return s
	}
	return string(compact(v.raw))
}

// Int parses the value the way a lenient integer conversion would: numbers
// truncate toward zero, strings must hold a base-10 integer, booleans map to
// 1 and 0. Integers beyond the int range saturate.
func (v Value) Int() (int, bool) {
	switch v.kind() {
	case 't':
		return 1, true
	case 'f':
		return 0, true
	case '"':
		s, _ := v.String()
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				if strings.HasPrefix(strings.TrimSpace(s), "-") {
					return math.MinInt, true
				}
				return math.MaxInt, true
			}
			return 0, false
		}
		return clampInt64(n), true
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := strconv.ParseFloat(string(bytes.TrimSpace(v.raw)), 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, false
		}
		f = math.Trunc(f)
		switch {
		case f >= math.MaxInt64:
			return math.MaxInt, true
		case f <= math.MinInt64:
			return math.MinInt, true
		}
		return clampInt64(int64(f)), true
	}
	return 0, false
}

// Float parses numbers, numeric strings and booleans. Non-finite results are
// rejected.
func (v Value) Float() (float64, bool) {
	var f float64
	switch v.kind() {
	case 't':
		return 1, true
	case 'f':
		return 0, true
	case '"':
		s, _ := v.String()
		p, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		f = p
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		p, err := strconv.ParseFloat(string(bytes.TrimSpace(v.raw)), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Texts returns the elements of a JSON array rendered with Text. Non-array
// values yield nil; elements that are not strings or numbers are skipped.
func (v Value) Texts() []string {
	if v.kind() != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(v.raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		el := Value{raw: item}
		switch el.kind() {
		case '"':
			s, _ := el.String()
			out = append(out, s)
		case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			out = append(out, string(compact(item)))
		}
	}
	return out
}

// MarshalJSON emits the original bytes, or null when absent.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.raw == nil {
		return []byte("null"), nil
	}
	return v.raw, nil
}

// UnmarshalJSON keeps the raw bytes.
func (v *Value) UnmarshalJSON(b []byte) error {
	v.raw = append(json.RawMessage(nil), b...)
	return nil
}

func compact(b []byte) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return bytes.TrimSpace(b)
	}
	return buf.Bytes()
}

func clampInt64(n int64) int {
	if n > math.MaxInt {
		return math.MaxInt
	}
	if n < math.MinInt {
		return math.MinInt
	}
	return int(n)
}

package content

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type Kind uint8

const (
	KindAbsent Kind = iota
	KindNull
	KindNumber
	KindString
	KindBool
	KindObject
	KindArray
)

// Value is a JSON field whose type varies between data producers.
// The zero Value is an absent field.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	raw  json.RawMessage
}

func String(s string) Value  { return Value{kind: KindString, str: s} }
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Null() Value            { return Value{kind: KindNull} }
func Int(i int) Value        { return Number(float64(i)) }

func (v Value) Kind() Kind { return v.kind }

// IsNil reports whether the value is null or missing.
func (v Value) IsNil() bool { return v.kind == KindAbsent || v.kind == KindNull }

func (v Value) Raw() json.RawMessage { return v.raw }

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*v = Value{raw: append(json.RawMessage(nil), data...)}
	if len(data) == 0 {
		v.kind = KindAbsent
		return nil
	}
	switch data[0] {
	case 'n':
		v.kind = KindNull
	case 't', 'f':
		v.kind = KindBool
		v.b = data[0] == 't'
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v.kind = KindString
		v.str = s
	case '{':
		v.kind = KindObject
	case '[':
		v.kind = KindArray
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return err
		}
		v.kind = KindNumber
		v.num = f
	}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindAbsent, KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	default:
		if len(v.raw) == 0 {
			return []byte("null"), nil
		}
		return v.raw, nil
	}
}

// String converts the value the way a loosely typed client would when it
// concatenates or compares it as text.
func (v Value) String() string {
	switch v.kind {
	case KindAbsent:
		return "undefined"
	case KindNull:
		return "null"
	case KindString:
		return v.str
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindArray:
		var items []Value
		if err := json.Unmarshal(v.raw, &items); err != nil {
			return ""
		}
		parts := make([]string, len(items))
		for i, it := range items {
			if it.IsNil() {
				continue
			}
			parts[i] = it.String()
		}
		return strings.Join(parts, ",")
	default:
		return "[object Object]"
	}
}

// Truthy follows the usual loose truthiness: empty string, zero, NaN,
// false, null and absent are false.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindAbsent, KindNull:
		return false
	case KindString:
		return v.str != ""
	case KindNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case KindBool:
		return v.b
	default:
		return true
	}
}

// Or returns v unless it is null or absent.
func (v Value) Or(fallback Value) Value {
	if v.IsNil() {
		return fallback
	}
	return v
}

// Index interprets the value as a position in a list of length n.
// Only canonical non-negative integers ("3", 3) qualify.
func (v Value) Index(n int) (int, bool) {
	switch v.kind {
	case KindNumber:
		if v.num < 0 || v.num != math.Trunc(v.num) || v.num >= float64(n) {
			return 0, false
		}
		return int(v.num), true
	case KindString:
		i, err := strconv.Atoi(v.str)
		if err != nil || i < 0 || i >= n || strconv.Itoa(i) != v.str {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// Digits reports whether the value is a number or a non-empty string of
// ASCII decimal digits.
func (v Value) Digits() bool {
	if v.kind == KindNumber {
		return true
	}
	if v.kind != KindString || v.str == "" {
		return false
	}
	for i := 0; i < len(v.str); i++ {
		if v.str[i] < '0' || v.str[i] > '9' {
			return false
		}
	}
	return true
}

// Position returns the numeric value of a digit string or number, used as a
// list index. ok is false for fractions, negatives and overflow.
func (v Value) Position() (int, bool) {
	switch v.kind {
	case KindNumber:
		if v.num < 0 || v.num != math.Trunc(v.num) || v.num > math.MaxInt32 {
			return 0, false
		}
		return int(v.num), true
	case KindString:
		if !v.Digits() {
			return 0, false
		}
		n, err := strconv.ParseUint(v.str, 10, 31)
		if err != nil {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// exponent without zero padding: 1e-7, not 1e-07
		s = strings.Replace(s, "e-0", "e-", 1)
		return strings.Replace(s, "e+0", "e+", 1)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Items returns the elements of an array value, nil for anything else.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	var items []Value
	if err := json.Unmarshal(v.raw, &items); err != nil {
		return nil
	}
	return items
}

// Decode unmarshals an object or array value into dst.
func (v Value) Decode(dst any) error {
	if len(v.raw) == 0 {
		return json.Unmarshal([]byte("null"), dst)
	}
	return json.Unmarshal(v.raw, dst)
}

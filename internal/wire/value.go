package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind identifies the concrete type held by a Value.
type Kind int

const (
	KindFloat Kind = iota
	KindInt
	KindString
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	}
	return "unknown"
}

// Value is a closed tagged variant over float, int, string, and bool.
// The zero Value is the float 0.
type Value struct {
	kind Kind
	f    float64
	i    int64
	s    string
	b    bool
}

// Float returns a float Value.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Int returns an int Value.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// String returns a string Value.
func String(v string) Value { return Value{kind: KindString, s: v} }

// Bool returns a bool Value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// AsFloat returns the held float. For an int Value it returns the int
// widened to float64; zero otherwise.
func (v Value) AsFloat() float64 {
	switch v.kind {
	case KindFloat:
		return v.f
	case KindInt:
		return float64(v.i)
	}
	return 0
}

// AsInt returns the held int, or zero for other kinds.
func (v Value) AsInt() int64 {
	if v.kind == KindInt {
		return v.i
	}
	return 0
}

// AsString returns the held string, or empty for other kinds.
func (v Value) AsString() string {
	if v.kind == KindString {
		return v.s
	}
	return ""
}

// AsBool returns the held bool, or false for other kinds.
func (v Value) AsBool() bool {
	if v.kind == KindBool {
		return v.b
	}
	return false
}

// Display renders the value for logs and console output.
func (v Value) Display() string {
	switch v.kind {
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindString:
		return v.s
	case KindBool:
		return strconv.FormatBool(v.b)
	}
	return ""
}

// MarshalJSON encodes the underlying scalar directly.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindFloat:
		return json.Marshal(v.f)
	case KindInt:
		return json.Marshal(v.i)
	case KindString:
		return json.Marshal(v.s)
	case KindBool:
		return json.Marshal(v.b)
	}
	return nil, fmt.Errorf("unknown value kind %d", v.kind)
}

// UnmarshalJSON accepts JSON numbers, strings, and booleans. A number
// without a fraction or exponent becomes an int; everything else
// (null, objects, arrays) is rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty value")
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = String(s)
		return nil

	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return err
		}
		*v = Bool(b)
		return nil

	case '{', '[', 'n':
		return fmt.Errorf("unsupported value shape: %s", shapeName(trimmed[0]))
	}

	// Number: integer unless it carries a fraction or exponent.
	if !bytes.ContainsAny(trimmed, ".eE") {
		i, err := strconv.ParseInt(string(trimmed), 10, 64)
		if err == nil {
			*v = Int(i)
			return nil
		}
		// Out-of-range integer literal, fall through to float.
	}

	f, err := strconv.ParseFloat(string(trimmed), 64)
	if err != nil {
		return fmt.Errorf("parse value %q: %w", trimmed, err)
	}
	*v = Float(f)
	return nil
}

func shapeName(lead byte) string {
	switch lead {
	case '{':
		return "object"
	case '[':
		return "array"
	case 'n':
		return "null"
	}
	return "unknown"
}

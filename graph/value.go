package graph

import (
	"strconv"
	"strings"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	ValueUnset ValueKind = iota
	ValueString
	ValueHTML // an HTML-like label string
	ValueBool
	ValueInt
	ValueFloat
)

// Value is a typed attribute value. Attribute values arrive from the parser
// as strings or HTML strings; programmatic callers may install bool, int or
// float values directly to avoid re-parsing on every read.
type Value struct {
	kind ValueKind
	str  *istring
	num  float64
	b    bool
}

func StringValue(s string) Value { return Value{kind: ValueString, str: &istring{s: s}} }
func HTMLValue(s string) Value   { return Value{kind: ValueHTML, str: &istring{s: s}} }
func BoolValue(b bool) Value     { return Value{kind: ValueBool, b: b} }
func IntValue(i int) Value       { return Value{kind: ValueInt, num: float64(i)} }
func FloatValue(f float64) Value { return Value{kind: ValueFloat, num: f} }

// IsSet reports whether the value holds anything.
func (v Value) IsSet() bool { return v.kind != ValueUnset }

// IsHTML reports whether the value is an HTML-like label string.
func (v Value) IsHTML() bool { return v.kind == ValueHTML }

// Kind returns the variant tag.
func (v Value) Kind() ValueKind { return v.kind }

// String returns the textual form of the value. Unset values render empty.
func (v Value) String() string {
	switch v.kind {
	case ValueString, ValueHTML:
		return v.str.s
	case ValueBool:
		if v.b {
			return "true"
		}
		return "false"
	case ValueInt:
		return strconv.Itoa(int(v.num))
	case ValueFloat:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	default:
		return ""
	}
}

// Bool interprets the value as a boolean. Unparsable strings and unset
// values are false; a positive integer is true.
func (v Value) Bool() bool {
	switch v.kind {
	case ValueBool:
		return v.b
	case ValueInt, ValueFloat:
		return v.num > 0
	case ValueString:
		switch strings.ToLower(v.str.s) {
		case "true", "yes":
			return true
		}
		n, err := strconv.Atoi(v.str.s)
		return err == nil && n > 0
	default:
		return false
	}
}

// Float interprets the value as a float64, returning def when it cannot be
// parsed.
func (v Value) Float(def float64) float64 {
	switch v.kind {
	case ValueInt, ValueFloat:
		return v.num
	case ValueString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str.s), 64)
		if err != nil {
			return def
		}
		return f
	default:
		return def
	}
}

// Int interprets the value as an int, returning def when it cannot be
// parsed.
func (v Value) Int(def int) int {
	switch v.kind {
	case ValueInt, ValueFloat:
		return int(v.num)
	case ValueString:
		n, err := strconv.Atoi(strings.TrimSpace(v.str.s))
		if err != nil {
			return def
		}
		return n
	default:
		return def
	}
}

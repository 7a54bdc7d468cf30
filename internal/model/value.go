package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValueKind discriminates the shapes an answer can take.
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueText
	ValueList
	ValueNumber
)

// Value is a single answer: a string, a list of strings or a number.
// The zero Value is "no answer".
type Value struct {
	kind ValueKind
	text string
	list []string
	num  float64
}

// Text returns a string answer.
func Text(s string) Value { return Value{kind: ValueText, text: s} }

// List returns a multi-select answer.
func List(items ...string) Value {
	out := make([]string, len(items))
	copy(out, items)
	return Value{kind: ValueList, list: out}
}

// Number returns a numeric answer.
func Number(f float64) Value { return Value{kind: ValueNumber, num: f} }

// Kind returns the value's shape.
func (v Value) Kind() ValueKind { return v.kind }

// Present reports whether any value was given, even an empty one.
func (v Value) Present() bool { return v.kind != ValueNone }

// IsEmpty reports whether the value counts as unanswered: absent or an
// empty string. The number 0 and an empty selection are answers.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case ValueNone:
		return true
	case ValueText:
		return v.text == ""
	}
	return false
}

// AsText returns the string payload and whether the value is a string.
func (v Value) AsText() (string, bool) { return v.text, v.kind == ValueText }

// AsList returns a copy of the list payload and whether the value is a list.
func (v Value) AsList() ([]string, bool) {
	if v.kind != ValueList {
		return nil, false
	}
	out := make([]string, len(v.list))
	copy(out, v.list)
	return out, true
}

// AsNumber returns the numeric payload and whether the value is a number.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == ValueNumber }

// String renders the value the way a form field would show it. Lists are
// joined with commas.
func (v Value) String() string {
	switch v.kind {
	case ValueText:
		return v.text
	case ValueList:
		return strings.Join(v.list, ",")
	case ValueNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return ""
}

// Equal reports whether two values have the same shape and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case ValueText:
		return v.text == o.text
	case ValueNumber:
		return v.num == o.num
	case ValueList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
	}
	return true
}

// MarshalJSON encodes the value as a JSON string, array or number.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueText:
		return json.Marshal(v.text)
	case ValueList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case ValueNumber:
		return json.Marshal(v.num)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts a string, an array of strings, a number or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty answer value")
	}
	switch data[0] {
	case 'n':
		*v = Value{}
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
		return nil
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("answer list must contain strings: %w", err)
		}
		*v = Value{kind: ValueList, list: items}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("answer must be a string, list or number: %w", err)
	}
	*v = Number(f)
	return nil
}

// Answers maps question ids to answers.
type Answers map[string]Value

// Clone returns a copy of the map.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Package value provides the generic tree representation of a parsed
// configuration document. A Value is produced once by ingestion and is
// read-only thereafter; the application engine walks it but never
// mutates it. Map values preserve document key order, which is
// significant for ordering-sensitive sections such as log sink levels.
package value

import (
	"bytes"
	"strings"

	gojson "github.com/goccy/go-json"
)

// Kind identifies the shape of a Value.
type Kind int

const (
	// KindNull is the null value
	KindNull Kind = iota
	// KindBool is a boolean scalar
	KindBool
	// KindInt is an integer scalar
	KindInt
	// KindFloat is a floating-point scalar
	KindFloat
	// KindString is a string scalar
	KindString
	// KindList is an ordered sequence of values
	KindList
	// KindMap is an ordered map of string keys to values
	KindMap
)

// String returns the human-readable name of the kind, used in error
// messages shown to operators.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is a tagged tree value of kind null, boolean, integer, float,
// string, list or map.
type Value struct {
	kind     Kind
	boolVal  bool
	intVal   int64
	floatVal float64
	strVal   string
	items    []*Value
	keys     []string
	fields   map[string]*Value
}

// Null returns the null value.
func Null() *Value {
	return &Value{kind: KindNull}
}

// Bool returns a boolean value.
func Bool(b bool) *Value {
	return &Value{kind: KindBool, boolVal: b}
}

// Int returns an integer value.
func Int(i int64) *Value {
	return &Value{kind: KindInt, intVal: i}
}

// Float returns a floating-point value.
func Float(f float64) *Value {
	return &Value{kind: KindFloat, floatVal: f}
}

// String returns a string value.
func String(s string) *Value {
	return &Value{kind: KindString, strVal: s}
}

// List returns a list value holding the given items.
func List(items ...*Value) *Value {
	return &Value{kind: KindList, items: items}
}

// NewMap returns an empty map value.
func NewMap() *Value {
	return &Value{kind: KindMap, fields: make(map[string]*Value)}
}

// Put adds an entry to a map value, preserving insertion order.
// Returns false if the key is already present; duplicate keys are a
// hard ingestion failure and never reach the application engine.
func (v *Value) Put(key string, child *Value) bool {
	if _, exists := v.fields[key]; exists {
		return false
	}
	v.keys = append(v.keys, key)
	v.fields[key] = child
	return true
}

// Kind returns the value's kind.
func (v *Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is null.
func (v *Value) IsNull() bool {
	return v.kind == KindNull
}

// AsBool returns the boolean payload. ok is false for other kinds.
func (v *Value) AsBool() (b bool, ok bool) {
	return v.boolVal, v.kind == KindBool
}

// AsInt returns the integer payload. ok is false for other kinds.
func (v *Value) AsInt() (i int64, ok bool) {
	return v.intVal, v.kind == KindInt
}

// AsFloat returns the float payload. ok is false for other kinds.
func (v *Value) AsFloat() (f float64, ok bool) {
	return v.floatVal, v.kind == KindFloat
}

// AsString returns the string payload. ok is false for other kinds.
func (v *Value) AsString() (s string, ok bool) {
	return v.strVal, v.kind == KindString
}

// Items returns the elements of a list value, nil for other kinds.
func (v *Value) Items() []*Value {
	if v.kind != KindList {
		return nil
	}
	return v.items
}

// Keys returns the keys of a map value in document order.
func (v *Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	return v.keys
}

// Field returns the entry stored under key in a map value.
func (v *Value) Field(key string) (*Value, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	child, ok := v.fields[key]
	return child, ok
}

// Len returns the number of entries in a map or list value.
func (v *Value) Len() int {
	switch v.kind {
	case KindMap:
		return len(v.keys)
	case KindList:
		return len(v.items)
	default:
		return 0
	}
}

// Lookup resolves a '/'-separated path key relative to this value.
// A leading '/' is permitted and ignored. Returns false if any segment
// is missing or addresses a non-map value.
func (v *Value) Lookup(path string) (*Value, bool) {
	cur := v
	for _, seg := range strings.Split(strings.TrimPrefix(path, "/"), "/") {
		if seg == "" {
			continue
		}
		child, ok := cur.Field(seg)
		if !ok {
			return nil, false
		}
		cur = child
	}
	return cur, true
}

// MarshalJSON serializes the value, preserving map key order. Used for
// the validated tree's diagnostic dump.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encodeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) encodeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.boolVal {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindInt, KindFloat, KindString:
		var payload interface{}
		switch v.kind {
		case KindInt:
			payload = v.intVal
		case KindFloat:
			payload = v.floatVal
		default:
			payload = v.strVal
		}
		data, err := gojson.Marshal(payload)
		if err != nil {
			return err
		}
		buf.Write(data)
	case KindList:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encodeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		for i, key := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyData, err := gojson.Marshal(key)
			if err != nil {
				return err
			}
			buf.Write(keyData)
			buf.WriteByte(':')
			if err := v.fields[key].encodeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// Package conf is the declarative field-mapping and application engine
// for Strata's configuration. A registry of path-addressed field
// descriptors maps the validated document tree onto the typed
// configuration records the rest of the server reads at startup.
package conf

import (
	"fmt"
	"math"

	"github.com/stratadb/strata/pkg/value"
)

// UnitKind selects the unit normalization applied to a field's value
// before its setter runs.
type UnitKind int

const (
	// UnitNone disables unit normalization
	UnitNone UnitKind = iota
	// UnitTime normalizes {value, unit} durations to seconds
	UnitTime
	// UnitSize32 normalizes {value, unit} sizes to bytes, bounded to 32 bits
	UnitSize32
	// UnitSize64 normalizes {value, unit} sizes to bytes
	UnitSize64
)

// SetterFunc writes a scalar value directly into a target record field.
type SetterFunc func(f *Field, target interface{}, v *value.Value) error

// HandlerFunc applies a value through custom logic. Handlers may
// recurse into nested tables, create dynamic substructures and write
// more than one field. Errors they return are re-prefixed by the
// engine so the final path reads root-relative.
type HandlerFunc func(a *Applier, target interface{}, v *value.Value) error

// Field is one immutable descriptor: a path key, the destination it
// maps onto, and the gates consulted before the value is inspected.
type Field struct {
	// Path addresses the value under the context currently being
	// processed, segments separated by '/'.
	Path string

	// Set writes directly into the target record. Exactly one of Set
	// and Handle is non-nil.
	Set SetterFunc

	// Handle applies the value through custom logic.
	Handle HandlerFunc

	// Unit selects unit normalization for the raw value.
	Unit UnitKind

	// Enterprise marks the key as unavailable in community builds.
	Enterprise bool

	// Deprecated carries a warning emitted once per application pass
	// when the key is present. Empty means not deprecated.
	Deprecated string

	// Wildcard marks an entry that writes overlapping state later
	// entries in the same table may override (e.g. the "any" logging
	// context). Wildcard entries must precede specific ones.
	Wildcard bool

	// Min and Max bound integer setters, inclusive. Max of zero means
	// the destination type's natural maximum.
	Min uint64
	Max uint64
}

// enterprise marks the field enterprise-only.
func (f Field) enterprise() Field {
	f.Enterprise = true
	return f
}

// deprecated attaches a deprecation notice.
func (f Field) deprecated(msg string) Field {
	f.Deprecated = msg
	return f
}

// unit attaches a unit kind.
func (f Field) unit(k UnitKind) Field {
	f.Unit = k
	return f
}

// bounds restricts an integer field's accepted range.
func (f Field) bounds(min, max uint64) Field {
	f.Min = min
	f.Max = max
	return f
}

// Table is an ordered sequence of descriptors sharing one nesting
// level. Order is semantically significant for entries that write
// overlapping state.
type Table struct {
	Name   string
	Fields []Field
}

// newTable builds a table and asserts its invariants: every path key
// unique, wildcard entries before specific ones. Violations are
// programming errors in the registry and panic at init.
func newTable(name string, fields ...Field) Table {
	seen := make(map[string]struct{}, len(fields))
	specific := false
	for _, f := range fields {
		if _, dup := seen[f.Path]; dup {
			panic(fmt.Sprintf("conf: table %s declares %q twice", name, f.Path))
		}
		seen[f.Path] = struct{}{}
		if (f.Set == nil) == (f.Handle == nil) {
			panic(fmt.Sprintf("conf: table %s field %q needs exactly one of setter and handler", name, f.Path))
		}
		if f.Wildcard && specific {
			panic(fmt.Sprintf("conf: table %s wildcard %q follows a specific entry", name, f.Path))
		}
		if !f.Wildcard {
			specific = true
		}
	}
	return Table{Name: name, Fields: fields}
}

// target coercion shared by the generic setters. A descriptor applied
// against a record of the wrong type is a registry bug, not an
// operator error.
func recordOf[T any](f *Field, target interface{}) (*T, error) {
	rec, ok := target.(*T)
	if !ok {
		return nil, internalErrorf("descriptor %q applied to %T", f.Path, target)
	}
	return rec, nil
}

// boolField maps a path key onto a boolean record field.
func boolField[T any](path string, get func(*T) *bool) Field {
	return Field{Path: path, Set: func(f *Field, target interface{}, v *value.Value) error {
		rec, err := recordOf[T](f, target)
		if err != nil {
			return err
		}
		b, ok := v.AsBool()
		if !ok {
			return configErrorf("expected boolean, got %s", v.Kind())
		}
		*get(rec) = b
		return nil
	}}
}

// u16Field maps a path key onto an unsigned 16-bit record field.
func u16Field[T any](path string, get func(*T) *uint16) Field {
	return Field{Path: path, Set: func(f *Field, target interface{}, v *value.Value) error {
		rec, err := recordOf[T](f, target)
		if err != nil {
			return err
		}
		i, err := intInRange(f, v, math.MaxUint16)
		if err != nil {
			return err
		}
		*get(rec) = uint16(i)
		return nil
	}}
}

// u32Field maps a path key onto an unsigned 32-bit record field.
func u32Field[T any](path string, get func(*T) *uint32) Field {
	return Field{Path: path, Set: func(f *Field, target interface{}, v *value.Value) error {
		rec, err := recordOf[T](f, target)
		if err != nil {
			return err
		}
		i, err := intInRange(f, v, math.MaxUint32)
		if err != nil {
			return err
		}
		*get(rec) = uint32(i)
		return nil
	}}
}

// u64Field maps a path key onto an unsigned 64-bit record field.
func u64Field[T any](path string, get func(*T) *uint64) Field {
	return Field{Path: path, Set: func(f *Field, target interface{}, v *value.Value) error {
		rec, err := recordOf[T](f, target)
		if err != nil {
			return err
		}
		i, err := intInRange(f, v, math.MaxUint64)
		if err != nil {
			return err
		}
		*get(rec) = i
		return nil
	}}
}

// stringField maps a path key onto a string record field. The stored
// string is the engine's own copy; replacing a previous value simply
// drops the old one.
func stringField[T any](path string, get func(*T) *string) Field {
	return Field{Path: path, Set: func(f *Field, target interface{}, v *value.Value) error {
		rec, err := recordOf[T](f, target)
		if err != nil {
			return err
		}
		s, ok := v.AsString()
		if !ok {
			return configErrorf("expected string, got %s", v.Kind())
		}
		*get(rec) = s
		return nil
	}}
}

// enumField maps a path key onto a string record field restricted to
// a closed value set.
func enumField[T any](path string, allowed []string, get func(*T) *string) Field {
	return Field{Path: path, Set: func(f *Field, target interface{}, v *value.Value) error {
		rec, err := recordOf[T](f, target)
		if err != nil {
			return err
		}
		s, ok := v.AsString()
		if !ok {
			return configErrorf("expected string, got %s", v.Kind())
		}
		for _, a := range allowed {
			if s == a {
				*get(rec) = s
				return nil
			}
		}
		return configErrorf("value %q not one of %v", s, allowed)
	}}
}

// stringListField maps a path key onto a string slice record field.
// It accepts both a single string and a list of strings; elements are
// appended in document order.
func stringListField[T any](path string, get func(*T) *[]string) Field {
	return Field{Path: path, Set: func(f *Field, target interface{}, v *value.Value) error {
		rec, err := recordOf[T](f, target)
		if err != nil {
			return err
		}
		items, err := stringValues(v)
		if err != nil {
			return err
		}
		*get(rec) = append(*get(rec), items...)
		return nil
	}}
}

// stringValues flattens a scalar-or-list string value.
func stringValues(v *value.Value) ([]string, error) {
	if s, ok := v.AsString(); ok {
		return []string{s}, nil
	}
	if v.Kind() != value.KindList {
		return nil, configErrorf("expected string or list of strings, got %s", v.Kind())
	}
	out := make([]string, 0, len(v.Items()))
	for i, item := range v.Items() {
		s, ok := item.AsString()
		if !ok {
			return nil, configErrorf("element %d: expected string, got %s", i, item.Kind())
		}
		out = append(out, s)
	}
	return out, nil
}

func intInRange(f *Field, v *value.Value, typeMax uint64) (uint64, error) {
	i, ok := v.AsInt()
	if !ok {
		return 0, configErrorf("expected integer, got %s", v.Kind())
	}
	if i < 0 {
		return 0, configErrorf("value %d must not be negative", i)
	}
	u := uint64(i)
	max := typeMax
	if f.Max != 0 && f.Max < max {
		max = f.Max
	}
	if u > max {
		return 0, configErrorf("value %d above maximum %d", u, max)
	}
	if u < f.Min {
		return 0, configErrorf("value %d below minimum %d", u, f.Min)
	}
	return u, nil
}

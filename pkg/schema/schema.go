// Package schema validates a parsed configuration tree against a
// declared schema document before any field is applied. The schema is
// the closed half of the system: it knows every key that may appear,
// so typos surface here rather than being silently skipped by the
// application engine, which only visits paths it knows about.
package schema

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stratadb/strata/pkg/value"
)

// Spec describes the permitted shape of one location in the document.
// Specs nest through Properties (fixed keys), Dynamic (user-chosen
// keys, e.g. namespace names) and Items (list elements).
type Spec struct {
	// Type is one of object, array, string, integer, number, boolean.
	// A spec with Properties or Dynamic may omit it; object is assumed.
	// A spec with none of these is unconstrained and admits any shape.
	Type string `yaml:"type"`

	// Properties declares the closed set of keys allowed under an
	// object. Keys not listed here are violations.
	Properties map[string]*Spec `yaml:"properties"`

	// Required lists keys that must be present under an object.
	Required []string `yaml:"required"`

	// Dynamic, when set, applies to every key of an object whose key
	// names are chosen by the operator (namespaces, sets, DCs, TLS
	// contexts). Mutually exclusive with Properties.
	Dynamic *Spec `yaml:"dynamic"`

	// Items applies to every element of an array.
	Items *Spec `yaml:"items"`

	// Minimum and Maximum bound integer and number values, inclusive.
	Minimum *int64 `yaml:"minimum"`
	Maximum *int64 `yaml:"maximum"`

	// Enum restricts a string to a fixed set of values.
	Enum []string `yaml:"enum"`

	// Unit marks an integer field that also accepts the structured
	// {value, unit} representation.
	Unit bool `yaml:"unit"`
}

// Violation is one schema constraint failure at a specific path.
type Violation struct {
	Path    string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Parse parses a YAML schema document.
func Parse(data []byte) (*Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	return &spec, nil
}

// Validate checks doc against the spec and returns every violation
// found. An empty result means the document conforms.
func (s *Spec) Validate(doc *value.Value) []Violation {
	var violations []Violation
	s.validate("", doc, &violations)
	return violations
}

// Check runs Validate and flattens the result into a single-line error
// message, or returns nil if the document conforms. Embedded newlines
// from schema values are collapsed to spaces.
func (s *Spec) Check(doc *value.Value) error {
	violations := s.Validate(doc)
	if len(violations) == 0 {
		return nil
	}
	parts := make([]string, len(violations))
	for i, v := range violations {
		parts[i] = strings.Join(strings.Fields(v.String()), " ")
	}
	return fmt.Errorf("%s", strings.Join(parts, "; "))
}

func (s *Spec) validate(path string, doc *value.Value, out *[]Violation) {
	typ := s.Type
	if typ == "" {
		if s.Properties == nil && s.Dynamic == nil {
			// An empty spec constrains nothing. Used for keys that
			// accept more than one shape (scalar-or-list addresses,
			// storage-engine shorthand); the engine's own setters
			// enforce the shape.
			return
		}
		typ = "object"
	}

	switch typ {
	case "object":
		s.validateObject(path, doc, out)
	case "array":
		s.validateArray(path, doc, out)
	case "string":
		s.validateString(path, doc, out)
	case "integer":
		s.validateInteger(path, doc, out)
	case "number":
		s.validateNumber(path, doc, out)
	case "boolean":
		if _, ok := doc.AsBool(); !ok {
			*out = append(*out, Violation{orRoot(path), kindMismatch("boolean", doc)})
		}
	default:
		*out = append(*out, Violation{orRoot(path), fmt.Sprintf("schema spec has unknown type %q", typ)})
	}
}

func (s *Spec) validateObject(path string, doc *value.Value, out *[]Violation) {
	if doc.Kind() != value.KindMap {
		*out = append(*out, Violation{orRoot(path), kindMismatch("map", doc)})
		return
	}

	for _, req := range s.Required {
		if _, ok := doc.Field(req); !ok {
			*out = append(*out, Violation{orRoot(path), fmt.Sprintf("missing required key %q", req)})
		}
	}

	for _, key := range doc.Keys() {
		child, _ := doc.Field(key)
		childPath := path + "/" + key

		sub := s.Dynamic
		if sub == nil {
			var known bool
			sub, known = s.Properties[key]
			if !known {
				*out = append(*out, Violation{childPath, "unknown key"})
				continue
			}
		}
		sub.validate(childPath, child, out)
	}
}

func (s *Spec) validateArray(path string, doc *value.Value, out *[]Violation) {
	if doc.Kind() != value.KindList {
		*out = append(*out, Violation{orRoot(path), kindMismatch("list", doc)})
		return
	}
	if s.Items == nil {
		return
	}
	for i, item := range doc.Items() {
		s.Items.validate(fmt.Sprintf("%s/%d", path, i), item, out)
	}
}

func (s *Spec) validateString(path string, doc *value.Value, out *[]Violation) {
	str, ok := doc.AsString()
	if !ok {
		*out = append(*out, Violation{orRoot(path), kindMismatch("string", doc)})
		return
	}
	if len(s.Enum) == 0 {
		return
	}
	for _, allowed := range s.Enum {
		if str == allowed {
			return
		}
	}
	*out = append(*out, Violation{orRoot(path),
		fmt.Sprintf("value %q not one of [%s]", str, strings.Join(s.Enum, ", "))})
}

func (s *Spec) validateInteger(path string, doc *value.Value, out *[]Violation) {
	if s.Unit && doc.Kind() == value.KindMap {
		s.validateUnitShape(path, doc, out)
		return
	}

	i, ok := doc.AsInt()
	if !ok {
		*out = append(*out, Violation{orRoot(path), kindMismatch("integer", doc)})
		return
	}
	s.checkRange(path, i, out)
}

// validateUnitShape admits the structured {value, unit} form for
// unit-typed integer fields. The unit normalizer owns the deeper
// checks (unit suffix recognition, expansion overflow).
func (s *Spec) validateUnitShape(path string, doc *value.Value, out *[]Violation) {
	for _, key := range doc.Keys() {
		if key != "value" && key != "unit" {
			*out = append(*out, Violation{path + "/" + key, "unknown key"})
		}
	}
	if v, ok := doc.Field("value"); ok {
		if _, isInt := v.AsInt(); !isInt {
			*out = append(*out, Violation{path + "/value", kindMismatch("integer", v)})
		}
	} else {
		*out = append(*out, Violation{orRoot(path), `missing required key "value"`})
	}
	if u, ok := doc.Field("unit"); ok {
		if _, isStr := u.AsString(); !isStr {
			*out = append(*out, Violation{path + "/unit", kindMismatch("string", u)})
		}
	} else {
		*out = append(*out, Violation{orRoot(path), `missing required key "unit"`})
	}
}

func (s *Spec) validateNumber(path string, doc *value.Value, out *[]Violation) {
	if i, ok := doc.AsInt(); ok {
		s.checkRange(path, i, out)
		return
	}
	if _, ok := doc.AsFloat(); ok {
		return
	}
	*out = append(*out, Violation{orRoot(path), kindMismatch("number", doc)})
}

func (s *Spec) checkRange(path string, i int64, out *[]Violation) {
	if s.Minimum != nil && i < *s.Minimum {
		*out = append(*out, Violation{orRoot(path),
			fmt.Sprintf("value %d below minimum %d", i, *s.Minimum)})
	}
	if s.Maximum != nil && i > *s.Maximum {
		*out = append(*out, Violation{orRoot(path),
			fmt.Sprintf("value %d above maximum %d", i, *s.Maximum)})
	}
}

func kindMismatch(want string, got *value.Value) string {
	return fmt.Sprintf("expected %s, got %s", want, got.Kind())
}

func orRoot(path string) string {
	if path == "" {
		return "/"
	}
	return path
}

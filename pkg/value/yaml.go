package value

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromYAML parses a YAML document into a tree Value. Duplicate map
// keys, non-string map keys and unsupported node shapes fail parsing;
// they never reach the application engine.
//
// A bare word such as "on" or "yes" classifies as a boolean, not a
// string. Operators who need the literal word in a string-typed field
// must quote it.
func FromYAML(data []byte) (*Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return NewMap(), nil
	}
	return fromNode(root.Content[0])
}

func fromNode(n *yaml.Node) (*Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.ScalarNode:
		return fromScalar(n)
	case yaml.SequenceNode:
		items := make([]*Value, 0, len(n.Content))
		for _, child := range n.Content {
			item, err := fromNode(child)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return List(items...), nil
	case yaml.MappingNode:
		m := NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode := n.Content[i]
			if keyNode.Kind != yaml.ScalarNode || keyNode.Tag != "!!str" {
				return nil, fmt.Errorf("line %d: map keys must be plain strings", keyNode.Line)
			}
			child, err := fromNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			if !m.Put(keyNode.Value, child) {
				return nil, fmt.Errorf("line %d: duplicate key %q", keyNode.Line, keyNode.Value)
			}
		}
		return m, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported node shape", n.Line)
	}
}

func fromScalar(n *yaml.Node) (*Value, error) {
	switch n.Tag {
	case "!!null":
		return Null(), nil
	case "!!bool":
		b, err := parseYAMLBool(n.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Bool(b), nil
	case "!!int":
		i, err := parseYAMLInt(n.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid integer %q", n.Line, n.Value)
		}
		return Int(i), nil
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid float %q", n.Line, n.Value)
		}
		return Float(f), nil
	case "!!str", "!!timestamp":
		// The YAML 1.2 resolver tags bare 1.1 boolean words (yes, on,
		// off, no) as strings. The server's documents have always read
		// them as booleans, so the classification is kept; quoting
		// yields the literal word.
		if n.Style == 0 {
			if b, ok := boolWord(n.Value); ok {
				return Bool(b), nil
			}
		}
		return String(n.Value), nil
	default:
		return nil, fmt.Errorf("line %d: unsupported scalar shape %s", n.Line, n.Tag)
	}
}

func parseYAMLBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true, nil
	case "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}

// boolWord classifies the YAML 1.1 boolean words the resolver no
// longer tags as booleans.
func boolWord(s string) (b, ok bool) {
	switch strings.ToLower(s) {
	case "yes", "on":
		return true, true
	case "no", "off":
		return false, true
	default:
		return false, false
	}
}

func parseYAMLInt(s string) (int64, error) {
	// Base 0 accepts the 0x/0o/0b forms the YAML resolver tags as int.
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return i, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

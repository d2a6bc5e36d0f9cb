package queryir

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// OrderEntry is one field -> direction pair of an OrderMap.
type OrderEntry struct {
	Field     string
	Direction string
}

// OrderMap is an insertion-ordered field -> direction mapping.
//
// Go maps do not keep key order, but the order of an ORDER mapping is
// significant (primary, secondary, ... sort keys). OrderMap decodes from a
// YAML or JSON object while keeping its keys in document order.
type OrderMap []OrderEntry

// NewOrderMap builds an OrderMap from alternating field, direction strings.
// A trailing field without a direction gets the default direction.
func NewOrderMap(pairs ...string) OrderMap {
	m := make(OrderMap, 0, (len(pairs)+1)/2)
	for i := 0; i < len(pairs); i += 2 {
		e := OrderEntry{Field: pairs[i]}
		if i+1 < len(pairs) {
			e.Direction = pairs[i+1]
		}
		m = append(m, e)
	}
	return m
}

// UnmarshalYAML decodes a YAML mapping, keeping key order.
// A null direction is treated as the default.
func (m *OrderMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*m = OrderMap{}
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: order must be a mapping of field to direction", node.Line)
	}

	out := make(OrderMap, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: order key must be a scalar", key.Line)
		}
		entry := OrderEntry{Field: key.Value}
		switch {
		case val.Kind == yaml.ScalarNode && val.Tag == "!!null":
		case val.Kind == yaml.ScalarNode:
			entry.Direction = val.Value
		default:
			return fmt.Errorf("line %d: direction for %q must be a scalar", val.Line, key.Value)
		}
		out = append(out, entry)
	}
	*m = out
	return nil
}

// MarshalYAML encodes the map as a YAML mapping in entry order.
func (m OrderMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range m {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Field},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Direction},
		)
	}
	return node, nil
}

// UnmarshalJSON decodes a JSON object, keeping key order.
func (m *OrderMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = OrderMap{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("order must be a JSON object of field to direction")
	}

	out := OrderMap{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		entry := OrderEntry{Field: key}
		switch v := valTok.(type) {
		case nil:
		case string:
			entry.Direction = v
		default:
			return fmt.Errorf("direction for %q must be a string", key)
		}
		out = append(out, entry)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

// MarshalJSON encodes the map as a JSON object in entry order.
func (m OrderMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Field)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Direction)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

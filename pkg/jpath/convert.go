package jpath

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FromJSON decodes JSON bytes into a Value tree, walking the token stream
// directly rather than decoding through map[string]interface{} so that
// Object key order matches the order keys appear in the source document
// (spec §3's Object ordering invariant) instead of Go's unordered map
// iteration.
func FromJSON(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, fmt.Errorf("jpath: invalid JSON: %w", err)
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeJSONToken(dec, tok)
}

func decodeJSONToken(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return NewBool(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return NewInt(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", t.String())
		}
		return NewFloat(f), nil
	case string:
		return NewString(t), nil
	case json.Delim:
		switch t {
		case '[':
			var items []*Value
			for dec.More() {
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				items = append(items, v)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return NewArray(items), nil
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key must be a string, got %v", keyTok)
				}
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, v)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return NewObjectValue(obj), nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	default:
		return nil, fmt.Errorf("unsupported JSON token %v (%T)", tok, tok)
	}
}

// FromYAML decodes YAML bytes into a Value tree. It unmarshals into a
// yaml.Node rather than map[string]interface{}/[]interface{}: yaml.v3
// preserves mapping key order in yaml.Node, which decodeYAMLNode walks
// directly for the same reason FromJSON avoids map[string]interface{}.
func FromYAML(data []byte) (*Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("jpath: invalid YAML: %w", err)
	}
	if len(doc.Content) == 0 {
		return Null(), nil
	}
	return decodeYAMLNode(doc.Content[0])
}

func decodeYAMLNode(n *yaml.Node) (*Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return decodeYAMLNode(n.Content[0])
	case yaml.ScalarNode:
		return decodeYAMLScalar(n)
	case yaml.SequenceNode:
		items := make([]*Value, len(n.Content))
		for i, c := range n.Content {
			v, err := decodeYAMLNode(c)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return NewArray(items), nil
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			v, err := decodeYAMLNode(valNode)
			if err != nil {
				return nil, err
			}
			obj.Set(keyNode.Value, v)
		}
		return NewObjectValue(obj), nil
	case yaml.AliasNode:
		return decodeYAMLNode(n.Alias)
	default:
		return Null(), nil
	}
}

func decodeYAMLScalar(n *yaml.Node) (*Value, error) {
	var raw interface{}
	if err := n.Decode(&raw); err != nil {
		return nil, err
	}
	switch t := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return NewBool(t), nil
	case int:
		return NewInt(int64(t)), nil
	case int64:
		return NewInt(t), nil
	case float64:
		return NewFloat(t), nil
	case string:
		return NewString(t), nil
	default:
		return NewString(n.Value), nil
	}
}

// ToJSON encodes v back out to JSON, preserving Object key order -- writing
// the object/array brackets by hand rather than going through
// encoding/json's map[string]interface{} encoding, which would re-sort keys
// alphabetically and violate spec §3's Object ordering invariant.
func (v *Value) ToJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeJSON(buf *bytes.Buffer, v *Value) error {
	switch v.Kind() {
	case KindArray:
		buf.WriteByte('[')
		for i, el := range v.Array() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeJSON(buf, el); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case KindObject:
		buf.WriteByte('{')
		first := true
		for pair := v.ObjectValue().Oldest(); pair != nil; pair = pair.Next() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			keyJSON, err := json.Marshal(pair.Key)
			if err != nil {
				return err
			}
			buf.Write(keyJSON)
			buf.WriteByte(':')
			if err := encodeJSON(buf, pair.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	default:
		scalarJSON, err := json.Marshal(toGo(v))
		if err != nil {
			return err
		}
		buf.Write(scalarJSON)
		return nil
	}
}

// ToYAML encodes v back out to YAML, preserving Object key order.
func (v *Value) ToYAML() ([]byte, error) {
	return yaml.Marshal(toYAMLNode(v))
}

// toGo converts a scalar Value into plain Go data for encoding/json;
// encodeJSON and toYAMLNode only call this for non-container Values, so key
// order never goes through Go's (unordered) map encoding path.
func toGo(v *Value) interface{} {
	switch v.Kind() {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool()
	case KindInt:
		return v.Int()
	case KindFloat:
		return v.Float()
	case KindString:
		return v.Raw()
	default:
		return nil
	}
}

func toYAMLNode(v *Value) *yaml.Node {
	switch v.Kind() {
	case KindObject:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for pair := v.ObjectValue().Oldest(); pair != nil; pair = pair.Next() {
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: pair.Key})
			n.Content = append(n.Content, toYAMLNode(pair.Value))
		}
		return n
	case KindArray:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, el := range v.Array() {
			n.Content = append(n.Content, toYAMLNode(el))
		}
		return n
	default:
		var n yaml.Node
		_ = n.Encode(toGo(v))
		return &n
	}
}

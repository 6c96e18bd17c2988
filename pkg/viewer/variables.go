package viewer

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Variable is a design variable or response keyed by its absolute path.
type Variable struct {
	Path string
	Meta map[string]any
}

// Variables is an ordered collection of variables.
//
// In JSON it is written as an object keyed by path. Arrays of path strings
// and arrays of {"name": ...} objects are accepted when decoding.
type Variables []Variable

// Paths returns the variable paths in order.
func (v Variables) Paths() []string {
	paths := make([]string, len(v))
	for i, vr := range v {
		paths[i] = vr.Path
	}
	return paths
}

// Contains reports whether path is one of the variables.
func (v Variables) Contains(path string) bool {
	for _, vr := range v {
		if vr.Path == path {
			return true
		}
	}
	return false
}

// MarshalJSON writes the variables as an object in order.
func (v Variables) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, vr := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(vr.Path)
		if err != nil {
			return nil, err
		}
		meta := vr.Meta
		if meta == nil {
			meta = map[string]any{}
		}
		val, err := json.Marshal(meta)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object (in document order) or an array.
func (v *Variables) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	out := Variables{}
	switch tok {
	case nil:
		*v = nil
		return nil
	case json.Delim('{'):
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return err
			}
			var meta any
			if err := dec.Decode(&meta); err != nil {
				return fmt.Errorf("variable %v: %w", keyTok, err)
			}
			m, _ := meta.(map[string]any)
			out = append(out, Variable{Path: keyTok.(string), Meta: m})
		}
	case json.Delim('['):
		for dec.More() {
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return err
			}
			vr, err := decodeVariable(raw)
			if err != nil {
				return err
			}
			out = append(out, vr)
		}
	default:
		return fmt.Errorf("variables must be an object or array, got %v", tok)
	}

	*v = out
	return nil
}

func decodeVariable(raw json.RawMessage) (Variable, error) {
	var path string
	if err := json.Unmarshal(raw, &path); err == nil {
		return Variable{Path: path}, nil
	}
	var meta map[string]any
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Variable{}, fmt.Errorf("variable entry: %w", err)
	}
	name, _ := meta["name"].(string)
	if name == "" {
		return Variable{}, fmt.Errorf("variable entry has no name")
	}
	delete(meta, "name")
	return Variable{Path: name, Meta: meta}, nil
}

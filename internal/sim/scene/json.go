package scene

import (
	"bytes"
	"encoding/json"
	"fmt"

	"blockstack.ai/internal/sim/geom"
)

type boxCoords struct {
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

// Decode parses a {"label": {"min": [x,y,z], "max": [x,y,z]}, ...} document
// into a Scene, preserving the key order of the document. Boxes with Min > Max
// on any axis are rejected here so the rest of the engine never sees them.
func Decode(raw []byte) (*Scene, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("scene: expected object, got %v", tok)
	}

	s := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("scene: %w", err)
		}
		label, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("scene: expected label, got %v", tok)
		}
		var c boxCoords
		if err := dec.Decode(&c); err != nil {
			return nil, fmt.Errorf("scene: box %q: %w", label, err)
		}
		b := geom.Box{Min: geom.Vec3(c.Min), Max: geom.Vec3(c.Max)}
		if !b.Valid() {
			return nil, fmt.Errorf("scene: box %q has min > max", label)
		}
		if s.Has(label) {
			return nil, fmt.Errorf("scene: duplicate label %q", label)
		}
		s.Set(label, b)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	return s, nil
}

// Encode renders the scene back into the same document shape, in scene order.
func (s *Scene) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Label)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(boxCoords{Min: [3]float64(e.Box.Min), Max: [3]float64(e.Box.Max)})
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

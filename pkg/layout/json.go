package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalLayout converts a layout to indented JSON bytes. Pools, lanes,
// and nodes keep their placement order, so identical input yields
// byte-identical output.
func MarshalLayout(l Layout) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalLayout decodes a layout from JSON bytes.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("decode layout: %w", err)
	}
	return l, nil
}

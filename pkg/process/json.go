package process

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// jsonGraph is the wire form of a Graph. Procedures and items keep their
// first-seen order so a round trip reproduces identical layouts.
type jsonGraph struct {
	Procedures []jsonProcedure   `json:"procedures"`
	Tooltips   map[string]string `json:"tooltips,omitempty"`
}

type jsonProcedure struct {
	Name  string     `json:"name"`
	Items []jsonItem `json:"items"`
}

type jsonItem struct {
	ID           string   `json:"id"`
	Stakeholders []string `json:"stakeholders,omitempty"`
	Next         []string `json:"next,omitempty"`
	Level        int      `json:"level,omitempty"`
}

// MarshalGraph converts a process graph to indented JSON bytes.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes a process graph as JSON to w.
func WriteGraph(g *Graph, w io.Writer) error {
	out := jsonGraph{Tooltips: g.tooltips}
	for _, p := range g.procedures {
		jp := jsonProcedure{Name: p.Name, Items: make([]jsonItem, len(p.items))}
		for i, it := range p.items {
			jp.Items[i] = jsonItem{
				ID:           it.ID,
				Stakeholders: it.Stakeholders,
				Next:         it.Next,
				Level:        it.Level,
			}
		}
		out.Procedures = append(out.Procedures, jp)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadGraph decodes a JSON process graph from r.
func ReadGraph(r io.Reader) (*Graph, error) {
	var data jsonGraph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := NewGraph()
	for _, jp := range data.Procedures {
		p := g.ensureProcedure(jp.Name)
		for _, ji := range jp.Items {
			it := p.ensureItem(ji.ID)
			it.Stakeholders = ji.Stakeholders
			it.Next = ji.Next
			it.Level = ji.Level
			g.owner[ji.ID] = jp.Name
			if len(it.Stakeholders) == 0 {
				it.Stakeholders = []string{UnassignedStakeholder}
			}
		}
	}
	for id, tip := range data.Tooltips {
		g.tooltips[id] = tip
	}
	return g, nil
}

// Package layout computes swimlane geometry for a process graph: one pool
// per procedure, one lane per stakeholder, and one positioned node copy
// per (item, stakeholder) pair.
//
// Lane widths are driven by peak concurrent occupancy: each lane is sized
// to fit its single busiest level, not the sum across levels. Within a
// (lane, level) cell the occupants partition the lane width into equal
// slots, so siblings never overlap and the union of their slots covers the
// lane exactly.
package layout

import (
	"github.com/laneflow/laneflow/pkg/process"
)

// Config carries the fixed geometry constants of the swimlane layout.
// All values are user units (pixels in the emitted document).
type Config struct {
	NodeWidth        float64 `json:"node_width"         toml:"node_width"`
	NodeHeight       float64 `json:"node_height"        toml:"node_height"`
	HPadding         float64 `json:"h_padding"          toml:"h_padding"`
	VerticalSpacing  float64 `json:"vertical_spacing"   toml:"vertical_spacing"`
	LaneHeaderHeight float64 `json:"lane_header_height" toml:"lane_header_height"`
	PoolHeaderHeight float64 `json:"pool_header_height" toml:"pool_header_height"`
	InterPoolGap     float64 `json:"inter_pool_gap"     toml:"inter_pool_gap"`
	OriginX          float64 `json:"origin_x"           toml:"origin_x"`
	OriginY          float64 `json:"origin_y"           toml:"origin_y"`
	PoolBottomMargin float64 `json:"pool_bottom_margin" toml:"pool_bottom_margin"`
	NodeTopMargin    float64 `json:"node_top_margin"    toml:"node_top_margin"`
}

// DefaultConfig returns the standard geometry constants.
func DefaultConfig() Config {
	return Config{
		NodeWidth:        160,
		NodeHeight:       60,
		HPadding:         20,
		VerticalSpacing:  100,
		LaneHeaderHeight: 30,
		PoolHeaderHeight: 40,
		InterPoolGap:     100,
		OriginX:          50,
		OriginY:          50,
		PoolBottomMargin: 60,
		NodeTopMargin:    10,
	}
}

// Layout is the computed geometry for a whole process graph.
type Layout struct {
	Pools []Pool `json:"pools"`
}

// Pool is the laid-out container for one procedure. X and Y are absolute
// canvas coordinates.
type Pool struct {
	Name    string  `json:"name"`
	Label   string  `json:"label"`
	Tooltip string  `json:"tooltip,omitempty"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Lanes   []Lane  `json:"lanes"`
}

// Lane is one stakeholder lane. X and Y are relative to the owning pool.
type Lane struct {
	Stakeholder string  `json:"stakeholder"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Nodes       []Node  `json:"nodes"`
}

// Node is one visual copy of an item inside a lane. An item with k
// stakeholders yields k nodes, one per lane, all sharing the same label.
// X and Y are relative to the owning lane.
type Node struct {
	ItemID      string  `json:"item_id"`
	Stakeholder string  `json:"stakeholder"`
	Label       string  `json:"label"`
	Level       int     `json:"level"`
	Shared      bool    `json:"shared"`
	Tooltip     string  `json:"tooltip,omitempty"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
}

// Occupancy counts, per stakeholder lane, how many item copies land on
// each level. An item with k stakeholders contributes one occupant to each
// of its k lanes at its level.
func Occupancy(p *process.Procedure) map[string]map[int]int {
	counts := make(map[string]map[int]int)
	for _, it := range p.Items() {
		for _, sh := range it.Stakeholders {
			if counts[sh] == nil {
				counts[sh] = make(map[int]int)
			}
			counts[sh][it.Level]++
		}
	}
	return counts
}

// LaneWidths sizes every lane of the procedure to its peak occupancy:
// width = peak * (node width + h padding) + h padding.
func LaneWidths(p *process.Procedure, cfg Config) map[string]float64 {
	counts := Occupancy(p)
	widths := make(map[string]float64)
	for _, sh := range p.Stakeholders() {
		peak := 1
		for _, n := range counts[sh] {
			if n > peak {
				peak = n
			}
		}
		widths[sh] = float64(peak)*(cfg.NodeWidth+cfg.HPadding) + cfg.HPadding
	}
	return widths
}

// Compute lays out the whole graph. Levels are (re)assigned per procedure
// before placement. Procedures without items contribute no pool.
func Compute(g *process.Graph, cfg Config) Layout {
	var out Layout
	currentX := cfg.OriginX

	for _, p := range g.Procedures() {
		if p.ItemCount() == 0 {
			continue
		}

		process.AssignLevels(p)
		pool := computePool(g, p, cfg, currentX)
		out.Pools = append(out.Pools, pool)
		currentX += pool.Width + cfg.InterPoolGap
	}

	return out
}

func computePool(g *process.Graph, p *process.Procedure, cfg Config, x float64) Pool {
	stakeholders := p.Stakeholders()
	counts := Occupancy(p)
	widths := LaneWidths(p, cfg)

	var poolWidth float64
	for _, sh := range stakeholders {
		poolWidth += widths[sh]
	}
	poolHeight := float64(process.MaxLevel(p)+1)*cfg.VerticalSpacing +
		cfg.LaneHeaderHeight + cfg.PoolBottomMargin

	pool := Pool{
		Name:   p.Name,
		Label:  p.Label(),
		X:      x,
		Y:      cfg.OriginY,
		Width:  poolWidth,
		Height: poolHeight,
	}
	if tip, ok := g.Tooltip(p.Name); ok {
		pool.Tooltip = tip
	}

	// Lanes in sorted stakeholder order, contiguous left to right.
	laneIndex := make(map[string]int, len(stakeholders))
	var laneX float64
	for i, sh := range stakeholders {
		pool.Lanes = append(pool.Lanes, Lane{
			Stakeholder: sh,
			X:           laneX,
			Y:           cfg.PoolHeaderHeight,
			Width:       widths[sh],
			Height:      poolHeight - cfg.PoolHeaderHeight,
		})
		laneIndex[sh] = i
		laneX += widths[sh]
	}

	// Item-major placement: the i-th copy landing in a (lane, level) cell
	// takes the i-th of the cell's equal slots.
	placed := make(map[string]map[int]int)
	for _, it := range p.Items() {
		tooltip, _ := g.Tooltip(it.ID)
		for _, sh := range it.Stakeholders {
			if placed[sh] == nil {
				placed[sh] = make(map[int]int)
			}
			slot := placed[sh][it.Level]
			placed[sh][it.Level]++

			total := counts[sh][it.Level]
			slotWidth := widths[sh] / float64(total)

			lane := &pool.Lanes[laneIndex[sh]]
			lane.Nodes = append(lane.Nodes, Node{
				ItemID:      it.ID,
				Stakeholder: sh,
				Label:       it.Label(),
				Level:       it.Level,
				Shared:      it.Shared(),
				Tooltip:     tooltip,
				X:           slotWidth*float64(slot) + (slotWidth-cfg.NodeWidth)/2,
				Y:           cfg.LaneHeaderHeight + cfg.NodeTopMargin + float64(it.Level)*cfg.VerticalSpacing,
				Width:       cfg.NodeWidth,
				Height:      cfg.NodeHeight,
			})
		}
	}

	return pool
}

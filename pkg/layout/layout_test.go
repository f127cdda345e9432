package layout

import (
	"reflect"
	"testing"

	"github.com/laneflow/laneflow/pkg/process"
)

const twoLaneInput = `P1 -- type --> Procedure
P1 -- hasSequencedItem --> S1
S1 -- hasStakeholder --> ATC
S1 -- hasNext --> S2
P1 -- hasSequencedItem --> S2
S2 -- hasStakeholder --> Airline
`

func TestCompute_SpecScenario(t *testing.T) {
	g := process.BuildText(twoLaneInput)
	l := Compute(g, DefaultConfig())

	if len(l.Pools) != 1 {
		t.Fatalf("pools = %d, want 1", len(l.Pools))
	}
	pool := l.Pools[0]
	if pool.Name != "P1" {
		t.Errorf("pool name = %q, want P1", pool.Name)
	}
	if len(pool.Lanes) != 2 {
		t.Fatalf("lanes = %d, want 2", len(pool.Lanes))
	}
	if pool.Lanes[0].Stakeholder != "ATC" || pool.Lanes[1].Stakeholder != "Airline" {
		t.Errorf("lane order = [%s %s], want [ATC Airline]",
			pool.Lanes[0].Stakeholder, pool.Lanes[1].Stakeholder)
	}

	s1, _ := g.Item("S1")
	s2, _ := g.Item("S2")
	if s1.Level != 0 || s2.Level != 1 {
		t.Errorf("levels = S1:%d S2:%d, want 0 and 1", s1.Level, s2.Level)
	}
}

func TestCompute_EmptyProcedureSkipped(t *testing.T) {
	g := process.BuildText(`Empty -- type --> Procedure
P1 -- hasSequencedItem --> S1
`)
	l := Compute(g, DefaultConfig())
	if len(l.Pools) != 1 {
		t.Fatalf("pools = %d, want 1 (empty procedure contributes no pool)", len(l.Pools))
	}
	if l.Pools[0].Name != "P1" {
		t.Errorf("pool = %q, want P1", l.Pools[0].Name)
	}
}

func TestOccupancy_SharedItemCountsInEveryLane(t *testing.T) {
	g := process.BuildText(`P1 -- hasSequencedItem --> S1
S1 -- hasStakeholder --> A
S1 -- hasStakeholder --> B
S1 -- hasStakeholder --> C
`)
	p, _ := g.Procedure("P1")
	process.AssignLevels(p)

	occ := Occupancy(p)
	for _, sh := range []string{"A", "B", "C"} {
		if occ[sh][0] != 1 {
			t.Errorf("occupancy[%s][0] = %d, want 1", sh, occ[sh][0])
		}
	}
}

func TestLaneWidths_PeakOccupancy(t *testing.T) {
	// Lane A holds two items at level 0 and one at level 1: peak is 2.
	g := process.BuildText(`P1 -- hasSequencedItem --> S1
P1 -- hasSequencedItem --> S2
P1 -- hasSequencedItem --> S3
S1 -- hasStakeholder --> A
S2 -- hasStakeholder --> A
S3 -- hasStakeholder --> A
S1 -- hasNext --> S3
`)
	p, _ := g.Procedure("P1")
	process.AssignLevels(p)

	cfg := DefaultConfig()
	widths := LaneWidths(p, cfg)

	want := 2*(cfg.NodeWidth+cfg.HPadding) + cfg.HPadding
	if widths["A"] != want {
		t.Errorf("lane width = %v, want %v (peak 2, not sum 3)", widths["A"], want)
	}
}

func TestCompute_PoolGeometry(t *testing.T) {
	g := process.BuildText(twoLaneInput)
	cfg := DefaultConfig()
	l := Compute(g, cfg)

	pool := l.Pools[0]
	laneWidth := cfg.NodeWidth + cfg.HPadding + cfg.HPadding
	if pool.Width != 2*laneWidth {
		t.Errorf("pool width = %v, want %v (sum of lane widths)", pool.Width, 2*laneWidth)
	}
	wantHeight := 2*cfg.VerticalSpacing + cfg.LaneHeaderHeight + cfg.PoolBottomMargin
	if pool.Height != wantHeight {
		t.Errorf("pool height = %v, want %v", pool.Height, wantHeight)
	}

	// Lanes are contiguous left to right.
	if pool.Lanes[0].X != 0 || pool.Lanes[1].X != laneWidth {
		t.Errorf("lane xs = %v, %v; want 0 and %v", pool.Lanes[0].X, pool.Lanes[1].X, laneWidth)
	}
	for _, lane := range pool.Lanes {
		if lane.Y != cfg.PoolHeaderHeight {
			t.Errorf("lane y = %v, want %v", lane.Y, cfg.PoolHeaderHeight)
		}
		if lane.Height != pool.Height-cfg.PoolHeaderHeight {
			t.Errorf("lane height = %v, want %v", lane.Height, pool.Height-cfg.PoolHeaderHeight)
		}
	}
}

func TestCompute_PoolsOffsetByRunningWidth(t *testing.T) {
	g := process.BuildText(`P1 -- hasSequencedItem --> A1
P2 -- hasSequencedItem --> B1
`)
	cfg := DefaultConfig()
	l := Compute(g, cfg)

	if len(l.Pools) != 2 {
		t.Fatalf("pools = %d, want 2", len(l.Pools))
	}
	first, second := l.Pools[0], l.Pools[1]
	if first.X != cfg.OriginX {
		t.Errorf("first pool x = %v, want %v", first.X, cfg.OriginX)
	}
	if want := first.X + first.Width + cfg.InterPoolGap; second.X != want {
		t.Errorf("second pool x = %v, want %v", second.X, want)
	}
}

func TestCompute_CopyCount(t *testing.T) {
	g := process.BuildText(`P1 -- hasSequencedItem --> S1
S1 -- hasStakeholder --> A
S1 -- hasStakeholder --> B
S1 -- hasStakeholder --> C
`)
	l := Compute(g, DefaultConfig())

	var copies int
	for _, lane := range l.Pools[0].Lanes {
		for _, n := range lane.Nodes {
			if n.ItemID == "S1" {
				copies++
				if !n.Shared {
					t.Errorf("copy in lane %s not marked shared", lane.Stakeholder)
				}
			}
		}
	}
	if copies != 3 {
		t.Errorf("copies = %d, want 3 (one per stakeholder lane)", copies)
	}
}

func TestCompute_SlotPartition(t *testing.T) {
	// Two items share lane A at level 0: disjoint half-lane slots whose
	// union covers the lane width.
	g := process.BuildText(`P1 -- hasSequencedItem --> S1
P1 -- hasSequencedItem --> S2
S1 -- hasStakeholder --> A
S2 -- hasStakeholder --> A
`)
	cfg := DefaultConfig()
	l := Compute(g, cfg)

	lane := l.Pools[0].Lanes[0]
	if len(lane.Nodes) != 2 {
		t.Fatalf("lane nodes = %d, want 2", len(lane.Nodes))
	}

	slotWidth := lane.Width / 2
	for i, n := range lane.Nodes {
		wantX := slotWidth*float64(i) + (slotWidth-cfg.NodeWidth)/2
		if n.X != wantX {
			t.Errorf("node %d x = %v, want %v", i, n.X, wantX)
		}
	}

	// Rectangles in the same cell must not overlap.
	left, right := lane.Nodes[0], lane.Nodes[1]
	if left.X+left.Width > right.X {
		t.Errorf("overlap: [%v,%v] vs [%v,%v]", left.X, left.X+left.Width, right.X, right.X+right.Width)
	}
}

func TestCompute_NodeVerticalPosition(t *testing.T) {
	g := process.BuildText(twoLaneInput)
	cfg := DefaultConfig()
	l := Compute(g, cfg)

	for _, lane := range l.Pools[0].Lanes {
		for _, n := range lane.Nodes {
			want := cfg.LaneHeaderHeight + cfg.NodeTopMargin + float64(n.Level)*cfg.VerticalSpacing
			if n.Y != want {
				t.Errorf("node %s y = %v, want %v", n.ItemID, n.Y, want)
			}
		}
	}
}

func TestCompute_Deterministic(t *testing.T) {
	first := Compute(process.BuildText(twoLaneInput), DefaultConfig())
	second := Compute(process.BuildText(twoLaneInput), DefaultConfig())
	if !reflect.DeepEqual(first, second) {
		t.Error("identical input must produce identical layout")
	}
}

func TestLayout_JSONRoundTrip(t *testing.T) {
	l := Compute(process.BuildText(twoLaneInput), DefaultConfig())

	data, err := MarshalLayout(l)
	if err != nil {
		t.Fatalf("MarshalLayout() error = %v", err)
	}
	got, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout() error = %v", err)
	}
	if !reflect.DeepEqual(got, l) {
		t.Error("layout lost in JSON round trip")
	}
}

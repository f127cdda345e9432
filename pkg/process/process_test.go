package process

import (
	"bytes"
	"reflect"
	"testing"
)

const basicInput = `P1 -- type --> Procedure
P1 -- hasSequencedItem --> P1:_Request_pushback
P1 -- hasSequencedItem --> P1:_Approve_pushback
P1:_Request_pushback -- hasStakeholder --> Flight_Crew
P1:_Approve_pushback -- hasStakeholder --> ATC
P1:_Request_pushback -- hasNext --> P1:_Approve_pushback
`

func TestBuild_Basic(t *testing.T) {
	g := BuildText(basicInput)

	p, ok := g.Procedure("P1")
	if !ok {
		t.Fatal("procedure P1 not created")
	}
	if p.ItemCount() != 2 {
		t.Fatalf("ItemCount() = %d, want 2", p.ItemCount())
	}

	it, ok := p.Item("P1:_Request_pushback")
	if !ok {
		t.Fatal("item P1:_Request_pushback not created")
	}
	if !reflect.DeepEqual(it.Stakeholders, []string{"Flight_Crew"}) {
		t.Errorf("Stakeholders = %v, want [Flight_Crew]", it.Stakeholders)
	}
	if !reflect.DeepEqual(it.Next, []string{"P1:_Approve_pushback"}) {
		t.Errorf("Next = %v, want [P1:_Approve_pushback]", it.Next)
	}
}

func TestBuild_ProcedureCreatedByItemTriple(t *testing.T) {
	// hasSequencedItem creates the procedure implicitly, no type triple needed.
	g := BuildText("P2 -- hasSequencedItem --> P2:_Step\n")
	if _, ok := g.Procedure("P2"); !ok {
		t.Error("procedure P2 should be created implicitly")
	}
}

func TestBuild_TypeObjectCaseSensitive(t *testing.T) {
	g := BuildText("P1 -- type --> procedure\n")
	if len(g.Procedures()) != 0 {
		t.Error("lowercase 'procedure' object must not declare a procedure")
	}
}

func TestBuild_PredicateCaseInsensitive(t *testing.T) {
	g := BuildText("P1 -- HASSEQUENCEDITEM --> P1:_Step\n")
	if _, ok := g.Item("P1:_Step"); !ok {
		t.Error("uppercase predicate should still be dispatched")
	}
}

func TestBuild_RelationBeforeStructure(t *testing.T) {
	// The two-phase build makes line order irrelevant within one input:
	// the stakeholder triple precedes the ownership triple and still lands.
	g := BuildText(`S1 -- hasStakeholder --> ATC
P1 -- hasSequencedItem --> S1
`)
	it, ok := g.Item("S1")
	if !ok {
		t.Fatal("item S1 not created")
	}
	if !reflect.DeepEqual(it.Stakeholders, []string{"ATC"}) {
		t.Errorf("Stakeholders = %v, want [ATC]", it.Stakeholders)
	}
}

func TestBuild_DroppedReference(t *testing.T) {
	// S2 never receives hasSequencedItem, so its relation triples vanish.
	g := BuildText(`P1 -- hasSequencedItem --> S1
S2 -- hasStakeholder --> ATC
S2 -- hasNext --> S1
`)
	if _, ok := g.Item("S2"); ok {
		t.Error("S2 should not exist in the graph")
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", g.EdgeCount())
	}
}

func TestBuild_UnassignedFallback(t *testing.T) {
	g := BuildText("P1 -- hasSequencedItem --> S1\n")
	it, _ := g.Item("S1")
	if !reflect.DeepEqual(it.Stakeholders, []string{UnassignedStakeholder}) {
		t.Errorf("Stakeholders = %v, want [%s]", it.Stakeholders, UnassignedStakeholder)
	}
}

func TestBuild_StakeholderDuplicatesSuppressed(t *testing.T) {
	g := BuildText(`P1 -- hasSequencedItem --> S1
S1 -- hasStakeholder --> ATC
S1 -- hasStakeholder --> ATC
S1 -- hasStakeholder --> Airline
`)
	it, _ := g.Item("S1")
	if !reflect.DeepEqual(it.Stakeholders, []string{"ATC", "Airline"}) {
		t.Errorf("Stakeholders = %v, want [ATC Airline]", it.Stakeholders)
	}
}

func TestBuild_NextDuplicatesKept(t *testing.T) {
	g := BuildText(`P1 -- hasSequencedItem --> S1
P1 -- hasSequencedItem --> S2
S1 -- hasNext --> S2
S1 -- hasNext --> S2
`)
	it, _ := g.Item("S1")
	if len(it.Next) != 2 {
		t.Errorf("Next = %v, want duplicate successor kept", it.Next)
	}
}

func TestBuild_Tooltips(t *testing.T) {
	g := BuildText(`P1 -- hasSequencedItem --> S1
S1 -- SourceText --> The crew requests pushback.
P1 -- SourceText --> Pushback procedure.
`)
	if tip, ok := g.Tooltip("S1"); !ok || tip != "The crew requests pushback." {
		t.Errorf("Tooltip(S1) = %q, %v", tip, ok)
	}
	if tip, ok := g.Tooltip("P1"); !ok || tip != "Pushback procedure." {
		t.Errorf("Tooltip(P1) = %q, %v", tip, ok)
	}
	// SourceText never creates graph entities.
	if _, ok := g.Item("S1"); !ok {
		t.Fatal("S1 missing")
	}
	if len(g.Procedures()) != 1 {
		t.Errorf("Procedures() = %d, want 1", len(g.Procedures()))
	}
}

func TestItem_Label(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"P1:_Request_pushback", " Request pushback"},
		{"Plain_name", "Plain name"},
		{"a:b:c_d", "c d"},
	}
	for _, tt := range tests {
		it := &Item{ID: tt.id}
		if got := it.Label(); got != tt.want {
			t.Errorf("Label(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestProcedure_StakeholdersSorted(t *testing.T) {
	g := BuildText(`P1 -- hasSequencedItem --> S1
P1 -- hasSequencedItem --> S2
S1 -- hasStakeholder --> Zulu
S2 -- hasStakeholder --> Alpha
`)
	p, _ := g.Procedure("P1")
	if got := p.Stakeholders(); !reflect.DeepEqual(got, []string{"Alpha", "Zulu"}) {
		t.Errorf("Stakeholders() = %v, want sorted [Alpha Zulu]", got)
	}
}

func TestGraph_JSONRoundTrip(t *testing.T) {
	g := BuildText(basicInput)
	for _, p := range g.Procedures() {
		AssignLevels(p)
	}

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph() error = %v", err)
	}

	got, err := ReadGraph(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadGraph() error = %v", err)
	}

	if got.ItemCount() != g.ItemCount() {
		t.Errorf("ItemCount() = %d, want %d", got.ItemCount(), g.ItemCount())
	}
	it, ok := got.Item("P1:_Approve_pushback")
	if !ok {
		t.Fatal("item lost in round trip")
	}
	if it.Level != 1 {
		t.Errorf("Level = %d, want 1", it.Level)
	}
	if tip, ok := got.Tooltip("P1"); ok && tip == "" {
		t.Errorf("empty tooltip surfaced: %q", tip)
	}
}

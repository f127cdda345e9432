package cli

import (
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/laneflow/laneflow/pkg/process"
)

func pickerFixture(t *testing.T) ProcedureListModel {
	t.Helper()
	g := process.BuildText(`checkout -- type --> Procedure
checkout -- hasSequencedItem --> s1:scan
s1:scan -- hasStakeholder --> cashier
returns -- type --> Procedure
returns -- hasSequencedItem --> r1:inspect
r1:inspect -- hasStakeholder --> clerk
`)
	return NewProcedureListModel(g)
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestProcedurePickerDefaults(t *testing.T) {
	m := pickerFixture(t)

	if len(m.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(m.Entries))
	}
	for _, e := range m.Entries {
		if !e.Checked {
			t.Errorf("entry %q should start checked", e.Name)
		}
	}
	// All checked means no filter
	if m.Selected() != nil {
		t.Errorf("Selected = %v, want nil", m.Selected())
	}
}

func TestProcedurePickerToggle(t *testing.T) {
	m := pickerFixture(t)

	// Uncheck the first procedure
	next, _ := m.Update(key(" "))
	m = next.(ProcedureListModel)

	want := []string{"returns"}
	if got := m.Selected(); !reflect.DeepEqual(got, want) {
		t.Errorf("Selected = %v, want %v", got, want)
	}
}

func TestProcedurePickerToggleAll(t *testing.T) {
	m := pickerFixture(t)

	// "a" with all checked unchecks everything
	next, _ := m.Update(key("a"))
	m = next.(ProcedureListModel)
	for _, e := range m.Entries {
		if e.Checked {
			t.Errorf("entry %q should be unchecked", e.Name)
		}
	}

	// "a" again restores all
	next, _ = m.Update(key("a"))
	m = next.(ProcedureListModel)
	if m.Selected() != nil {
		t.Errorf("Selected = %v, want nil after re-checking all", m.Selected())
	}
}

func TestProcedurePickerNavigationAndConfirm(t *testing.T) {
	m := pickerFixture(t)

	next, _ := m.Update(key("j"))
	m = next.(ProcedureListModel)
	if m.Cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.Cursor)
	}

	// Uncheck "returns", confirm
	next, _ = m.Update(key(" "))
	m = next.(ProcedureListModel)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(ProcedureListModel)

	if !m.Confirmed {
		t.Error("enter should confirm the selection")
	}
	if cmd == nil {
		t.Error("enter should quit the program")
	}
	want := []string{"checkout"}
	if got := m.Selected(); !reflect.DeepEqual(got, want) {
		t.Errorf("Selected = %v, want %v", got, want)
	}
}

func TestProcedurePickerViewRenders(t *testing.T) {
	m := pickerFixture(t)
	view := m.View()
	for _, name := range []string{"checkout", "returns"} {
		if !strings.Contains(view, name) {
			t.Errorf("view should mention %q", name)
		}
	}
}

package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/laneflow/laneflow/pkg/process"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ProcedureListModel - Interactive procedure selection
// =============================================================================

// procedureEntry is one row in the procedure picker.
type procedureEntry struct {
	Name         string
	ItemCount    int
	Stakeholders int
	Checked      bool
}

// ProcedureListModel is the bubbletea model for selecting which procedures
// to render. Space toggles a procedure, "a" toggles all, enter confirms.
type ProcedureListModel struct {
	Entries   []procedureEntry
	Cursor    int
	Confirmed bool
}

// NewProcedureListModel creates a picker over the procedures of a graph,
// all checked by default.
func NewProcedureListModel(g *process.Graph) ProcedureListModel {
	m := ProcedureListModel{}
	for _, p := range g.Procedures() {
		m.Entries = append(m.Entries, procedureEntry{
			Name:         p.Name,
			ItemCount:    p.ItemCount(),
			Stakeholders: len(p.Stakeholders()),
			Checked:      true,
		})
	}
	return m
}

// Selected returns the checked procedure names in graph order, or nil if
// everything is checked (meaning: no filter).
func (m ProcedureListModel) Selected() []string {
	var names []string
	for _, e := range m.Entries {
		if e.Checked {
			names = append(names, e.Name)
		}
	}
	if len(names) == len(m.Entries) {
		return nil
	}
	return names
}

func (m ProcedureListModel) Init() tea.Cmd {
	return nil
}

func (m ProcedureListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Entries)-1 {
				m.Cursor++
			}
		case " ":
			if len(m.Entries) > 0 {
				m.Entries[m.Cursor].Checked = !m.Entries[m.Cursor].Checked
			}
		case "a":
			all := true
			for _, e := range m.Entries {
				if !e.Checked {
					all = false
					break
				}
			}
			for i := range m.Entries {
				m.Entries[i].Checked = !all
			}
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ProcedureListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Procedures"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	for i, e := range m.Entries {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		check := "[ ]"
		if e.Checked {
			check = StyleSuccess.Render("[x]")
		}

		detail := fmt.Sprintf("%d items, %d stakeholders", e.ItemCount, e.Stakeholders)
		line := fmt.Sprintf("%s%s %-30s  %s", cursor, check, e.Name, listDimStyle.Render(detail))

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else if e.Checked {
			b.WriteString(listNormalStyle.Render(line))
		} else {
			b.WriteString(listDimStyle.Render(line))
		}
		b.WriteString("\n")
	}

	checked := 0
	for _, e := range m.Entries {
		if e.Checked {
			checked++
		}
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d selected]", checked, len(m.Entries))))

	return b.String()
}

// selectProcedures runs the interactive picker and returns the chosen
// procedure filter. A nil slice means all procedures.
func selectProcedures(g *process.Graph) ([]string, error) {
	model := NewProcedureListModel(g)
	if len(model.Entries) == 0 {
		return nil, nil
	}

	prog := tea.NewProgram(model)
	final, err := prog.Run()
	if err != nil {
		return nil, fmt.Errorf("run procedure picker: %w", err)
	}

	result, ok := final.(ProcedureListModel)
	if !ok || !result.Confirmed {
		return nil, errAborted
	}
	if sel := result.Selected(); sel != nil {
		return sel, nil
	}
	return nil, nil
}

// errAborted signals that the user quit the picker without confirming.
var errAborted = fmt.Errorf("selection aborted")

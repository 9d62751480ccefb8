package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/peerpin/pkg/constraints"
)

// MutationListModel is the bubbletea model for picking the changes fix
// applies. Every change starts selected.
type MutationListModel struct {
	Mutations []constraints.Mutation
	Picked    []bool
	Cursor    int
	Height    int
	Offset    int

	// Confirmed is set when the user accepts the selection; quitting leaves
	// it false.
	Confirmed bool
}

// NewMutationListModel creates a new mutation list model.
func NewMutationListModel(muts []constraints.Mutation) MutationListModel {
	picked := make([]bool, len(muts))
	for i := range picked {
		picked[i] = true
	}
	return MutationListModel{
		Mutations: muts,
		Picked:    picked,
		Height:    15,
	}
}

func (m MutationListModel) Init() tea.Cmd {
	return nil
}

func (m MutationListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Mutations)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Picked) > 0 {
				m.Picked[m.Cursor] = !m.Picked[m.Cursor]
			}
		case "a":
			all := m.count() < len(m.Picked)
			for i := range m.Picked {
				m.Picked[i] = all
			}
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m MutationListModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Select Changes"))
	b.WriteString("\n")
	b.WriteString(styleDim.Render("↑/↓ navigate  space toggle  a all  ⏎ apply  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Mutations))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		mut := m.Mutations[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := "[ ]"
		if m.Picked[i] {
			box = "[x]"
		}
		rows = append(rows, []string{cursor + box, mut.Workspace, strings.Join(mut.Path, "."), mut.Value})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers("", "Workspace", "Field", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleTableHeader
			}
			idx := m.Offset + row
			if idx >= len(m.Mutations) {
				return lipgloss.NewStyle()
			}
			switch {
			case idx == m.Cursor:
				return styleTitle
			case !m.Picked[idx]:
				return styleDim
			default:
				return styleValue
			}
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(styleDim.Render(fmt.Sprintf("  %d of %d selected", m.count(), len(m.Mutations))))

	return b.String()
}

func (m MutationListModel) count() int {
	n := 0
	for _, p := range m.Picked {
		if p {
			n++
		}
	}
	return n
}

// Selected returns the picked changes in their original order, or nil when
// the selection was not confirmed.
func (m MutationListModel) Selected() []constraints.Mutation {
	if !m.Confirmed {
		return nil
	}
	out := []constraints.Mutation{}
	for i, mut := range m.Mutations {
		if m.Picked[i] {
			out = append(out, mut)
		}
	}
	return out
}

// selectMutations runs the picker. It returns nil when the user quits.
func selectMutations(muts []constraints.Mutation) ([]constraints.Mutation, error) {
	p := tea.NewProgram(NewMutationListModel(muts))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("selection: %w", err)
	}
	return final.(MutationListModel).Selected(), nil
}

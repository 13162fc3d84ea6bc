package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/schemaflow/pkg/diagram"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// TableListModel - Interactive table navigation
// =============================================================================

// TableItem is one row of the table navigator.
type TableItem struct {
	ID      string
	Title   string
	Group   string
	Columns int
	Center  diagram.Position
}

// tableItems lists the tables of g in graph order.
func tableItems(g *diagram.Graph) []TableItem {
	var items []TableItem
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Kind != diagram.KindTableHeader || n.Table == nil {
			continue
		}
		items = append(items, TableItem{
			ID:      n.ID,
			Title:   n.Table.Title,
			Group:   n.Table.Group,
			Columns: n.Table.ColumnCount,
			Center:  n.Center(),
		})
	}
	return items
}

// TableListModel is the bubbletea model for picking a table to navigate to.
type TableListModel struct {
	Tables   []TableItem
	Cursor   int
	Selected *TableItem
	Height   int
	Offset   int
}

// NewTableListModel creates a new table list model.
func NewTableListModel(tables []TableItem) TableListModel {
	return TableListModel{
		Tables: tables,
		Height: 15,
	}
}

func (m TableListModel) Init() tea.Cmd {
	return nil
}

func (m TableListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Tables)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Tables) == 0 {
				return m, tea.Quit
			}
			sel := m.Tables[m.Cursor]
			m.Selected = &sel
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

func (m TableListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Go to Table"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Tables))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		t := m.Tables[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		group := t.Group
		if group == "" {
			group = "—"
		}
		rows = append(rows, []string{cursor, t.Title, group, fmt.Sprint(t.Columns), formatPosition(t.Center)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Table", "Group", "Cols", "Center").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col >= 2 {
				return listDimStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(tbl.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Tables))))

	return b.String()
}

package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/odex-dev/odex/pkg/edm"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// EntitySetListModel - Interactive entity set selection
// =============================================================================

// BrowseEntry is one selectable entity set in the browse picker.
type BrowseEntry struct {
	SetName   string
	TypeName  string
	Keys      []string
	PropCount int
	NavCount  int
}

// buildBrowseEntries flattens a parsed metadata document into picker rows.
func buildBrowseEntries(doc *edm.Document) []BrowseEntry {
	var entries []BrowseEntry
	for _, set := range doc.EntitySets() {
		entry := BrowseEntry{SetName: set.Name, TypeName: edm.LocalName(set.EntityType)}
		if et, ok := doc.EntityType(entry.TypeName); ok {
			entry.Keys = et.Keys
			entry.PropCount = len(et.Properties)
			entry.NavCount = len(et.NavigationProperties)
		}
		entries = append(entries, entry)
	}
	return entries
}

// EntitySetListModel is the bubbletea model for interactive entity set
// selection.
type EntitySetListModel struct {
	Entries  []BrowseEntry
	Cursor   int
	Selected *BrowseEntry
	Height   int
	Offset   int
}

// NewEntitySetListModel creates a new entity set list model.
func NewEntitySetListModel(entries []BrowseEntry) EntitySetListModel {
	return EntitySetListModel{
		Entries: entries,
		Height:  15,
	}
}

func (m EntitySetListModel) Init() tea.Cmd {
	return nil
}

func (m EntitySetListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Entries)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			entry := m.Entries[m.Cursor]
			m.Selected = &entry
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

func (m EntitySetListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Entity Set"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Entries) {
		end = len(m.Entries)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		e := m.Entries[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		keys := strings.Join(e.Keys, ", ")
		if keys == "" {
			keys = "—"
		}

		rows = append(rows, []string{
			cursor,
			e.SetName,
			e.TypeName,
			keys,
			strconv.Itoa(e.PropCount),
			strconv.Itoa(e.NavCount),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Entity Set", "Type", "Key", "Props", "Navs").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Entries) {
				return lipgloss.NewStyle()
			}

			base := lipgloss.NewStyle()
			if col >= 3 {
				base = base.Foreground(colorDim)
			}
			if actualIdx == m.Cursor {
				if col < 3 {
					return base.Foreground(colorCyan).Bold(true)
				}
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Entries))))

	return b.String()
}

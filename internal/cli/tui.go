package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// wholeModel is the picker entry that selects the root.
const wholeModel = "(whole model)"

// =============================================================================
// PathPickerModel - Interactive model path selection
// =============================================================================

// PathPickerModel is the bubbletea model for choosing the subtree to draw.
// The first entry stands for the whole model.
type PathPickerModel struct {
	Paths    []string
	Cursor   int
	Height   int
	Offset   int
	Selected *string
}

// NewPathPickerModel creates a picker over the given group paths.
func NewPathPickerModel(groups []string) PathPickerModel {
	return PathPickerModel{
		Paths:  append([]string{wholeModel}, groups...),
		Height: 15,
	}
}

func (m PathPickerModel) Init() tea.Cmd {
	return nil
}

func (m PathPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Paths)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			path := ""
			if m.Cursor > 0 {
				path = m.Paths[m.Cursor]
			}
			m.Selected = &path
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m PathPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Model Path"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Paths))
	for i := m.Offset; i < end; i++ {
		p := m.Paths[i]
		depth := 0
		if i > 0 {
			depth = strings.Count(p, ".")
		}
		line := strings.Repeat("  ", depth) + leafName(p)

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render("▸ " + line))
		} else if i == 0 {
			b.WriteString(listDimStyle.Render("  " + line))
		} else {
			b.WriteString(listNormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] %s", m.Cursor+1, len(m.Paths), m.Paths[m.Cursor])))
	return b.String()
}

func leafName(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}

// pickModelPath runs the picker and returns the chosen path. ok is false
// when the user quit without choosing.
func pickModelPath(groups []string) (path string, ok bool, err error) {
	final, err := tea.NewProgram(NewPathPickerModel(groups)).Run()
	if err != nil {
		return "", false, err
	}
	m := final.(PathPickerModel)
	if m.Selected == nil {
		return "", false, nil
	}
	return *m.Selected, true, nil
}

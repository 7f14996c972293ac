package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/atlas/pkg/graph"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// algorithmHelp describes each layout algorithm in the picker.
var algorithmHelp = map[string]string{
	graph.AlgorithmTree:      "tidy tree, root at the top",
	graph.AlgorithmRadial:    "tidy tree, depth as rings around the root",
	graph.AlgorithmCommunity: "Louvain communities on a sunflower",
	graph.AlgorithmCodebase:  "circle packing of repository, directory, file, symbol",
	graph.AlgorithmBubble:    "nested bubble radii, no positions",
}

// =============================================================================
// AlgorithmPickerModel - Interactive algorithm selection
// =============================================================================

// AlgorithmPickerModel is the bubbletea model shown by `atlas layout` when
// no --algorithm is given on a terminal.
type AlgorithmPickerModel struct {
	Algorithms []string
	Cursor     int
	Selected   string
}

// NewAlgorithmPickerModel creates a picker with the cursor on def.
func NewAlgorithmPickerModel(def string) AlgorithmPickerModel {
	m := AlgorithmPickerModel{Algorithms: graph.Algorithms}
	for i, a := range m.Algorithms {
		if a == def {
			m.Cursor = i
		}
	}
	return m
}

func (m AlgorithmPickerModel) Init() tea.Cmd {
	return nil
}

func (m AlgorithmPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Algorithms)-1 {
			m.Cursor++
		}
	case "enter":
		m.Selected = m.Algorithms[m.Cursor]
		return m, tea.Quit
	}
	return m, nil
}

func (m AlgorithmPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Layout"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, a := range m.Algorithms {
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%-10s", cursor, a)))
		b.WriteString("  ")
		b.WriteString(listDimStyle.Render(algorithmHelp[a]))
		b.WriteString("\n")
	}
	return b.String()
}

// pickAlgorithm runs the picker and returns the chosen algorithm, or "" if
// the user quit.
func pickAlgorithm(def string) (string, error) {
	final, err := tea.NewProgram(NewAlgorithmPickerModel(def)).Run()
	if err != nil {
		return "", err
	}
	return final.(AlgorithmPickerModel).Selected, nil
}

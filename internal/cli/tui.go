package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/meshrules/pkg/manifest"
	"github.com/matzehuels/meshrules/pkg/scene"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// StreamPickerModel - Interactive vertex-color stream selection
// =============================================================================

// StreamPickerModel is the bubbletea model for choosing the vertex-color
// stream of an advanced rule. The last entry is always the disabled sentinel.
type StreamPickerModel struct {
	Group    string
	Streams  []string
	Current  string
	Cursor   int
	Selected *string
	Height   int
	Offset   int
}

// NewStreamPickerModel lists every vertex-color node of g in scene order.
// The cursor starts on the rule's current stream when it is still present.
func NewStreamPickerModel(group string, g *scene.Graph, current string) StreamPickerModel {
	var streams []string
	for i, c := range g.Contents() {
		if scene.IsVertexColor(c) {
			streams = append(streams, g.Name(i))
		}
	}
	streams = append(streams, manifest.DisabledStream)

	m := StreamPickerModel{Group: group, Streams: streams, Current: current, Height: 15}
	for i, s := range streams {
		if s == current {
			m.Cursor = i
			break
		}
	}
	m.scroll()
	return m
}

func (m StreamPickerModel) Init() tea.Cmd {
	return nil
}

func (m StreamPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Streams)-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = len(m.Streams) - 1
		case "enter":
			choice := m.Streams[m.Cursor]
			m.Selected = &choice
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	m.scroll()
	return m, nil
}

// scroll keeps the cursor inside the visible window.
func (m *StreamPickerModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m StreamPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Vertex color stream for " + m.Group))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Streams))
	for i := m.Offset; i < end; i++ {
		name := m.Streams[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		marker := " "
		if name == m.Current {
			marker = StyleSuccess.Render("*")
		}

		label := name
		if name == manifest.DisabledStream {
			label = name + listDimStyle.Render("  (disabled)")
		}
		line := fmt.Sprintf("%s%s %s", cursor, marker, label)

		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case name == manifest.DisabledStream:
			b.WriteString(listDimStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  * current", m.Cursor+1, len(m.Streams))))
	return b.String()
}

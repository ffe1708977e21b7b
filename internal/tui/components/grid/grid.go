package grid

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/streaklit/internal/constants"
	"github.com/julianstephens/streaklit/internal/models"
)

// DefaultColumns lays the challenge out one week per row
const DefaultColumns = 7

var (
	cellStyle = lipgloss.NewStyle().
			Width(12).
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	checkedStyle = cellStyle.
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("42")).
			Bold(true)

	futureStyle = cellStyle.
			Foreground(lipgloss.Color("240"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	gapStyle = lipgloss.NewStyle().Width(1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	statStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	achievementStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("220"))
)

// Cell is one day of a challenge
type Cell struct {
	Index   int
	Date    string
	Checked bool
	Today   bool
	Future  bool
}

// Cells builds one cell per date. Dates after today are marked Future.
func Cells(p models.Practice, dates []string, today string) []Cell {
	cells := make([]Cell, len(dates))
	for i, d := range dates {
		cells[i] = Cell{
			Index:   i,
			Date:    d,
			Checked: p.HasDay(d),
			Today:   d == today,
			Future:  d > today,
		}
	}
	return cells
}

func label(c Cell) string {
	mark := "·"
	if c.Checked {
		mark = "✓"
	}
	date := c.Date
	if t, err := time.Parse(constants.DateFormat, c.Date); err == nil {
		date = t.Format("Jan 2")
	}
	if c.Today {
		date += "*"
	}
	return fmt.Sprintf("%s %s", mark, date)
}

// Render draws cells in rows of columns. A negative cursor hides the cursor.
func Render(cells []Cell, columns, cursor int) string {
	if columns < 1 {
		columns = DefaultColumns
	}

	var rows []string
	for start := 0; start < len(cells); start += columns {
		end := min(start+columns, len(cells))
		var row []string
		for _, c := range cells[start:end] {
			style := cellStyle
			switch {
			case c.Checked:
				style = checkedStyle
			case c.Future:
				style = futureStyle
			}
			text := label(c)
			if c.Index == cursor {
				text = cursorStyle.Render("▸") + text
				style = style.Underline(true)
			}
			row = append(row, style.Render(text), gapStyle.Render(""))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// Header renders the practice name over its progress figures
func Header(p models.Practice) string {
	status := ""
	if p.IsCompleted {
		status = " ★ completed"
	}
	return titleStyle.Render(p.Name+status) + "\n" + statStyle.Render(fmt.Sprintf(
		"%d/%d days (%.0f%%)  streak %d  best %d  %d points",
		len(p.CompletedDays), p.TotalDays, p.CompletionPercent(),
		p.CurrentStreak, p.LongestStreak, p.Points))
}

// Achievements renders the unlocked achievement list
func Achievements(list []models.Achievement) string {
	if len(list) == 0 {
		return statStyle.Render("No achievements yet.")
	}
	var b strings.Builder
	for _, a := range list {
		fmt.Fprintf(&b, "%s %s\n",
			achievementStyle.Render(fmt.Sprintf("🏆 %s (+%d)", a.Title, a.Points)),
			statStyle.Render(a.Description))
	}
	return strings.TrimRight(b.String(), "\n")
}

type KeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous week"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next week"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous day"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next day"),
		),
	}
}

type Model struct {
	viewport     viewport.Model
	keys         KeyMap
	practice     *models.Practice
	achievements []models.Achievement
	cells        []Cell
	cursor       int
	columns      int
	width        int
	height       int
}

func New(width, height int) Model {
	return Model{
		viewport: viewport.New(width, height),
		keys:     DefaultKeyMap(),
		columns:  DefaultColumns,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && len(m.cells) > 0 {
		moved := true
		switch {
		case key.Matches(msg, m.keys.Left):
			m.cursor = max(m.cursor-1, 0)
		case key.Matches(msg, m.keys.Right):
			m.cursor = min(m.cursor+1, len(m.cells)-1)
		case key.Matches(msg, m.keys.Up):
			if m.cursor-m.columns >= 0 {
				m.cursor -= m.columns
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor+m.columns < len(m.cells) {
				m.cursor += m.columns
			}
		default:
			moved = false
		}
		if moved {
			m.Render()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.practice == nil {
		return "No practice selected. Pick one on the Practices tab."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.columns = DefaultColumns
	if cellWidth := cellStyle.GetWidth() + 1; width > 0 && width < cellWidth*DefaultColumns {
		m.columns = max(width/cellWidth, 1)
	}
	m.Render()
}

// SetPractice shows p. The cursor starts on today when a different practice
// is selected and stays put on refreshes of the same one.
func (m *Model) SetPractice(p models.Practice, dates []string, today string, achievements []models.Achievement) {
	same := m.practice != nil && m.practice.ID == p.ID
	m.practice = &p
	m.achievements = achievements
	m.cells = Cells(p, dates, today)

	if !same {
		m.cursor = 0
		for _, c := range m.cells {
			if c.Today {
				m.cursor = c.Index
			}
		}
	}
	m.cursor = min(m.cursor, max(len(m.cells)-1, 0))
	m.Render()
}

// Practice returns the practice on display, if any
func (m Model) Practice() (models.Practice, bool) {
	if m.practice == nil {
		return models.Practice{}, false
	}
	return *m.practice, true
}

// Clear removes the practice on display
func (m *Model) Clear() {
	m.practice = nil
	m.achievements = nil
	m.cells = nil
	m.cursor = 0
	m.Render()
}

// Cursor returns the day index under the cursor
func (m Model) Cursor() int {
	return m.cursor
}

func (m *Model) Render() {
	if m.practice == nil {
		m.viewport.SetContent("No practice loaded.")
		return
	}

	m.viewport.SetContent(strings.Join([]string{
		Header(*m.practice),
		"",
		Render(m.cells, m.columns, m.cursor),
		"",
		Achievements(m.achievements),
	}, "\n"))
}

func (m Model) Keys() KeyMap {
	return m.keys
}

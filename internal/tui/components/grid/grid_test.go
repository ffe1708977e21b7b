package grid

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/streaklit/internal/models"
)

var testDates = []string{"2024-03-01", "2024-03-02", "2024-03-03", "2024-03-04", "2024-03-05", "2024-03-06", "2024-03-07", "2024-03-08"}

func TestCells(t *testing.T) {
	p := models.Practice{TotalDays: 8, CompletedDays: []string{"2024-03-01", "2024-03-02"}}
	cells := Cells(p, testDates, "2024-03-03")

	if len(cells) != 8 {
		t.Fatalf("len = %d, want 8", len(cells))
	}
	if !cells[0].Checked || !cells[1].Checked || cells[2].Checked {
		t.Errorf("unexpected checked flags: %+v", cells[:3])
	}
	if !cells[2].Today || cells[2].Future {
		t.Errorf("cell 2 should be today: %+v", cells[2])
	}
	if !cells[3].Future {
		t.Errorf("cell 3 should be in the future: %+v", cells[3])
	}
}

func TestRenderRows(t *testing.T) {
	cells := Cells(models.Practice{}, testDates, "2024-03-01")
	out := Render(cells, 7, -1)
	if rows := strings.Count(out, "\n") + 1; rows != 2 {
		t.Errorf("rows = %d, want 2:\n%s", rows, out)
	}
	if !strings.Contains(out, "Mar 1*") {
		t.Errorf("expected today's marker:\n%s", out)
	}
	if strings.Contains(out, "▸") {
		t.Error("cursor should be hidden")
	}
}

func TestModelCursor(t *testing.T) {
	m := New(100, 20)
	p := models.Practice{ID: "p1", Name: "Run", TotalDays: 8}
	m.SetPractice(p, testDates, "2024-03-03", nil)

	if m.Cursor() != 2 {
		t.Fatalf("cursor = %d, want today's index 2", m.Cursor())
	}

	steps := []struct {
		key  tea.KeyMsg
		want int
	}{
		{tea.KeyMsg{Type: tea.KeyRight}, 3},
		{tea.KeyMsg{Type: tea.KeyDown}, 3},
		{tea.KeyMsg{Type: tea.KeyLeft}, 2},
		{tea.KeyMsg{Type: tea.KeyUp}, 2},
	}
	for _, s := range steps {
		m, _ = m.Update(s.key)
		if m.Cursor() != s.want {
			t.Errorf("after %s cursor = %d, want %d", s.key, m.Cursor(), s.want)
		}
	}

	m.cursor = 0
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.Cursor() != 7 {
		t.Errorf("down from 0 = %d, want 7", m.Cursor())
	}

	p.CompletedDays = []string{"2024-03-01"}
	m.SetPractice(p, testDates, "2024-03-03", nil)
	if m.Cursor() != 7 {
		t.Errorf("refreshing the same practice moved the cursor to %d", m.Cursor())
	}

	m.Clear()
	if _, ok := m.Practice(); ok {
		t.Error("expected no practice after Clear")
	}
}

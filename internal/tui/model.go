package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	apperrors "github.com/julianstephens/streaklit/internal/errors"
	"github.com/julianstephens/streaklit/internal/events"
	"github.com/julianstephens/streaklit/internal/logger"
	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/practice"
	"github.com/julianstephens/streaklit/internal/shop"
	"github.com/julianstephens/streaklit/internal/tui/components/catalog"
	"github.com/julianstephens/streaklit/internal/tui/components/grid"
	"github.com/julianstephens/streaklit/internal/tui/components/practices"
	"github.com/julianstephens/streaklit/internal/validation"
)

type SessionState int

const (
	StatePractices SessionState = iota
	StateProgress
	StateShop
	StateAddPractice
	StateConfirmDelete
	StateConfirmPurchase
)

var tabTitles = []string{"Practices", "Progress", "Shop"}

type Model struct {
	ctx         context.Context
	practices   *practice.Service
	shop        *shop.Service
	userID      string
	notices     *noticeBoard
	unsubscribe func()

	state             SessionState
	previousState     SessionState
	keys              KeyMap
	help              help.Model
	practiceList      practices.Model
	grid              grid.Model
	catalog           catalog.Model
	form              *huh.Form
	practiceForm      *PracticeForm
	confirmForm       *ConfirmForm
	pendingDelete     *models.Practice
	pendingItem       *models.Item
	status            string
	validationWarning string
	quitting          bool
	width             int
	height            int
}

// NewModel builds the dashboard. Reward events published on bus show up
// as notices until Close is called.
func NewModel(ctx context.Context, svc *practice.Service, store *shop.Service, bus *events.Bus, userID string) Model {
	board := newNoticeBoard(time.Now)
	m := Model{
		ctx:          ctx,
		practices:    svc,
		shop:         store,
		userID:       userID,
		notices:      board,
		unsubscribe:  bus.Subscribe(board.handle),
		state:        StatePractices,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		practiceList: practices.New(nil, 0, 0),
		grid:         grid.New(0, 0),
		catalog:      catalog.New(0, 0),
	}
	m.reloadPractices()
	m.reloadShop()
	return m
}

// Close stops listening for reward events
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == StateProgress {
		keys = append(keys, m.keys.Toggle)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}

	var actions []key.Binding
	switch m.state {
	case StatePractices:
		pk := practices.DefaultKeyMap()
		actions = []key.Binding{pk.Add, pk.Open, pk.Toggle, pk.Delete}
	case StateProgress:
		gk := m.grid.Keys()
		actions = []key.Binding{gk.Left, gk.Right, gk.Up, gk.Down, m.keys.Toggle}
	case StateShop:
		actions = []key.Binding{catalog.DefaultKeyMap().Buy}
	}

	return [][]key.Binding{global, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m *Model) setError(err error) {
	logger.Warn("TUI action failed", "error", err)
	m.status = apperrors.Format(err)
	if hint := apperrors.Hint(err); hint != "" {
		m.status += " (" + hint + ")"
	}
}

func (m *Model) reloadPractices() {
	list, err := m.practices.List(m.ctx, m.userID)
	if err != nil {
		m.setError(err)
		return
	}
	m.practiceList.SetPractices(list)
	m.updateValidationStatus(list)

	if current, ok := m.grid.Practice(); ok {
		for _, p := range list {
			if p.ID == current.ID {
				m.openPractice(p)
				return
			}
		}
		m.grid.Clear()
	}
}

func (m *Model) openPractice(p models.Practice) {
	achievements, err := m.practices.Achievements(m.ctx, p.ID)
	if err != nil {
		m.setError(err)
		return
	}
	m.grid.SetPractice(p, m.practices.Dates(p), m.practices.Today(), achievements)
}

func (m *Model) reloadShop() {
	items, err := m.shop.Items(m.ctx)
	if err != nil {
		m.setError(err)
		return
	}
	owned, err := m.shop.Owned(m.ctx, m.userID)
	if err != nil {
		m.setError(err)
		return
	}
	profile, err := m.shop.Balance(m.ctx, m.userID)
	if err != nil {
		m.setError(err)
		return
	}
	m.catalog.SetCatalog(items, owned, profile.TotalCoins)
}

// updateValidationStatus flags stored practices whose cached progress drifted
func (m *Model) updateValidationStatus(list []models.Practice) {
	result := validation.New().ValidatePractices(list)
	if result.HasConflicts() {
		m.validationWarning = fmt.Sprintf("⚠ %d validation warning(s), run 'streaklit validate'", len(result.Conflicts))
		return
	}
	m.validationWarning = ""
}

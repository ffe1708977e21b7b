package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/streaklit/internal/events"
)

const (
	noticeTTL        = 4 * time.Second
	maxNoticesOnView = 3
)

// Notice is a toast shown after a reward event
type Notice struct {
	Title   string
	Message string
	At      time.Time
}

type expireNoticesMsg struct{}

// noticeBoard collects reward events published while the TUI runs.
// Bus handlers may fire from any goroutine.
type noticeBoard struct {
	mu      sync.Mutex
	now     func() time.Time
	notices []Notice
}

func newNoticeBoard(now func() time.Time) *noticeBoard {
	if now == nil {
		now = time.Now
	}
	return &noticeBoard{now: now}
}

func (b *noticeBoard) handle(evt events.Event) {
	title, msg := events.Describe(evt)
	if title == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, Notice{Title: title, Message: msg, At: b.now()})
}

// active drops expired notices and returns the newest ones
func (b *noticeBoard) active() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	cutoff := b.now().Add(-noticeTTL)
	kept := b.notices[:0]
	for _, n := range b.notices {
		if n.At.After(cutoff) {
			kept = append(kept, n)
		}
	}
	b.notices = kept
	if len(kept) > maxNoticesOnView {
		kept = kept[len(kept)-maxNoticesOnView:]
	}
	return append([]Notice(nil), kept...)
}

func (b *noticeBoard) pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.notices) > 0
}

func expireNotices() tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg { return expireNoticesMsg{} })
}

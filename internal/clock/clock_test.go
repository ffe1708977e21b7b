package clock

import (
	"testing"
	"time"
)

func TestFixed(t *testing.T) {
	at := time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)
	c := Fixed(at)
	if !c.Now().Equal(at) {
		t.Errorf("Now() = %v, want %v", c.Now(), at)
	}
	if got := Today(c, "2006-01-02"); got != "2024-03-09" {
		t.Errorf("Today() = %q, want %q", got, "2024-03-09")
	}
}

func TestFunc(t *testing.T) {
	calls := 0
	c := Func(func() time.Time {
		calls++
		return time.Unix(0, 0)
	})
	c.Now()
	c.Now()
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestSystem(t *testing.T) {
	before := time.Now()
	got := System{}.Now()
	if got.Before(before) {
		t.Errorf("System.Now() = %v went backwards from %v", got, before)
	}
}

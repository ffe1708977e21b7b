package system

import (
	"bytes"
	"strings"
	"testing"
)

func TestValidateCmd(t *testing.T) {
	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	p, err := ctx.Practices.Create(ctx.Ctx(), ctx.UserID, "Meditate", 5)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := ctx.Practices.ToggleDay(ctx.Ctx(), p.ID, 0); err != nil {
		t.Fatalf("ToggleDay failed: %v", err)
	}

	out := &bytes.Buffer{}
	ctx.Out = out
	if err := (&ValidateCmd{}).Run(ctx); err != nil {
		t.Fatalf("validate failed on clean data: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "No conflicts detected.") {
		t.Errorf("unexpected output: %q", out.String())
	}

	stale, err := ctx.Practices.Get(ctx.Ctx(), p.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	stale.Points += 99
	if err := ctx.Store.UpdatePractice(ctx.Ctx(), stale); err != nil {
		t.Fatalf("UpdatePractice failed: %v", err)
	}

	out.Reset()
	if err := (&ValidateCmd{}).Run(ctx); err == nil {
		t.Error("expected validation to fail for stale points")
	}
	if !strings.Contains(out.String(), "progress is stale") {
		t.Errorf("unexpected report: %q", out.String())
	}
}

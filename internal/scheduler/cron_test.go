package scheduler

import (
	"testing"
	"time"
)

const hourly = "0 * * * *"

func TestDueSince_NeverRan(t *testing.T) {
	due, err := DueSince(hourly, nil, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !due {
		t.Error("automation that never ran should be due")
	}
}

func TestDueSince_LastRunTwoHoursAgo(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	last := now.Add(-2 * time.Hour)

	due, err := DueSince(hourly, &last, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !due {
		t.Error("hourly cron with last run 2h ago should be due")
	}
}

func TestDueSince_LastRunThirtySecondsAgo(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	last := now.Add(-30 * time.Second)

	due, err := DueSince(hourly, &last, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if due {
		t.Error("hourly cron with last run 30s ago should not be due")
	}
}

// Граница полуинтервала (last, now]: срабатывание ровно в now — due.
func TestDueSince_TriggerExactlyAtNow(t *testing.T) {
	now := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	last := now.Add(-time.Minute)

	due, err := DueSince(hourly, &last, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !due {
		t.Error("trigger exactly at now falls inside (last, now]")
	}
}

func TestDueSince_InvalidExpression(t *testing.T) {
	if _, err := DueSince("not a cron", nil, time.Now()); err == nil {
		t.Error("expected error for malformed expression")
	}
}

func TestValidateCronExpr(t *testing.T) {
	if err := ValidateCronExpr("*/5 * * * *"); err != nil {
		t.Errorf("valid expression rejected: %v", err)
	}
	if err := ValidateCronExpr("61 * * * *"); err == nil {
		t.Error("expected error for out-of-range minute")
	}
}

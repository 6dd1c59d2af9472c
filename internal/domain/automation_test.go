package domain

import (
	"errors"
	"testing"
	"time"
)

func TestAutomation_Validate(t *testing.T) {
	tests := []struct {
		name    string
		auto    Automation
		wantErr error
	}{
		{"recurring with cron", Automation{IsRecurring: true, CronSchedule: "0 * * * *"}, nil},
		{"one-shot without cron", Automation{IsRecurring: false}, nil},
		{"recurring without cron", Automation{IsRecurring: true}, ErrCronRequired},
		{"one-shot with cron", Automation{IsRecurring: false, CronSchedule: "0 * * * *"}, ErrCronForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.auto.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr != nil && !errors.Is(err, ErrValidation) {
				t.Error("schedule errors should wrap ErrValidation")
			}
		})
	}
}

func TestAutomation_RecordRunStarted(t *testing.T) {
	auto := &Automation{}
	started := time.Now()

	auto.RecordRunStarted(started)

	if auto.LastRunStatus == nil || *auto.LastRunStatus != RunStatusInProgress {
		t.Errorf("last_run_status should be in_progress, got %v", auto.LastRunStatus)
	}
	if auto.LastRunAt == nil || !auto.LastRunAt.Equal(started) {
		t.Errorf("last_run_at should be %v, got %v", started, auto.LastRunAt)
	}
}

func TestAutomation_RecordRunFinished(t *testing.T) {
	auto := &Automation{}
	auto.RecordRunStarted(time.Now().Add(-time.Minute))

	finished := time.Now()
	auto.RecordRunFinished(RunStatusSuccess, finished)

	if *auto.LastRunStatus != RunStatusSuccess {
		t.Errorf("last_run_status should be success, got %v", *auto.LastRunStatus)
	}
	if !auto.LastRunAt.Equal(finished) {
		t.Errorf("last_run_at should equal finished_at %v, got %v", finished, auto.LastRunAt)
	}
}

func TestParseDeviceType(t *testing.T) {
	for _, valid := range []string{"ios", "android", "web"} {
		if _, err := ParseDeviceType(valid); err != nil {
			t.Errorf("%q should parse: %v", valid, err)
		}
	}

	_, err := ParseDeviceType("windows")
	if !errors.Is(err, ErrUnknownDeviceType) {
		t.Errorf("unknown device type should be rejected, got %v", err)
	}
}

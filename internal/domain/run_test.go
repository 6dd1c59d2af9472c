package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRun_Finalize_SetsTerminalFields(t *testing.T) {
	run := &Run{
		ID:           uuid.New(),
		AutomationID: uuid.New(),
		Status:       RunStatusInProgress,
		StartedAt:    time.Now().Add(-time.Minute),
	}

	finished := time.Now()
	run.Finalize(RunStatusSuccess, "done", nil, finished)

	if run.Status != RunStatusSuccess {
		t.Errorf("expected success, got %s", run.Status)
	}
	if run.Message != "done" {
		t.Errorf("expected message 'done', got %q", run.Message)
	}
	if run.FinishedAt == nil || !run.FinishedAt.Equal(finished) {
		t.Errorf("finished_at should be %v, got %v", finished, run.FinishedAt)
	}
	if !run.IsFinished() {
		t.Error("run should be finished")
	}
}

// Финализация не идемпотентна: второй вызов перезаписывает всё безусловно.
func TestRun_Finalize_SecondCallOverwrites(t *testing.T) {
	run := &Run{ID: uuid.New(), Status: RunStatusInProgress, StartedAt: time.Now()}

	first := time.Now()
	run.Finalize(RunStatusSuccess, "first", nil, first)

	second := first.Add(time.Minute)
	run.Finalize(RunStatusFailure, "second", nil, second)

	if run.Status != RunStatusFailure {
		t.Errorf("second finalize should win, got %s", run.Status)
	}
	if run.Message != "second" {
		t.Errorf("expected message 'second', got %q", run.Message)
	}
	if !run.FinishedAt.Equal(second) {
		t.Errorf("expected finished_at %v, got %v", second, run.FinishedAt)
	}
}

// logs=nil означает "без изменений", ранее сохранённые логи не затираются.
func TestRun_Finalize_NilLogsPreservesExisting(t *testing.T) {
	run := &Run{
		ID:     uuid.New(),
		Status: RunStatusInProgress,
		Logs:   map[string]any{"step": "fetch"},
	}

	run.Finalize(RunStatusFailure, "boom", nil, time.Now())

	if run.Logs == nil || run.Logs["step"] != "fetch" {
		t.Errorf("nil logs must not erase stored logs, got %v", run.Logs)
	}

	run.Finalize(RunStatusFailure, "boom", map[string]any{"step": "retry"}, time.Now())
	if run.Logs["step"] != "retry" {
		t.Errorf("non-nil logs should replace, got %v", run.Logs)
	}
}

func TestRun_Duration(t *testing.T) {
	started := time.Now()
	run := &Run{StartedAt: started, Status: RunStatusInProgress}

	if run.Duration() != 0 {
		t.Error("unfinished run should have zero duration")
	}

	finished := started.Add(42 * time.Second)
	run.Finalize(RunStatusSuccess, "", nil, finished)

	if run.Duration() != 42*time.Second {
		t.Errorf("expected 42s, got %v", run.Duration())
	}
}

func TestParseRunStatus(t *testing.T) {
	for _, valid := range []string{"in_progress", "success", "failure"} {
		if _, err := ParseRunStatus(valid); err != nil {
			t.Errorf("%q should parse: %v", valid, err)
		}
	}

	for _, invalid := range []string{"", "SUCCESS", "done", "cancelled"} {
		_, err := ParseRunStatus(invalid)
		if !errors.Is(err, ErrUnknownRunStatus) {
			t.Errorf("%q should be rejected with ErrUnknownRunStatus, got %v", invalid, err)
		}
		if !errors.Is(err, ErrValidation) {
			t.Errorf("status error should wrap ErrValidation")
		}
	}
}

func TestParseTerminalRunStatus(t *testing.T) {
	if _, err := ParseTerminalRunStatus("success"); err != nil {
		t.Errorf("success should parse: %v", err)
	}
	if _, err := ParseTerminalRunStatus("in_progress"); err == nil {
		t.Error("in_progress is not a terminal status")
	}
}

func TestRunStatus_IsTerminal(t *testing.T) {
	if RunStatusInProgress.IsTerminal() {
		t.Error("in_progress is not terminal")
	}
	if !RunStatusSuccess.IsTerminal() || !RunStatusFailure.IsTerminal() {
		t.Error("success and failure are terminal")
	}
}

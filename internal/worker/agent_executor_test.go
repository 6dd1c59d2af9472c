package worker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shaiso/Pulse/internal/domain"
)

func testAutomation() *domain.Automation {
	return &domain.Automation{
		ID:     uuid.New(),
		UserID: "user-1",
		Name:   "daily digest",
		Goal:   "collect news",
	}
}

func TestAgentExecutor_Execute(t *testing.T) {
	auto := testAutomation()
	runID := uuid.New()
	artifactID := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/execute" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var req agentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.RunID != runID || req.AutomationID != auto.ID || req.Goal != "collect news" {
			t.Errorf("request fields lost: %+v", req)
		}

		json.NewEncoder(w).Encode(agentResponse{
			Status:      "success",
			Message:     "done",
			Logs:        map[string]any{"steps": float64(2)},
			ArtifactIDs: []uuid.UUID{artifactID},
		})
	}))
	defer srv.Close()

	e := NewAgentExecutor(AgentConfig{BaseURL: srv.URL})

	output, err := e.Execute(context.Background(), auto, runID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Status != "success" || output.Message != "done" {
		t.Errorf("output = %+v", output)
	}
	if len(output.ArtifactIDs) != 1 || output.ArtifactIDs[0] != artifactID {
		t.Errorf("artifact ids = %v", output.ArtifactIDs)
	}
}

func TestAgentExecutor_HTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "agent overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := NewAgentExecutor(AgentConfig{BaseURL: srv.URL})

	_, err := e.Execute(context.Background(), testAutomation(), uuid.New())
	if !errors.Is(err, ErrAgentRequest) {
		t.Fatalf("expected ErrAgentRequest, got %v", err)
	}
}

func TestAgentExecutor_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	e := NewAgentExecutor(AgentConfig{BaseURL: srv.URL})

	_, err := e.Execute(context.Background(), testAutomation(), uuid.New())
	if !errors.Is(err, ErrAgentResponse) {
		t.Fatalf("expected ErrAgentResponse, got %v", err)
	}
}

func TestAgentExecutor_ConnectionRefused(t *testing.T) {
	// Закрытый сервер гарантирует connection refused
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	e := NewAgentExecutor(AgentConfig{BaseURL: url})

	_, err := e.Execute(context.Background(), testAutomation(), uuid.New())
	if !errors.Is(err, ErrAgentRequest) {
		t.Fatalf("expected ErrAgentRequest, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate below limit = %q", got)
	}
	if got := truncate("0123456789abc", 10); got != "0123456789..." {
		t.Errorf("truncate above limit = %q", got)
	}
}

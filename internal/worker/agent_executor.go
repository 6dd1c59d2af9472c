package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Pulse/internal/domain"
)

const (
	defaultAgentURL     = "http://localhost:8100"
	defaultAgentTimeout = 10 * time.Minute
)

// AgentExecutor — executor по умолчанию.
//
// Отправляет автоматизацию внешнему agent-сервису (POST /execute)
// и возвращает его вердикт как Output. Что именно agent делает
// с целью автоматизации — его дело.
type AgentExecutor struct {
	baseURL string
	client  *http.Client
}

// AgentConfig — конфигурация AgentExecutor.
type AgentConfig struct {
	// BaseURL — адрес agent-сервиса.
	// Если пусто — переменная окружения EXECUTOR_URL, иначе localhost.
	BaseURL string

	// Timeout — предел одного выполнения (default: 10m).
	Timeout time.Duration
}

// NewAgentExecutor создаёт AgentExecutor.
func NewAgentExecutor(cfg AgentConfig) *AgentExecutor {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("EXECUTOR_URL")
	}
	if baseURL == "" {
		baseURL = defaultAgentURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultAgentTimeout
	}

	return &AgentExecutor{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// agentRequest — тело запроса к agent-сервису.
type agentRequest struct {
	RunID        uuid.UUID `json:"run_id"`
	AutomationID uuid.UUID `json:"automation_id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Goal         string    `json:"goal"`
}

// agentResponse — тело ответа agent-сервиса.
type agentResponse struct {
	Status      string         `json:"status"`
	Message     string         `json:"message"`
	Logs        map[string]any `json:"logs"`
	ArtifactIDs []uuid.UUID    `json:"artifact_ids"`
}

// Execute отправляет автоматизацию agent-сервису и ждёт результата.
func (e *AgentExecutor) Execute(ctx context.Context, auto *domain.Automation, runID uuid.UUID) (*Output, error) {
	body, err := json.Marshal(agentRequest{
		RunID:        runID,
		AutomationID: auto.ID,
		UserID:       auto.UserID,
		Name:         auto.Name,
		Goal:         auto.Goal,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrAgentRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrAgentRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAgentRequest, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrAgentRequest, err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrAgentRequest, resp.StatusCode, truncate(string(respBody), 200))
	}

	var parsed agentResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAgentResponse, err)
	}

	return &Output{
		Status:      parsed.Status,
		Message:     parsed.Message,
		Logs:        parsed.Logs,
		ArtifactIDs: parsed.ArtifactIDs,
	}, nil
}

// truncate обрезает строку до указанной длины.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

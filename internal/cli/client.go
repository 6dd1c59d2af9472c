package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// AutomationResponse — автоматизация из API.
type AutomationResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Goal          string `json:"goal"`
	Active        bool   `json:"active"`
	IsRecurring   bool   `json:"is_recurring"`
	CronSchedule  string `json:"cron_schedule,omitempty"`
	LastRunStatus string `json:"last_run_status,omitempty"`
	LastRunAt     string `json:"last_run_at,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// RunResponse — run из API.
type RunResponse struct {
	ID           string         `json:"id"`
	AutomationID string         `json:"automation_id"`
	Status       string         `json:"status"`
	Message      string         `json:"message,omitempty"`
	Logs         map[string]any `json:"logs,omitempty"`
	ArtifactIDs  []string       `json:"artifact_ids,omitempty"`
	StartedAt    string         `json:"started_at,omitempty"`
	FinishedAt   string         `json:"finished_at,omitempty"`
}

// ArtifactResponse — артефакт из API.
type ArtifactResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// TokenResponse — токен устройства из API.
type TokenResponse struct {
	ID         string `json:"id"`
	Token      string `json:"token"`
	DeviceType string `json:"device_type"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// --- Request types ---

// CreateAutomationRequest — создание автоматизации.
type CreateAutomationRequest struct {
	Name         string `json:"name"`
	Goal         string `json:"goal"`
	IsRecurring  bool   `json:"is_recurring"`
	CronSchedule string `json:"cron_schedule,omitempty"`
}

// UpdateAutomationRequest — обновление автоматизации.
type UpdateAutomationRequest struct {
	Name         *string `json:"name,omitempty"`
	Goal         *string `json:"goal,omitempty"`
	Active       *bool   `json:"active,omitempty"`
	IsRecurring  *bool   `json:"is_recurring,omitempty"`
	CronSchedule *string `json:"cron_schedule,omitempty"`
}

// RegisterTokenRequest — регистрация токена устройства.
type RegisterTokenRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"device_type"`
}

// ListRunsOpts — параметры фильтрации runs.
type ListRunsOpts struct {
	AutomationID string
	Status       string
	Limit        int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Pulse API.
type Client struct {
	baseURL    string
	userID     string
	httpClient *http.Client
}

// NewClient создаёт клиент для API от имени пользователя userID.
func NewClient(baseURL, userID string) *Client {
	return &Client{
		baseURL: baseURL,
		userID:  userID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Automations ---

// ListAutomations возвращает автоматизации пользователя.
func (c *Client) ListAutomations() ([]AutomationResponse, error) {
	var automations []AutomationResponse
	err := c.list("/api/v1/automations", nil, &automations)
	return automations, err
}

// CreateAutomation создаёт новую автоматизацию.
func (c *Client) CreateAutomation(req CreateAutomationRequest) (*AutomationResponse, error) {
	var auto AutomationResponse
	err := c.post("/api/v1/automations", req, &auto)
	return &auto, err
}

// GetAutomation возвращает автоматизацию по ID.
func (c *Client) GetAutomation(id string) (*AutomationResponse, error) {
	var auto AutomationResponse
	err := c.get("/api/v1/automations/"+id, &auto)
	return &auto, err
}

// UpdateAutomation обновляет автоматизацию.
func (c *Client) UpdateAutomation(id string, req UpdateAutomationRequest) (*AutomationResponse, error) {
	var auto AutomationResponse
	err := c.put("/api/v1/automations/"+id, req, &auto)
	return &auto, err
}

// DeleteAutomation удаляет автоматизацию.
func (c *Client) DeleteAutomation(id string) error {
	return c.delete("/api/v1/automations/" + id)
}

// RunAutomation запускает автоматизацию вручную.
func (c *Client) RunAutomation(id string) (*RunResponse, error) {
	var run RunResponse
	err := c.post("/api/v1/automations/"+id+"/runs", nil, &run)
	return &run, err
}

// --- Runs ---

// ListRuns возвращает список runs с фильтрацией.
func (c *Client) ListRuns(opts ListRunsOpts) ([]RunResponse, error) {
	params := url.Values{}
	if opts.AutomationID != "" {
		params.Set("automation_id", opts.AutomationID)
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}

	var runs []RunResponse
	err := c.list("/api/v1/runs", params, &runs)
	return runs, err
}

// GetRun возвращает run по ID.
func (c *Client) GetRun(id string) (*RunResponse, error) {
	var run RunResponse
	err := c.get("/api/v1/runs/"+id, &run)
	return &run, err
}

// ListRunArtifacts возвращает артефакты run.
func (c *Client) ListRunArtifacts(runID string) ([]ArtifactResponse, error) {
	var artifacts []ArtifactResponse
	err := c.list("/api/v1/runs/"+runID+"/artifacts", nil, &artifacts)
	return artifacts, err
}

// --- Device tokens ---

// ListTokens возвращает токены устройств пользователя.
func (c *Client) ListTokens() ([]TokenResponse, error) {
	var tokens []TokenResponse
	err := c.list("/api/v1/device-tokens", nil, &tokens)
	return tokens, err
}

// RegisterToken регистрирует токен устройства.
func (c *Client) RegisterToken(req RegisterTokenRequest) (*TokenResponse, error) {
	var token TokenResponse
	err := c.put("/api/v1/device-tokens", req, &token)
	return &token, err
}

// DeleteToken удаляет токен устройства.
func (c *Client) DeleteToken(id string) error {
	return c.delete("/api/v1/device-tokens/" + id)
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-User-ID", c.userID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}

package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Pulse/internal/domain"
)

// Automation DTOs

// CreateAutomationRequest — запрос на создание автоматизации.
type CreateAutomationRequest struct {
	Name         string `json:"name"`
	Goal         string `json:"goal"`
	IsRecurring  bool   `json:"is_recurring"`
	CronSchedule string `json:"cron_schedule,omitempty"`
}

// UpdateAutomationRequest — запрос на обновление автоматизации.
type UpdateAutomationRequest struct {
	Name         *string `json:"name,omitempty"`
	Goal         *string `json:"goal,omitempty"`
	Active       *bool   `json:"active,omitempty"`
	IsRecurring  *bool   `json:"is_recurring,omitempty"`
	CronSchedule *string `json:"cron_schedule,omitempty"`
}

// AutomationResponse — ответ с автоматизацией.
type AutomationResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Goal          string     `json:"goal"`
	Active        bool       `json:"active"`
	IsRecurring   bool       `json:"is_recurring"`
	CronSchedule  string     `json:"cron_schedule,omitempty"`
	LastRunStatus *string    `json:"last_run_status,omitempty"`
	LastRunAt     *time.Time `json:"last_run_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// AutomationFromDomain конвертирует domain.Automation в AutomationResponse.
func AutomationFromDomain(a domain.Automation) AutomationResponse {
	resp := AutomationResponse{
		ID:           a.ID,
		Name:         a.Name,
		Goal:         a.Goal,
		Active:       a.Active,
		IsRecurring:  a.IsRecurring,
		CronSchedule: a.CronSchedule,
		LastRunAt:    a.LastRunAt,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if a.LastRunStatus != nil {
		s := string(*a.LastRunStatus)
		resp.LastRunStatus = &s
	}
	return resp
}

// Run DTOs

// RunResponse — ответ с run.
type RunResponse struct {
	ID           uuid.UUID      `json:"id"`
	AutomationID uuid.UUID      `json:"automation_id"`
	Status       string         `json:"status"`
	Message      string         `json:"message,omitempty"`
	Logs         map[string]any `json:"logs,omitempty"`
	ArtifactIDs  []uuid.UUID    `json:"artifact_ids,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   *time.Time     `json:"finished_at,omitempty"`
}

// RunFromDomain конвертирует domain.Run в RunResponse.
func RunFromDomain(r domain.Run) RunResponse {
	return RunResponse{
		ID:           r.ID,
		AutomationID: r.AutomationID,
		Status:       string(r.Status),
		Message:      r.Message,
		Logs:         r.Logs,
		ArtifactIDs:  r.ArtifactIDs,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
	}
}

// Artifact DTOs

// ArtifactResponse — ответ с артефактом.
type ArtifactResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ArtifactFromDomain конвертирует domain.Artifact в ArtifactResponse.
func ArtifactFromDomain(a domain.Artifact) ArtifactResponse {
	return ArtifactResponse{
		ID:        a.ID,
		Name:      a.Name,
		CreatedAt: a.CreatedAt,
	}
}

// Device token DTOs

// RegisterTokenRequest — запрос на регистрацию токена устройства.
type RegisterTokenRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"device_type"`
}

// TokenResponse — ответ с токеном устройства.
type TokenResponse struct {
	ID         uuid.UUID `json:"id"`
	Token      string    `json:"token"`
	DeviceType string    `json:"device_type"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TokenFromDomain конвертирует domain.DeviceToken в TokenResponse.
func TokenFromDomain(t domain.DeviceToken) TokenResponse {
	return TokenResponse{
		ID:         t.ID,
		Token:      t.Token,
		DeviceType: string(t.DeviceType),
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

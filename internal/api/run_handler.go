package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shaiso/Pulse/internal/domain"
	"github.com/shaiso/Pulse/internal/repo"
)

// ListRuns возвращает список runs с фильтрацией.
// GET /api/v1/runs?automation_id=...&status=...&limit=...&offset=...
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	filter := repo.RunFilter{
		Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
		Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
	}

	automationIDStr := r.URL.Query().Get("automation_id")
	if automationIDStr == "" {
		BadRequest(w, "automation_id is required")
		return
	}
	automationID, err := uuid.Parse(automationIDStr)
	if err != nil {
		BadRequest(w, "invalid automation_id")
		return
	}
	filter.AutomationID = &automationID

	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status, err := domain.ParseRunStatus(statusStr)
		if err != nil {
			BadRequest(w, err.Error())
			return
		}
		filter.Status = status
	}

	// Runs видны только владельцу автоматизации
	auto, err := h.automationRepo.GetByID(r.Context(), automationID)
	if HandleRepoError(w, h.logger, err, "automation not found") {
		return
	}
	if auto.UserID != userID {
		NotFound(w, "automation not found")
		return
	}

	runs, err := h.runRepo.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]RunResponse, len(runs))
	for i, run := range runs {
		result[i] = RunFromDomain(run)
	}

	List(w, result, len(result))
}

// GetRun возвращает run по ID.
// GET /api/v1/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	run, ok := h.loadOwnedRun(w, r, userID)
	if !ok {
		return
	}

	Success(w, RunFromDomain(*run))
}

// ListRunArtifacts возвращает артефакты, прикреплённые к run.
// GET /api/v1/runs/{id}/artifacts
func (h *Handler) ListRunArtifacts(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	run, ok := h.loadOwnedRun(w, r, userID)
	if !ok {
		return
	}

	artifacts, err := h.artifactRepo.ListForRun(r.Context(), run.ID)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]ArtifactResponse, len(artifacts))
	for i, a := range artifacts {
		result[i] = ArtifactFromDomain(a)
	}

	List(w, result, len(result))
}

// loadOwnedRun загружает run и проверяет владельца родительской
// автоматизации. Чужой run неотличим от несуществующего (404).
func (h *Handler) loadOwnedRun(w http.ResponseWriter, r *http.Request, userID string) (*domain.Run, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return nil, false
	}

	run, err := h.runRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "run not found") {
		return nil, false
	}

	auto, err := h.automationRepo.GetByID(r.Context(), run.AutomationID)
	if HandleRepoError(w, h.logger, err, "run not found") {
		return nil, false
	}
	if auto.UserID != userID {
		NotFound(w, "run not found")
		return nil, false
	}

	return run, true
}

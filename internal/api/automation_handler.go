package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Pulse/internal/domain"
	"github.com/shaiso/Pulse/internal/scheduler"
)

// ListAutomations возвращает автоматизации пользователя.
// GET /api/v1/automations?limit=...&offset=...
func (h *Handler) ListAutomations(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
	offset := parseIntDefault(r.URL.Query().Get("offset"), 0)

	automations, err := h.automationRepo.ListByUser(r.Context(), userID, limit, offset)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]AutomationResponse, len(automations))
	for i, a := range automations {
		result[i] = AutomationFromDomain(a)
	}

	List(w, result, len(result))
}

// CreateAutomation создаёт новую автоматизацию.
// POST /api/v1/automations
func (h *Handler) CreateAutomation(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req CreateAutomationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}

	now := time.Now().UTC()
	auto := &domain.Automation{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         req.Name,
		Goal:         req.Goal,
		Active:       true,
		IsRecurring:  req.IsRecurring,
		CronSchedule: req.CronSchedule,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.validateAutomation(w, auto); err != nil {
		return
	}

	if err := h.automationRepo.Create(r.Context(), auto); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Created(w, AutomationFromDomain(*auto))
}

// GetAutomation возвращает автоматизацию по ID.
// GET /api/v1/automations/{id}
func (h *Handler) GetAutomation(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	auto, ok := h.loadOwned(w, r, userID)
	if !ok {
		return
	}

	Success(w, AutomationFromDomain(*auto))
}

// UpdateAutomation обновляет автоматизацию.
// PUT /api/v1/automations/{id}
func (h *Handler) UpdateAutomation(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	auto, ok := h.loadOwned(w, r, userID)
	if !ok {
		return
	}

	var req UpdateAutomationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Name != nil {
		auto.Name = *req.Name
	}
	if req.Goal != nil {
		auto.Goal = *req.Goal
	}
	if req.Active != nil {
		auto.Active = *req.Active
	}
	if req.IsRecurring != nil {
		auto.IsRecurring = *req.IsRecurring
		if !auto.IsRecurring {
			// Разовая автоматизация расписания не имеет
			auto.CronSchedule = ""
		}
	}
	if req.CronSchedule != nil {
		auto.CronSchedule = *req.CronSchedule
	}
	auto.UpdatedAt = time.Now().UTC()

	if err := h.validateAutomation(w, auto); err != nil {
		return
	}

	if err := h.automationRepo.Update(r.Context(), auto); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Success(w, AutomationFromDomain(*auto))
}

// DeleteAutomation удаляет автоматизацию.
// DELETE /api/v1/automations/{id}
func (h *Handler) DeleteAutomation(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	auto, ok := h.loadOwned(w, r, userID)
	if !ok {
		return
	}

	if err := h.automationRepo.Delete(r.Context(), auto.ID); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	NoContent(w)
}

// RunAutomation запускает автоматизацию вручную.
// POST /api/v1/automations/{id}/runs
//
// Run создаётся и коммитится до публикации в очередь: воркер никогда
// не получит id, которого нет в БД.
func (h *Handler) RunAutomation(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	auto, ok := h.loadOwned(w, r, userID)
	if !ok {
		return
	}

	if !auto.Active {
		InvalidState(w, "automation is not active")
		return
	}

	run, err := h.runRepo.CreateRun(r.Context(), auto.ID)
	if HandleRepoError(w, h.logger, err, "automation not found") {
		return
	}

	if h.publisher != nil {
		if err := h.publisher.PublishRunCreated(r.Context(), run.ID); err != nil {
			h.logger.Warn("failed to publish run.created", "run_id", run.ID, "error", err)
		}
	}

	Created(w, RunFromDomain(*run))
}

// loadOwned загружает автоматизацию и проверяет владельца.
// Чужая автоматизация неотличима от несуществующей (404).
func (h *Handler) loadOwned(w http.ResponseWriter, r *http.Request, userID string) (*domain.Automation, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid automation id")
		return nil, false
	}

	auto, err := h.automationRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "automation not found") {
		return nil, false
	}

	if auto.UserID != userID {
		NotFound(w, "automation not found")
		return nil, false
	}

	return auto, true
}

// validateAutomation проверяет инварианты и синтаксис cron.
// Отправляет ответ с ошибкой и возвращает её, если проверка не прошла.
func (h *Handler) validateAutomation(w http.ResponseWriter, auto *domain.Automation) error {
	if err := auto.Validate(); err != nil {
		BadRequest(w, err.Error())
		return err
	}
	if auto.IsRecurring {
		if err := scheduler.ValidateCronExpr(auto.CronSchedule); err != nil {
			BadRequest(w, "invalid cron_schedule: "+err.Error())
			return err
		}
	}
	return nil
}

// parseIntDefault парсит строку в int с дефолтным значением.
func parseIntDefault(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}

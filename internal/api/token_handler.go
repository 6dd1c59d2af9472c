package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/shaiso/Pulse/internal/domain"
)

// RegisterToken регистрирует или обновляет токен устройства.
// PUT /api/v1/device-tokens
//
// Идемпотентен: повторная регистрация той же пары (token, device_type)
// возвращает существующую запись. Конфликты по токену и по устройству
// разрешает реестр (перенос токена между аккаунтами, новый токен
// того же устройства).
func (h *Handler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req RegisterTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Token == "" {
		BadRequest(w, "token is required")
		return
	}

	deviceType, err := domain.ParseDeviceType(req.DeviceType)
	if err != nil {
		BadRequest(w, err.Error())
		return
	}

	token, err := h.tokenRepo.Upsert(r.Context(), userID, deviceType, req.Token)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	Success(w, TokenFromDomain(*token))
}

// ListTokens возвращает токены устройств пользователя.
// GET /api/v1/device-tokens
func (h *Handler) ListTokens(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	tokens, err := h.tokenRepo.ListForUser(r.Context(), userID)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]TokenResponse, len(tokens))
	for i, t := range tokens {
		result[i] = TokenFromDomain(t)
	}

	List(w, result, len(result))
}

// DeleteToken удаляет токен устройства пользователя.
// DELETE /api/v1/device-tokens/{id}
func (h *Handler) DeleteToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid token id")
		return
	}

	// Удалять можно только свои токены
	token, err := h.tokenRepo.GetByIDAndUser(r.Context(), id, userID)
	if HandleRepoError(w, h.logger, err, "token not found") {
		return
	}

	if err := h.tokenRepo.Delete(r.Context(), token.ID); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	NoContent(w)
}

package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Automations
	mux.Handle("GET /api/v1/automations", chain(http.HandlerFunc(h.ListAutomations)))
	mux.Handle("POST /api/v1/automations", chain(http.HandlerFunc(h.CreateAutomation)))
	mux.Handle("GET /api/v1/automations/{id}", chain(http.HandlerFunc(h.GetAutomation)))
	mux.Handle("PUT /api/v1/automations/{id}", chain(http.HandlerFunc(h.UpdateAutomation)))
	mux.Handle("DELETE /api/v1/automations/{id}", chain(http.HandlerFunc(h.DeleteAutomation)))
	mux.Handle("POST /api/v1/automations/{id}/runs", chain(http.HandlerFunc(h.RunAutomation)))

	// Runs
	mux.Handle("GET /api/v1/runs", chain(http.HandlerFunc(h.ListRuns)))
	mux.Handle("GET /api/v1/runs/{id}", chain(http.HandlerFunc(h.GetRun)))
	mux.Handle("GET /api/v1/runs/{id}/artifacts", chain(http.HandlerFunc(h.ListRunArtifacts)))

	// Device tokens
	mux.Handle("PUT /api/v1/device-tokens", chain(http.HandlerFunc(h.RegisterToken)))
	mux.Handle("GET /api/v1/device-tokens", chain(http.HandlerFunc(h.ListTokens)))
	mux.Handle("DELETE /api/v1/device-tokens/{id}", chain(http.HandlerFunc(h.DeleteToken)))
}

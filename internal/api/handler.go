package api

import (
	"log/slog"
	"net/http"

	"github.com/shaiso/Pulse/internal/mq"
	"github.com/shaiso/Pulse/internal/repo"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	automationRepo *repo.AutomationRepo
	runRepo        *repo.RunRepo
	tokenRepo      *repo.TokenRepo
	artifactRepo   *repo.ArtifactRepo
	publisher      *mq.Publisher
	logger         *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	AutomationRepo *repo.AutomationRepo
	RunRepo        *repo.RunRepo
	TokenRepo      *repo.TokenRepo
	ArtifactRepo   *repo.ArtifactRepo
	Publisher      *mq.Publisher
	Logger         *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		automationRepo: cfg.AutomationRepo,
		runRepo:        cfg.RunRepo,
		tokenRepo:      cfg.TokenRepo,
		artifactRepo:   cfg.ArtifactRepo,
		publisher:      cfg.Publisher,
		logger:         cfg.Logger,
	}
}

// userID извлекает идентификатор пользователя из запроса.
//
// Аутентификация живёт выше по стеку (gateway); сюда пользователь
// приходит уже проверенным, в заголовке X-User-ID.
func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get("X-User-ID")
	if id == "" {
		Unauthorized(w, "missing X-User-ID header")
		return "", false
	}
	return id, true
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Artifact — результат работы автоматизации (документ, файл, отчёт).
//
// Артефакты создаются вне ядра Pulse; run только ссылается на них.
// Инвариант прикрепления: владелец артефакта совпадает с владельцем
// автоматизации run'а (проверяется Run Store при финализации).
type Artifact struct {
	// ID — уникальный идентификатор артефакта.
	ID uuid.UUID `json:"id"`

	// UserID — владелец артефакта.
	UserID string `json:"user_id"`

	// Name — имя артефакта.
	Name string `json:"name,omitempty"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`
}

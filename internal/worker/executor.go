package worker

import (
	"context"

	"github.com/google/uuid"
	"github.com/shaiso/Pulse/internal/domain"
)

// Executor выполняет одну автоматизацию от начала до конца.
//
// Реализация — чёрный ящик: воркеру важен только итоговый Output.
// Execute обязан уважать ctx; долгие выполнения обрываются по таймауту.
type Executor interface {
	Execute(ctx context.Context, auto *domain.Automation, runID uuid.UUID) (*Output, error)
}

// Output — результат выполнения автоматизации.
//
// Status — строковый статус от executor'а; воркер валидирует его через
// закрытый enum терминальных статусов и превращает неизвестные значения
// в failure.
type Output struct {
	Status      string
	Message     string
	Logs        map[string]any
	ArtifactIDs []uuid.UUID
}

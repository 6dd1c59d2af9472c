package domain

import (
	"errors"
	"fmt"
)

// ErrValidation — базовая ошибка валидации доменной модели.
// Конкретные ошибки оборачивают её, проверка через errors.Is.
var ErrValidation = errors.New("validation error")

// Ошибки валидации.
var (
	// ErrCronRequired — recurring автоматизация без cron-выражения.
	ErrCronRequired = fmt.Errorf("%w: cron_schedule is required for a recurring automation", ErrValidation)

	// ErrCronForbidden — one-shot автоматизация с cron-выражением.
	ErrCronForbidden = fmt.Errorf("%w: cron_schedule must be empty for a non-recurring automation", ErrValidation)

	// ErrUnknownRunStatus — значение вне закрытого перечисления RunStatus.
	ErrUnknownRunStatus = fmt.Errorf("%w: unknown run status", ErrValidation)

	// ErrUnknownDeviceType — значение вне перечисления DeviceType.
	ErrUnknownDeviceType = fmt.Errorf("%w: unknown device type", ErrValidation)
)

package repo

import "errors"

// Общие ошибки репозиториев.
var (
	// ErrNotFound — запись не найдена в БД.
	ErrNotFound = errors.New("not found")

	// ErrOwnershipViolation — ресурс принадлежит другому пользователю.
	// Например, артефакт, прикрепляемый к run чужой автоматизации.
	ErrOwnershipViolation = errors.New("ownership violation")
)

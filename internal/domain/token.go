package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DeviceType — тип устройства, на которое зарегистрирован push-токен.
type DeviceType string

const (
	DeviceTypeIOS     DeviceType = "ios"
	DeviceTypeAndroid DeviceType = "android"
	DeviceTypeWeb     DeviceType = "web"
)

// ParseDeviceType парсит строку в DeviceType.
func ParseDeviceType(s string) (DeviceType, error) {
	switch s {
	case string(DeviceTypeIOS):
		return DeviceTypeIOS, nil
	case string(DeviceTypeAndroid):
		return DeviceTypeAndroid, nil
	case string(DeviceTypeWeb):
		return DeviceTypeWeb, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDeviceType, s)
	}
}

// DeviceToken — push-токен устройства пользователя.
//
// Инварианты реестра токенов (держатся после каждого Upsert):
// - не более одной записи на пару (user_id, device_type)
// - значение токена уникально во всей системе: токен принадлежит
//   ровно одной паре (пользователь, устройство) одновременно
type DeviceToken struct {
	// ID — уникальный идентификатор записи.
	ID uuid.UUID `json:"id"`

	// UserID — владелец токена.
	UserID string `json:"user_id"`

	// Token — значение push-токена, выданное провайдером.
	Token string `json:"token"`

	// DeviceType — тип устройства.
	DeviceType DeviceType `json:"device_type"`

	// CreatedAt — время создания записи.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего обновления.
	UpdatedAt time.Time `json:"updated_at"`
}

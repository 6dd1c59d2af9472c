package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Pulse/internal/domain"
)

// TokenRepo — реестр push-токенов устройств.
//
// Инварианты (держатся после каждого Upsert):
// - не более одной записи на (user_id, device_type)
// - значение токена уникально во всей системе
type TokenRepo struct {
	pool *pgxpool.Pool
}

// NewTokenRepo создаёт новый TokenRepo.
func NewTokenRepo(pool *pgxpool.Pool) *TokenRepo {
	return &TokenRepo{pool: pool}
}

// upsertAction — выбранная ветка разрешения конфликта регистрации.
type upsertAction int

const (
	// upsertNoop — токен уже зарегистрирован на это же устройство.
	upsertNoop upsertAction = iota

	// upsertMoveToken — токен переезжает к другому пользователю/устройству:
	// старая запись слота (user, device) вытесняется, строка токена
	// перенацеливается.
	upsertMoveToken

	// upsertRewriteDevice — то же устройство регистрируется с новым
	// токеном: значение перезаписывается на месте.
	upsertRewriteDevice

	// upsertInsert — ни токена, ни слота нет: свежая запись.
	upsertInsert
)

// planUpsert выбирает ветку по паре существующих строк:
// byToken — строка с тем же значением токена (любой владелец),
// byDevice — строка с тем же (user_id, device_type).
// Порядок веток — как в §4.4: сперва случаи с существующим токеном.
func planUpsert(byToken, byDevice *domain.DeviceToken) upsertAction {
	switch {
	case byToken != nil && byDevice != nil && byToken.ID == byDevice.ID:
		return upsertNoop
	case byToken != nil:
		return upsertMoveToken
	case byDevice != nil:
		return upsertRewriteDevice
	default:
		return upsertInsert
	}
}

// Upsert регистрирует токен устройства, разрешая конфликты так, чтобы
// оба инварианта реестра держались без отдельного пути обработки
// уникальных конфликтов БД. Вся операция — одна транзакция: сбой на
// полпути откатывает реестр к состоянию до вызова.
func (r *TokenRepo) Upsert(ctx context.Context, userID string, deviceType domain.DeviceType, token string) (*domain.DeviceToken, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	byToken, err := getToken(ctx, tx, `SELECT `+tokenColumns+` FROM device_tokens WHERE token = $1`, token)
	if err != nil {
		return nil, err
	}
	byDevice, err := getToken(ctx, tx, `SELECT `+tokenColumns+` FROM device_tokens WHERE user_id = $1 AND device_type = $2`, userID, deviceType)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var result *domain.DeviceToken

	switch planUpsert(byToken, byDevice) {
	case upsertNoop:
		result = byToken

	case upsertMoveToken:
		if byDevice != nil {
			// Слот (user, device) занят другой записью — она вытесняется
			if _, err := tx.Exec(ctx, `DELETE FROM device_tokens WHERE id = $1`, byDevice.ID); err != nil {
				return nil, fmt.Errorf("delete superseded token: %w", err)
			}
		}
		_, err := tx.Exec(ctx, `
			UPDATE device_tokens SET user_id = $2, device_type = $3, updated_at = $4
			WHERE id = $1
		`, byToken.ID, userID, deviceType, now)
		if err != nil {
			return nil, fmt.Errorf("reassign token: %w", err)
		}
		byToken.UserID = userID
		byToken.DeviceType = deviceType
		byToken.UpdatedAt = now
		result = byToken

	case upsertRewriteDevice:
		_, err := tx.Exec(ctx, `
			UPDATE device_tokens SET token = $2, updated_at = $3
			WHERE id = $1
		`, byDevice.ID, token, now)
		if err != nil {
			return nil, fmt.Errorf("rewrite token: %w", err)
		}
		byDevice.Token = token
		byDevice.UpdatedAt = now
		result = byDevice

	case upsertInsert:
		fresh := &domain.DeviceToken{
			ID:         uuid.New(),
			UserID:     userID,
			Token:      token,
			DeviceType: deviceType,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO device_tokens (id, user_id, token, device_type, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, fresh.ID, fresh.UserID, fresh.Token, fresh.DeviceType, fresh.CreatedAt, fresh.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert token: %w", err)
		}
		result = fresh
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return result, nil
}

// ListForUser возвращает все токены пользователя.
func (r *TokenRepo) ListForUser(ctx context.Context, userID string) ([]domain.DeviceToken, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+tokenColumns+` FROM device_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	var tokens []domain.DeviceToken
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, *token)
	}
	return tokens, rows.Err()
}

// GetByIDAndUser возвращает токен по ID с проверкой владельца.
func (r *TokenRepo) GetByIDAndUser(ctx context.Context, id uuid.UUID, userID string) (*domain.DeviceToken, error) {
	token, err := getTokenRow(ctx, r.pool, `SELECT `+tokenColumns+` FROM device_tokens WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, ErrNotFound
	}
	return token, nil
}

// Delete удаляет запись токена.
// Вызывается Notification Dispatcher'ом при выселении мёртвых токенов
// и API при отзыве регистрации пользователем.
func (r *TokenRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM device_tokens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Helpers ---

const tokenColumns = `id, user_id, token, device_type, created_at, updated_at`

// querier — общий знаменатель pool и tx для выборок.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// getToken возвращает токен или nil, если записи нет.
func getToken(ctx context.Context, tx pgx.Tx, query string, args ...any) (*domain.DeviceToken, error) {
	return getTokenRow(ctx, tx, query, args...)
}

func getTokenRow(ctx context.Context, q querier, query string, args ...any) (*domain.DeviceToken, error) {
	token, err := scanToken(q.QueryRow(ctx, query, args...))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return token, nil
}

// scanToken сканирует одну строку в DeviceToken.
func scanToken(row pgx.Row) (*domain.DeviceToken, error) {
	var token domain.DeviceToken
	err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.Token,
		&token.DeviceType,
		&token.CreatedAt,
		&token.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan token: %w", err)
	}
	return &token, nil
}

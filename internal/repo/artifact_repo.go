package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Pulse/internal/domain"
)

// ArtifactRepo — каталог артефактов.
// Артефакты создаются внешними системами (executor), ядро только
// ссылается на них при финализации run.
type ArtifactRepo struct {
	pool *pgxpool.Pool
}

// NewArtifactRepo создаёт новый ArtifactRepo.
func NewArtifactRepo(pool *pgxpool.Pool) *ArtifactRepo {
	return &ArtifactRepo{pool: pool}
}

// Create регистрирует артефакт в каталоге.
func (r *ArtifactRepo) Create(ctx context.Context, artifact *domain.Artifact) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO artifacts (id, user_id, name, created_at)
		VALUES ($1, $2, $3, $4)
	`, artifact.ID, artifact.UserID, artifact.Name, artifact.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert artifact: %w", err)
	}
	return nil
}

// GetByID возвращает артефакт по ID.
func (r *ArtifactRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Artifact, error) {
	var a domain.Artifact
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, name, created_at FROM artifacts WHERE id = $1
	`, id).Scan(&a.ID, &a.UserID, &a.Name, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get artifact: %w", err)
	}
	return &a, nil
}

// ListForRun возвращает артефакты, прикреплённые к run.
func (r *ArtifactRepo) ListForRun(ctx context.Context, runID uuid.UUID) ([]domain.Artifact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.user_id, a.name, a.created_at
		FROM artifacts a
		JOIN run_artifacts ra ON ra.artifact_id = a.id
		WHERE ra.run_id = $1
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []domain.Artifact
	for rows.Next() {
		var a domain.Artifact
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

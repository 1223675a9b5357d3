package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/domain"
)

type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, actor_user_id, action, entity_type, entity_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.ActorUserID, a.Action, a.EntityType, a.EntityID, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, actor_user_id, action, entity_type, entity_id, created_at
		FROM audit_logs WHERE entity_type = $1 AND entity_id = $2 ORDER BY created_at ASC`,
		entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("ListByEntity: %w", err)
	}
	defer rows.Close()

	var out []domain.AuditLog
	for rows.Next() {
		var a domain.AuditLog
		if err := rows.Scan(&a.ID, &a.ActorUserID, &a.Action, &a.EntityType, &a.EntityID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListByEntity: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByEntity: %w", err)
	}
	return out, nil
}

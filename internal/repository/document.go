package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/radionhq/revshare-engine/internal/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, startup_id, doc_type, filename, storage_key, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.StartupID, d.DocType, d.Filename, d.StorageKey, d.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *DocumentRepository) ListByStartup(ctx context.Context, startupID uuid.UUID) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, startup_id, doc_type, filename, storage_key, uploaded_at
		FROM documents WHERE startup_id = $1 ORDER BY uploaded_at`, startupID)
	if err != nil {
		return nil, fmt.Errorf("ListByStartup: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.ID, &d.StartupID, &d.DocType, &d.Filename, &d.StorageKey, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("ListByStartup: scan: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByStartup: rows: %w", err)
	}
	return docs, nil
}

// TypesPresent returns the distinct document types on file for a startup.
func (r *DocumentRepository) TypesPresent(ctx context.Context, startupID uuid.UUID) (map[domain.DocumentType]bool, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT doc_type FROM documents WHERE startup_id = $1`, startupID)
	if err != nil {
		return nil, fmt.Errorf("TypesPresent: %w", err)
	}
	defer rows.Close()

	present := make(map[domain.DocumentType]bool)
	for rows.Next() {
		var t domain.DocumentType
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("TypesPresent: scan: %w", err)
		}
		present[t] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("TypesPresent: rows: %w", err)
	}
	return present, nil
}

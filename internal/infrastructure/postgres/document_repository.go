package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hszk-dev/cliprelay/internal/domain/repository"
)

// DBTX is an interface that abstracts pgxpool.Pool and pgx.Tx for testability.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DocumentRepository keeps one cache document per row of cache_documents,
// keyed by store name.
type DocumentRepository struct {
	db   DBTX
	name string
}

var _ repository.DocumentStore = (*DocumentRepository)(nil)

// NewDocumentRepository creates a repository for the named store's document.
func NewDocumentRepository(db DBTX, name string) *DocumentRepository {
	return &DocumentRepository{db: db, name: name}
}

// EnsureSchema creates the documents table if it does not exist.
func EnsureSchema(ctx context.Context, db DBTX) error {
	const query = `
		CREATE TABLE IF NOT EXISTS cache_documents (
			name       TEXT PRIMARY KEY,
			body       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`

	if _, err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create cache_documents: %w", err)
	}
	return nil
}

// Load returns the stored document. Returns repository.ErrDocumentNotFound if no row exists.
func (r *DocumentRepository) Load(ctx context.Context) ([]byte, error) {
	const query = `
		SELECT body
		FROM cache_documents
		WHERE name = $1
	`

	var body []byte
	if err := r.db.QueryRow(ctx, query, r.name).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to load document %s: %w", r.name, err)
	}

	return body, nil
}

// Save replaces the stored document in a single upsert.
func (r *DocumentRepository) Save(ctx context.Context, data []byte) error {
	const query = `
		INSERT INTO cache_documents (name, body, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.Exec(ctx, query, r.name, data); err != nil {
		return fmt.Errorf("failed to save document %s: %w", r.name, err)
	}

	return nil
}

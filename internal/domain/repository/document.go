package repository

import "context"

// DocumentStore is the durable home of a single cache document.
// The document is always read and written whole.
// Implementations should be provided by the infrastructure layer (file, Redis, PostgreSQL, MinIO).
type DocumentStore interface {
	// Load returns the stored document.
	// Returns ErrDocumentNotFound if nothing has been saved yet.
	Load(ctx context.Context) ([]byte, error)

	// Save replaces the stored document with data.
	Save(ctx context.Context, data []byte) error
}

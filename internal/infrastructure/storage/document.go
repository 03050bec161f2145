package storage

import (
	"context"
	"errors"

	"github.com/hszk-dev/cliprelay/internal/domain/repository"
)

// ObjectDocument keeps a cache document as a single object.
// An object PUT replaces the whole body, so readers never see a partial write.
type ObjectDocument struct {
	client *Client
	key    string
}

var _ repository.DocumentStore = (*ObjectDocument)(nil)

// NewObjectDocument creates a document stored at cache/<name>.json.
func NewObjectDocument(client *Client, name string) *ObjectDocument {
	return &ObjectDocument{
		client: client,
		key:    DocumentKey(name),
	}
}

// DocumentKey returns the object key for a store's document.
func DocumentKey(name string) string {
	return "cache/" + name + ".json"
}

// Load reads the document. Returns repository.ErrDocumentNotFound if the object is absent.
func (d *ObjectDocument) Load(ctx context.Context) ([]byte, error) {
	data, err := d.client.Fetch(ctx, d.key)
	if errors.Is(err, repository.ErrObjectNotFound) {
		return nil, repository.ErrDocumentNotFound
	}
	return data, err
}

// Save replaces the document with data.
func (d *ObjectDocument) Save(ctx context.Context, data []byte) error {
	return d.client.PutJSON(ctx, d.key, data)
}

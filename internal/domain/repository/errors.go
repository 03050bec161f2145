package repository

import "errors"

var (
	// ErrDocumentNotFound is returned by a DocumentStore that holds no document yet.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrObjectNotFound is returned when an object does not exist in object storage.
	ErrObjectNotFound = errors.New("object not found")

	// ErrBucketNotFound is returned when the configured bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")
)

// Package docstore holds the uploaded seller-verification documents. The
// MinIO backend is used in deployments; the memory backend serves tests and
// local development without object storage.
package docstore

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("document not found")

// Object is a stored document's content and metadata.
type Object struct {
	Key         string
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

type Store interface {
	Put(ctx context.Context, key, name, contentType string, size int64, body io.Reader) error
	Get(ctx context.Context, key string) (Object, error)
	Delete(ctx context.Context, key string) error
}

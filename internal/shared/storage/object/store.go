package object

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Open and Delete when the key holds no object.
var ErrNotFound = errors.New("object not found")

// ObjectStore holds uploaded profile files between wizard steps, namespaced
// per session.
type ObjectStore interface {
	Save(ctx context.Context, sessionID string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}

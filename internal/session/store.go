package session

import "context"

// Store persists session markers keyed by the opaque id carried in the session
// cookie. Get returns ErrNotFound when no marker exists.
type Store interface {
	Get(ctx context.Context, id string) (Marker, error)
	Set(ctx context.Context, id string, marker Marker) error
	Clear(ctx context.Context, id string) error
}

// Package credstore persists session credentials across process restarts:
// an opaque key→string mapping holding the bearer token and an optional
// serialized copy of the current user record.
package credstore

import "context"

// Fixed keys used by the session manager.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Store is a persistent key→string mapping. Get returns "" (and no error)
// for an absent key.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error

	// SetAll writes several keys atomically; either all land or none do.
	SetAll(ctx context.Context, values map[string]string) error

	Delete(ctx context.Context, key string) error

	// Clear wipes every stored credential. Clearing an empty store is not
	// an error.
	Clear(ctx context.Context) error
}

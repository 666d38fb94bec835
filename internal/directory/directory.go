// Package directory supplies user records to the auth core. Two sources
// implement the same capability interface: the built-in demo seed table and
// an optional Postgres-backed store. The auth core consults the injected
// source first and falls back to the seed table when the source is
// unreachable or empty, so a directory failure can never abort a login.
package directory

import (
	"context"
	"errors"

	"github.com/ovaphlow/pitchfork/dashboard-core-go/internal/directory/entity"
)

// CollectionUsers is the record collection the auth core reads and writes.
const CollectionUsers = "users"

var (
	// ErrUnavailable marks a source that could not be reached. Callers
	// degrade to cached or seeded data instead of propagating it.
	ErrUnavailable = errors.New("record source unavailable")
	// ErrNotFound is returned by Update when the target record is absent.
	ErrNotFound = errors.New("record not found")
	// ErrUnknownCollection rejects writes to collections a source does not hold.
	ErrUnknownCollection = errors.New("unknown collection")
)

// RecordSource is the capability contract for an external record store.
// All three operations are fallible; no caller may let their failure
// propagate out of a login or restore flow.
type RecordSource interface {
	GetUsers(ctx context.Context) ([]entity.User, error)
	Create(ctx context.Context, collection string, record map[string]any) error
	Update(ctx context.Context, collection, id string, patch map[string]any) error
}

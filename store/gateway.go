/*
Package store provides the persistence gateway for portal state.

PURPOSE:
  Durable storage of each named state slice as one serialized blob under
  a distinct namespaced key. The gateway is the only layer that touches
  storage; everything above it works on in-memory values.

FAILURE POLICY:
  Storage access is inherently fallible (missing file, disabled storage,
  quota, corrupt blob). Gateway implementations report errors honestly,
  but the LoadJSON/SaveJSON helpers collapse every failure at the public
  boundary: a failed load degrades to "use the slice default" and a
  failed save leaves the in-memory state authoritative for the session.
  Callers of the state container never handle storage errors.

SEE ALSO:
  - memory.go: in-memory gateway for tests and dev
  - sqlite subpackage: durable SQLite-backed gateway
  - portal package: the state container built on top
*/
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned by Gateway.Load when the key has never been
// written (or has been deleted).
var ErrNotFound = errors.New("store: key not found")

// Gateway persists named slices of portal state. Implementations must
// treat keys as opaque strings and values as opaque blobs.
type Gateway interface {
	// Load returns the blob stored under key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save writes the blob under key, replacing any previous value.
	Save(ctx context.Context, key string, blob []byte) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// LoadJSON reads and decodes one slice. Any failure — absent key,
// storage error, malformed blob — yields ok=false so the caller falls
// back to the slice default. It never returns an error.
func LoadJSON[T any](ctx context.Context, g Gateway, key string) (T, bool) {
	var v T
	blob, err := g.Load(ctx, key)
	if err != nil {
		return v, false
	}
	if err := json.Unmarshal(blob, &v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// SaveJSON encodes and writes one slice, swallowing failures. A write
// that silently fails leaves the session in session-only mode; the
// in-memory value stays authoritative.
func SaveJSON(ctx context.Context, g Gateway, key string, v any) {
	blob, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = g.Save(ctx, key, blob)
}

// Remove deletes one slice key, swallowing failures.
func Remove(ctx context.Context, g Gateway, key string) {
	_ = g.Delete(ctx, key)
}

// Package kv provides the persistence substrate for the local record store:
// a key-value service holding one serialized JSON payload per logical
// collection key. It is constructed once in main and injected into each
// repository, so tests can swap in the in-memory implementation.
//
// Known limitation: there is no cross-process coordination. Two processes
// sharing one SQLite file race on read-modify-write cycles (last write
// wins). The substrate is intended for a single local process.
package kv

import "context"

// Store is the key-value substrate. Values are opaque JSON payloads.
type Store interface {
	// Get returns the payload for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores the payload for key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
}

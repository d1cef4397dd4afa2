// Package snapshot provides the local key/value stores the client uses as its
// offline fallback. Values are opaque byte slices; callers own the encoding.
//
// Three backends are available: a SQLite file (the default), Redis, and an
// in-process map used in tests and when client.snapshot_backend is "memory".
package snapshot

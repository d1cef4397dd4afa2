// Package client keeps a local, optimistic copy of the task board.
//
// Cache mirrors the server's task list, applies mutations locally first and
// records them in an Outbox that Sync later replays through TaskAPI. When the
// server cannot be reached, Load falls back to the last snapshot written to a
// snapshot.Store.
package client

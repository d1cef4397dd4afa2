package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/phrazzld/kanban-api/internal/domain"
)

var errUnknownMutation = errors.New("unknown mutation kind")

// SyncResult summarizes one Sync run.
type SyncResult struct {
	// Applied counts mutations the server accepted, including deletes of
	// tasks it no longer had.
	Applied int

	// Rejected lists mutations the server refused with a 4xx. They are
	// dropped from the outbox.
	Rejected []RejectedMutation

	// Remaining is the outbox length when Sync returned.
	Remaining int
}

// RejectedMutation pairs a dropped mutation with the server's answer.
type RejectedMutation struct {
	Mutation Mutation
	Err      error
}

// Sync sends queued mutations to the server oldest first, then reloads.
//
// A create re-keys the local task and any later mutations to the ID the
// server assigned. The first transport failure stops the run and leaves
// the rest of the outbox queued; the returned error matches ErrOffline.
// Only one Sync runs at a time, and Load waits for it.
func (c *Cache) Sync(ctx context.Context) (SyncResult, error) {
	c.syncMu.Lock()
	defer c.syncMu.Unlock()

	var (
		result      SyncResult
		persistErrs []error
	)

	c.mu.Lock()
	err := errors.Join(c.hydrateLocked(ctx), c.ensureOutboxLocked(ctx))
	c.mu.Unlock()
	if err != nil {
		return result, err
	}

	for {
		c.mu.Lock()
		m, ok := c.outbox.peek()
		c.mu.Unlock()
		if !ok {
			break
		}

		created, err := c.replay(ctx, m)

		c.mu.Lock()
		switch {
		case err == nil:
			result.Applied++
			c.outbox.remove(m.ID)
			if m.Kind == MutationCreate {
				c.adoptServerIDLocked(m.TaskID, created.ID)
			}

		case m.Kind == MutationDelete && IsNotFound(err):
			result.Applied++
			c.outbox.remove(m.ID)

		case errors.Is(err, errUnknownMutation) || isClientError(err):
			result.Rejected = append(result.Rejected, RejectedMutation{Mutation: m, Err: err})
			c.outbox.remove(m.ID)
			if m.Kind == MutationCreate {
				// Later updates would address a server ID that was never assigned.
				c.outbox.dropTask(m.TaskID)
			}
			c.logger.Warn("server rejected mutation",
				"mutation_id", m.ID, "kind", m.Kind, "task_id", m.TaskID, "error", err)

		default:
			result.Remaining = c.outbox.Len()
			persistErrs = append(persistErrs, c.persistLocked(ctx))
			c.mu.Unlock()
			c.logger.Warn("sync stopped", "error", err, "remaining", result.Remaining)
			return result, errors.Join(append([]error{&OfflineError{Cause: err}}, persistErrs...)...)
		}
		persistErrs = append(persistErrs, c.persistLocked(ctx))
		c.mu.Unlock()
	}

	// syncMu is held, so reload directly rather than through Load.
	loadErr := c.load(ctx)

	c.mu.Lock()
	result.Remaining = c.outbox.Len()
	c.mu.Unlock()

	c.logger.Info("sync finished",
		"applied", result.Applied, "rejected", len(result.Rejected), "remaining", result.Remaining)
	return result, errors.Join(append(persistErrs, loadErr)...)
}

func (c *Cache) replay(ctx context.Context, m Mutation) (domain.Task, error) {
	switch m.Kind {
	case MutationCreate:
		if m.Task == nil {
			return domain.Task{}, fmt.Errorf("%w: create without task", errUnknownMutation)
		}
		return c.api.CreateTask(ctx, CreateTaskInput{
			Title:       m.Task.Title,
			Description: m.Task.Description,
			Status:      m.Task.Status,
		})
	case MutationUpdate:
		if m.Patch == nil {
			return domain.Task{}, nil
		}
		return c.api.UpdateTask(ctx, m.TaskID, *m.Patch)
	case MutationDelete:
		return domain.Task{}, c.api.DeleteTask(ctx, m.TaskID)
	default:
		return domain.Task{}, fmt.Errorf("%w: %q", errUnknownMutation, m.Kind)
	}
}

// adoptServerIDLocked renames local task id to serverID. Anything already
// holding serverID locally is moved aside first.
func (c *Cache) adoptServerIDLocked(localID, serverID int64) {
	if localID == serverID {
		return
	}
	if c.indexLocked(serverID) >= 0 || c.outboxHasTask(serverID) {
		c.rekeyLocked(serverID, c.nextIDLocked())
	}
	c.rekeyLocked(localID, serverID)
}

func (c *Cache) rekeyLocked(from, to int64) {
	if idx := c.indexLocked(from); idx >= 0 {
		c.tasks[idx].ID = to
	}
	c.outbox.rekey(from, to)
}

func (c *Cache) outboxHasTask(id int64) bool {
	for _, m := range c.outbox.items {
		if m.TaskID == id {
			return true
		}
	}
	return false
}

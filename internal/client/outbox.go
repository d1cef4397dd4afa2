package client

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
)

// MutationKind identifies the server call a queued mutation replays as.
type MutationKind string

const (
	MutationCreate MutationKind = "create"
	MutationUpdate MutationKind = "update"
	MutationDelete MutationKind = "delete"
)

// Mutation is one local change waiting to be sent to the server.
// Task is set for creates, Patch for updates.
type Mutation struct {
	ID       uuid.UUID         `json:"id"`
	Kind     MutationKind      `json:"kind"`
	TaskID   int64             `json:"task_id"`
	Task     *domain.Task      `json:"task,omitempty"`
	Patch    *domain.TaskPatch `json:"patch,omitempty"`
	QueuedAt time.Time         `json:"queued_at"`
}

// Outbox is the FIFO queue of pending mutations.
// It is not safe for concurrent use; Cache serializes access.
type Outbox struct {
	items []Mutation
}

// Len returns the number of queued mutations.
func (o *Outbox) Len() int {
	return len(o.items)
}

// Pending returns a copy of the queue in FIFO order.
func (o *Outbox) Pending() []Mutation {
	out := make([]Mutation, len(o.items))
	copy(out, o.items)
	return out
}

func (o *Outbox) enqueue(m Mutation) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	o.items = append(o.items, m)
}

func (o *Outbox) peek() (Mutation, bool) {
	if len(o.items) == 0 {
		return Mutation{}, false
	}
	return o.items[0], true
}

// remove drops the mutation with the given ID wherever it sits.
func (o *Outbox) remove(id uuid.UUID) {
	for i, m := range o.items {
		if m.ID == id {
			o.items = append(o.items[:i], o.items[i+1:]...)
			return
		}
	}
}

// rekey moves every mutation for task from onto task to.
func (o *Outbox) rekey(from, to int64) {
	for i := range o.items {
		if o.items[i].TaskID != from {
			continue
		}
		o.items[i].TaskID = to
		if o.items[i].Task != nil {
			o.items[i].Task.ID = to
		}
	}
}

func (o *Outbox) hasPendingCreate(taskID int64) bool {
	for _, m := range o.items {
		if m.Kind == MutationCreate && m.TaskID == taskID {
			return true
		}
	}
	return false
}

// dropTask removes every mutation for taskID.
func (o *Outbox) dropTask(taskID int64) {
	kept := o.items[:0]
	for _, m := range o.items {
		if m.TaskID != taskID {
			kept = append(kept, m)
		}
	}
	o.items = kept
}

func (o *Outbox) marshal() ([]byte, error) {
	items := o.items
	if items == nil {
		items = []Mutation{}
	}
	return json.Marshal(items)
}

func (o *Outbox) unmarshal(data []byte) error {
	var items []Mutation
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("decode outbox: %w", err)
	}
	o.items = items
	return nil
}

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/phrazzld/kanban-api/internal/client/snapshot"
	"github.com/phrazzld/kanban-api/internal/domain"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultSnapshotKey is where the task list snapshot is stored.
	DefaultSnapshotKey = "kanban-tasks"

	// DefaultOutboxKey is where pending mutations are stored.
	DefaultOutboxKey = "kanban-outbox"
)

// Direction moves a task one column along the board.
type Direction int

const (
	DirectionLeft Direction = iota
	DirectionRight
)

// ParseDirection converts "left" or "right" into a Direction.
func ParseDirection(raw string) (Direction, error) {
	switch raw {
	case "left":
		return DirectionLeft, nil
	case "right":
		return DirectionRight, nil
	default:
		return 0, fmt.Errorf("invalid direction %q: expected left or right", raw)
	}
}

func (d Direction) String() string {
	if d == DirectionLeft {
		return "left"
	}
	return "right"
}

// State reports whether a Load is in flight and the error of the last one.
type State struct {
	Loading bool
	Err     error
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used by the cache.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSnapshotKey overrides DefaultSnapshotKey.
func WithSnapshotKey(key string) Option {
	return func(c *Cache) {
		if key != "" {
			c.snapshotKey = key
		}
	}
}

// WithOutboxKey overrides DefaultOutboxKey.
func WithOutboxKey(key string) Option {
	return func(c *Cache) {
		if key != "" {
			c.outboxKey = key
		}
	}
}

// WithSampleTasks seeds three example tasks when the server is unreachable
// and no snapshot has ever been saved.
func WithSampleTasks() Option {
	return func(c *Cache) {
		c.sampleTasks = true
	}
}

// Cache is the client-side copy of the task list.
//
// Mutations apply to the in-memory list immediately, are written to the
// snapshot store and queued in the outbox. Load replaces the list with the
// server's and replays the outbox on top of it; Sync sends the outbox.
type Cache struct {
	api         TaskAPI
	snapshots   snapshot.Store
	logger      *slog.Logger
	now         func() time.Time
	snapshotKey string
	outboxKey   string
	sampleTasks bool

	mu           sync.Mutex
	tasks        []domain.Task
	hydrated     bool
	outbox       Outbox
	outboxLoaded bool
	loading      bool
	err          error

	loads  singleflight.Group
	syncMu sync.Mutex
}

// NewCache returns an empty cache backed by api and snapshots.
func NewCache(api TaskAPI, snapshots snapshot.Store, opts ...Option) *Cache {
	if api == nil {
		panic("api cannot be nil") // ALLOW-PANIC
	}
	if snapshots == nil {
		panic("snapshot store cannot be nil") // ALLOW-PANIC
	}

	c := &Cache{
		api:         api,
		snapshots:   snapshots,
		logger:      slog.Default(),
		now:         time.Now,
		snapshotKey: DefaultSnapshotKey,
		outboxKey:   DefaultOutboxKey,
		tasks:       []domain.Task{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "task_cache")
	return c
}

// Load refreshes the list from the server.
//
// Overlapping calls share a single fetch and all observe its result; the
// context of the call that started the fetch governs it. A fetch waits for
// a running Sync, so it never sees a created row whose create is still
// queued. On failure the list is restored from the last snapshot and an
// *OfflineError is returned.
func (c *Cache) Load(ctx context.Context) error {
	_, err, shared := c.loads.Do("load", func() (any, error) {
		c.syncMu.Lock()
		defer c.syncMu.Unlock()
		return nil, c.load(ctx)
	})
	if shared {
		c.logger.Debug("joined in-flight load")
	}
	return err
}

func (c *Cache) load(ctx context.Context) error {
	c.setLoading(true)
	defer c.setLoading(false)

	tasks, fetchErr := c.api.ListTasks(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if fetchErr != nil {
		return c.fallbackLocked(ctx, fetchErr)
	}

	slices.SortStableFunc(tasks, func(a, b domain.Task) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if tasks == nil {
		tasks = []domain.Task{}
	}
	c.tasks = tasks
	c.hydrated = true

	outboxErr := c.ensureOutboxLocked(ctx)
	c.rebaseLocked()
	c.err = nil

	c.logger.Debug("tasks loaded", "count", len(c.tasks), "pending", c.outbox.Len())
	return errors.Join(outboxErr, c.persistLocked(ctx))
}

func (c *Cache) fallbackLocked(ctx context.Context, cause error) error {
	offline := &OfflineError{Cause: cause}
	c.hydrated = true

	data, err := c.snapshots.Load(ctx, c.snapshotKey)
	switch {
	case err == nil:
		var tasks []domain.Task
		if err := json.Unmarshal(data, &tasks); err != nil {
			offline.Snapshot = fmt.Errorf("decode snapshot: %w", err)
			break
		}
		if tasks == nil {
			tasks = []domain.Task{}
		}
		c.tasks = tasks
	case errors.Is(err, snapshot.ErrNotFound):
		if c.sampleTasks {
			c.tasks = sampleTasks(c.now())
			if err := c.persistLocked(ctx); err != nil {
				c.logger.Warn("failed to save sample tasks", "error", err)
			}
		}
	default:
		offline.Snapshot = err
	}

	if err := c.ensureOutboxLocked(ctx); err != nil {
		c.logger.Warn("failed to read outbox", "error", err)
	}

	c.err = offline
	c.logger.Warn("server unavailable, using local snapshot",
		"error", cause, "count", len(c.tasks))
	return offline
}

// rebaseLocked replays pending mutations over a freshly fetched list.
// Items are read by index because rekeying rewrites later entries.
func (c *Cache) rebaseLocked() {
	for i := 0; i < c.outbox.Len(); i++ {
		m := c.outbox.items[i]

		switch m.Kind {
		case MutationCreate:
			if m.Task == nil {
				continue
			}
			id := m.TaskID
			if c.indexLocked(id) >= 0 {
				fresh := c.nextIDLocked()
				c.outbox.rekey(id, fresh)
				id = fresh
			}
			task := m.Task.Clone()
			task.ID = id
			c.tasks = append(c.tasks, *task)

		case MutationUpdate:
			idx := c.indexLocked(m.TaskID)
			if idx < 0 || m.Patch == nil {
				continue
			}
			m.Patch.Apply(&c.tasks[idx])
			if m.QueuedAt.After(c.tasks[idx].UpdatedAt) {
				c.tasks[idx].UpdatedAt = m.QueuedAt
			}

		case MutationDelete:
			if idx := c.indexLocked(m.TaskID); idx >= 0 {
				c.tasks = slices.Delete(c.tasks, idx, idx+1)
			}
		}
	}
}

// Add appends a new todo task with the next local ID.
// The title is validated with the same rules the server applies.
//
// Mutations on a cache that has never loaded first read the stored
// snapshot, so they extend it rather than replace it. If that read fails
// the change is refused.
func (c *Cache) Add(ctx context.Context, title string, description *string) (domain.Task, error) {
	var desc *string
	if description != nil {
		desc = domain.StringPtr(*description)
	}
	task, err := domain.NewTask(title, desc, domain.StatusTodo, c.now())
	if err != nil {
		return domain.Task{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.hydrateLocked(ctx); err != nil {
		return domain.Task{}, err
	}

	outboxErr := c.ensureOutboxLocked(ctx)
	task.ID = c.nextIDLocked()
	c.tasks = append(c.tasks, *task)
	c.outbox.enqueue(Mutation{
		Kind:     MutationCreate,
		TaskID:   task.ID,
		Task:     task.Clone(),
		QueuedAt: task.CreatedAt,
	})

	c.logger.Debug("task added", "task_id", task.ID)
	return *task.Clone(), errors.Join(outboxErr, c.persistLocked(ctx))
}

// MoveTask shifts a task one column left or right. It reports false and
// changes nothing when the task is unknown or already at that edge.
func (c *Cache) MoveTask(ctx context.Context, id int64, dir Direction) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.hydrateLocked(ctx); err != nil {
		return false, err
	}

	idx := c.indexLocked(id)
	if idx < 0 {
		return false, nil
	}

	var (
		next domain.Status
		ok   bool
	)
	switch dir {
	case DirectionLeft:
		next, ok = c.tasks[idx].Status.Prev()
	case DirectionRight:
		next, ok = c.tasks[idx].Status.Next()
	default:
		return false, fmt.Errorf("invalid direction %d", dir)
	}
	if !ok {
		return false, nil
	}

	return true, c.setStatusLocked(ctx, idx, next)
}

// MoveTaskToColumn puts a task straight into status. Unknown IDs and
// tasks already in that column are left alone and report false.
func (c *Cache) MoveTaskToColumn(ctx context.Context, id int64, status domain.Status) (bool, error) {
	if !status.IsValid() {
		return false, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.hydrateLocked(ctx); err != nil {
		return false, err
	}

	idx := c.indexLocked(id)
	if idx < 0 || c.tasks[idx].Status == status {
		return false, nil
	}

	return true, c.setStatusLocked(ctx, idx, status)
}

func (c *Cache) setStatusLocked(ctx context.Context, idx int, status domain.Status) error {
	outboxErr := c.ensureOutboxLocked(ctx)

	task := &c.tasks[idx]
	task.Status = status
	task.Touch(c.now())

	patch := domain.TaskPatch{Status: domain.Some(status)}
	c.outbox.enqueue(Mutation{
		Kind:     MutationUpdate,
		TaskID:   task.ID,
		Patch:    &patch,
		QueuedAt: task.UpdatedAt,
	})

	c.logger.Debug("task moved", "task_id", task.ID, "status", status)
	return errors.Join(outboxErr, c.persistLocked(ctx))
}

// Delete removes a task. Deleting an unknown ID reports false.
// A task that was never synced is dropped from the outbox instead of
// queueing a delete for it.
func (c *Cache) Delete(ctx context.Context, id int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.hydrateLocked(ctx); err != nil {
		return false, err
	}

	idx := c.indexLocked(id)
	if idx < 0 {
		return false, nil
	}

	outboxErr := c.ensureOutboxLocked(ctx)
	c.tasks = slices.Delete(c.tasks, idx, idx+1)

	if c.outbox.hasPendingCreate(id) {
		c.outbox.dropTask(id)
	} else {
		c.outbox.enqueue(Mutation{
			Kind:     MutationDelete,
			TaskID:   id,
			QueuedAt: domain.Timestamp(c.now()),
		})
	}

	c.logger.Debug("task deleted", "task_id", id)
	return true, errors.Join(outboxErr, c.persistLocked(ctx))
}

// Tasks returns a copy of the whole list.
func (c *Cache) Tasks() []domain.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneTasks(c.tasks, func(domain.Task) bool { return true })
}

// ByStatus returns a copy of the tasks in one column, in list order.
func (c *Cache) ByStatus(status domain.Status) []domain.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneTasks(c.tasks, func(t domain.Task) bool { return t.Status == status })
}

func (c *Cache) Todo() []domain.Task       { return c.ByStatus(domain.StatusTodo) }
func (c *Cache) InProgress() []domain.Task { return c.ByStatus(domain.StatusInProgress) }
func (c *Cache) Done() []domain.Task       { return c.ByStatus(domain.StatusDone) }

// Pending returns the queued mutations in the order Sync will send them.
func (c *Cache) Pending() []Mutation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outbox.Pending()
}

// State returns the current loading flag and last Load error.
func (c *Cache) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Loading: c.loading, Err: c.err}
}

func (c *Cache) setLoading(loading bool) {
	c.mu.Lock()
	c.loading = loading
	c.mu.Unlock()
}

func (c *Cache) indexLocked(id int64) int {
	return slices.IndexFunc(c.tasks, func(t domain.Task) bool { return t.ID == id })
}

// nextIDLocked returns one past the highest ID in the list or the outbox,
// so a fresh local ID never collides with a pending task.
func (c *Cache) nextIDLocked() int64 {
	var highest int64
	for _, t := range c.tasks {
		highest = max(highest, t.ID)
	}
	for _, m := range c.outbox.items {
		highest = max(highest, m.TaskID)
	}
	return highest + 1
}

// hydrateLocked reads the stored snapshot into a cache that has not yet
// been loaded. A missing snapshot leaves the list empty.
func (c *Cache) hydrateLocked(ctx context.Context) error {
	if c.hydrated {
		return nil
	}

	data, err := c.snapshots.Load(ctx, c.snapshotKey)
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		c.hydrated = true
		return nil
	case err != nil:
		return fmt.Errorf("load snapshot: %w", err)
	}

	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	c.tasks = tasks
	c.hydrated = true
	return nil
}

// ensureOutboxLocked reads the persisted outbox once. Mutations queued
// before a successful read are kept behind the stored ones.
func (c *Cache) ensureOutboxLocked(ctx context.Context) error {
	if c.outboxLoaded {
		return nil
	}

	data, err := c.snapshots.Load(ctx, c.outboxKey)
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		c.outboxLoaded = true
		return nil
	case err != nil:
		return fmt.Errorf("load outbox: %w", err)
	}

	var stored Outbox
	if err := stored.unmarshal(data); err != nil {
		c.logger.Warn("discarding unreadable outbox", "error", err)
	}
	c.outbox.items = append(stored.items, c.outbox.items...)
	c.outboxLoaded = true
	return nil
}

// persistLocked writes the list and the outbox, each only once it has been
// read from the store or replaced by a fetch.
func (c *Cache) persistLocked(ctx context.Context) error {
	var errs []error

	if c.hydrated {
		data, err := json.Marshal(c.tasks)
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		if err := c.snapshots.Save(ctx, c.snapshotKey, data); err != nil {
			errs = append(errs, fmt.Errorf("save snapshot: %w", err))
		}
	}

	if c.outboxLoaded {
		data, err := c.outbox.marshal()
		if err != nil {
			errs = append(errs, fmt.Errorf("encode outbox: %w", err))
		} else if err := c.snapshots.Save(ctx, c.outboxKey, data); err != nil {
			errs = append(errs, fmt.Errorf("save outbox: %w", err))
		}
	}

	if len(errs) > 0 {
		c.logger.Warn("failed to persist local state", "error", errors.Join(errs...))
	}
	return errors.Join(errs...)
}

func cloneTasks(tasks []domain.Task, keep func(domain.Task) bool) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for i := range tasks {
		if keep(tasks[i]) {
			out = append(out, *tasks[i].Clone())
		}
	}
	return out
}

func sampleTasks(now time.Time) []domain.Task {
	ts := domain.Timestamp(now)
	sample := func(id int64, title, description string, status domain.Status) domain.Task {
		return domain.Task{
			ID:          id,
			Title:       title,
			Description: domain.StringPtr(description),
			Status:      status,
			CreatedAt:   ts,
			UpdatedAt:   ts,
		}
	}
	return []domain.Task{
		sample(1, "First task", "This is an example task", domain.StatusTodo),
		sample(2, "Task in progress", "A task that is currently being worked on", domain.StatusInProgress),
		sample(3, "Completed task", "A task that has been completed", domain.StatusDone),
	}
}

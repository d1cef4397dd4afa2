package cli_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/kanban-api/internal/cli"
	"github.com/phrazzld/kanban-api/internal/client"
	"github.com/phrazzld/kanban-api/internal/client/snapshot"
	"github.com/phrazzld/kanban-api/internal/config"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

var errUnreachable = errors.New("dial tcp 127.0.0.1:8080: connect: connection refused")

// stubAPI is an in-memory server. When offline every call fails like an
// unreachable host.
type stubAPI struct {
	mu      sync.Mutex
	tasks   []domain.Task
	users   []domain.PublicUser
	offline bool
	nextID  int64
}

func (s *stubAPI) ListTasks(context.Context) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.offline {
		return nil, errUnreachable
	}
	return append([]domain.Task(nil), s.tasks...), nil
}

func (s *stubAPI) CreateTask(_ context.Context, in client.CreateTaskInput) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.offline {
		return domain.Task{}, errUnreachable
	}
	task, err := domain.NewTask(in.Title, in.Description, in.Status, time.Date(2025, time.April, 3, 8, 0, 0, 0, time.UTC))
	if err != nil {
		return domain.Task{}, &client.APIError{StatusCode: http.StatusBadRequest, Message: err.Error()}
	}
	task.ID = s.nextID
	s.nextID++
	s.tasks = append(s.tasks, *task)
	return *task, nil
}

func (s *stubAPI) UpdateTask(_ context.Context, id int64, patch domain.TaskPatch) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.offline {
		return domain.Task{}, errUnreachable
	}
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			patch.Apply(&s.tasks[i])
			return s.tasks[i], nil
		}
	}
	return domain.Task{}, &client.APIError{StatusCode: http.StatusNotFound, Message: "Task not found"}
}

func (s *stubAPI) DeleteTask(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.offline {
		return errUnreachable
	}
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return &client.APIError{StatusCode: http.StatusNotFound, Message: "Task not found"}
}

func (s *stubAPI) ListUsers(context.Context) ([]domain.PublicUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.offline {
		return nil, errUnreachable
	}
	return s.users, nil
}

func at(hour int) time.Time {
	return time.Date(2025, time.April, 1, hour, 0, 0, 0, time.UTC)
}

func boardTasks() []domain.Task {
	task := func(id int64, title string, desc *string, status domain.Status, created time.Time) domain.Task {
		return domain.Task{ID: id, Title: title, Description: desc, Status: status, CreatedAt: created, UpdatedAt: created}
	}
	return []domain.Task{
		task(1, "Plan sprint", nil, domain.StatusTodo, at(9)),
		task(2, "Ship release", domain.StringPtr("Tag v1.0 and publish notes"), domain.StatusDone, at(10)),
		task(3, "Write docs", domain.StringPtr("Describe the API"), domain.StatusInProgress, at(11)),
		task(4, "Fix login bug", nil, domain.StatusTodo, at(12)),
	}
}

// harness runs the CLI repeatedly against one server and one local store,
// like separate invocations on the same machine.
type harness struct {
	api   *stubAPI
	store *snapshot.MemoryStore
	cfg   *config.ClientConfig
}

func newHarness(tasks ...domain.Task) *harness {
	return &harness{
		api:   &stubAPI{tasks: tasks, nextID: 100},
		store: snapshot.NewMemoryStore(),
	}
}

func (h *harness) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer

	opener := func(_ context.Context, cfg *config.ClientConfig, log *slog.Logger) (*cli.Session, error) {
		h.cfg = cfg
		cache := client.NewCache(h.api, h.store,
			client.WithLogger(log),
			client.WithClock(func() time.Time { return time.Date(2025, time.April, 2, 9, 0, 0, 0, time.UTC) }),
			client.WithSampleTasks(),
		)
		return &cli.Session{Cache: cache, Users: h.api.ListUsers, Close: func() error { return nil }}, nil
	}

	err := cli.Execute(context.Background(), args, cli.WithOutput(&out, &errOut), cli.WithOpener(opener))
	return out.String(), errOut.String(), err
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestBoard(t *testing.T) {
	out, _, err := newHarness(boardTasks()...).run(t, "board")

	require.NoError(t, err)
	golden(t).Assert(t, "board", []byte(out))
}

func TestBoard_OfflineShowsSampleTasks(t *testing.T) {
	h := newHarness()
	h.api.offline = true

	out, errOut, err := h.run(t, "board")

	require.NoError(t, err)
	assert.Contains(t, errOut, "warning: server unavailable, using local snapshot")
	golden(t).Assert(t, "board_offline", []byte(out))
}

func TestBoard_YAML(t *testing.T) {
	out, _, err := newHarness(boardTasks()...).run(t, "board", "--format", "yaml")
	require.NoError(t, err)

	var board struct {
		Todo []struct {
			ID          int64   `yaml:"id"`
			Description *string `yaml:"description"`
			CreatedAt   string  `yaml:"created_at"`
		} `yaml:"todo"`
		InProgress []map[string]any `yaml:"in-progress"`
		Done       []map[string]any `yaml:"done"`
		Pending    int              `yaml:"pending"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &board))

	require.Len(t, board.Todo, 2)
	assert.Equal(t, int64(4), board.Todo[0].ID)
	assert.Nil(t, board.Todo[0].Description)
	assert.Equal(t, "2025-04-01T12:00:00Z", board.Todo[0].CreatedAt)
	assert.Len(t, board.InProgress, 1)
	assert.Len(t, board.Done, 1)
	assert.Zero(t, board.Pending)
}

func TestList(t *testing.T) {
	h := newHarness(boardTasks()...)

	t.Run("text", func(t *testing.T) {
		out, _, err := h.run(t, "list")
		require.NoError(t, err)
		golden(t).Assert(t, "list", []byte(out))
	})

	t.Run("status filter as json", func(t *testing.T) {
		out, _, err := h.run(t, "list", "--status", "todo", "--format", "json")
		require.NoError(t, err)
		golden(t).Assert(t, "list_todo_json", []byte(out))
	})

	t.Run("invalid status", func(t *testing.T) {
		_, _, err := h.run(t, "list", "--status", "archived")
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	})
}

func TestAdd_QueuesUntilSync(t *testing.T) {
	h := newHarness(boardTasks()...)

	out, _, err := h.run(t, "add", "Write tests", "-d", "Cover the CLI")
	require.NoError(t, err)
	assert.Equal(t, "Added task #5: Write tests\n", out)

	out, _, err = h.run(t, "board")
	require.NoError(t, err)
	assert.Contains(t, out, "TODO (3)\n")
	assert.Contains(t, out, "  #5 Write tests\n      Cover the CLI\n")
	assert.Contains(t, out, "\n1 change(s) waiting to sync\n")

	out, _, err = h.run(t, "sync")
	require.NoError(t, err)
	assert.Equal(t, "Synced: 1 applied, 0 rejected, 0 pending\n", out)

	out, _, err = h.run(t, "list", "--status", "todo")
	require.NoError(t, err)
	assert.Contains(t, out, "100   todo         Write tests\n")
	assert.Len(t, h.api.tasks, 5)
}

func TestAdd_EmptyTitle(t *testing.T) {
	_, _, err := newHarness().run(t, "add", "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMove(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr error
	}{
		{"right", []string{"move", "4", "right"}, "Moved task #4 to in-progress\n", nil},
		{"left", []string{"move", "3", "left"}, "Moved task #3 to todo\n", nil},
		{"past the last column", []string{"move", "2", "right"}, "Task #2 stays in done\n", nil},
		{"unknown task", []string{"move", "99", "left"}, "Task #99 not found\n", nil},
		{"bad id", []string{"move", "abc", "left"}, "", domain.ErrInvalidID},
		{"zero id", []string{"move", "0", "left"}, "", domain.ErrInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := newHarness(boardTasks()...).run(t, tt.args...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}

	t.Run("bad direction", func(t *testing.T) {
		_, _, err := newHarness(boardTasks()...).run(t, "move", "1", "up")
		assert.ErrorContains(t, err, "invalid direction")
	})
}

func TestMoveTo(t *testing.T) {
	h := newHarness(boardTasks()...)

	out, _, err := h.run(t, "move-to", "1", "done")
	require.NoError(t, err)
	assert.Equal(t, "Moved task #1 to done\n", out)

	out, _, err = h.run(t, "move-to", "3", "todo", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"changed":true,"status":"todo"}`, out)

	out, _, err = h.run(t, "move-to", "1", "done")
	require.NoError(t, err)
	assert.Equal(t, "Task #1 stays in done\n", out, "the queued move is replayed over the server copy")

	_, _, err = h.run(t, "move-to", "1", "archived")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestDelete(t *testing.T) {
	h := newHarness(boardTasks()...)

	out, _, err := h.run(t, "delete", "2")
	require.NoError(t, err)
	assert.Equal(t, "Deleted task #2\n", out)

	out, _, err = h.run(t, "delete", "2")
	require.NoError(t, err)
	assert.Equal(t, "Task #2 not found\n", out)

	out, _, err = h.run(t, "sync", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"applied":1,"rejected":[],"pending":0}`, out)
	assert.Len(t, h.api.tasks, 3)
}

func TestSync_Offline(t *testing.T) {
	h := newHarness()
	h.api.offline = true

	_, _, err := h.run(t, "add", "Offline idea")
	require.NoError(t, err)

	out, _, err := h.run(t, "sync")

	assert.ErrorIs(t, err, client.ErrOffline)
	assert.Equal(t, "Synced: 0 applied, 0 rejected, 1 pending\n", out)
}

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.xlsx")

	out, _, err := newHarness(boardTasks()...).run(t, "export", path)
	require.NoError(t, err)
	assert.Equal(t, "Exported 4 tasks to "+path+"\n", out)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"todo", "in-progress", "done"}, f.GetSheetList())

	rows, err := f.GetRows("todo")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Title", "Description", "Status", "Created", "Updated"}, rows[0])
	assert.Equal(t, "4", rows[1][0])
	assert.Equal(t, "Fix login bug", rows[1][1])
	assert.Equal(t, "1", rows[2][0])

	rows, err = f.GetRows("done")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2", "Ship release", "Tag v1.0 and publish notes", "done",
		"2025-04-01T10:00:00Z", "2025-04-01T10:00:00Z"}, rows[1])
}

func TestUsers(t *testing.T) {
	h := newHarness()
	h.api.users = []domain.PublicUser{
		{ID: 2, Name: "Grace Hopper", Email: "grace.hopper.2@example.com", CreatedAt: at(10)},
		{ID: 1, Name: "Ada Lovelace", Email: "ada.lovelace.1@example.com", CreatedAt: at(9)},
	}

	out, _, err := h.run(t, "users")
	require.NoError(t, err)
	golden(t).Assert(t, "users", []byte(out))

	h.api.offline = true
	_, _, err = h.run(t, "users")
	assert.ErrorIs(t, err, errUnreachable)
}

func TestFlagsOverrideConfig(t *testing.T) {
	h := newHarness()

	_, _, err := h.run(t, "list", "--server", "http://kanban.test/api", "--redis-addr", "localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "http://kanban.test/api", h.cfg.BaseURL)
	assert.Equal(t, config.SnapshotBackendRedis, h.cfg.SnapshotBackend)
	assert.Equal(t, "localhost:6379", h.cfg.RedisAddr)

	path := filepath.Join(t.TempDir(), "local.db")
	_, _, err = h.run(t, "list", "--snapshot", path)
	require.NoError(t, err)
	assert.Equal(t, config.SnapshotBackendSQLite, h.cfg.SnapshotBackend)
	assert.Equal(t, path, h.cfg.SnapshotPath)
}

func TestUnknownFormat(t *testing.T) {
	_, _, err := newHarness().run(t, "board", "--format", "xml")
	assert.ErrorContains(t, err, `unknown format "xml"`)
}

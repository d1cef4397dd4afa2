package client_test

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phrazzld/kanban-api/internal/client"
	"github.com/phrazzld/kanban-api/internal/domain"
)

var errConnRefused = errors.New("dial tcp 127.0.0.1:8080: connect: connection refused")

// fakeAPI is an in-memory TaskAPI. Calls are recorded as "METHOD id".
type fakeAPI struct {
	mu       sync.Mutex
	tasks    []domain.Task
	nextID   int64
	listErr  error
	mutErrs  []error
	calls    []string
	onList   func()
	onCreate func()
	listHits atomic.Int32
}

var _ client.TaskAPI = (*fakeAPI)(nil)

func newFakeAPI(tasks ...domain.Task) *fakeAPI {
	f := &fakeAPI{nextID: 100}
	f.tasks = append(f.tasks, tasks...)
	return f
}

// failNext queues errors returned by the following mutating calls in order;
// a nil entry lets that call through.
func (f *fakeAPI) failNext(errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutErrs = append(f.mutErrs, errs...)
}

func (f *fakeAPI) setListErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

func (f *fakeAPI) serverTasks() []domain.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Task(nil), f.tasks...)
}

func (f *fakeAPI) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) popErr() error {
	if len(f.mutErrs) == 0 {
		return nil
	}
	err := f.mutErrs[0]
	f.mutErrs = f.mutErrs[1:]
	return err
}

func (f *fakeAPI) index(id int64) int {
	for i, t := range f.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (f *fakeAPI) ListTasks(context.Context) ([]domain.Task, error) {
	f.listHits.Add(1)
	if f.onList != nil {
		f.onList()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Task, len(f.tasks))
	copy(out, f.tasks)
	return out, nil
}

func (f *fakeAPI) CreateTask(_ context.Context, in client.CreateTaskInput) (domain.Task, error) {
	if f.onCreate != nil {
		f.onCreate()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "POST")
	if err := f.popErr(); err != nil {
		return domain.Task{}, err
	}

	task, err := domain.NewTask(in.Title, in.Description, in.Status, time.Now())
	if err != nil {
		return domain.Task{}, &client.APIError{StatusCode: http.StatusBadRequest, Message: err.Error()}
	}
	task.ID = f.nextID
	f.nextID++
	f.tasks = append(f.tasks, *task)
	return *task, nil
}

func (f *fakeAPI) UpdateTask(_ context.Context, id int64, patch domain.TaskPatch) (domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "PATCH "+strconv.FormatInt(id, 10))
	if err := f.popErr(); err != nil {
		return domain.Task{}, err
	}

	i := f.index(id)
	if i < 0 {
		return domain.Task{}, &client.APIError{StatusCode: http.StatusNotFound, Message: "Task not found"}
	}
	patch.Apply(&f.tasks[i])
	f.tasks[i].Touch(time.Now())
	return f.tasks[i], nil
}

func (f *fakeAPI) DeleteTask(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "DELETE "+strconv.FormatInt(id, 10))
	if err := f.popErr(); err != nil {
		return err
	}

	i := f.index(id)
	if i < 0 {
		return &client.APIError{StatusCode: http.StatusNotFound, Message: "Task not found"}
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	return nil
}

// addServerTask inserts a task as if another client had created it.
func (f *fakeAPI) addServerTask(t domain.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, t)
}

// dropServerTask removes a task as if another client had deleted it.
func (f *fakeAPI) dropServerTask(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.index(id); i >= 0 {
		f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	}
}

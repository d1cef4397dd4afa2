package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/kanban-api/internal/api/shared"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/phrazzld/kanban-api/internal/service"
)

// Response messages for the task endpoints.
const (
	msgTasksRetrieved = "Tasks retrieved successfully"
	msgTaskRetrieved  = "Task retrieved successfully"
	msgTaskCreated    = "Task created successfully"
	msgTaskUpdated    = "Task updated successfully"
	msgTaskDeleted    = "Task deleted successfully"
	msgInvalidStatus  = "Invalid status provided"
	msgInvalidRequest = "Invalid request format"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if taskService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("taskService cannot be nil for TaskHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /api/tasks requests.
// An unknown status query value is rejected here, unlike the service layer
// which ignores it.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	status := r.URL.Query().Get("status")
	if status != "" && !domain.Status(status).IsValid() {
		log.Debug("rejected task list with invalid status", slog.String("status", status))
		shared.RespondWithError(w, r, http.StatusBadRequest, msgInvalidStatus,
			shared.WithValidStatuses(domain.ValidStatusStrings()))
		return
	}

	tasks, err := h.taskService.List(r.Context(), status)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve tasks")
		return
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	shared.RespondWithList(w, r, msgTasksRetrieved, tasks, len(tasks))
}

// GetTask handles GET /api/tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, msgTaskRetrieved, task)
}

// CreateTask handles POST /api/tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateTaskRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, msgInvalidRequest, err)
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		var opts []shared.ResponseOption
		if req.Status != nil && !domain.Status(*req.Status).IsValid() {
			opts = append(opts, shared.WithValidStatuses(domain.ValidStatusStrings()))
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err), opts...)
		return
	}

	params := service.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		params.Status = &status
	}

	task, err := h.taskService.Create(r.Context(), params)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("task created via API", slog.Int64("task_id", task.ID))
	shared.RespondWithData(w, r, http.StatusCreated, msgTaskCreated, task)
}

// UpdateTask handles PATCH and PUT /api/tasks/{id} requests with merge-patch
// semantics.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	var patch UpdateTaskRequest
	if err := shared.DecodeJSON(w, r, &patch); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, msgInvalidRequest, err)
		return
	}

	if err := patch.Validate(); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskService.Update(r.Context(), existing, patch)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, msgTaskUpdated, task)
}

// DeleteTask handles DELETE /api/tasks/{id} requests.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	deleted, err := h.taskService.Delete(r.Context(), task)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}
	if !deleted {
		// Removed concurrently between the lookup and the delete
		HandleAPIError(w, r, service.ErrTaskNotFound, "")
		return
	}

	shared.RespondWithMessage(w, r, http.StatusOK, msgTaskDeleted)
}

// loadTask resolves the {id} path parameter to a task, writing the error
// response itself when it cannot.
func (h *TaskHandler) loadTask(w http.ResponseWriter, r *http.Request) (*domain.Task, bool) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := getPathID(r, "id")
	if err != nil {
		log.Debug("invalid task id in path", slog.String("error", err.Error()))
		HandleAPIError(w, r, err, "")
		return nil, false
	}

	task, err := h.taskService.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}
	return task, true
}

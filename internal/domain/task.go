package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Status represents the column a task sits in on the board.
type Status string

// Possible task status values, in pipeline order.
const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// MaxTitleLength is the maximum number of characters accepted for a task title.
const MaxTitleLength = 255

// Common validation errors for Task
var (
	ErrEmptyTaskTitle   = errors.New("task title cannot be empty")
	ErrTaskTitleTooLong = fmt.Errorf("task title cannot exceed %d characters", MaxTitleLength)
	ErrInvalidStatus    = errors.New("invalid task status")
)

// statusOrder is the fixed left-to-right order of the board columns.
var statusOrder = []Status{StatusTodo, StatusInProgress, StatusDone}

// ValidStatuses returns the valid status values in pipeline order.
// The returned slice is a copy and may be modified by the caller.
func ValidStatuses() []Status {
	out := make([]Status, len(statusOrder))
	copy(out, statusOrder)
	return out
}

// ValidStatusStrings returns the valid status values as plain strings.
func ValidStatusStrings() []string {
	out := make([]string, len(statusOrder))
	for i, s := range statusOrder {
		out[i] = string(s)
	}
	return out
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	return s.index() >= 0
}

// ParseStatus converts a raw string into a Status.
// Returns ErrInvalidStatus if the value is not one of the known statuses.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// Next returns the status one step to the right in the pipeline.
// The second return value is false when s is already the last column.
func (s Status) Next() (Status, bool) {
	i := s.index()
	if i < 0 || i == len(statusOrder)-1 {
		return s, false
	}
	return statusOrder[i+1], true
}

// Prev returns the status one step to the left in the pipeline.
// The second return value is false when s is already the first column.
func (s Status) Prev() (Status, bool) {
	i := s.index()
	if i <= 0 {
		return s, false
	}
	return statusOrder[i-1], true
}

func (s Status) index() int {
	for i, candidate := range statusOrder {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Task is a unit of work shown on the kanban board.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTask creates a Task with the given title and optional description.
// The ID is left at zero; it is assigned by the store on creation.
// The status defaults to StatusTodo when status is empty.
// Returns an error if validation fails.
func NewTask(title string, description *string, status Status, now time.Time) (*Task, error) {
	if status == "" {
		status = StatusTodo
	}

	ts := Timestamp(now)
	task := &Task{
		Title:       NormalizeTitle(title),
		Description: description,
		Status:      status,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.Title == "" {
		return ErrEmptyTaskTitle
	}

	if len([]rune(t.Title)) > MaxTitleLength {
		return ErrTaskTitleTooLong
	}

	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}

	return nil
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	return &c
}

// Touch advances UpdatedAt to now. The new value is always strictly after
// the previous one, even when the clock has not moved at the stored precision.
func (t *Task) Touch(now time.Time) {
	ts := Timestamp(now)
	if !ts.After(t.UpdatedAt) {
		ts = t.UpdatedAt.Add(time.Microsecond)
	}
	t.UpdatedAt = ts
}

// NormalizeTitle trims surrounding whitespace and converts the title to
// Unicode NFC so visually identical titles compare equal.
func NormalizeTitle(title string) string {
	return norm.NFC.String(strings.TrimSpace(title))
}

// Timestamp converts t to UTC at the microsecond precision used by the database.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// StringPtr returns a pointer to s. Handy for optional descriptions.
func StringPtr(s string) *string {
	return &s
}

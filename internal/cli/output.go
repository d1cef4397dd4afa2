package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/phrazzld/kanban-api/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validFormat(f string) bool {
	return f == formatText || f == formatJSON || f == formatYAML
}

// taskView is the serialized form of a task in json and yaml output.
type taskView struct {
	ID          int64   `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Description *string `json:"description" yaml:"description"`
	Status      string  `json:"status" yaml:"status"`
	CreatedAt   string  `json:"created_at" yaml:"created_at"`
	UpdatedAt   string  `json:"updated_at" yaml:"updated_at"`
}

type boardView struct {
	Todo       []taskView `json:"todo" yaml:"todo"`
	InProgress []taskView `json:"in-progress" yaml:"in-progress"`
	Done       []taskView `json:"done" yaml:"done"`
	Pending    int        `json:"pending" yaml:"pending"`
}

type changeView struct {
	ID      int64  `json:"id" yaml:"id"`
	Changed bool   `json:"changed" yaml:"changed"`
	Status  string `json:"status,omitempty" yaml:"status,omitempty"`
}

type syncView struct {
	Applied  int      `json:"applied" yaml:"applied"`
	Rejected []string `json:"rejected" yaml:"rejected"`
	Pending  int      `json:"pending" yaml:"pending"`
}

type userView struct {
	ID        int64  `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Email     string `json:"email" yaml:"email"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func toTaskView(t domain.Task) taskView {
	return taskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
	}
}

func toTaskViews(tasks []domain.Task) []taskView {
	out := make([]taskView, len(tasks))
	for i, t := range tasks {
		out[i] = toTaskView(t)
	}
	return out
}

// writeStructured encodes v as json or yaml. It reports false for text.
func writeStructured(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}

var columnTitles = map[domain.Status]string{
	domain.StatusTodo:       "TODO",
	domain.StatusInProgress: "IN PROGRESS",
	domain.StatusDone:       "DONE",
}

func writeBoardText(w io.Writer, columns map[domain.Status][]domain.Task, pending int) {
	for i, status := range domain.ValidStatuses() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		tasks := columns[status]
		fmt.Fprintf(w, "%s (%d)\n", columnTitles[status], len(tasks))
		if len(tasks) == 0 {
			fmt.Fprintln(w, "  (empty)")
		}
		for _, t := range tasks {
			fmt.Fprintf(w, "  #%d %s\n", t.ID, t.Title)
			if t.Description != nil && strings.TrimSpace(*t.Description) != "" {
				fmt.Fprintf(w, "      %s\n", *t.Description)
			}
		}
	}
	if pending > 0 {
		fmt.Fprintf(w, "\n%d change(s) waiting to sync\n", pending)
	}
}

func writeTaskTable(w io.Writer, tasks []domain.Task) {
	fmt.Fprintf(w, "%-5s %-12s %s\n", "ID", "STATUS", "TITLE")
	for _, t := range tasks {
		fmt.Fprintf(w, "%-5d %-12s %s\n", t.ID, t.Status, t.Title)
	}
}

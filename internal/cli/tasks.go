package cli

import (
	"fmt"
	"strconv"

	"github.com/phrazzld/kanban-api/internal/client"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/spf13/cobra"
)

func parseTaskID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidID, raw)
	}
	return id, nil
}

func (a *app) addCommand() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Add a task to the todo column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.load(cmd.Context())

			var desc *string
			if cmd.Flags().Changed("description") {
				desc = &description
			}

			task, err := a.session.Cache.Add(cmd.Context(), args[0], desc)
			if err != nil {
				return err
			}

			ok, err := writeStructured(a.out, a.format, toTaskView(task))
			if ok {
				return err
			}
			fmt.Fprintf(a.out, "Added task #%d: %s\n", task.ID, task.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	return cmd
}

func (a *app) moveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move ID left|right",
		Short: "Move a task one column left or right",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			dir, err := client.ParseDirection(args[1])
			if err != nil {
				return err
			}

			a.load(cmd.Context())

			moved, err := a.session.Cache.MoveTask(cmd.Context(), id, dir)
			if err != nil {
				return err
			}
			return a.writeChange(id, moved)
		},
	}
}

func (a *app) moveToCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move-to ID STATUS",
		Short: "Put a task straight into a column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			status, err := domain.ParseStatus(args[1])
			if err != nil {
				return err
			}

			a.load(cmd.Context())

			moved, err := a.session.Cache.MoveTaskToColumn(cmd.Context(), id, status)
			if err != nil {
				return err
			}
			return a.writeChange(id, moved)
		},
	}
}

func (a *app) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			a.load(cmd.Context())

			deleted, err := a.session.Cache.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}

			ok, err := writeStructured(a.out, a.format, changeView{ID: id, Changed: deleted})
			if ok {
				return err
			}
			if deleted {
				fmt.Fprintf(a.out, "Deleted task #%d\n", id)
			} else {
				fmt.Fprintf(a.out, "Task #%d not found\n", id)
			}
			return nil
		},
	}
}

// writeChange reports the outcome of a move.
func (a *app) writeChange(id int64, moved bool) error {
	view := changeView{ID: id, Changed: moved}
	for _, t := range a.session.Cache.Tasks() {
		if t.ID == id {
			view.Status = string(t.Status)
			break
		}
	}

	ok, err := writeStructured(a.out, a.format, view)
	if ok {
		return err
	}
	switch {
	case moved:
		fmt.Fprintf(a.out, "Moved task #%d to %s\n", id, view.Status)
	case view.Status == "":
		fmt.Fprintf(a.out, "Task #%d not found\n", id)
	default:
		fmt.Fprintf(a.out, "Task #%d stays in %s\n", id, view.Status)
	}
	return nil
}

package cli

import (
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/spf13/cobra"
)

func (a *app) boardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Show tasks grouped by column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.load(cmd.Context())

			cache := a.session.Cache
			columns := map[domain.Status][]domain.Task{
				domain.StatusTodo:       cache.Todo(),
				domain.StatusInProgress: cache.InProgress(),
				domain.StatusDone:       cache.Done(),
			}
			pending := len(cache.Pending())

			ok, err := writeStructured(a.out, a.format, boardView{
				Todo:       toTaskViews(columns[domain.StatusTodo]),
				InProgress: toTaskViews(columns[domain.StatusInProgress]),
				Done:       toTaskViews(columns[domain.StatusDone]),
				Pending:    pending,
			})
			if ok {
				return err
			}
			writeBoardText(a.out, columns, pending)
			return nil
		},
	}
}

func (a *app) listCommand() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter domain.Status
			if status != "" {
				parsed, err := domain.ParseStatus(status)
				if err != nil {
					return err
				}
				filter = parsed
			}

			a.load(cmd.Context())

			tasks := a.session.Cache.Tasks()
			if filter != "" {
				tasks = a.session.Cache.ByStatus(filter)
			}

			ok, err := writeStructured(a.out, a.format, toTaskViews(tasks))
			if ok {
				return err
			}
			writeTaskTable(a.out, tasks)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only show tasks in this column (todo, in-progress, done)")
	return cmd
}

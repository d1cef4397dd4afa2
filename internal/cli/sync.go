package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) syncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Send queued changes to the server and refresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, syncErr := a.session.Cache.Sync(cmd.Context())

			view := syncView{
				Applied:  result.Applied,
				Rejected: make([]string, 0, len(result.Rejected)),
				Pending:  result.Remaining,
			}
			for _, r := range result.Rejected {
				view.Rejected = append(view.Rejected,
					fmt.Sprintf("%s of task #%d: %v", r.Mutation.Kind, r.Mutation.TaskID, r.Err))
			}

			ok, err := writeStructured(a.out, a.format, view)
			if !ok {
				fmt.Fprintf(a.out, "Synced: %d applied, %d rejected, %d pending\n",
					view.Applied, len(view.Rejected), view.Pending)
				for _, line := range view.Rejected {
					fmt.Fprintf(a.out, "  rejected %s\n", line)
				}
			}
			if syncErr != nil {
				return syncErr
			}
			return err
		},
	}
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) usersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.session.Users == nil {
				return errors.New("user listing is not available")
			}

			users, err := a.session.Users(cmd.Context())
			if err != nil {
				return fmt.Errorf("list users: %w", err)
			}

			views := make([]userView, len(users))
			for i, u := range users {
				views[i] = userView{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: formatTime(u.CreatedAt)}
			}

			ok, err := writeStructured(a.out, a.format, views)
			if ok {
				return err
			}
			fmt.Fprintf(a.out, "%-5s %-24s %s\n", "ID", "NAME", "EMAIL")
			for _, u := range views {
				fmt.Fprintf(a.out, "%-5d %-24s %s\n", u.ID, u.Name, u.Email)
			}
			return nil
		},
	}
}

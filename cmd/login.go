package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/bluesky-mcp/internal/domain"
)

func newLoginCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Create a Bluesky session to check the configured credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := app.sessions.EnsureValid(cmd.Context())
			if err != nil {
				failure := domain.AsFailure(err)
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), app.renderer.Text(domain.Fail(failure)))
				return fmt.Errorf("login: %w", failure)
			}

			handle := session.Handle
			if handle == "" {
				handle = "<unknown handle>"
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", handle, session.AccountID)
			return err
		},
	}
}

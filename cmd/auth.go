package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	credentialsadapter "github.com/bnema/bluesky-mcp/internal/adapters/credentials"
	"github.com/bnema/bluesky-mcp/internal/domain"
)

var (
	errIdentifierRequired = errors.New("identifier is required (--identifier or " + domain.IdentifierEnv + ")")
	errPasswordSource     = errors.New("exactly one of --password or --password-stdin is required")
	errEmptyPassword      = errors.New("app password is empty")
)

func newAuthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored Bluesky app password",
	}

	cmd.AddCommand(newAuthSetCmd(app), newAuthRemoveCmd(app))

	return cmd
}

func newAuthSetCmd(app *app) *cobra.Command {
	var identifier string
	var password string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the app password used when " + domain.AppPasswordEnv + " is unset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := resolveIdentifier(identifier)
			if err != nil {
				return err
			}

			if (password == "") == !passwordStdin {
				return errPasswordSource
			}
			if passwordStdin {
				password, err = readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}
			password = strings.TrimSpace(password)
			if password == "" {
				return errEmptyPassword
			}

			if err := app.secretStore.Put(cmd.Context(), credentialsadapter.SecretKey(id), password); err != nil {
				return fmt.Errorf("store app password: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Stored app password for %s\n", id)
			return err
		},
	}

	cmd.Flags().StringVar(&identifier, "identifier", "", "Handle or email (default $"+domain.IdentifierEnv+")")
	cmd.Flags().StringVar(&password, "password", "", "App password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the app password from stdin")

	return cmd
}

func newAuthRemoveCmd(app *app) *cobra.Command {
	var identifier string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove the stored app password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := resolveIdentifier(identifier)
			if err != nil {
				return err
			}

			if err := app.secretStore.Delete(cmd.Context(), credentialsadapter.SecretKey(id)); err != nil {
				return fmt.Errorf("remove app password: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed app password for %s\n", id)
			return err
		},
	}

	cmd.Flags().StringVar(&identifier, "identifier", "", "Handle or email (default $"+domain.IdentifierEnv+")")

	return cmd
}

func resolveIdentifier(flagValue string) (string, error) {
	id := strings.TrimSpace(flagValue)
	if id == "" {
		id = strings.TrimSpace(os.Getenv(domain.IdentifierEnv))
	}
	if id == "" {
		return "", errIdentifierRequired
	}
	return id, nil
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read app password from stdin: %w", err)
	}
	return strings.TrimSpace(line), nil
}

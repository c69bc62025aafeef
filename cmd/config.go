package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	configtoml "github.com/bnema/bluesky-mcp/internal/adapters/config/toml"
	"github.com/bnema/bluesky-mcp/internal/application"
)

func newConfigCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}

	cmd.AddCommand(newConfigInitCmd(app), newConfigShowCmd(app))

	return cmd
}

func newConfigInitCmd(app *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a config file with default settings",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipWireAnnotation: ""},
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := app.configPath
			if path == "" {
				defaultPath, err := configtoml.DefaultPath()
				if err != nil {
					return err
				}
				path = defaultPath
			}

			if err := configtoml.WriteFile(path, application.DefaultSettings(), force); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

func newConfigShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := configtoml.Encode(app.settings)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

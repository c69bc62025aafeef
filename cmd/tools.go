package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type toolJSON struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func newToolsCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the available tools and their arguments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			specs := app.dispatcher.Catalog()

			if asJSON {
				tools := make([]toolJSON, 0, len(specs))
				for _, spec := range specs {
					tools = append(tools, toolJSON{Name: spec.Name, Description: spec.Description, InputSchema: spec.InputSchema})
				}
				data, err := json.MarshalIndent(tools, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal tool catalog: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}

			rendered, err := app.catalogRenderer(specs)
			if err != nil {
				return fmt.Errorf("render tool catalog: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

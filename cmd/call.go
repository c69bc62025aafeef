package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/bluesky-mcp/internal/domain"
)

var errToolCallFailed = errors.New("tool call failed")

func newCallCmd(app *app) *cobra.Command {
	var pairs []string
	var argsJSON string
	var plain bool

	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Invoke one tool and print its result",
		Example: "  bsky-mcp call bluesky_get_profile --arg actor=bsky.app\n" +
			"  bsky-mcp call bluesky_search_posts --args-json '{\"query\":\"golang\",\"limit\":5}'",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arguments, err := parseToolArguments(argsJSON, pairs)
			if err != nil {
				return err
			}

			req := domain.ToolRequest{Name: args[0], Arguments: arguments}
			var outcome domain.Outcome
			dispatch := func(ctx context.Context) error {
				outcome = app.dispatcher.Dispatch(ctx, req)
				return nil
			}

			if plain {
				_ = dispatch(cmd.Context())
			} else if err := runCallSpinner(cmd.Context(), cmd.ErrOrStderr(), "Calling "+req.Name+"...", dispatch); err != nil {
				return err
			}

			if _, err := fmt.Fprintln(cmd.OutOrStdout(), app.renderer.Text(outcome)); err != nil {
				return err
			}
			if !outcome.OK() {
				return fmt.Errorf("%w: %s", errToolCallFailed, outcome.Kind())
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&pairs, "arg", nil, "Tool argument as key=value (repeatable)")
	cmd.Flags().StringVar(&argsJSON, "args-json", "", "Tool arguments as a JSON object")
	cmd.Flags().BoolVar(&plain, "plain", false, "Disable the progress spinner")

	return cmd
}

// parseToolArguments merges a JSON object with key=value pairs; pairs win.
func parseToolArguments(argsJSON string, pairs []string) (map[string]any, error) {
	arguments := map[string]any{}

	if strings.TrimSpace(argsJSON) != "" {
		if err := json.Unmarshal([]byte(argsJSON), &arguments); err != nil {
			return nil, fmt.Errorf("parse --args-json: %w", err)
		}
		if arguments == nil {
			arguments = map[string]any{}
		}
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --arg %q: expected key=value", pair)
		}
		arguments[key] = value
	}

	return arguments, nil
}

package cmd

import "github.com/spf13/cobra"

// skipWireAnnotation marks commands that run without loading config.
const skipWireAnnotation = "bsky-mcp/skip-wire"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	app := &app{}

	rootCmd := &cobra.Command{
		Use:   "bsky-mcp",
		Short: "Bluesky tools for MCP hosts",
		Long: "bsky-mcp exposes read-only Bluesky tools (profiles, posts, follows, likes, feeds and search) " +
			"to MCP hosts over stdio, and lets you call the same tools from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if _, skip := cmd.Annotations[skipWireAnnotation]; skip {
				return nil
			}
			return app.wire(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", envOrDefault("BSKY_MCP_CONFIG", ""), "Config file (default ~/.config/bsky-mcp/config.toml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(app),
		newToolsCmd(app),
		newCallCmd(app),
		newLoginCmd(app),
		newAuthCmd(app),
		newConfigCmd(app),
	)

	return rootCmd
}

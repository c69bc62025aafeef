package main

import (
	"os"

	"github.com/bnema/bluesky-mcp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

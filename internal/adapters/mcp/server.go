package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/bnema/bluesky-mcp/internal/domain"
)

const (
	ServerName   = "bluesky-mcp"
	instructions = "Read-only access to Bluesky profiles, posts, follows and feeds for the configured account."
)

type Dispatcher interface {
	Catalog() []domain.ToolSpec
	Dispatch(ctx context.Context, req domain.ToolRequest) domain.Outcome
}

type Renderer interface {
	Text(o domain.Outcome) string
}

// NewServer registers every catalog tool on a new MCP server. Each call result
// carries exactly one text block; failures set IsError instead of returning a
// protocol error.
func NewServer(dispatcher Dispatcher, renderer Renderer, version string, log logrus.FieldLogger) *mcpsdk.Server {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	server := mcpsdk.NewServer(
		&mcpsdk.Implementation{Name: ServerName, Version: version},
		&mcpsdk.ServerOptions{Instructions: instructions},
	)

	for _, spec := range dispatcher.Catalog() {
		server.AddTool(&mcpsdk.Tool{
			Name:        spec.Name,
			Description: spec.Description,
			InputSchema: spec.InputSchema,
		}, toolHandler(dispatcher, renderer, log))
	}

	return server
}

// Serve runs the server over stdio until the client disconnects or ctx ends.
func Serve(ctx context.Context, server *mcpsdk.Server) error {
	err := server.Run(ctx, &mcpsdk.StdioTransport{})
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return fmt.Errorf("serve mcp over stdio: %w", err)
}

func toolHandler(dispatcher Dispatcher, renderer Renderer, log logrus.FieldLogger) mcpsdk.ToolHandler {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		name := req.Params.Name

		args, err := decodeArguments(req.Params.Arguments)
		if err != nil {
			log.WithField("tool", name).WithError(err).Warn("rejecting undecodable tool arguments")
			return result(renderer, domain.Fail(&domain.Failure{
				Kind:   domain.KindInternal,
				Detail: "invalid tool arguments: " + err.Error(),
				Err:    err,
			})), nil
		}

		outcome := dispatcher.Dispatch(ctx, domain.ToolRequest{Name: name, Arguments: args})
		return result(renderer, outcome), nil
	}
}

func result(renderer Renderer, outcome domain.Outcome) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: renderer.Text(outcome)}},
		IsError: !outcome.OK(),
	}
}

// decodeArguments accepts an absent or null payload as no arguments.
func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal(trimmed, &args); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

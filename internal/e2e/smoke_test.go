package e2e

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeServeOverStdio(t *testing.T) {
	binaryPath := buildBinary(t)
	bsky := newFakeBluesky(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	serve := exec.Command(binaryPath, "serve")
	serve.Env = testEnv(t.TempDir(), bsky.URL, "app-pass")
	serve.Stderr = &bytes.Buffer{}

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "smoke", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, &mcpsdk.CommandTransport{Command: serve}, nil)
	require.NoError(t, err)
	defer func() { _ = session.Close() }()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, tools.Tools, 8)

	res, err := session.CallTool(ctx, &mcpsdk.CallToolParams{Name: "bluesky_get_profile"})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, textContent(t, res), "\"handle\": \"alice.bsky.social\"")

	res, err = session.CallTool(ctx, &mcpsdk.CallToolParams{Name: "bluesky_search_posts", Arguments: map[string]any{}})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "Missing required argument: query", textContent(t, res))
}

func TestSmokeServeWithoutCredentialsExitsNonZero(t *testing.T) {
	binaryPath := buildBinary(t)
	bsky := newFakeBluesky(t)

	_, stderr, err := runBinary(t, binaryPath, testEnv(t.TempDir(), bsky.URL, ""), "serve")
	require.Error(t, err)
	assert.Contains(t, stderr, "BLUESKY_APP_PASSWORD")
}

func newFakeBluesky(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/xrpc/com.atproto.server.createSession":
			_, _ = w.Write([]byte(`{"accessJwt":"jwt-1","refreshJwt":"refresh-1","handle":"alice.bsky.social","did":"did:plc:alice"}`))
		case "/xrpc/app.bsky.actor.getProfile":
			_, _ = w.Write([]byte(`{"did":"did:plc:alice","handle":"alice.bsky.social"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func testEnv(home, serviceURL, password string) []string {
	return append(os.Environ(),
		"HOME="+home,
		"PATH=",
		"BLUESKY_IDENTIFIER=alice.bsky.social",
		"BLUESKY_APP_PASSWORD="+password,
		"BSKY_MCP_XRPC_SERVICE_URL="+serviceURL+"/xrpc/",
	)
}

func textContent(t *testing.T, res *mcpsdk.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)
	return text.Text
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "bsky-mcp-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/bsky-mcp")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build bsky-mcp binary: %s", string(output))
	return binaryPath
}

func runBinary(t *testing.T, binaryPath string, env []string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = env

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}

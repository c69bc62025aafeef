package domain

type ToolRequest struct {
	Name      string
	Arguments map[string]any
}

type ToolSpec struct {
	Name        string
	Description string
	// InputSchema is a JSON schema object describing Arguments.
	InputSchema map[string]any
}

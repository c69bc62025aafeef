package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cast"

	"github.com/bnema/bluesky-mcp/internal/domain"
)

func renderView(specs []domain.ToolSpec, s styles) string {
	lines := []string{
		s.title.Render("Bluesky MCP Tools"),
		s.header.Render(fmt.Sprintf("tools: %d", len(specs))),
	}

	if len(specs) == 0 {
		lines = append(lines, s.empty.Render("No tools registered."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, spec := range specs {
		lines = append(lines, s.section.Render(renderTool(spec, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderTool(spec domain.ToolSpec, s styles) string {
	parts := []string{
		s.tool.Render(spec.Name),
		s.detail.Render(spec.Description),
	}

	args := argumentLines(spec.InputSchema, s)
	if len(args) == 0 {
		parts = append(parts, s.empty.Render("  no arguments"))
	}
	parts = append(parts, args...)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func argumentLines(schema map[string]any, s styles) []string {
	properties, _ := schema["properties"].(map[string]any)
	if len(properties) == 0 {
		return nil
	}

	required := map[string]bool{}
	for _, name := range cast.ToStringSlice(schema["required"]) {
		required[name] = true
	}

	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if required[names[i]] != required[names[j]] {
			return required[names[i]]
		}
		return names[i] < names[j]
	})

	lines := make([]string, 0, len(names))
	for _, name := range names {
		property, _ := properties[name].(map[string]any)
		line := "  " + s.argument.Render(name) + " " + s.meta.Render(propertyMeta(property))
		if required[name] {
			line += " " + s.required.Render("required")
		}
		if description := cast.ToString(property["description"]); description != "" {
			line += " " + s.detail.Render(description)
		}
		lines = append(lines, line)
	}
	return lines
}

func propertyMeta(property map[string]any) string {
	meta := []string{cast.ToString(property["type"])}
	if value, ok := property["default"]; ok {
		meta = append(meta, "default "+cast.ToString(value))
	}
	if minimum, ok := property["minimum"]; ok {
		meta = append(meta, fmt.Sprintf("%s..%s", cast.ToString(minimum), cast.ToString(property["maximum"])))
	}
	return "(" + strings.Join(meta, ", ") + ")"
}

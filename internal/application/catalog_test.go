package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

func TestCatalogListsEveryToolOnce(t *testing.T) {
	dispatcher := NewDispatcher(nil, nil, nil, nil)

	var names []string
	for _, spec := range dispatcher.Catalog() {
		names = append(names, spec.Name)
		assert.NotEmpty(t, spec.Description, spec.Name)
	}

	assert.Equal(t, []string{
		ToolGetProfile,
		ToolGetPosts,
		ToolSearchPosts,
		ToolGetFollows,
		ToolGetFollowers,
		ToolGetLikedPosts,
		ToolGetPersonalFeed,
		ToolSearchProfiles,
	}, names)
}

func TestCatalogRoutesAreQueryMethods(t *testing.T) {
	want := map[string]string{
		ToolGetProfile:      "app.bsky.actor.getProfile",
		ToolGetPosts:        "app.bsky.feed.getAuthorFeed",
		ToolSearchPosts:     "app.bsky.feed.searchPosts",
		ToolGetFollows:      "app.bsky.graph.getFollows",
		ToolGetFollowers:    "app.bsky.graph.getFollowers",
		ToolGetLikedPosts:   "app.bsky.feed.getActorLikes",
		ToolGetPersonalFeed: "app.bsky.feed.getTimeline",
		ToolSearchProfiles:  "app.bsky.actor.searchActors",
	}

	for _, r := range routes() {
		assert.Equal(t, want[r.spec.Name], r.nsid, r.spec.Name)
	}
}

func TestCatalogSchemasAcceptAndRejectArguments(t *testing.T) {
	specs := map[string]map[string]any{}
	for _, spec := range NewDispatcher(nil, nil, nil, nil).Catalog() {
		specs[spec.Name] = spec.InputSchema
	}

	tests := []struct {
		name  string
		tool  string
		args  string
		valid bool
	}{
		{name: "search requires query", tool: ToolSearchPosts, args: `{}`, valid: false},
		{name: "search with query", tool: ToolSearchPosts, args: `{"query":"go","limit":10}`, valid: true},
		{name: "profiles with query", tool: ToolSearchProfiles, args: `{"query":"alice"}`, valid: true},
		{name: "limit above maximum", tool: ToolGetFollows, args: `{"limit":101}`, valid: false},
		{name: "limit below minimum", tool: ToolGetPosts, args: `{"limit":0}`, valid: false},
		{name: "profile without arguments", tool: ToolGetProfile, args: `{}`, valid: true},
		{name: "timeline with cursor", tool: ToolGetPersonalFeed, args: `{"cursor":"abc"}`, valid: true},
		{name: "actor must be a string", tool: ToolGetLikedPosts, args: `{"actor":7}`, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema, ok := specs[tt.tool]
			require.True(t, ok)

			result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewStringLoader(tt.args))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid(), "%v", result.Errors())
		})
	}
}

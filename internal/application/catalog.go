package application

import (
	"net/url"
	"strconv"

	"github.com/bnema/bluesky-mcp/internal/domain"
)

const (
	ToolGetProfile      = "bluesky_get_profile"
	ToolGetPosts        = "bluesky_get_posts"
	ToolSearchPosts     = "bluesky_search_posts"
	ToolGetFollows      = "bluesky_get_follows"
	ToolGetFollowers    = "bluesky_get_followers"
	ToolGetLikedPosts   = "bluesky_get_liked_posts"
	ToolGetPersonalFeed = "bluesky_get_personal_feed"
	ToolSearchProfiles  = "bluesky_search_profiles"
)

const (
	listDefaultLimit   = 50
	searchDefaultLimit = 25
)

// route binds one tool name to one XRPC query method.
type route struct {
	spec domain.ToolSpec
	nsid string
	// query names the required search argument; it is sent as "q".
	query string
	// actor routes accept an optional actor and default to the session DID.
	actor        bool
	paged        bool
	defaultLimit int
}

func (r route) params(args map[string]any, session domain.Session) (url.Values, *domain.Failure) {
	values := url.Values{}

	if r.query != "" {
		q, failure := requiredString(args, r.query)
		if failure != nil {
			return nil, failure
		}
		values.Set("q", q)
	}

	if r.actor {
		actor := optionalString(args, "actor")
		if actor == "" {
			actor = session.AccountID
		}
		values.Set("actor", actor)
	}

	if r.paged {
		values.Set("limit", strconv.Itoa(normalizeLimit(args["limit"], r.defaultLimit)))
		if cursor := optionalString(args, "cursor"); cursor != "" {
			values.Set("cursor", cursor)
		}
	}

	return values, nil
}

// validate checks arguments that can be rejected without a session.
func (r route) validate(args map[string]any) *domain.Failure {
	if r.query == "" {
		return nil
	}
	_, failure := requiredString(args, r.query)
	return failure
}

func routes() []route {
	return []route{
		{
			spec: toolSpec(ToolGetProfile,
				"Get a Bluesky profile. Defaults to the authenticated account.",
				actorProperty(), nil),
			nsid:  "app.bsky.actor.getProfile",
			actor: true,
		},
		{
			spec: toolSpec(ToolGetPosts,
				"Get recent posts authored by an account. Defaults to the authenticated account.",
				merge(actorProperty(), pageProperties(listDefaultLimit)), nil),
			nsid:         "app.bsky.feed.getAuthorFeed",
			actor:        true,
			paged:        true,
			defaultLimit: listDefaultLimit,
		},
		{
			spec: toolSpec(ToolSearchPosts,
				"Search Bluesky posts.",
				merge(queryProperty("Search query"), pageProperties(searchDefaultLimit)), []string{"query"}),
			nsid:         "app.bsky.feed.searchPosts",
			query:        "query",
			paged:        true,
			defaultLimit: searchDefaultLimit,
		},
		{
			spec: toolSpec(ToolGetFollows,
				"Get the accounts an account follows. Defaults to the authenticated account.",
				merge(actorProperty(), pageProperties(listDefaultLimit)), nil),
			nsid:         "app.bsky.graph.getFollows",
			actor:        true,
			paged:        true,
			defaultLimit: listDefaultLimit,
		},
		{
			spec: toolSpec(ToolGetFollowers,
				"Get the accounts following an account. Defaults to the authenticated account.",
				merge(actorProperty(), pageProperties(listDefaultLimit)), nil),
			nsid:         "app.bsky.graph.getFollowers",
			actor:        true,
			paged:        true,
			defaultLimit: listDefaultLimit,
		},
		{
			spec: toolSpec(ToolGetLikedPosts,
				"Get posts liked by an account. Defaults to the authenticated account.",
				merge(actorProperty(), pageProperties(listDefaultLimit)), nil),
			nsid:         "app.bsky.feed.getActorLikes",
			actor:        true,
			paged:        true,
			defaultLimit: listDefaultLimit,
		},
		{
			spec: toolSpec(ToolGetPersonalFeed,
				"Get the home timeline of the authenticated account.",
				pageProperties(listDefaultLimit), nil),
			nsid:         "app.bsky.feed.getTimeline",
			paged:        true,
			defaultLimit: listDefaultLimit,
		},
		{
			spec: toolSpec(ToolSearchProfiles,
				"Search Bluesky profiles.",
				merge(queryProperty("Search query for handles, display names and descriptions"), pageProperties(searchDefaultLimit)), []string{"query"}),
			nsid:         "app.bsky.actor.searchActors",
			query:        "query",
			paged:        true,
			defaultLimit: searchDefaultLimit,
		},
	}
}

func toolSpec(name, description string, properties map[string]any, required []string) domain.ToolSpec {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return domain.ToolSpec{Name: name, Description: description, InputSchema: schema}
}

func actorProperty() map[string]any {
	return map[string]any{
		"actor": map[string]any{
			"type":        "string",
			"description": "Handle or DID of the account",
		},
	}
}

func queryProperty(description string) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"type":        "string",
			"description": description,
		},
	}
}

func pageProperties(defaultLimit int) map[string]any {
	return map[string]any{
		"limit": map[string]any{
			"type":        "integer",
			"description": "Maximum number of results to return",
			"default":     defaultLimit,
			"minimum":     1,
			"maximum":     MaxLimit,
		},
		"cursor": map[string]any{
			"type":        "string",
			"description": "Pagination cursor from a previous response",
		},
	}
}

func merge(maps ...map[string]any) map[string]any {
	merged := map[string]any{}
	for _, m := range maps {
		for k, v := range m {
			merged[k] = v
		}
	}
	return merged
}

package jobserver

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/openchance/jobmatch/internal/engine/auth"
	"github.com/openchance/jobmatch/internal/engine/search"
)

// SearchJobsInput is the search_jobs tool input.
type SearchJobsInput struct {
	Query            string   `json:"query" jsonschema:"Free-text search query (e.g. warehouse, forklift operator)"`
	Limit            int      `json:"limit,omitempty" jsonschema:"Max results to return, 1-8 (default 8)"`
	SecondChanceOnly bool     `json:"second_chance_only,omitempty" jsonschema:"Only fair-chance employers"`
	City             string   `json:"city,omitempty" jsonschema:"City filter"`
	State            string   `json:"state,omitempty" jsonschema:"Two-letter state filter"`
	BusRequired      bool     `json:"bus_required,omitempty" jsonschema:"Only bus-accessible jobs"`
	RailRequired     bool     `json:"rail_required,omitempty" jsonschema:"Only rail-accessible jobs"`
	UrgentOnly       bool     `json:"urgent_only,omitempty" jsonschema:"Only urgently-hiring jobs"`
	EasyApplyOnly    bool     `json:"easy_apply_only,omitempty" jsonschema:"Only easy-apply jobs"`
	Shifts           []string `json:"shifts,omitempty" jsonschema:"Shifts to match (OR): morning, afternoon, evening, overnight, flexible"`
}

// SearchJobsOutput is the search_jobs tool output.
type SearchJobsOutput struct {
	Jobs          []search.Job   `json:"jobs"`
	SearchContext search.Context `json:"searchContext"`
}

func (in SearchJobsInput) filters() search.ExplicitFilters {
	return search.ExplicitFilters{
		SecondChanceOnly: in.SecondChanceOnly,
		City:             in.City,
		State:            in.State,
		BusRequired:      in.BusRequired,
		RailRequired:     in.RailRequired,
		UrgentOnly:       in.UrgentOnly,
		EasyApplyOnly:    in.EasyApplyOnly,
		Shifts:           in.Shifts,
	}
}

func registerSearchJobs(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_jobs",
		Description: "Search the job index with the user's stored preferences applied: hard requirements (fair-chance, transit) always apply, shift preferences widen the match, and commute-zone eligibility filters by public-transit reach when configured. Returns sanitized job listings plus the search context actually used.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input SearchJobsInput) (*mcp.CallToolResult, SearchJobsOutput, error) {
		out, err := searchJobs(ctx, d, input)
		if err != nil {
			return nil, SearchJobsOutput{}, err
		}
		return nil, *out, nil
	})
}

// searchJobs is the shared implementation behind the MCP tool and the
// conversational executor.
func searchJobs(ctx context.Context, d Deps, input SearchJobsInput) (*SearchJobsOutput, error) {
	userID, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Query) == "" {
		return nil, errors.New("query is required")
	}

	res, err := d.Search.Search(ctx, userID, search.Request{
		Query:   input.Query,
		Limit:   input.Limit,
		Filters: input.filters(),
	})
	if err != nil {
		return nil, err
	}

	// Returned jobs count as reviewed so later searches surface new ones.
	if len(res.Jobs) > 0 {
		ids := make([]string, 0, len(res.Jobs))
		for _, j := range res.Jobs {
			ids = append(ids, j.ID)
		}
		if err := d.Store.MarkReviewed(ctx, userID, ids); err != nil {
			slog.Warn("mark reviewed failed", "user", userID, "error", err)
		}
	}

	return &SearchJobsOutput{Jobs: res.Jobs, SearchContext: res.Context}, nil
}

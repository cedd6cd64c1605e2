package jobserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/openchance/jobmatch/internal/engine/auth"
	"github.com/openchance/jobmatch/internal/engine/store"
)

// GetResumeOutput is the get_my_resume tool output.
type GetResumeOutput struct {
	Present bool          `json:"present"`
	Resume  *store.Resume `json:"resume,omitempty"`
}

// GetPreferencesOutput is the get_my_job_preferences tool output.
type GetPreferencesOutput struct {
	Present     bool                  `json:"present"`
	Preferences *store.JobPreferences `json:"preferences,omitempty"`
}

type emptyInput struct{}

func registerProfileTools(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_my_resume",
		Description: "Fetch the user's stored resume: summary, skills, and work history. Returns present=false when no resume exists yet.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, GetResumeOutput, error) {
		out, err := getResume(ctx, d)
		if err != nil {
			return nil, GetResumeOutput{}, err
		}
		return nil, *out, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_my_job_preferences",
		Description: "Fetch the user's stored job preferences: shifts, commute, transit requirements, fair-chance stance. Returns present=false when nothing is stored yet.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, GetPreferencesOutput, error) {
		out, err := getPreferences(ctx, d)
		if err != nil {
			return nil, GetPreferencesOutput{}, err
		}
		return nil, *out, nil
	})
}

func getResume(ctx context.Context, d Deps) (*GetResumeOutput, error) {
	userID, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	resume, err := d.Store.Resume(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &GetResumeOutput{Present: resume != nil, Resume: resume}, nil
}

func getPreferences(ctx context.Context, d Deps) (*GetPreferencesOutput, error) {
	userID, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	prefs, err := d.Store.Preferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &GetPreferencesOutput{Present: prefs != nil, Preferences: prefs}, nil
}

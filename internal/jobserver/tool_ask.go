package jobserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Interactive tools do not execute anything server-side: each one validates
// its payload and echoes it back as the pending prompt the conversational
// layer shows the user. The turn ends after any of these fires; that
// sequencing rule is enforced by the turn protocol, not here.

// Option-count bounds for ask_question choices.
const (
	minOptions = 2
	maxOptions = 8
)

// AskQuestionInput is the ask_question tool input.
type AskQuestionInput struct {
	Question      string   `json:"question" jsonschema:"The question to show the user"`
	Options       []string `json:"options,omitempty" jsonschema:"Tap-to-answer choices, 2-8 when present"`
	Preamble      string   `json:"preamble,omitempty" jsonschema:"Short lead-in shown above the question"`
	AllowFreeText bool     `json:"allow_free_text,omitempty" jsonschema:"Let the user type an answer instead of picking an option"`
	Purpose       string   `json:"purpose" jsonschema:"What the answer will be used for (e.g. pick_direction, confirm_filters)"`
}

// CollectInput carries the reason for a location or resume request.
type CollectInput struct {
	Reason string `json:"reason,omitempty" jsonschema:"Why this is needed right now, shown to the user"`
}

// AskPreferenceInput is the ask_preference tool input. The client renders
// the preference question itself; the model only names the preference.
type AskPreferenceInput struct {
	Preference string `json:"preference" jsonschema:"Which preference to ask about: shifts, commute, transit, fair_chance"`
	Context    string `json:"context,omitempty" jsonschema:"Optional context shown with the question"`
}

// PromptOutput is the pending prompt relayed to the user.
type PromptOutput struct {
	Kind          string   `json:"kind"`
	Question      string   `json:"question,omitempty"`
	Options       []string `json:"options,omitempty"`
	Preamble      string   `json:"preamble,omitempty"`
	AllowFreeText bool     `json:"allowFreeText,omitempty"`
	Purpose       string   `json:"purpose,omitempty"`
	Reason        string   `json:"reason,omitempty"`
}

// knownPreferences is the ask_preference vocabulary.
var knownPreferences = map[string]bool{
	"shifts": true, "commute": true, "transit": true, "fair_chance": true,
}

func registerAskTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_question",
		Description: "Ask the user a question with 2-8 answer options, optionally allowing free text. Interactive: the turn ends here and waits for the user's reply.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, input AskQuestionInput) (*mcp.CallToolResult, PromptOutput, error) {
		out, err := askQuestion(input)
		if err != nil {
			return nil, PromptOutput{}, err
		}
		return nil, *out, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "collect_location",
		Description: "Ask the user to set their home location, enabling commute-based filtering. Interactive: the turn ends here and waits for the user.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, input CollectInput) (*mcp.CallToolResult, PromptOutput, error) {
		return nil, PromptOutput{Kind: "collect_location", Reason: input.Reason}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "collect_resume",
		Description: "Ask the user to upload or build their resume, enabling direction hints and resume-based matching. Interactive: the turn ends here and waits for the user.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, input CollectInput) (*mcp.CallToolResult, PromptOutput, error) {
		return nil, PromptOutput{Kind: "collect_resume", Reason: input.Reason}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_preference",
		Description: "Ask the user about one preference: shifts, commute, transit, or fair_chance stance. Interactive: the turn ends here and waits for the user's reply.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, input AskPreferenceInput) (*mcp.CallToolResult, PromptOutput, error) {
		out, err := askPreference(input)
		if err != nil {
			return nil, PromptOutput{}, err
		}
		return nil, *out, nil
	})
}

func askQuestion(input AskQuestionInput) (*PromptOutput, error) {
	if input.Question == "" {
		return nil, errors.New("question is required")
	}
	if input.Purpose == "" {
		return nil, errors.New("purpose is required")
	}
	if n := len(input.Options); n > 0 && (n < minOptions || n > maxOptions) {
		return nil, fmt.Errorf("options must have %d-%d entries, got %d", minOptions, maxOptions, n)
	}
	return &PromptOutput{
		Kind:          "question",
		Question:      input.Question,
		Options:       input.Options,
		Preamble:      input.Preamble,
		AllowFreeText: input.AllowFreeText,
		Purpose:       input.Purpose,
	}, nil
}

func askPreference(input AskPreferenceInput) (*PromptOutput, error) {
	if !knownPreferences[input.Preference] {
		return nil, fmt.Errorf("unknown preference %q", input.Preference)
	}
	return &PromptOutput{
		Kind:   "preference:" + input.Preference,
		Reason: input.Context,
	}, nil
}

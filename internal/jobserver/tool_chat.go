package jobserver

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/openchance/jobmatch/internal/agent"
	"github.com/openchance/jobmatch/internal/engine/auth"
	"github.com/openchance/jobmatch/internal/engine/store"
	"github.com/openchance/jobmatch/internal/engine/synth"
)

// ChatTurnInput is one conversational turn. The caller carries session
// state (search count, start time) between turns; the server keeps none.
type ChatTurnInput struct {
	Message     string `json:"message" jsonschema:"The user's message for this turn"`
	ThreadID    string `json:"thread_id,omitempty" jsonschema:"Conversation thread id; omit for the user's default thread"`
	SearchCount int    `json:"search_count,omitempty" jsonschema:"Searches already run this session"`
	SessionedAt string `json:"session_started_at,omitempty" jsonschema:"Session start time, RFC3339"`
}

// ChatTurnOutput is the completed turn.
type ChatTurnOutput struct {
	State    string         `json:"state"` // open or awaiting_user
	Text     string         `json:"text,omitempty"`
	Prompt   map[string]any `json:"prompt,omitempty"`
	PromptBy string         `json:"promptTool,omitempty"`
	Executed []string       `json:"executed,omitempty"`
}

// RegisterChat registers the chat_turn tool. Separate from RegisterTools
// because it needs a configured model client.
func RegisterChat(server *mcp.Server, d Deps, llm agent.Generator) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "chat_turn",
		Description: "Run one conversational job-search turn: the user's stored context is synthesized, the assistant reasons over it, and any tool calls it makes are validated and executed. Returns assistant text or a pending interactive prompt.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ChatTurnInput) (*mcp.CallToolResult, ChatTurnOutput, error) {
		out, err := chatTurn(ctx, d, llm, input)
		if err != nil {
			return nil, ChatTurnOutput{}, err
		}
		return nil, *out, nil
	})
}

func chatTurn(ctx context.Context, d Deps, llm agent.Generator, input ChatTurnInput) (*ChatTurnOutput, error) {
	userID, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}

	state, err := fetchContextState(ctx, d.Store, userID)
	if err != nil {
		return nil, err
	}
	state.SearchCount = input.SearchCount
	if input.SessionedAt != "" {
		if ts, err := time.Parse(time.RFC3339, input.SessionedAt); err == nil {
			state.SessionStart = ts
		}
	}

	runner := agent.NewRunner(llm, NewExecutor(d, input.ThreadID))
	res, err := runner.Run(ctx, agent.Input{
		UserMessage:  input.Message,
		ContextBlock: synth.BuildContext(*state, time.Now().UTC()),
	})
	if err != nil {
		return nil, err
	}

	return &ChatTurnOutput{
		State:    string(res.State),
		Text:     res.Text,
		Prompt:   res.Prompt,
		PromptBy: res.PromptTool,
		Executed: res.Executed,
	}, nil
}

// fetchContextState issues the independent per-user reads feeding context
// synthesis concurrently.
func fetchContextState(ctx context.Context, st store.Store, userID string) (*synth.Input, error) {
	type res struct {
		name string
		set  func(*synth.Input)
		err  error
	}
	ch := make(chan res, 3)

	go func() {
		resume, err := st.Resume(ctx, userID)
		ch <- res{"resume", func(in *synth.Input) { in.Resume = resume }, err}
	}()
	go func() {
		prefs, err := st.Preferences(ctx, userID)
		ch <- res{"preferences", func(in *synth.Input) { in.Preferences = prefs }, err}
	}()
	go func() {
		profile, err := st.Profile(ctx, userID)
		ch <- res{"profile", func(in *synth.Input) { in.Profile = profile }, err}
	}()

	var in synth.Input
	for i := 0; i < 3; i++ {
		r := <-ch
		if r.err != nil {
			return nil, fmt.Errorf("load %s: %w", r.name, r.err)
		}
		r.set(&in)
	}
	return &in, nil
}

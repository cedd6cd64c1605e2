package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/openchance/jobmatch/internal/engine"
)

// maxToolIterations bounds the generate/execute loop of one turn.
const maxToolIterations = 8

// Generator produces one model response for the accumulated conversation.
// *engine.LLM satisfies this; tests substitute a fake.
type Generator interface {
	Generate(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ToolExecutor runs one admitted tool call. The returned map is handed back
// to the model as the function response (or, for interactive tools, to the
// user as the pending prompt).
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args map[string]any) (map[string]any, error)
}

// Runner executes conversational turns.
type Runner struct {
	llm   Generator
	tools ToolExecutor
}

// NewRunner creates a turn runner.
func NewRunner(llm Generator, tools ToolExecutor) *Runner {
	return &Runner{llm: llm, tools: tools}
}

// Input is one user turn plus the state needed to run it.
type Input struct {
	UserMessage  string
	ContextBlock string // rendered <user-context>, injected ahead of the message
	History      []*genai.Content
}

// Result is the outcome of one completed turn.
type Result struct {
	State TurnState
	Text  string // assistant text, present when the turn ends in Open

	// Pending prompt for the user, present when State is AwaitingUser.
	PromptTool string
	Prompt     map[string]any

	Executed []string         // tool names executed, in call order
	History  []*genai.Content // full conversation including this turn
}

// Run executes one turn: generate, validate and execute tool calls, repeat
// until the model stops with text or an interactive tool fires. Protocol
// violations abort the whole turn with a retryable error; calls are never
// silently dropped to force compliance.
func (r *Runner) Run(ctx context.Context, in Input) (*Result, error) {
	if strings.TrimSpace(in.UserMessage) == "" {
		return nil, errors.New("user message must not be empty")
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Tools:             []*genai.Tool{{FunctionDeclarations: toolDeclarations()}},
	}

	userText := in.UserMessage
	if in.ContextBlock != "" {
		userText = in.ContextBlock + "\n\n" + in.UserMessage
	}
	contents := append(append([]*genai.Content{}, in.History...),
		genai.NewContentFromText(userText, genai.RoleUser))

	var proto Protocol
	res := &Result{State: StateOpen}

	for i := 0; i < maxToolIterations; i++ {
		resp, err := r.llm.Generate(ctx, contents, config)
		if err != nil {
			return nil, fmt.Errorf("model turn: %w", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return nil, errors.New("model returned no candidates")
		}
		content := resp.Candidates[0].Content
		contents = append(contents, content)

		var (
			text      strings.Builder
			responses []*genai.Part
		)
		for _, part := range content.Parts {
			if part == nil {
				continue
			}

			if part.FunctionCall != nil {
				call := part.FunctionCall
				class, err := proto.Admit(call.Name)
				if err != nil {
					engine.IncrProtocolViolations()
					slog.Warn("tool call rejected", "tool", call.Name, "error", err)
					return nil, err
				}

				out, err := r.tools.Execute(ctx, call.Name, call.Args)
				if err != nil {
					return nil, fmt.Errorf("execute %s: %w", call.Name, err)
				}
				res.Executed = append(res.Executed, call.Name)

				if class == ClassInteractive {
					res.State = StateAwaitingUser
					res.PromptTool = call.Name
					res.Prompt = out
					continue // remaining parts still validated below
				}
				responses = append(responses, genai.NewPartFromFunctionResponse(call.Name, out))
				continue
			}

			if t := strings.TrimSpace(part.Text); t != "" {
				if err := proto.AdmitText(); err != nil {
					engine.IncrProtocolViolations()
					return nil, err
				}
				if text.Len() > 0 {
					text.WriteString("\n")
				}
				text.WriteString(t)
			}
		}

		if res.State == StateAwaitingUser {
			res.History = contents
			engine.IncrTurnsCompleted()
			return res, nil
		}

		if len(responses) == 0 {
			// No tool calls: the text is the turn's answer.
			res.Text = text.String()
			res.History = contents
			engine.IncrTurnsCompleted()
			return res, nil
		}

		contents = append(contents, genai.NewContentFromParts(responses, genai.RoleUser))
	}

	return nil, fmt.Errorf("turn exceeded %d tool iterations", maxToolIterations)
}

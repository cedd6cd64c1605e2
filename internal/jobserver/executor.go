package jobserver

import (
	"context"
	"fmt"

	"github.com/openchance/jobmatch/internal/toolutil"
)

// Executor adapts the tool surface to the conversational turn loop. Both
// paths share one implementation per tool; only the invocation shape
// (typed MCP input vs. loose model args) differs.
type Executor struct {
	deps     Deps
	threadID string
}

// NewExecutor creates an executor scoped to one conversation thread.
func NewExecutor(d Deps, threadID string) *Executor {
	return &Executor{deps: d, threadID: threadID}
}

// Execute runs one already-admitted tool call. The acting user comes from
// ctx, never from the call arguments.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	switch name {
	case "search_jobs":
		in, err := toolutil.Decode[SearchJobsInput](args)
		if err != nil {
			return nil, err
		}
		out, err := searchJobs(ctx, e.deps, in)
		if err != nil {
			return nil, err
		}
		return toolutil.Encode(out)

	case "save_preference":
		in, err := toolutil.Decode[SavePreferenceInput](args)
		if err != nil {
			return nil, err
		}
		out, err := savePreference(ctx, e.deps, in)
		if err != nil {
			return nil, err
		}
		return toolutil.Encode(out)

	case "get_my_resume":
		out, err := getResume(ctx, e.deps)
		if err != nil {
			return nil, err
		}
		return toolutil.Encode(out)

	case "get_my_job_preferences":
		out, err := getPreferences(ctx, e.deps)
		if err != nil {
			return nil, err
		}
		return toolutil.Encode(out)

	case "todo_write":
		in, err := toolutil.Decode[TodoWriteInput](args)
		if err != nil {
			return nil, err
		}
		in.ThreadID = e.threadID
		out, err := todoWrite(ctx, e.deps, in)
		if err != nil {
			return nil, err
		}
		return toolutil.Encode(out)

	case "todo_read":
		out, err := todoRead(ctx, e.deps, TodoReadInput{ThreadID: e.threadID})
		if err != nil {
			return nil, err
		}
		return toolutil.Encode(out)

	case "ask_question":
		in, err := toolutil.Decode[AskQuestionInput](args)
		if err != nil {
			return nil, err
		}
		out, err := askQuestion(in)
		if err != nil {
			return nil, err
		}
		return toolutil.Encode(out)

	case "collect_location":
		return toolutil.Encode(&PromptOutput{Kind: "collect_location", Reason: toolutil.Str(args, "reason")})

	case "collect_resume":
		return toolutil.Encode(&PromptOutput{Kind: "collect_resume", Reason: toolutil.Str(args, "reason")})

	case "ask_preference":
		in, err := toolutil.Decode[AskPreferenceInput](args)
		if err != nil {
			return nil, err
		}
		out, err := askPreference(in)
		if err != nil {
			return nil, err
		}
		return toolutil.Encode(out)
	}
	return nil, fmt.Errorf("unknown tool %q", name)
}

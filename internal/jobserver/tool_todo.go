package jobserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/openchance/jobmatch/internal/engine/auth"
	"github.com/openchance/jobmatch/internal/engine/store"
)

// TodoItemInput is one plan entry in a todo_write call.
type TodoItemInput struct {
	ID     string `json:"id,omitempty" jsonschema:"Item id from a previous todo_read; omit for new items"`
	Label  string `json:"label" jsonschema:"What this step is"`
	Status string `json:"status" jsonschema:"pending, in_progress, completed, or cancelled"`
}

// TodoWriteInput replaces the plan for one conversation thread.
type TodoWriteInput struct {
	ThreadID string          `json:"thread_id,omitempty" jsonschema:"Conversation thread id; omit for the user's default thread"`
	Items    []TodoItemInput `json:"items" jsonschema:"Full plan; this replaces the stored plan"`
}

// TodoReadInput reads the plan for one conversation thread.
type TodoReadInput struct {
	ThreadID string `json:"thread_id,omitempty" jsonschema:"Conversation thread id; omit for the user's default thread"`
}

// TodoOutput is the stored plan after a read or write.
type TodoOutput struct {
	Items []store.PlanItem `json:"items"`
}

func registerTodoTools(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "todo_write",
		Description: "Replace the plan for this conversation with the given items. New items get generated ids; pass existing ids to update items in place.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input TodoWriteInput) (*mcp.CallToolResult, TodoOutput, error) {
		out, err := todoWrite(ctx, d, input)
		if err != nil {
			return nil, TodoOutput{}, err
		}
		return nil, *out, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "todo_read",
		Description: "Read the current plan for this conversation.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input TodoReadInput) (*mcp.CallToolResult, TodoOutput, error) {
		out, err := todoRead(ctx, d, input)
		if err != nil {
			return nil, TodoOutput{}, err
		}
		return nil, *out, nil
	})
}

// threadFor scopes plans per user: an explicit thread id is still
// namespaced under the user so threads never collide across users.
func threadFor(userID, threadID string) string {
	if threadID == "" {
		return userID
	}
	return userID + ":" + threadID
}

func todoWrite(ctx context.Context, d Deps, input TodoWriteInput) (*TodoOutput, error) {
	userID, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	if len(input.Items) == 0 {
		return nil, errors.New("items is required; use todo_read to inspect the plan")
	}

	items := make([]store.PlanItem, 0, len(input.Items))
	for i, in := range input.Items {
		status := store.PlanStatus(in.Status)
		if !store.ValidPlanStatus(status) {
			return nil, fmt.Errorf("item %d: unknown status %q", i, in.Status)
		}
		if in.Label == "" {
			return nil, fmt.Errorf("item %d: label is required", i)
		}
		id := in.ID
		if id == "" {
			id = uuid.NewString()
		}
		items = append(items, store.PlanItem{ID: id, Label: in.Label, Status: status})
	}

	thread := threadFor(userID, input.ThreadID)
	if err := d.Store.SavePlan(ctx, thread, items); err != nil {
		return nil, err
	}
	return &TodoOutput{Items: items}, nil
}

func todoRead(ctx context.Context, d Deps, input TodoReadInput) (*TodoOutput, error) {
	userID, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	items, err := d.Store.Plan(ctx, threadFor(userID, input.ThreadID))
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []store.PlanItem{}
	}
	return &TodoOutput{Items: items}, nil
}

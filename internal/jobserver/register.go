// Package jobserver exposes the jobmatch tool surface over MCP: job search,
// preference management, plan tracking, and the interactive prompts the
// conversational layer relays to the user.
package jobserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/openchance/jobmatch/internal/engine/auth"
	"github.com/openchance/jobmatch/internal/engine/search"
	"github.com/openchance/jobmatch/internal/engine/store"
)

// Deps are the collaborators behind the tool surface.
type Deps struct {
	Search *search.Service
	Store  store.Store
}

// RegisterTools registers all jobmatch tools on the given MCP server:
// search_jobs, save_preference, get_my_resume, get_my_job_preferences,
// todo_write, todo_read, and the four interactive prompt tools.
func RegisterTools(server *mcp.Server, d Deps) {
	registerSearchJobs(server, d)
	registerSavePreference(server, d)
	registerProfileTools(server, d)
	registerTodoTools(server, d)
	registerAskTools(server)
}

// RequireAuth installs middleware that stamps the verified caller identity
// onto every request context. resolve maps transport metadata to a user id;
// tools reject unauthenticated requests before touching any data.
func RequireAuth(server *mcp.Server, resolve func(context.Context) (string, error)) {
	server.AddReceivingMiddleware(func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			if userID, err := resolve(ctx); err == nil && userID != "" {
				ctx = auth.WithUser(ctx, userID)
			}
			return next(ctx, method, req)
		}
	})
}

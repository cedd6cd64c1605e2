// Package agent drives one conversational turn against the generative
// model and enforces the tool-call protocol around it.
//
// Per-turn state graph:
//
//	Open ──(silent tool)──► Open
//	Open ──(search tool)──► Open
//	Open ──(interactive tool)──► AwaitingUser (terminal for the turn)
//
// A search may be followed by one interactive tool (to offer next steps),
// never the reverse. At most one search and at most one interactive tool
// fire per turn. Model instructions alone are not trusted to uphold any of
// this; every call is validated here before it executes.
package agent

import "fmt"

// ToolClass partitions the tool surface by interaction behavior.
type ToolClass string

const (
	// ClassSilent tools execute immediately with no user-visible pause.
	ClassSilent ToolClass = "silent"
	// ClassSearch is the job-search tool.
	ClassSearch ToolClass = "search"
	// ClassInteractive tools block on a user response and must be the
	// final action of the turn.
	ClassInteractive ToolClass = "interactive"
)

// TurnState is the per-turn conversation state.
type TurnState string

const (
	StateOpen         TurnState = "open"
	StateAwaitingUser TurnState = "awaiting_user"
)

// toolClasses maps every known tool name to its class. Unknown names are
// protocol violations, not silent no-ops.
var toolClasses = map[string]ToolClass{
	"search_jobs": ClassSearch,

	"save_preference":        ClassSilent,
	"get_my_resume":          ClassSilent,
	"get_my_job_preferences": ClassSilent,
	"todo_write":             ClassSilent,
	"todo_read":              ClassSilent,

	"ask_question":     ClassInteractive,
	"collect_location": ClassInteractive,
	"collect_resume":   ClassInteractive,
	"ask_preference":   ClassInteractive,
}

// Classify resolves a tool name to its class.
func Classify(name string) (ToolClass, error) {
	c, ok := toolClasses[name]
	if !ok {
		return "", fmt.Errorf("unknown tool %q", name)
	}
	return c, nil
}

// TurnError is a protocol violation inside one turn. Always retryable: the
// caller re-runs the turn rather than accepting an out-of-contract result.
type TurnError struct {
	Tool   string
	Reason string
}

func (e *TurnError) Error() string {
	return fmt.Sprintf("turn protocol violation on %q: %s (retryable)", e.Tool, e.Reason)
}

// Retryable marks the failure as safe to retry with a fresh turn.
func (e *TurnError) Retryable() bool { return true }

// Protocol validates the tool-call sequence of a single turn.
// Zero value is a fresh Open turn. Not safe for concurrent use; each turn
// owns its own Protocol.
type Protocol struct {
	state        TurnState
	searches     int
	interactives int
}

// State reports the current turn state. The zero value is Open.
func (p *Protocol) State() TurnState {
	if p.state == "" {
		return StateOpen
	}
	return p.state
}

// Admit validates the next tool call against the sequence so far and
// records it. A rejected call leaves the protocol state unchanged; the
// whole turn is expected to be retried, never patched up by dropping calls.
func (p *Protocol) Admit(name string) (ToolClass, error) {
	class, err := Classify(name)
	if err != nil {
		return "", &TurnError{Tool: name, Reason: err.Error()}
	}

	if p.State() == StateAwaitingUser {
		return "", &TurnError{Tool: name, Reason: "interactive tool already ended this turn"}
	}

	switch class {
	case ClassSearch:
		if p.searches >= 1 {
			return "", &TurnError{Tool: name, Reason: "at most one search per turn"}
		}
		p.searches++
	case ClassInteractive:
		if p.interactives >= 1 {
			return "", &TurnError{Tool: name, Reason: "at most one interactive tool per turn"}
		}
		p.interactives++
		p.state = StateAwaitingUser
	case ClassSilent:
		// Always admissible while the turn is open.
	}
	return class, nil
}

// AdmitText validates assistant text at the current point of the turn.
// Text after an interactive tool is a violation: the interactive call must
// be the final action.
func (p *Protocol) AdmitText() error {
	if p.State() == StateAwaitingUser {
		return &TurnError{Tool: "(text)", Reason: "assistant text after an interactive tool"}
	}
	return nil
}

package agent

import "google.golang.org/genai"

// systemPrompt sets the agent's behavior. Tool-sequencing rules are stated
// here for the model's benefit, but enforcement lives in Protocol.
const systemPrompt = `You are a job-search assistant for people looking for hourly and fair-chance work.

A <user-context> block precedes each user message with their stored state: resume status, home location, preferences, and likely job directions.

Rules for each turn:
- Call at most one search_jobs per turn.
- Ask the user things only through the interactive tools (ask_question, collect_location, collect_resume, ask_preference), and make that call your last action of the turn.
- A search may be followed by one interactive tool to offer next steps. Never search after an interactive tool.
- When the user defers a direction decision, use the auto-pick hint from their context instead of asking again.
- Save stated preferences with save_preference before searching so they apply to the search.
- Keep answers short and concrete.`

func toolDeclarations() []*genai.FunctionDeclaration {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	boolean := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeBoolean, Description: desc}
	}

	return []*genai.FunctionDeclaration{
		{
			Name:        "search_jobs",
			Description: "Search the job index with the user's stored preferences applied. Returns sanitized job listings plus the search context actually used.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"query": str("Free-text search query (e.g. warehouse, forklift operator)"),
					"limit": {Type: genai.TypeInteger, Description: "Max results, 1-8"},
					"second_chance_only": boolean("Only fair-chance employers"),
					"city":               str("City filter"),
					"state":              str("Two-letter state filter"),
					"bus_required":       boolean("Only bus-accessible jobs"),
					"rail_required":      boolean("Only rail-accessible jobs"),
					"urgent_only":        boolean("Only urgently-hiring jobs"),
					"easy_apply_only":    boolean("Only easy-apply jobs"),
					"shifts": {
						Type:        genai.TypeArray,
						Items:       &genai.Schema{Type: genai.TypeString},
						Description: "Shifts to match (OR): morning, afternoon, evening, overnight, flexible",
					},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        "save_preference",
			Description: "Save a job preference the user stated: shifts, max commute, transit needs, fair-chance stance. Only send fields the user actually expressed.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"max_commute_minutes":   {Type: genai.TypeInteger, Description: "Max commute: 10, 30, or 60"},
					"shift_morning":         boolean("Wants morning shifts"),
					"shift_afternoon":       boolean("Wants afternoon shifts"),
					"shift_evening":         boolean("Wants evening shifts"),
					"shift_overnight":       boolean("Wants overnight shifts"),
					"shift_flexible":        boolean("Wants flexible shifts"),
					"clear_other_shifts":    boolean("Replace the stored shift set instead of adding to it"),
					"require_bus":           boolean("Job must be bus-accessible"),
					"require_rail":          boolean("Job must be rail-accessible"),
					"require_second_chance": boolean("Only fair-chance employers, as a hard filter"),
					"prefer_second_chance":  boolean("Prefer fair-chance employers, not a hard filter"),
				},
			},
		},
		{
			Name:        "get_my_resume",
			Description: "Fetch the user's stored resume.",
			Parameters:  &genai.Schema{Type: genai.TypeObject},
		},
		{
			Name:        "get_my_job_preferences",
			Description: "Fetch the user's stored job preferences.",
			Parameters:  &genai.Schema{Type: genai.TypeObject},
		},
		{
			Name:        "todo_write",
			Description: "Replace the plan for this conversation with the given items.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"items": {
						Type: genai.TypeArray,
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"id":     str("Item id; omit for new items"),
								"label":  str("What this step is"),
								"status": str("pending, in_progress, completed, or cancelled"),
							},
							Required: []string{"label", "status"},
						},
					},
				},
				Required: []string{"items"},
			},
		},
		{
			Name:        "todo_read",
			Description: "Read the current plan for this conversation.",
			Parameters:  &genai.Schema{Type: genai.TypeObject},
		},
		{
			Name:        "ask_question",
			Description: "Ask the user a question with 2-8 answer options, optionally allowing free text. Interactive: must be your last action this turn.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"question": str("The question to show the user"),
					"options": {
						Type:        genai.TypeArray,
						Items:       &genai.Schema{Type: genai.TypeString},
						Description: "Tap-to-answer choices, 2-8 when present",
					},
					"preamble":        str("Short lead-in shown above the question"),
					"allow_free_text": boolean("Let the user type an answer instead of picking an option"),
					"purpose":         str("What the answer will be used for (e.g. pick_direction, confirm_filters)"),
				},
				Required: []string{"question", "purpose"},
			},
		},
		{
			Name:        "collect_location",
			Description: "Ask the user to set their home location. Interactive: must be your last action this turn.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"reason": str("Why the location is needed right now"),
				},
			},
		},
		{
			Name:        "collect_resume",
			Description: "Ask the user to upload or build their resume. Interactive: must be your last action this turn.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"reason": str("Why the resume is needed right now"),
				},
			},
		},
		{
			Name:        "ask_preference",
			Description: "Ask the user about one preference: shifts, commute, transit, or fair_chance stance. Interactive: must be your last action this turn.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"preference": str("Which preference to ask about: shifts, commute, transit, fair_chance"),
					"context":    str("Optional context shown with the question"),
				},
				Required: []string{"preference"},
			},
		},
	}
}

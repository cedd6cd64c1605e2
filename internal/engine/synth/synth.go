// Package synth renders per-turn user context: a deterministic text block
// summarizing the user's stored state for the agent. Pure formatting over
// already-fetched data; fetching is the caller's job.
package synth

import (
	"fmt"
	"strings"
	"time"

	"github.com/openchance/jobmatch/internal/engine"
	"github.com/openchance/jobmatch/internal/engine/hints"
	"github.com/openchance/jobmatch/internal/engine/store"
)

// Free-text caps inside the context block.
const (
	summaryLimit = 150
	skillsLimit  = 100
)

// elapsedThreshold controls when session elapsed time is worth showing.
const elapsedThreshold = 5 * time.Minute

// Input is the already-fetched state feeding one context block.
type Input struct {
	Resume       *store.Resume
	Preferences  *store.JobPreferences
	Profile      *store.UserProfile
	SearchCount  int
	SessionStart time.Time
}

// BuildContext renders the <user-context> block injected ahead of each turn.
// Deterministic: identical input yields identical output.
func BuildContext(in Input, now time.Time) string {
	var b strings.Builder
	b.WriteString("<user-context>\n")

	if in.Resume != nil {
		b.WriteString("Resume: uploaded\n")
	} else {
		b.WriteString("Resume: not uploaded\n")
	}

	hasHome := in.Profile != nil && in.Profile.Home != nil
	if hasHome {
		fmt.Fprintf(&b, "Location: set (%.4f, %.4f)\n", in.Profile.Home.Lat, in.Profile.Home.Lon)
	} else {
		b.WriteString("Location: not set\n")
	}

	writeHints(&b, in.Resume)
	writeFairChance(&b, in.Preferences)
	writeResumeHighlights(&b, in.Resume)
	writePreferences(&b, in.Preferences)
	writeSession(&b, in, now)

	b.WriteString("</user-context>")
	return b.String()
}

// writeHints lists inferred directions plus the single auto-pick used when
// the user defers a direction decision.
func writeHints(b *strings.Builder, resume *store.Resume) {
	hs := hints.Infer(resume.FreeText())
	if len(hs) == 0 {
		return
	}
	parts := make([]string, 0, len(hs))
	for _, h := range hs {
		parts = append(parts, fmt.Sprintf("%s (%s confidence)", h.Label, h.Confidence))
	}
	fmt.Fprintf(b, "Likely directions: %s\n", strings.Join(parts, ", "))
	fmt.Fprintf(b, "Auto-pick if user defers: %s\n", hs[0].Label)
}

func writeFairChance(b *strings.Builder, prefs *store.JobPreferences) {
	switch {
	case prefs != nil && prefs.RequireSecondChance:
		b.WriteString("Fair-chance employers: required\n")
	case prefs != nil && prefs.PreferSecondChance:
		b.WriteString("Fair-chance employers: preferred\n")
	default:
		b.WriteString("Fair-chance employers: not specified\n")
	}
}

func writeResumeHighlights(b *strings.Builder, resume *store.Resume) {
	if resume == nil {
		return
	}
	if exp := resume.MostRecent(); exp != nil {
		line := exp.Position
		if exp.Company != "" {
			line += " at " + exp.Company
		}
		fmt.Fprintf(b, "Most recent position: %s\n", line)
	}
	if len(resume.Skills) > 0 {
		fmt.Fprintf(b, "Skills: %s\n", engine.TruncateField(strings.Join(resume.Skills, ", "), skillsLimit))
	}
	if resume.Summary != "" {
		fmt.Fprintf(b, "Summary: %s\n", engine.TruncateField(resume.Summary, summaryLimit))
	}
}

func writePreferences(b *strings.Builder, prefs *store.JobPreferences) {
	if prefs == nil {
		return
	}
	var parts []string
	if shifts := prefs.Shifts(); len(shifts) > 0 {
		parts = append(parts, "shifts: "+strings.Join(shifts, ", "))
	}
	if prefs.MaxCommuteMinutes > 0 {
		parts = append(parts, fmt.Sprintf("max commute: %d min", prefs.MaxCommuteMinutes))
	}
	if prefs.RequireBus {
		parts = append(parts, "needs bus access")
	}
	if prefs.RequireRail {
		parts = append(parts, "needs rail access")
	}
	if len(parts) > 0 {
		fmt.Fprintf(b, "Preferences: %s\n", strings.Join(parts, "; "))
	}
}

func writeSession(b *strings.Builder, in Input, now time.Time) {
	fmt.Fprintf(b, "Searches this session: %d", in.SearchCount)
	if !in.SessionStart.IsZero() {
		if elapsed := now.Sub(in.SessionStart); elapsed > elapsedThreshold {
			fmt.Fprintf(b, " (%d min elapsed)", int(elapsed.Minutes()))
		}
	}
	b.WriteString("\n")
}

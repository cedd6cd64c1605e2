package jobserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/openchance/jobmatch/internal/engine/auth"
	"github.com/openchance/jobmatch/internal/engine/store"
)

// SavePreferenceInput is a partial preference write. Absent fields are left
// untouched; explicit false clears a flag.
type SavePreferenceInput struct {
	MaxCommuteMinutes   *int  `json:"max_commute_minutes,omitempty" jsonschema:"Max commute in minutes: 10, 30, or 60"`
	ShiftMorning        *bool `json:"shift_morning,omitempty" jsonschema:"Wants morning shifts"`
	ShiftAfternoon      *bool `json:"shift_afternoon,omitempty" jsonschema:"Wants afternoon shifts"`
	ShiftEvening        *bool `json:"shift_evening,omitempty" jsonschema:"Wants evening shifts"`
	ShiftOvernight      *bool `json:"shift_overnight,omitempty" jsonschema:"Wants overnight shifts"`
	ShiftFlexible       *bool `json:"shift_flexible,omitempty" jsonschema:"Wants flexible shifts"`
	ClearOtherShifts    bool  `json:"clear_other_shifts,omitempty" jsonschema:"Replace the stored shift set instead of adding to it"`
	RequireBus          *bool `json:"require_bus,omitempty" jsonschema:"Job must be bus-accessible (hard filter)"`
	RequireRail         *bool `json:"require_rail,omitempty" jsonschema:"Job must be rail-accessible (hard filter)"`
	RequireSecondChance *bool `json:"require_second_chance,omitempty" jsonschema:"Only fair-chance employers (hard filter)"`
	PreferSecondChance  *bool `json:"prefer_second_chance,omitempty" jsonschema:"Prefer fair-chance employers (advisory, not a filter)"`
}

// SavePreferenceOutput reports what was written.
type SavePreferenceOutput struct {
	Saved   bool                  `json:"saved"`
	Fields  []string              `json:"fields"`
	Current *store.JobPreferences `json:"current"`
}

func (in SavePreferenceInput) update() store.PreferenceUpdate {
	return store.PreferenceUpdate{
		MaxCommuteMinutes:   in.MaxCommuteMinutes,
		ShiftMorning:        in.ShiftMorning,
		ShiftAfternoon:      in.ShiftAfternoon,
		ShiftEvening:        in.ShiftEvening,
		ShiftOvernight:      in.ShiftOvernight,
		ShiftFlexible:       in.ShiftFlexible,
		RequireBus:          in.RequireBus,
		RequireRail:         in.RequireRail,
		RequireSecondChance: in.RequireSecondChance,
		PreferSecondChance:  in.PreferSecondChance,
		ClearOtherShifts:    in.ClearOtherShifts,
	}
}

func registerSavePreference(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "save_preference",
		Description: "Save job preferences the user stated: shifts, max commute minutes, transit requirements, fair-chance stance. Partial update; only send fields the user actually expressed.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input SavePreferenceInput) (*mcp.CallToolResult, SavePreferenceOutput, error) {
		out, err := savePreference(ctx, d, input)
		if err != nil {
			return nil, SavePreferenceOutput{}, err
		}
		return nil, *out, nil
	})
}

func savePreference(ctx context.Context, d Deps, input SavePreferenceInput) (*SavePreferenceOutput, error) {
	userID, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}
	if v := input.MaxCommuteMinutes; v != nil && *v != 10 && *v != 30 && *v != 60 {
		return nil, fmt.Errorf("max_commute_minutes must be 10, 30, or 60, got %d", *v)
	}

	prefs, err := d.Store.Preferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	upd := input.update()
	next, updated := upd.Apply(prefs, time.Now().UTC())
	if len(updated) == 0 {
		return nil, errors.New("no preference fields provided")
	}

	if err := d.Store.SavePreferences(ctx, userID, next); err != nil {
		return nil, err
	}
	return &SavePreferenceOutput{Saved: true, Fields: updated, Current: next}, nil
}

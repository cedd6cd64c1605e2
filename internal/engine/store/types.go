// Package store persists per-user documents: profile, job preferences,
// resume, per-thread plans, and the reviewed-job-id set.
//
// All durable state lives here; nothing is shared in-process across
// requests. Reads after writes go through the same store, so per-user
// state is read-after-write consistent.
package store

import (
	"sort"
	"strings"
	"time"

	"github.com/openchance/jobmatch/internal/engine/geo"
)

// UserProfile is the per-user identity document. Never deleted, only updated.
type UserProfile struct {
	UserID     string            `json:"userId"`
	Home       *geo.Coordinates  `json:"home,omitempty"`
	Isochrones *geo.IsochroneSet `json:"isochrones,omitempty"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// JobPreferences holds per-user search preference flags.
// "Require" flags are hard filters; "prefer" flags are advisory only.
type JobPreferences struct {
	MaxCommuteMinutes int `json:"maxCommuteMinutes,omitempty"` // 10, 30 or 60; 0 = unset

	ShiftMorning   bool `json:"shiftMorning,omitempty"`
	ShiftAfternoon bool `json:"shiftAfternoon,omitempty"`
	ShiftEvening   bool `json:"shiftEvening,omitempty"`
	ShiftOvernight bool `json:"shiftOvernight,omitempty"`
	ShiftFlexible  bool `json:"shiftFlexible,omitempty"`

	RequireBus  bool `json:"requireBus,omitempty"`
	RequireRail bool `json:"requireRail,omitempty"`

	RequireSecondChance bool `json:"requireSecondChance,omitempty"`
	PreferSecondChance  bool `json:"preferSecondChance,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// Shifts lists the enabled shift flags in canonical order.
func (p *JobPreferences) Shifts() []string {
	if p == nil {
		return nil
	}
	var out []string
	if p.ShiftMorning {
		out = append(out, "morning")
	}
	if p.ShiftAfternoon {
		out = append(out, "afternoon")
	}
	if p.ShiftEvening {
		out = append(out, "evening")
	}
	if p.ShiftOvernight {
		out = append(out, "overnight")
	}
	if p.ShiftFlexible {
		out = append(out, "flexible")
	}
	return out
}

// RequiresTransit reports whether any hard public-transit flag is set.
func (p *JobPreferences) RequiresTransit() bool {
	return p != nil && (p.RequireBus || p.RequireRail)
}

// CommuteTier snaps the commute preference onto an isochrone tier.
// Unset preference defaults to the 30-minute tier.
func (p *JobPreferences) CommuteTier() geo.Tier {
	if p == nil || p.MaxCommuteMinutes == 0 {
		return geo.Tier30
	}
	return geo.NearestTier(p.MaxCommuteMinutes)
}

// PreferenceUpdate is a partial preference write. Nil fields are left
// untouched. When ClearOtherShifts is set, every shift flag not explicitly
// set true in the same update is forced false.
type PreferenceUpdate struct {
	MaxCommuteMinutes *int `json:"max_commute_minutes,omitempty"`

	ShiftMorning   *bool `json:"shift_morning,omitempty"`
	ShiftAfternoon *bool `json:"shift_afternoon,omitempty"`
	ShiftEvening   *bool `json:"shift_evening,omitempty"`
	ShiftOvernight *bool `json:"shift_overnight,omitempty"`
	ShiftFlexible  *bool `json:"shift_flexible,omitempty"`

	RequireBus  *bool `json:"require_bus,omitempty"`
	RequireRail *bool `json:"require_rail,omitempty"`

	RequireSecondChance *bool `json:"require_second_chance,omitempty"`
	PreferSecondChance  *bool `json:"prefer_second_chance,omitempty"`

	ClearOtherShifts bool `json:"clear_other_shifts,omitempty"`
}

// Apply merges the update into prefs and returns the sorted list of field
// names that were written. prefs may be nil (treated as all-defaults).
func (u *PreferenceUpdate) Apply(prefs *JobPreferences, now time.Time) (*JobPreferences, []string) {
	out := JobPreferences{}
	if prefs != nil {
		out = *prefs
	}

	var fields []string
	setBool := func(dst *bool, src *bool, name string) {
		if src != nil {
			*dst = *src
			fields = append(fields, name)
		}
	}

	if u.MaxCommuteMinutes != nil {
		out.MaxCommuteMinutes = *u.MaxCommuteMinutes
		fields = append(fields, "maxCommuteMinutes")
	}

	if u.ClearOtherShifts {
		// Only shifts explicitly set true in this same update survive.
		out.ShiftMorning = u.ShiftMorning != nil && *u.ShiftMorning
		out.ShiftAfternoon = u.ShiftAfternoon != nil && *u.ShiftAfternoon
		out.ShiftEvening = u.ShiftEvening != nil && *u.ShiftEvening
		out.ShiftOvernight = u.ShiftOvernight != nil && *u.ShiftOvernight
		out.ShiftFlexible = u.ShiftFlexible != nil && *u.ShiftFlexible
		fields = append(fields, "shifts")
	} else {
		setBool(&out.ShiftMorning, u.ShiftMorning, "shiftMorning")
		setBool(&out.ShiftAfternoon, u.ShiftAfternoon, "shiftAfternoon")
		setBool(&out.ShiftEvening, u.ShiftEvening, "shiftEvening")
		setBool(&out.ShiftOvernight, u.ShiftOvernight, "shiftOvernight")
		setBool(&out.ShiftFlexible, u.ShiftFlexible, "shiftFlexible")
	}

	setBool(&out.RequireBus, u.RequireBus, "requireBus")
	setBool(&out.RequireRail, u.RequireRail, "requireRail")
	setBool(&out.RequireSecondChance, u.RequireSecondChance, "requireSecondChance")
	setBool(&out.PreferSecondChance, u.PreferSecondChance, "preferSecondChance")

	if len(fields) > 0 {
		out.UpdatedAt = now
	}
	sort.Strings(fields)
	return &out, fields
}

// WorkExperience is one entry in a resume's ordered history.
type WorkExperience struct {
	Position     string   `json:"position"`
	Company      string   `json:"company"`
	Description  string   `json:"description,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

// Resume is the subset of the resume document used by search and inference.
// Owned by the resume-builder subsystem; read-only here.
type Resume struct {
	Summary    string           `json:"summary,omitempty"`
	Skills     []string         `json:"skills,omitempty"`
	Experience []WorkExperience `json:"experience,omitempty"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// FreeText joins every free-text resume field for keyword inference.
func (r *Resume) FreeText() string {
	if r == nil {
		return ""
	}
	var parts []string
	if r.Summary != "" {
		parts = append(parts, r.Summary)
	}
	if len(r.Skills) > 0 {
		parts = append(parts, strings.Join(r.Skills, " "))
	}
	for _, exp := range r.Experience {
		parts = append(parts, exp.Position, exp.Description)
		parts = append(parts, exp.Achievements...)
	}
	return strings.Join(parts, "\n")
}

// MostRecent returns the first work-experience entry, or nil.
func (r *Resume) MostRecent() *WorkExperience {
	if r == nil || len(r.Experience) == 0 {
		return nil
	}
	return &r.Experience[0]
}

// PlanStatus is the lifecycle state of one plan item.
type PlanStatus string

const (
	PlanPending    PlanStatus = "pending"
	PlanInProgress PlanStatus = "in_progress"
	PlanCompleted  PlanStatus = "completed"
	PlanCancelled  PlanStatus = "cancelled"
)

// ValidPlanStatus reports whether s is a known status.
func ValidPlanStatus(s PlanStatus) bool {
	switch s {
	case PlanPending, PlanInProgress, PlanCompleted, PlanCancelled:
		return true
	}
	return false
}

// PlanItem is one todo entry in a per-thread conversation plan.
type PlanItem struct {
	ID     string     `json:"id"`
	Label  string     `json:"label"`
	Status PlanStatus `json:"status"`
}

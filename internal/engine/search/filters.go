package search

import (
	"sort"

	"github.com/openchance/jobmatch/internal/engine/store"
)

// ExplicitFilters are the caller-requested filters on one search.
type ExplicitFilters struct {
	SecondChanceOnly bool     `json:"second_chance_only,omitempty"`
	City             string   `json:"city,omitempty"`
	State            string   `json:"state,omitempty"`
	BusRequired      bool     `json:"bus_required,omitempty"`
	RailRequired     bool     `json:"rail_required,omitempty"`
	UrgentOnly       bool     `json:"urgent_only,omitempty"`
	EasyApplyOnly    bool     `json:"easy_apply_only,omitempty"`
	Shifts           []string `json:"shifts,omitempty"`
}

// ResolvedFilters is the effective filter set actually applied: explicit
// filters merged with the user's stored hard requirements. Part of the
// provenance record.
type ResolvedFilters struct {
	SecondChanceRequired bool   `json:"secondChanceRequired"`
	City                 string `json:"city,omitempty"`
	State                string `json:"state,omitempty"`
	BusRequired          bool   `json:"busRequired"`
	RailRequired         bool   `json:"railRequired"`
	UrgentOnly           bool   `json:"urgentOnly"`
	EasyApplyOnly        bool   `json:"easyApplyOnly"`
}

// MergeFilters unions explicit filters with stored "require" preferences.
// Required preferences always win: a stored hard requirement cannot be
// loosened by the caller. Pure and independently testable.
func MergeFilters(explicit ExplicitFilters, prefs *store.JobPreferences) ResolvedFilters {
	out := ResolvedFilters{
		SecondChanceRequired: explicit.SecondChanceOnly,
		City:                 explicit.City,
		State:                explicit.State,
		BusRequired:          explicit.BusRequired,
		RailRequired:         explicit.RailRequired,
		UrgentOnly:           explicit.UrgentOnly,
		EasyApplyOnly:        explicit.EasyApplyOnly,
	}
	if prefs != nil {
		if prefs.RequireSecondChance {
			out.SecondChanceRequired = true
		}
		if prefs.RequireBus {
			out.BusRequired = true
		}
		if prefs.RequireRail {
			out.RailRequired = true
		}
		// PreferSecondChance is advisory only: never enforced as a filter.
	}
	return out
}

// knownShifts is the canonical shift vocabulary.
var knownShifts = map[string]bool{
	"morning": true, "afternoon": true, "evening": true, "overnight": true, "flexible": true,
}

// EffectiveShifts unions stored shift preferences with explicitly requested
// shifts (union, not override). The result is sorted for determinism and
// matched OR-style, never AND.
func EffectiveShifts(explicit []string, prefs *store.JobPreferences) []string {
	set := make(map[string]bool)
	for _, s := range prefs.Shifts() {
		set[s] = true
	}
	for _, s := range explicit {
		if knownShifts[s] {
			set[s] = true
		}
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openchance/jobmatch/internal/engine/store"
)

func TestMergeFilters_RequiredPreferencesAlwaysWin(t *testing.T) {
	prefs := &store.JobPreferences{
		RequireSecondChance: true,
		RequireBus:          true,
	}

	// Caller requested nothing: stored hard requirements still apply.
	got := MergeFilters(ExplicitFilters{}, prefs)
	assert.True(t, got.SecondChanceRequired)
	assert.True(t, got.BusRequired)
	assert.False(t, got.RailRequired)

	// Caller cannot loosen a stored requirement.
	got = MergeFilters(ExplicitFilters{SecondChanceOnly: false}, prefs)
	assert.True(t, got.SecondChanceRequired)
}

func TestMergeFilters_ExplicitAddsToStored(t *testing.T) {
	prefs := &store.JobPreferences{RequireRail: true}
	got := MergeFilters(ExplicitFilters{
		SecondChanceOnly: true,
		City:             "Oakland",
		State:            "CA",
		UrgentOnly:       true,
	}, prefs)

	assert.True(t, got.SecondChanceRequired)
	assert.True(t, got.RailRequired)
	assert.Equal(t, "Oakland", got.City)
	assert.Equal(t, "CA", got.State)
	assert.True(t, got.UrgentOnly)
	assert.False(t, got.EasyApplyOnly)
}

func TestMergeFilters_PreferSecondChanceIsAdvisoryOnly(t *testing.T) {
	prefs := &store.JobPreferences{PreferSecondChance: true}
	got := MergeFilters(ExplicitFilters{}, prefs)
	assert.False(t, got.SecondChanceRequired, "prefer flag must never become a hard filter")
}

func TestMergeFilters_NilPreferences(t *testing.T) {
	got := MergeFilters(ExplicitFilters{BusRequired: true}, nil)
	assert.True(t, got.BusRequired)
	assert.False(t, got.SecondChanceRequired)
}

func TestEffectiveShifts_Union(t *testing.T) {
	prefs := &store.JobPreferences{ShiftMorning: true, ShiftEvening: true}

	got := EffectiveShifts([]string{"evening", "overnight"}, prefs)
	assert.Equal(t, []string{"evening", "morning", "overnight"}, got)
}

func TestEffectiveShifts_UnknownNamesDropped(t *testing.T) {
	got := EffectiveShifts([]string{"graveyard", "morning"}, nil)
	assert.Equal(t, []string{"morning"}, got)
}

func TestEffectiveShifts_Empty(t *testing.T) {
	assert.Nil(t, EffectiveShifts(nil, nil))
	assert.Nil(t, EffectiveShifts(nil, &store.JobPreferences{}))
}

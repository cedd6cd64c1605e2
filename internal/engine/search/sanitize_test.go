package search

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openchance/jobmatch/internal/engine"
	"github.com/openchance/jobmatch/internal/engine/geo"
	"github.com/openchance/jobmatch/internal/engine/index"
)

func fptr(f float64) *float64 { return &f }

func anyJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestSanitize_StripsCoordinates(t *testing.T) {
	job := Sanitize(index.Document{
		ID:          "j-1",
		Title:       "Warehouse Associate",
		Company:     "Acme Logistics",
		Coordinates: &geo.Coordinates{Lat: 37.8, Lon: -122.27},
		City:        "Oakland",
		State:       "CA",
	})

	assert.Equal(t, "j-1", job.ID)
	assert.Equal(t, "Oakland", job.City)
	// The public view carries no coordinate fields at all; make sure the
	// serialized shape stays that way if fields get added later.
	assert.NotContains(t, strings.ToLower(anyJSON(t, job)), "coordinates")
	assert.NotContains(t, anyJSON(t, job), "37.8")
}

func TestSanitize_SalaryFormats(t *testing.T) {
	tests := []struct {
		name string
		min  *float64
		max  *float64
		unit string
		want string
	}{
		{"range", fptr(15), fptr(20), "hourly", "$15 - $20/hourly"},
		{"min only defaults hourly", fptr(15), nil, "", "$15/hourly"},
		{"equal bounds collapse", fptr(18), fptr(18), "hourly", "$18/hourly"},
		{"yearly", fptr(52000), fptr(61000), "yearly", "$52000 - $61000/yearly"},
		{"absent", nil, nil, "hourly", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := Sanitize(index.Document{ID: "j", SalaryMin: tt.min, SalaryMax: tt.max, SalaryUnit: tt.unit})
			assert.Equal(t, tt.want, job.Salary)
		})
	}
}

func TestSanitize_TransitAccessible(t *testing.T) {
	assert.False(t, Sanitize(index.Document{ID: "j"}).TransitAccessible)
	assert.True(t, Sanitize(index.Document{ID: "j", BusAccessible: true}).TransitAccessible)
	assert.True(t, Sanitize(index.Document{ID: "j", RailAccessible: true}).TransitAccessible)
}

func TestSanitize_DescriptionTruncated(t *testing.T) {
	long := strings.Repeat("forklift operation and pallet moving. ", 20)
	job := Sanitize(index.Document{ID: "j", Description: long})

	assert.LessOrEqual(t, len(job.Description), descriptionPreviewLimit+len(engine.Ellipsis))
	assert.True(t, strings.HasSuffix(job.Description, engine.Ellipsis))

	short := Sanitize(index.Document{ID: "j", Description: "Short blurb."})
	assert.Equal(t, "Short blurb.", short.Description)
}

func TestSanitize_ShiftsDerivedFromFacets(t *testing.T) {
	job := Sanitize(index.Document{ID: "j", ShiftMorning: true, ShiftOvernight: true})
	assert.Equal(t, []string{"morning", "overnight"}, job.Shifts)
}

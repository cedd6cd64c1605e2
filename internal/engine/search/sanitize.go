package search

import (
	"github.com/openchance/jobmatch/internal/engine"
	"github.com/openchance/jobmatch/internal/engine/index"
)

// descriptionPreviewLimit caps the sanitized description preview.
const descriptionPreviewLimit = 200

// Job is the sanitized, user-facing view of an index document. Raw
// coordinates and any storage references never leave the pipeline; only
// the public job id survives.
type Job struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Company           string   `json:"company"`
	City              string   `json:"city,omitempty"`
	State             string   `json:"state,omitempty"`
	Salary            string   `json:"salary,omitempty"`
	Shifts            []string `json:"shifts,omitempty"`
	TransitAccessible bool     `json:"transitAccessible"`
	SecondChance      bool     `json:"secondChance"`
	SecondChanceTier  string   `json:"secondChanceTier,omitempty"`
	Urgent            bool     `json:"urgent,omitempty"`
	EasyApply         bool     `json:"easyApply,omitempty"`
	ApplyURL          string   `json:"applyUrl,omitempty"`
	Description       string   `json:"description,omitempty"`
}

// Sanitize converts an index document into its public view: shifts derived
// from boolean facets, transitAccessible = bus OR rail, salary formatted
// only when at least one bound is present, description truncated to a
// short preview.
func Sanitize(d index.Document) Job {
	return Job{
		ID:                d.ID,
		Title:             d.Title,
		Company:           d.Company,
		City:              d.City,
		State:             d.State,
		Salary:            engine.FormatSalary(d.SalaryMin, d.SalaryMax, d.SalaryUnit),
		Shifts:            d.Shifts(),
		TransitAccessible: d.BusAccessible || d.RailAccessible,
		SecondChance:      d.SecondChance,
		SecondChanceTier:  d.SecondChanceTier,
		Urgent:            d.Urgent,
		EasyApply:         d.EasyApply,
		ApplyURL:          d.ApplyURL,
		Description:       engine.TruncateField(d.Description, descriptionPreviewLimit),
	}
}

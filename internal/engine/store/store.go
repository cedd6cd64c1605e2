package store

import (
	"context"

	"github.com/openchance/jobmatch/internal/engine/geo"
)

// Store is the per-user document store consumed by the tools.
// Absent documents are returned as (nil, nil), not errors.
type Store interface {
	Profile(ctx context.Context, userID string) (*UserProfile, error)
	SaveHomeLocation(ctx context.Context, userID string, home geo.Coordinates) error
	SaveIsochrones(ctx context.Context, userID string, set *geo.IsochroneSet) error

	Preferences(ctx context.Context, userID string) (*JobPreferences, error)
	SavePreferences(ctx context.Context, userID string, prefs *JobPreferences) error

	Resume(ctx context.Context, userID string) (*Resume, error)
	SaveResume(ctx context.Context, userID string, resume *Resume) error

	Plan(ctx context.Context, threadID string) ([]PlanItem, error)
	SavePlan(ctx context.Context, threadID string, items []PlanItem) error

	ReviewedJobIDs(ctx context.Context, userID string) (map[string]bool, error)
	MarkReviewed(ctx context.Context, userID string, jobIDs []string) error

	Close()
}

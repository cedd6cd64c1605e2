// Package search executes the job-search pipeline: effective-filter
// resolution, index query, geo eligibility, reviewed-id exclusion,
// sanitization, and the provenance record.
package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openchance/jobmatch/internal/engine"
	"github.com/openchance/jobmatch/internal/engine/geo"
	"github.com/openchance/jobmatch/internal/engine/index"
	"github.com/openchance/jobmatch/internal/engine/store"
)

// Searcher is the index surface the pipeline needs.
type Searcher interface {
	Search(ctx context.Context, q index.Query) (*index.Result, error)
}

// Request is one search invocation.
type Request struct {
	Query   string
	Limit   int // 1..engine.Cfg.MaxSearchResults, 0 = max
	Filters ExplicitFilters
}

// Context is the provenance record for one search: the exact resolved
// filter/location state that was actually applied. Reconstructible
// byte-for-byte from the inputs; provenance, not configuration.
type Context struct {
	Query               string          `json:"query"`
	TotalFound          int             `json:"totalFound"`
	Limit               int             `json:"limit"`
	HasHomeLocation     bool            `json:"hasHomeLocation"`
	GeoPrefilterApplied bool            `json:"geoPrefilterApplied"`
	CommuteMinutes      int             `json:"commuteMinutes,omitempty"`
	IsochroneApplied    bool            `json:"isochroneApplied"`
	Filters             ResolvedFilters `json:"filters"`
	Shifts              []string        `json:"shifts,omitempty"`
}

// Result is the pipeline output: sanitized jobs plus provenance.
// TotalFound in Context distinguishes "nothing matched" from "matches
// existed but were all filtered by eligibility".
type Result struct {
	Jobs    []Job   `json:"jobs"`
	Context Context `json:"searchContext"`
}

// Service wires the pipeline's collaborators.
type Service struct {
	Index Searcher
	Store store.Store
}

// NewService creates a search service.
func NewService(idx Searcher, st store.Store) *Service {
	return &Service{Index: idx, Store: st}
}

// userState bundles the three independent per-user reads feeding a search.
type userState struct {
	prefs    *store.JobPreferences
	profile  *store.UserProfile
	reviewed map[string]bool
}

// fetchUserState issues the independent reads concurrently.
func (s *Service) fetchUserState(ctx context.Context, userID string) (*userState, error) {
	type res struct {
		name string
		set  func(*userState)
		err  error
	}
	ch := make(chan res, 3)

	go func() {
		prefs, err := s.Store.Preferences(ctx, userID)
		ch <- res{"preferences", func(st *userState) { st.prefs = prefs }, err}
	}()
	go func() {
		profile, err := s.Store.Profile(ctx, userID)
		ch <- res{"profile", func(st *userState) { st.profile = profile }, err}
	}()
	go func() {
		reviewed, err := s.Store.ReviewedJobIDs(ctx, userID)
		ch <- res{"reviewed", func(st *userState) { st.reviewed = reviewed }, err}
	}()

	var st userState
	for i := 0; i < 3; i++ {
		r := <-ch
		if r.err != nil {
			return nil, fmt.Errorf("load %s: %w", r.name, r.err)
		}
		r.set(&st)
	}
	return &st, nil
}

// Search runs the full pipeline for the given (already authenticated) user.
func (s *Service) Search(ctx context.Context, userID string, req Request) (*Result, error) {
	engine.IncrSearchRequests()

	limit := req.Limit
	if limit <= 0 || limit > engine.Cfg.MaxSearchResults {
		limit = engine.Cfg.MaxSearchResults
	}

	st, err := s.fetchUserState(ctx, userID)
	if err != nil {
		return nil, err
	}

	resolved := MergeFilters(req.Filters, st.prefs)
	shifts := EffectiveShifts(req.Filters.Shifts, st.prefs)

	q := index.Query{
		Text:   req.Query,
		Limit:  limit * engine.Cfg.OverFetchFactor, // over-fetch to survive later filtering
		Facets: facetsFor(resolved, shifts),
	}

	hasHome := st.profile != nil && st.profile.Home != nil
	if hasHome {
		// Coarse prune only; the isochrone filter below is the
		// authoritative eligibility check.
		q.Around = st.profile.Home
		q.RadiusKM = engine.Cfg.GeoPrefilterKM
	}

	res, err := s.Index.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search jobs: %w", err)
	}
	docs := res.Docs

	// OR-style shift matching; the index already applies this facet, kept
	// here so eligibility never depends on index behavior alone.
	if len(shifts) > 0 {
		kept := docs[:0:0]
		for _, d := range docs {
			if d.MatchesAnyShift(shifts) {
				kept = append(kept, d)
			}
		}
		docs = kept
	}

	// Authoritative geo eligibility: only when isochrones exist AND the
	// user has a hard public-transit requirement.
	isochroneApplied := false
	commuteMinutes := 0
	if st.profile != nil && st.profile.Isochrones != nil && st.prefs.RequiresTransit() {
		tier := st.prefs.CommuteTier()
		commuteMinutes = int(tier)
		before := len(docs)
		docs = geo.FilterByIsochrone(docs, func(d index.Document) *geo.Coordinates { return d.Coordinates }, st.profile.Isochrones, tier)
		engine.AddGeoFiltered(before - len(docs))
		isochroneApplied = true
	}

	// Already-reviewed jobs are excluded outright, not demoted.
	if len(st.reviewed) > 0 {
		kept := docs[:0:0]
		for _, d := range docs {
			if !st.reviewed[d.ID] {
				kept = append(kept, d)
			}
		}
		engine.AddReviewedStripped(len(docs) - len(kept))
		docs = kept
	}

	// Truncate only after every filtering step.
	if len(docs) > limit {
		docs = docs[:limit]
	}

	jobs := make([]Job, 0, len(docs))
	for _, d := range docs {
		jobs = append(jobs, Sanitize(d))
	}

	out := &Result{
		Jobs: jobs,
		Context: Context{
			Query:               req.Query,
			TotalFound:          res.Found,
			Limit:               limit,
			HasHomeLocation:     hasHome,
			GeoPrefilterApplied: hasHome,
			CommuteMinutes:      commuteMinutes,
			IsochroneApplied:    isochroneApplied,
			Filters:             resolved,
			Shifts:              shifts,
		},
	}

	slog.Debug("search complete",
		slog.String("user", userID),
		slog.Int("found", res.Found),
		slog.Int("returned", len(jobs)),
		slog.Bool("isochrone", isochroneApplied),
	)
	return out, nil
}

// facetsFor translates the resolved filter set into index facets.
// Only constraints that are actually required are sent.
func facetsFor(f ResolvedFilters, shifts []string) index.FacetFilters {
	truthy := func(b bool) *bool {
		if !b {
			return nil
		}
		v := true
		return &v
	}
	return index.FacetFilters{
		SecondChance:   truthy(f.SecondChanceRequired),
		City:           f.City,
		State:          f.State,
		BusAccessible:  truthy(f.BusRequired),
		RailAccessible: truthy(f.RailRequired),
		Urgent:         truthy(f.UrgentOnly),
		EasyApply:      truthy(f.EasyApplyOnly),
		Shifts:         shifts,
	}
}

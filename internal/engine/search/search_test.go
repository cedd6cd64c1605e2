package search

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openchance/jobmatch/internal/engine"
	"github.com/openchance/jobmatch/internal/engine/geo"
	"github.com/openchance/jobmatch/internal/engine/index"
	"github.com/openchance/jobmatch/internal/engine/store"
)

// fakeIndex serves canned documents and records the last query it saw.
type fakeIndex struct {
	docs    []index.Document
	lastQ   index.Query
	queries int
}

func (f *fakeIndex) Search(_ context.Context, q index.Query) (*index.Result, error) {
	f.lastQ = q
	f.queries++
	docs := make([]index.Document, len(f.docs))
	copy(docs, f.docs)
	return &index.Result{Found: len(docs), Docs: docs}, nil
}

func newTestService(t *testing.T, idx *fakeIndex) (*Service, store.Store) {
	t.Helper()
	engine.Init(engine.Config{})
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "search.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewService(idx, st), st
}

// squareCollection covers the box (minLon,minLat)..(maxLon,maxLat).
func squareCollection(minLon, minLat, maxLon, maxLat float64) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Polygon{{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}}))
	return fc
}

func jobAt(id string, lat, lon float64) index.Document {
	return index.Document{
		ID:          id,
		Title:       "Warehouse Associate",
		Company:     "Acme",
		Coordinates: &geo.Coordinates{Lat: lat, Lon: lon},
	}
}

func TestSearch_StoredRequirementAppearsInEffectiveFilters(t *testing.T) {
	ctx := context.Background()
	idx := &fakeIndex{docs: []index.Document{{ID: "j-1", Title: "Picker", SecondChance: true}}}
	svc, st := newTestService(t, idx)

	require.NoError(t, st.SavePreferences(ctx, "u1", &store.JobPreferences{RequireSecondChance: true}))

	res, err := svc.Search(ctx, "u1", Request{Query: "warehouse"})
	require.NoError(t, err)

	// The caller asked for nothing; the stored requirement still shows in
	// both the index facets and the provenance record.
	require.NotNil(t, idx.lastQ.Facets.SecondChance)
	assert.True(t, *idx.lastQ.Facets.SecondChance)
	assert.True(t, res.Context.Filters.SecondChanceRequired)
}

func TestSearch_IsochroneExcludesOutsideJobs(t *testing.T) {
	ctx := context.Background()
	idx := &fakeIndex{docs: []index.Document{
		jobAt("inside", 37.80, -122.27),
		jobAt("outside", 38.50, -121.50), // Sacramento, far outside the box
	}}
	svc, st := newTestService(t, idx)

	require.NoError(t, st.SaveHomeLocation(ctx, "u1", geo.Coordinates{Lat: 37.80, Lon: -122.27}))
	require.NoError(t, st.SaveIsochrones(ctx, "u1", &geo.IsochroneSet{
		Tier30: squareCollection(-122.35, 37.70, -122.15, 37.90),
	}))
	require.NoError(t, st.SavePreferences(ctx, "u1", &store.JobPreferences{
		RequireBus:        true,
		MaxCommuteMinutes: 30,
	}))

	res, err := svc.Search(ctx, "u1", Request{Query: "warehouse"})
	require.NoError(t, err)

	require.Len(t, res.Jobs, 1)
	assert.Equal(t, "inside", res.Jobs[0].ID)
	assert.True(t, res.Context.IsochroneApplied)
	assert.Equal(t, 30, res.Context.CommuteMinutes)
	assert.True(t, res.Context.HasHomeLocation)
	assert.True(t, res.Context.GeoPrefilterApplied)
}

func TestSearch_NoTransitRequirementSkipsIsochroneFilter(t *testing.T) {
	ctx := context.Background()
	idx := &fakeIndex{docs: []index.Document{
		jobAt("inside", 37.80, -122.27),
		jobAt("outside", 38.50, -121.50),
	}}
	svc, st := newTestService(t, idx)

	require.NoError(t, st.SaveHomeLocation(ctx, "u1", geo.Coordinates{Lat: 37.80, Lon: -122.27}))
	require.NoError(t, st.SaveIsochrones(ctx, "u1", &geo.IsochroneSet{
		Tier30: squareCollection(-122.35, 37.70, -122.15, 37.90),
	}))
	// Preferences with no hard transit requirement.
	require.NoError(t, st.SavePreferences(ctx, "u1", &store.JobPreferences{MaxCommuteMinutes: 30}))

	res, err := svc.Search(ctx, "u1", Request{Query: "warehouse"})
	require.NoError(t, err)

	assert.Len(t, res.Jobs, 2)
	assert.False(t, res.Context.IsochroneApplied)
	assert.True(t, res.Context.GeoPrefilterApplied, "coarse radius prune still applies with a home location")
}

func TestSearch_ReviewedJobsExcluded(t *testing.T) {
	ctx := context.Background()
	idx := &fakeIndex{docs: []index.Document{
		{ID: "j-1", Title: "Picker"},
		{ID: "j-2", Title: "Packer"},
		{ID: "j-3", Title: "Loader"},
	}}
	svc, st := newTestService(t, idx)

	require.NoError(t, st.MarkReviewed(ctx, "u1", []string{"j-2"}))

	res, err := svc.Search(ctx, "u1", Request{Query: "warehouse"})
	require.NoError(t, err)

	ids := make([]string, 0, len(res.Jobs))
	for _, j := range res.Jobs {
		ids = append(ids, j.ID)
	}
	assert.Equal(t, []string{"j-1", "j-3"}, ids)
}

func TestSearch_TruncatesAfterFiltering(t *testing.T) {
	ctx := context.Background()
	idx := &fakeIndex{}
	for i := 0; i < 12; i++ {
		idx.docs = append(idx.docs, index.Document{ID: string(rune('a' + i)), Title: "Job"})
	}
	svc, st := newTestService(t, idx)

	// Reviewing the first two must not shrink the page below the limit
	// while unseen matches remain.
	require.NoError(t, st.MarkReviewed(ctx, "u1", []string{"a", "b"}))

	res, err := svc.Search(ctx, "u1", Request{Query: "job", Limit: 5})
	require.NoError(t, err)

	assert.Len(t, res.Jobs, 5)
	assert.Equal(t, "c", res.Jobs[0].ID)
	assert.Equal(t, 5*engine.Cfg.OverFetchFactor, idx.lastQ.Limit, "index query over-fetches ahead of local filtering")
}

func TestSearch_TotalFoundDistinguishesFilteredFromNone(t *testing.T) {
	ctx := context.Background()
	idx := &fakeIndex{docs: []index.Document{{ID: "j-1", Title: "Picker"}}}
	svc, st := newTestService(t, idx)

	require.NoError(t, st.MarkReviewed(ctx, "u1", []string{"j-1"}))

	res, err := svc.Search(ctx, "u1", Request{Query: "warehouse"})
	require.NoError(t, err)

	assert.Empty(t, res.Jobs)
	assert.Equal(t, 1, res.Context.TotalFound, "matches existed; they were filtered, not absent")

	idx.docs = nil
	res, err = svc.Search(ctx, "u1", Request{Query: "warehouse"})
	require.NoError(t, err)
	assert.Empty(t, res.Jobs)
	assert.Zero(t, res.Context.TotalFound)
}

func TestSearch_ShiftUnionIsORMatched(t *testing.T) {
	ctx := context.Background()
	idx := &fakeIndex{docs: []index.Document{
		{ID: "m", Title: "Morning", ShiftMorning: true},
		{ID: "e", Title: "Evening", ShiftEvening: true},
		{ID: "o", Title: "Overnight", ShiftOvernight: true},
	}}
	svc, st := newTestService(t, idx)

	require.NoError(t, st.SavePreferences(ctx, "u1", &store.JobPreferences{ShiftMorning: true}))

	res, err := svc.Search(ctx, "u1", Request{
		Query:   "any",
		Filters: ExplicitFilters{Shifts: []string{"evening"}},
	})
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, j := range res.Jobs {
		ids[j.ID] = true
	}
	assert.True(t, ids["m"], "stored morning preference survives the union")
	assert.True(t, ids["e"], "explicit evening request survives the union")
	assert.False(t, ids["o"])
	assert.Equal(t, []string{"evening", "morning"}, res.Context.Shifts)
}

func TestSearch_MissingCoordinatesExcludedUnderIsochrone(t *testing.T) {
	ctx := context.Background()
	idx := &fakeIndex{docs: []index.Document{
		jobAt("located", 37.80, -122.27),
		{ID: "nowhere", Title: "Mystery Job"}, // no coordinates
	}}
	svc, st := newTestService(t, idx)

	require.NoError(t, st.SaveHomeLocation(ctx, "u1", geo.Coordinates{Lat: 37.80, Lon: -122.27}))
	require.NoError(t, st.SaveIsochrones(ctx, "u1", &geo.IsochroneSet{
		Tier30: squareCollection(-122.35, 37.70, -122.15, 37.90),
	}))
	require.NoError(t, st.SavePreferences(ctx, "u1", &store.JobPreferences{RequireRail: true}))

	res, err := svc.Search(ctx, "u1", Request{Query: "warehouse"})
	require.NoError(t, err)

	require.Len(t, res.Jobs, 1)
	assert.Equal(t, "located", res.Jobs[0].ID)
}

func TestSearch_ProvenanceIsDeterministic(t *testing.T) {
	ctx := context.Background()
	idx := &fakeIndex{docs: []index.Document{{ID: "j-1", Title: "Picker"}}}
	svc, st := newTestService(t, idx)

	require.NoError(t, st.SavePreferences(ctx, "u1", &store.JobPreferences{
		RequireBus:   true,
		ShiftEvening: true,
	}))

	req := Request{Query: "warehouse", Limit: 4}
	first, err := svc.Search(ctx, "u1", req)
	require.NoError(t, err)
	second, err := svc.Search(ctx, "u1", req)
	require.NoError(t, err)

	assert.Equal(t, anyJSON(t, first.Context), anyJSON(t, second.Context))
	assert.Equal(t, "warehouse", first.Context.Query)
	assert.Equal(t, 4, first.Context.Limit)
}

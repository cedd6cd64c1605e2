// Package geo implements transit-reachability filtering against
// precomputed isochrone polygons.
package geo

import (
	"log/slog"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Coordinates is a stored location in (latitude, longitude) order.
// The geometry library expects (longitude, latitude); the swap happens
// only inside this package.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Tier is a travel-time tier in minutes.
type Tier int

const (
	Tier10 Tier = 10
	Tier30 Tier = 30
	Tier60 Tier = 60
)

// NearestTier snaps an arbitrary commute-minutes preference onto a tier.
func NearestTier(minutes int) Tier {
	switch {
	case minutes <= 10:
		return Tier10
	case minutes <= 30:
		return Tier30
	default:
		return Tier60
	}
}

// IsochroneSet holds the three independent per-tier polygon collections for
// one origin. Computed asynchronously by an external collaborator after a
// location update; read-only here.
type IsochroneSet struct {
	Tier10     *geojson.FeatureCollection `json:"tier10,omitempty"`
	Tier30     *geojson.FeatureCollection `json:"tier30,omitempty"`
	Tier60     *geojson.FeatureCollection `json:"tier60,omitempty"`
	ComputedAt time.Time                  `json:"computedAt"`
}

// ForTier returns the feature collection for the given tier (may be nil).
func (s *IsochroneSet) ForTier(tier Tier) *geojson.FeatureCollection {
	if s == nil {
		return nil
	}
	switch tier {
	case Tier10:
		return s.Tier10
	case Tier30:
		return s.Tier30
	default:
		return s.Tier60
	}
}

// Contains reports whether c lies inside at least one polygon feature of the
// selected tier. An absent or empty tier collection never matches here;
// FilterByIsochrone applies the open policy for that case.
func (s *IsochroneSet) Contains(tier Tier, c Coordinates) bool {
	fc := s.ForTier(tier)
	if fc == nil {
		return false
	}
	pt := orb.Point{c.Lon, c.Lat}
	for _, f := range fc.Features {
		if featureContains(f, pt) {
			return true
		}
	}
	return false
}

// featureContains tests one feature. A malformed feature is treated as
// non-matching rather than aborting the whole filter.
func featureContains(f *geojson.Feature, pt orb.Point) (inside bool) {
	if f == nil || f.Geometry == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("geo: malformed isochrone feature skipped", slog.Any("reason", r))
			inside = false
		}
	}()
	switch g := f.Geometry.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, pt)
	default:
		return false
	}
}

// FilterByIsochrone returns the subset of candidates reachable within the
// selected tier. coord extracts a candidate's stored (lat, lon) position.
//
// Two deliberately asymmetric edge policies:
//   - a candidate with missing coordinates is excluded (its reachability
//     cannot be verified);
//   - an absent or empty tier collection passes every candidate through
//     (unknown reachability of the user must not block jobs).
//
// Pure function: inputs are never mutated.
func FilterByIsochrone[T any](candidates []T, coord func(T) *Coordinates, set *IsochroneSet, tier Tier) []T {
	fc := set.ForTier(tier)
	if fc == nil || len(fc.Features) == 0 {
		return candidates
	}

	out := make([]T, 0, len(candidates))
	for _, cand := range candidates {
		c := coord(cand)
		if c == nil {
			continue
		}
		if set.Contains(tier, *c) {
			out = append(out, cand)
		}
	}
	return out
}

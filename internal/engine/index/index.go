// Package index is the client for the external full-text + geo search
// index. The index is an opaque collaborator: this core only queries it
// and never writes to it (ingestion is owned by the crawling pipeline).
package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/openchance/jobmatch/internal/engine"
	"github.com/openchance/jobmatch/internal/engine/geo"
)

// Document is one searchable job record as stored in the index.
// Immutable from this core's perspective.
type Document struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Company     string           `json:"company"`
	Coordinates *geo.Coordinates `json:"coordinates,omitempty"`
	City        string           `json:"city,omitempty"`
	State       string           `json:"state,omitempty"`
	Description string           `json:"description,omitempty"`

	SalaryMin  *float64 `json:"salaryMin,omitempty"`
	SalaryMax  *float64 `json:"salaryMax,omitempty"`
	SalaryUnit string   `json:"salaryUnit,omitempty"`

	SecondChance     bool   `json:"secondChance"`
	SecondChanceTier string `json:"secondChanceTier,omitempty"`

	ShiftMorning   bool `json:"shiftMorning"`
	ShiftAfternoon bool `json:"shiftAfternoon"`
	ShiftEvening   bool `json:"shiftEvening"`
	ShiftOvernight bool `json:"shiftOvernight"`
	ShiftFlexible  bool `json:"shiftFlexible"`

	BusAccessible  bool `json:"busAccessible"`
	RailAccessible bool `json:"railAccessible"`

	Urgent    bool   `json:"urgent"`
	EasyApply bool   `json:"easyApply"`
	ApplyURL  string `json:"applyUrl,omitempty"`
}

// Shifts derives the job's shift list from its boolean facets.
func (d *Document) Shifts() []string {
	var out []string
	if d.ShiftMorning {
		out = append(out, "morning")
	}
	if d.ShiftAfternoon {
		out = append(out, "afternoon")
	}
	if d.ShiftEvening {
		out = append(out, "evening")
	}
	if d.ShiftOvernight {
		out = append(out, "overnight")
	}
	if d.ShiftFlexible {
		out = append(out, "flexible")
	}
	return out
}

// MatchesAnyShift reports whether the job covers at least one of the wanted
// shifts (OR semantics). An empty wanted list matches everything.
func (d *Document) MatchesAnyShift(wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	have := make(map[string]bool)
	for _, s := range d.Shifts() {
		have[s] = true
	}
	for _, s := range wanted {
		if have[s] {
			return true
		}
	}
	return false
}

// FacetFilters are the boolean/value facets sent with a query.
// Nil pointer = facet not constrained.
type FacetFilters struct {
	SecondChance   *bool    `json:"secondChance,omitempty"`
	City           string   `json:"city,omitempty"`
	State          string   `json:"state,omitempty"`
	BusAccessible  *bool    `json:"busAccessible,omitempty"`
	RailAccessible *bool    `json:"railAccessible,omitempty"`
	Urgent         *bool    `json:"urgent,omitempty"`
	EasyApply      *bool    `json:"easyApply,omitempty"`
	Shifts         []string `json:"shifts,omitempty"` // OR-matched by the index
}

// Query is one index search request.
type Query struct {
	Text     string           `json:"q"`
	Limit    int              `json:"limit"`
	Facets   FacetFilters     `json:"facets"`
	Around   *geo.Coordinates `json:"around,omitempty"` // coarse radius prune only
	RadiusKM float64          `json:"radiusKm,omitempty"`
}

// Result is a decoded index response. Found counts matches before the
// limit was applied; malformed hits are skipped, not fatal.
type Result struct {
	Found int
	Docs  []Document
}

// wireResult keeps hits raw so a single malformed document can be skipped.
type wireResult struct {
	Found int               `json:"found"`
	Hits  []json.RawMessage `json:"hits"`
}

// Client talks to the search index HTTP API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an index client. rps bounds client-side query rate;
// rps <= 0 disables limiting.
func NewClient(baseURL, apiKey string, rps float64, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &Client{baseURL: baseURL, apiKey: apiKey, http: httpClient, limiter: limiter}
}

// Search runs one query against the index. Upstream failures surface as
// errors, never masked as zero results.
func (c *Client) Search(ctx context.Context, q Query) (*Result, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	engine.IncrIndexQueries()

	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("index: encode query: %w", err)
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/jobs/search", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		return c.http.Do(req)
	})
	if err != nil {
		engine.IncrIndexErrors()
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		engine.IncrIndexErrors()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("index: search: status %d: %s", resp.StatusCode, string(b))
	}

	var wire wireResult
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		engine.IncrIndexErrors()
		return nil, fmt.Errorf("index: decode response: %w", err)
	}

	return decodeHits(wire), nil
}

// decodeHits parses raw hits, skipping individually malformed documents.
func decodeHits(wire wireResult) *Result {
	out := &Result{Found: wire.Found, Docs: make([]Document, 0, len(wire.Hits))}
	for i, raw := range wire.Hits {
		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			slog.Warn("index: malformed hit skipped", slog.Int("hit", i), slog.Any("error", err))
			continue
		}
		if doc.ID == "" {
			slog.Warn("index: hit without id skipped", slog.Int("hit", i))
			continue
		}
		out.Docs = append(out.Docs, doc)
	}
	return out
}

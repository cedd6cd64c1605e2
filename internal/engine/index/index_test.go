package index

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearch_DecodesHits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/jobs/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var q Query
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			t.Fatalf("decode query: %v", err)
		}
		if q.Text != "forklift" || q.Limit != 24 {
			t.Errorf("query not forwarded: %+v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"found": 3,
			"hits": [
				{"id": "j1", "title": "Forklift Operator", "company": "Acme", "shiftMorning": true, "busAccessible": true},
				{"id": "j2", "title": "Picker", "company": "Brix"},
				"not-an-object",
				{"title": "missing id"}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", 0, srv.Client())
	res, err := c.Search(context.Background(), Query{Text: "forklift", Limit: 24})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if res.Found != 3 {
		t.Errorf("Found = %d, want 3", res.Found)
	}
	// Malformed hit and id-less hit are skipped, not fatal.
	if len(res.Docs) != 2 || res.Docs[0].ID != "j1" || res.Docs[1].ID != "j2" {
		t.Errorf("Docs = %+v", res.Docs)
	}
}

func TestSearch_UpstreamErrorIsNotZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 0, srv.Client())
	_, err := c.Search(context.Background(), Query{Text: "x"})
	if err == nil {
		t.Fatal("expected error for upstream failure, got nil")
	}
}

func TestSearch_RetriesRetryableStatus(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"found": 0, "hits": []}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 0, srv.Client())
	res, err := c.Search(context.Background(), Query{Text: "x"})
	if err != nil {
		t.Fatalf("Search error after retry: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	if res.Found != 0 || len(res.Docs) != 0 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestDocument_Shifts(t *testing.T) {
	d := &Document{ShiftMorning: true, ShiftOvernight: true}
	got := d.Shifts()
	if len(got) != 2 || got[0] != "morning" || got[1] != "overnight" {
		t.Errorf("Shifts() = %v", got)
	}
}

func TestDocument_MatchesAnyShift(t *testing.T) {
	d := &Document{ShiftEvening: true}
	cases := []struct {
		wanted []string
		want   bool
	}{
		{nil, true}, // no constraint
		{[]string{"evening"}, true},
		{[]string{"morning", "evening"}, true}, // OR, not AND
		{[]string{"morning"}, false},
	}
	for _, tc := range cases {
		if got := d.MatchesAnyShift(tc.wanted); got != tc.want {
			t.Errorf("MatchesAnyShift(%v) = %v, want %v", tc.wanted, got, tc.want)
		}
	}
}

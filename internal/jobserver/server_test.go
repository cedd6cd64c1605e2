package jobserver

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/openchance/jobmatch/internal/engine"
	"github.com/openchance/jobmatch/internal/engine/auth"
	"github.com/openchance/jobmatch/internal/engine/index"
	"github.com/openchance/jobmatch/internal/engine/search"
	"github.com/openchance/jobmatch/internal/engine/store"
)

type fakeIndex struct {
	docs    []index.Document
	queries int
}

func (f *fakeIndex) Search(_ context.Context, _ index.Query) (*index.Result, error) {
	f.queries++
	docs := make([]index.Document, len(f.docs))
	copy(docs, f.docs)
	return &index.Result{Found: len(docs), Docs: docs}, nil
}

func newTestDeps(t *testing.T, idx *fakeIndex) Deps {
	t.Helper()
	engine.Init(engine.Config{})
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "tools.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return Deps{Search: search.NewService(idx, st), Store: st}
}

func authedCtx(userID string) context.Context {
	return auth.WithUser(context.Background(), userID)
}

func TestSearchJobs_RejectsUnauthenticatedBeforeQuery(t *testing.T) {
	idx := &fakeIndex{docs: []index.Document{{ID: "j-1", Title: "Picker"}}}
	d := newTestDeps(t, idx)

	_, err := searchJobs(context.Background(), d, SearchJobsInput{Query: "warehouse"})
	if !errors.Is(err, auth.ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
	if idx.queries != 0 {
		t.Fatalf("index queried %d times before auth check", idx.queries)
	}
}

func TestSearchJobs_RequiresQuery(t *testing.T) {
	d := newTestDeps(t, &fakeIndex{})
	if _, err := searchJobs(authedCtx("u1"), d, SearchJobsInput{Query: "  "}); err == nil {
		t.Fatal("empty query must be rejected")
	}
}

func TestSearchJobs_MarksResultsReviewed(t *testing.T) {
	idx := &fakeIndex{docs: []index.Document{
		{ID: "j-1", Title: "Picker"},
		{ID: "j-2", Title: "Packer"},
	}}
	d := newTestDeps(t, idx)
	ctx := authedCtx("u1")

	first, err := searchJobs(ctx, d, SearchJobsInput{Query: "warehouse"})
	if err != nil {
		t.Fatalf("first search: %v", err)
	}
	if len(first.Jobs) != 2 {
		t.Fatalf("first search returned %d jobs, want 2", len(first.Jobs))
	}

	// The same search again surfaces nothing: everything shown is reviewed.
	second, err := searchJobs(ctx, d, SearchJobsInput{Query: "warehouse"})
	if err != nil {
		t.Fatalf("second search: %v", err)
	}
	if len(second.Jobs) != 0 {
		t.Fatalf("second search returned %d jobs, want 0", len(second.Jobs))
	}
	if second.SearchContext.TotalFound != 2 {
		t.Fatalf("TotalFound = %d, want 2 (filtered, not absent)", second.SearchContext.TotalFound)
	}
}

func TestSavePreference_PartialUpdateRoundTrip(t *testing.T) {
	d := newTestDeps(t, &fakeIndex{})
	ctx := authedCtx("u1")

	yes := true
	commute := 30
	out, err := savePreference(ctx, d, SavePreferenceInput{
		ShiftMorning:      &yes,
		MaxCommuteMinutes: &commute,
	})
	if err != nil {
		t.Fatalf("savePreference: %v", err)
	}
	if !out.Saved {
		t.Fatal("saved = false after successful write")
	}
	if len(out.Fields) != 2 {
		t.Fatalf("fields = %v, want 2", out.Fields)
	}
	if !out.Current.ShiftMorning || out.Current.MaxCommuteMinutes != 30 {
		t.Fatalf("current = %+v", out.Current)
	}

	// Second partial write must not disturb the first.
	out, err = savePreference(ctx, d, SavePreferenceInput{RequireBus: &yes})
	if err != nil {
		t.Fatalf("savePreference: %v", err)
	}
	if !out.Current.ShiftMorning || !out.Current.RequireBus {
		t.Fatalf("current = %+v, want morning shift preserved", out.Current)
	}
}

func TestGetPreferences_ReadIsIdempotent(t *testing.T) {
	d := newTestDeps(t, &fakeIndex{})
	ctx := authedCtx("u1")

	yes := true
	commute := 60
	if _, err := savePreference(ctx, d, SavePreferenceInput{
		ShiftEvening:        &yes,
		MaxCommuteMinutes:   &commute,
		RequireSecondChance: &yes,
	}); err != nil {
		t.Fatalf("savePreference: %v", err)
	}

	first, err := getPreferences(ctx, d)
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	second, err := getPreferences(ctx, d)
	if err != nil {
		t.Fatalf("second read: %v", err)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("reads differ with no writes between:\n%s\nvs\n%s", a, b)
	}
	if !first.Present || !first.Preferences.ShiftEvening {
		t.Fatalf("read = %+v", first)
	}
}

func TestSavePreference_ValidatesCommute(t *testing.T) {
	d := newTestDeps(t, &fakeIndex{})
	bad := 45
	if _, err := savePreference(authedCtx("u1"), d, SavePreferenceInput{MaxCommuteMinutes: &bad}); err == nil {
		t.Fatal("commute 45 must be rejected")
	}
}

func TestSavePreference_EmptyUpdateRejected(t *testing.T) {
	d := newTestDeps(t, &fakeIndex{})
	if _, err := savePreference(authedCtx("u1"), d, SavePreferenceInput{}); err == nil {
		t.Fatal("update with no fields must be rejected")
	}
}

func TestTodoWriteRead(t *testing.T) {
	d := newTestDeps(t, &fakeIndex{})
	ctx := authedCtx("u1")

	out, err := todoWrite(ctx, d, TodoWriteInput{Items: []TodoItemInput{
		{Label: "Set home location", Status: "completed"},
		{Label: "Run first search", Status: "in_progress"},
	}})
	if err != nil {
		t.Fatalf("todoWrite: %v", err)
	}
	if len(out.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(out.Items))
	}
	for i, item := range out.Items {
		if item.ID == "" {
			t.Fatalf("item %d missing generated id", i)
		}
	}

	read, err := todoRead(ctx, d, TodoReadInput{})
	if err != nil {
		t.Fatalf("todoRead: %v", err)
	}
	if len(read.Items) != 2 || read.Items[0].Label != "Set home location" {
		t.Fatalf("read = %+v", read.Items)
	}
}

func TestTodoWrite_ValidatesStatus(t *testing.T) {
	d := newTestDeps(t, &fakeIndex{})
	_, err := todoWrite(authedCtx("u1"), d, TodoWriteInput{Items: []TodoItemInput{
		{Label: "x", Status: "someday"},
	}})
	if err == nil {
		t.Fatal("unknown status must be rejected")
	}
}

func TestTodo_ScopedPerUser(t *testing.T) {
	d := newTestDeps(t, &fakeIndex{})

	_, err := todoWrite(authedCtx("u1"), d, TodoWriteInput{Items: []TodoItemInput{
		{Label: "u1 step", Status: "pending"},
	}})
	if err != nil {
		t.Fatalf("todoWrite: %v", err)
	}

	other, err := todoRead(authedCtx("u2"), d, TodoReadInput{})
	if err != nil {
		t.Fatalf("todoRead: %v", err)
	}
	if len(other.Items) != 0 {
		t.Fatalf("u2 sees u1's plan: %+v", other.Items)
	}
}

func TestExecutor_RoutesLooseArgs(t *testing.T) {
	idx := &fakeIndex{docs: []index.Document{{ID: "j-1", Title: "Picker"}}}
	d := newTestDeps(t, idx)
	ex := NewExecutor(d, "thread-1")
	ctx := authedCtx("u1")

	out, err := ex.Execute(ctx, "search_jobs", map[string]any{"query": "warehouse", "limit": float64(3)})
	if err != nil {
		t.Fatalf("Execute(search_jobs): %v", err)
	}
	if _, ok := out["jobs"]; !ok {
		t.Fatalf("output missing jobs: %v", out)
	}

	out, err = ex.Execute(ctx, "ask_question", map[string]any{
		"question": "Which shift?",
		"purpose":  "pick_shift",
		"options":  []any{"morning", "evening"},
	})
	if err != nil {
		t.Fatalf("Execute(ask_question): %v", err)
	}
	if out["kind"] != "question" {
		t.Fatalf("output = %v", out)
	}

	if _, err := ex.Execute(ctx, "nonexistent", nil); err == nil {
		t.Fatal("unknown tool must error")
	}
}

func TestAskQuestion_Validation(t *testing.T) {
	if _, err := askQuestion(AskQuestionInput{Purpose: "p"}); err == nil {
		t.Fatal("empty question must be rejected")
	}
	if _, err := askQuestion(AskQuestionInput{Question: "q"}); err == nil {
		t.Fatal("empty purpose must be rejected")
	}
}

func TestAskQuestion_OptionCountBounds(t *testing.T) {
	base := AskQuestionInput{Question: "Which direction?", Purpose: "pick_direction"}

	opts := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = "choice"
		}
		return out
	}

	for _, n := range []int{1, 9, 20} {
		in := base
		in.Options = opts(n)
		if _, err := askQuestion(in); err == nil {
			t.Errorf("%d options must be rejected", n)
		}
	}
	for _, n := range []int{0, 2, 8} {
		in := base
		in.Options = opts(n)
		if _, err := askQuestion(in); err != nil {
			t.Errorf("%d options rejected: %v", n, err)
		}
	}
}

func TestAskQuestion_CarriesFullPrompt(t *testing.T) {
	out, err := askQuestion(AskQuestionInput{
		Question:      "Which shift works for you?",
		Options:       []string{"morning", "evening"},
		Preamble:      "A few jobs match more than one shift.",
		AllowFreeText: true,
		Purpose:       "pick_shift",
	})
	if err != nil {
		t.Fatalf("askQuestion: %v", err)
	}
	if !out.AllowFreeText || out.Preamble == "" || out.Purpose != "pick_shift" {
		t.Fatalf("prompt dropped fields: %+v", out)
	}
}

func TestAskPreference_Validation(t *testing.T) {
	if _, err := askPreference(AskPreferenceInput{}); err == nil {
		t.Fatal("empty preference must be rejected")
	}
	if _, err := askPreference(AskPreferenceInput{Preference: "favorite_color"}); err == nil {
		t.Fatal("unknown preference must be rejected")
	}
	out, err := askPreference(AskPreferenceInput{Preference: "commute", Context: "before the first search"})
	if err != nil {
		t.Fatalf("askPreference: %v", err)
	}
	if out.Kind != "preference:commute" || out.Reason != "before the first search" {
		t.Fatalf("out = %+v", out)
	}
}

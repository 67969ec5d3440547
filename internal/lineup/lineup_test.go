package lineup

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pressroom/internal/config"
	"pressroom/internal/keyword"
	"pressroom/internal/scoring"
)

var today = time.Date(2026, 10, 16, 6, 0, 0, 0, time.UTC)

func newScheduler() *Scheduler {
	return NewScheduler(config.Default().Lineup, nil)
}

func cand(phrase, category string, score, value float64) Candidate {
	return Candidate{
		Keyword: keyword.Keyword{Phrase: phrase, Category: category},
		Result: scoring.Result{
			Keyword:          keyword.Normalize(phrase),
			Category:         category,
			OpportunityScore: score,
			Value:            scoring.Value{Total: value},
		},
	}
}

func keywords(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Keyword
	}
	return out
}

func TestSelectHonorsCooldown(t *testing.T) {
	pool := []Candidate{
		cand("mesh wifi kit", "networking", 90, 10),
		cand("espresso grinder", "kitchen", 80, 10),
		cand("noise cancelling headphones", "audio", 70, 10),
	}
	history := MapHistory{
		"mesh wifi kit":    today.AddDate(0, 0, -3),
		"espresso grinder": today.AddDate(0, 0, -15),
	}
	got := newScheduler().Select(pool, history, 3, 1, today)
	for _, e := range got {
		if e.Keyword == "mesh wifi kit" {
			t.Fatal("selected keyword inside cooldown window")
		}
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %v", keywords(got))
	}
}

func TestSelectKeywordLastPublishedField(t *testing.T) {
	recent := today.AddDate(0, 0, -1)
	c := cand("smart doorbell", "smart-home", 99, 1)
	c.Keyword.LastPublished = &recent
	got := newScheduler().Select([]Candidate{c, cand("usb c dock", "computing", 10, 1)}, nil, 2, 1, today)
	if len(got) != 1 || got[0].Keyword != "usb c dock" {
		t.Fatalf("expected only usb c dock, got %v", keywords(got))
	}
}

func TestSelectCooldownUsesLaterOfFieldAndHistory(t *testing.T) {
	stale := today.AddDate(0, 0, -40)
	c := cand("robot vacuum", "smart-home", 90, 1)
	c.Keyword.LastPublished = &stale
	history := MapHistory{"robot vacuum": today.AddDate(0, 0, -2)}

	got := newScheduler().Select([]Candidate{c, cand("usb c dock", "computing", 10, 1)}, history, 2, 1, today)
	if len(got) != 1 || got[0].Keyword != "usb c dock" {
		t.Fatalf("expected history record to keep robot vacuum in cooldown, got %v", keywords(got))
	}
	if c.Keyword.LastPublished != &stale {
		t.Fatal("Select must not mutate the caller's keyword")
	}
}

func TestSelectLogsIntentTerms(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := NewScheduler(config.Default().Lineup, logger)

	c := cand("best budget earbuds", "audio", 80, 1)
	c.Keyword.IntentTerms = []string{"best", "budget"}
	if got := s.Select([]Candidate{c}, nil, 2, 1, today); len(got) != 1 {
		t.Fatalf("expected one entry, got %v", keywords(got))
	}
	if !strings.Contains(buf.String(), `"intent_terms":"best,budget"`) {
		t.Fatalf("expected intent terms in selection log, got %s", buf.String())
	}
}

func TestSelectShortListInsteadOfRelaxingCooldown(t *testing.T) {
	pool := []Candidate{cand("router setup", "networking", 50, 1)}
	got := newScheduler().Select(pool, MapHistory{}, 4, 1, today)
	if len(got) != 1 {
		t.Fatalf("expected short lineup of 1, got %d", len(got))
	}
	if got := newScheduler().Select(nil, nil, 3, 1, today); len(got) != 0 {
		t.Fatalf("expected empty lineup, got %v", keywords(got))
	}
}

func TestSelectOrderingAndTies(t *testing.T) {
	pool := []Candidate{
		cand("zeta speaker", "audio", 60, 5),
		cand("alpha monitor", "computing", 70, 5),
		cand("beta kettle", "kitchen", 70, 9),
		cand("gamma router", "networking", 70, 9),
	}
	got := newScheduler().Select(pool, nil, 4, 1, today)
	want := []string{"beta kettle", "gamma router", "alpha monitor", "zeta speaker"}
	if fmt.Sprint(keywords(got)) != fmt.Sprint(want) {
		t.Fatalf("order = %v, want %v", keywords(got), want)
	}
}

func TestSelectCategoryCapAndRelaxation(t *testing.T) {
	pool := []Candidate{
		cand("audio one", "audio", 95, 1),
		cand("audio two", "audio", 94, 1),
		cand("audio three", "audio", 93, 1),
		cand("kitchen one", "kitchen", 50, 1),
	}
	got := newScheduler().Select(pool, nil, 3, 1, today)
	want := []string{"audio one", "kitchen one", "audio two"}
	if fmt.Sprint(keywords(got)) != fmt.Sprint(want) {
		t.Fatalf("got %v, want %v", keywords(got), want)
	}

	// With another category available the cap holds.
	pool = append(pool, cand("router one", "networking", 10, 1))
	got = newScheduler().Select(pool, nil, 3, 1, today)
	want = []string{"audio one", "kitchen one", "router one"}
	if fmt.Sprint(keywords(got)) != fmt.Sprint(want) {
		t.Fatalf("got %v, want %v", keywords(got), want)
	}
}

func TestSelectRelaxesOneSlotAtATime(t *testing.T) {
	pool := []Candidate{
		cand("a1", "audio", 99, 1), cand("a2", "audio", 98, 1), cand("a3", "audio", 97, 1),
		cand("k1", "kitchen", 50, 1), cand("k2", "kitchen", 49, 1),
	}
	got := newScheduler().Select(pool, nil, 4, 1, today)
	counts := map[string]int{}
	for _, e := range got {
		counts[e.Category]++
	}
	if counts["audio"] != 2 || counts["kitchen"] != 2 {
		t.Fatalf("expected 2 per category after one relaxation, got %v", counts)
	}
}

func TestSelectTargetBounds(t *testing.T) {
	var pool []Candidate
	for i := 0; i < 8; i++ {
		pool = append(pool, cand(fmt.Sprintf("kw %d", i), fmt.Sprintf("cat%d", i), float64(100-i), 1))
	}
	s := newScheduler()
	if got := s.Select(pool, nil, 9, 1, today); len(got) != 4 {
		t.Fatalf("target above max should clamp to 4, got %d", len(got))
	}
	if got := s.Select(pool, nil, 0, 1, today); len(got) != 2 {
		t.Fatalf("target below min should clamp to 2, got %d", len(got))
	}
}

func TestScenarioKeywordLandsInTopThree(t *testing.T) {
	w := scoring.DefaultWeights()
	kScore := scoring.Composite(scoring.SubScores{Trend: 0.9, Intent: 0.8, Seasonality: 0.5, Fit: 1.0}, 0.1, w)
	pool := []Candidate{cand("k smart thermostat", "smart-home", kScore, 40)}
	categories := []string{"audio", "kitchen", "networking", "computing", "audio", "kitchen", "networking", "computing", "audio"}
	for i, cat := range categories {
		sub := scoring.SubScores{Trend: 0.5, Intent: 0.4 + float64(i)*0.05, Seasonality: 0.3, Fit: 0.6}
		pool = append(pool, cand(fmt.Sprintf("filler %d", i), cat, scoring.Composite(sub, 0.3, w), 10))
	}
	got := newScheduler().Select(pool, nil, 3, 1, today)
	found := false
	for _, e := range got {
		if e.Keyword == "k smart thermostat" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected K in top 3, got %v", keywords(got))
	}
}

func TestAngleAssignment(t *testing.T) {
	pool := []Candidate{
		cand("sonos arc vs bose", "audio", 90, 1),
		cand("espresso grinder", "kitchen", 80, 1),
		cand("mesh router", "networking", 70, 1),
	}
	got := newScheduler().Select(pool, nil, 3, 1, today)
	if got[0].Angle != AngleComparison {
		t.Fatalf("vs keyword should get comparison, got %s", got[0].Angle)
	}
	if got[1].Angle == got[2].Angle {
		t.Fatalf("round-robin should not repeat angles: %s %s", got[1].Angle, got[2].Angle)
	}
	for _, e := range got {
		if !e.Angle.Valid() {
			t.Fatalf("invalid angle %q", e.Angle)
		}
	}
	again := newScheduler().Select(pool, nil, 3, 1, today)
	for i := range got {
		if got[i] != again[i] {
			t.Fatalf("angle assignment not deterministic: %+v vs %+v", got[i], again[i])
		}
	}
}

func TestDetectAngle(t *testing.T) {
	tests := map[string]Angle{
		"sonos vs bose":              AngleComparison,
		"airpods alternatives":       AngleAlternatives,
		"how to set up mesh wifi":    AngleSetupGuide,
		"ring doorbell not working":  AngleTroubleshooting,
		"best budget earbuds":        AngleBestOf,
		"laptop for video editing":   AngleUseCase,
		"top kettle versus stovetop": AngleComparison,
	}
	for phrase, want := range tests {
		got, ok := DetectAngle(phrase)
		if !ok || got != want {
			t.Errorf("DetectAngle(%q) = %q, %v; want %q", phrase, got, ok, want)
		}
	}
	if _, ok := DetectAngle("espresso grinder"); ok {
		t.Error("plain phrase should not imply an angle")
	}
}

func TestAlternateAngles(t *testing.T) {
	alts := AlternateAngles(Entry{Angle: AngleSetupGuide})
	want := []Angle{AngleTroubleshooting, AngleUseCase, AngleComparison, AngleBestOf, AngleAlternatives}
	if fmt.Sprint(alts) != fmt.Sprint(want) {
		t.Fatalf("AlternateAngles = %v, want %v", alts, want)
	}
}

func TestStoreStageAndRetention(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lineup.json")
	store := NewStore(path, 2)

	old := today.AddDate(0, 0, -5)
	if err := store.Save(old, []Entry{{Keyword: "old", Angle: AngleBestOf}}); err != nil {
		t.Fatal(err)
	}
	entries := []Entry{{Keyword: "mesh router", Category: "networking", Angle: AngleSetupGuide, OpportunityScore: 71.5, EstimatedValue: 42.1}}
	if err := store.Save(today, entries); err != nil {
		t.Fatal(err)
	}

	dates, err := store.Dates()
	if err != nil {
		t.Fatal(err)
	}
	if len(dates) != 1 || dates[0] != "2026-10-16" {
		t.Fatalf("expected only today after retention, got %v", dates)
	}
	got, ok, err := store.Day(today)
	if err != nil || !ok {
		t.Fatalf("Day: ok=%v err=%v", ok, err)
	}
	if got[0] != entries[0] {
		t.Fatalf("round trip mismatch: %+v", got[0])
	}
	for _, query := range []string{"mesh router", "  Mesh ROUTER "} {
		entry, ok, err := store.Find(today, query)
		if err != nil || !ok || entry.Angle != AngleSetupGuide {
			t.Fatalf("Find(%q) = %+v, %v, %v", query, entry, ok, err)
		}
	}
	if _, ok, _ := store.Find(today, "mesh routers"); ok {
		t.Fatal("Find matched a different keyword")
	}
}

func TestStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lineup.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(path, 7).Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

package session

import (
	"fmt"
	"testing"
	"time"

	"aivan/internal/core"
)

func articlesFor(body string) map[core.LanguageVariant]*core.Article {
	article := core.NewArticle(body, core.VariantUK)
	return map[core.LanguageVariant]*core.Article{
		core.VariantUK: &article,
	}
}

func TestAddHistoryCapAndOrder(t *testing.T) {
	s := newSession(DefaultHistoryLimit)

	for i := 0; i < 15; i++ {
		s.AddHistory(fmt.Sprintf("entry %d", i), articlesFor("one two three"), nil)
	}

	history := s.History()
	if len(history) != 10 {
		t.Fatalf("history length = %d, want 10", len(history))
	}
	// Newest first: entries 14 down to 5.
	for i, entry := range history {
		want := fmt.Sprintf("entry %d", 14-i)
		if entry.Title != want {
			t.Errorf("history[%d].Title = %q, want %q", i, entry.Title, want)
		}
	}
}

func TestAddHistoryUpdatesStats(t *testing.T) {
	s := newSession(DefaultHistoryLimit)
	s.AddHistory("first", articlesFor("one two three four"), nil)
	s.AddHistory("second", articlesFor("one two"), nil)

	stats := s.Stats()
	if stats.BlogsGenerated != 2 {
		t.Errorf("BlogsGenerated = %d", stats.BlogsGenerated)
	}
	if stats.TotalWords != 6 {
		t.Errorf("TotalWords = %d", stats.TotalWords)
	}
}

func TestHistoryEntryLookup(t *testing.T) {
	s := newSession(DefaultHistoryLimit)
	entry := s.AddHistory("findable", articlesFor("body text"), []string{"hiring"})

	got, ok := s.HistoryEntry(entry.ID)
	if !ok {
		t.Fatal("entry not found by ID")
	}
	if got.Title != "findable" {
		t.Errorf("Title = %q", got.Title)
	}
	if _, ok := s.HistoryEntry("missing"); ok {
		t.Error("lookup of unknown ID succeeded")
	}
}

func TestNextTitleSequence(t *testing.T) {
	s := newSession(DefaultHistoryLimit)
	for want := 0; want < 4; want++ {
		if got := s.NextTitleSequence(); got != want {
			t.Errorf("NextTitleSequence = %d, want %d", got, want)
		}
	}
}

func TestManagerGetOrCreate(t *testing.T) {
	m := NewManager(DefaultHistoryLimit)

	s1 := m.GetOrCreate("")
	if s1 == nil || s1.ID == "" {
		t.Fatal("no session created")
	}
	s2 := m.GetOrCreate(s1.ID)
	if s2 != s1 {
		t.Error("known ID returned a different session")
	}
	s3 := m.GetOrCreate("unknown-id")
	if s3 == s1 {
		t.Error("unknown ID reused an existing session")
	}
}

func TestManagerEvictsIdleSessions(t *testing.T) {
	m := NewManager(DefaultHistoryLimit)
	clock := time.Now()
	m.now = func() time.Time { return clock }

	idle := m.GetOrCreate("")
	clock = clock.Add(DefaultIdleTimeout / 2)
	active := m.GetOrCreate("")

	// The active session is touched past the idle session's deadline,
	// then the next access sweeps.
	clock = clock.Add(DefaultIdleTimeout/2 + time.Minute)
	if _, ok := m.Get(active.ID); !ok {
		t.Fatal("active session evicted")
	}
	clock = clock.Add(time.Minute)
	m.GetOrCreate("")

	if _, ok := m.Get(idle.ID); ok {
		t.Error("idle session not evicted")
	}
	if _, ok := m.Get(active.ID); !ok {
		t.Error("recently used session evicted")
	}
}

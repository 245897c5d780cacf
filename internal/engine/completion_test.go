package engine

import (
	"testing"

	"github.com/sandeepkv93/questd/internal/model"
)

func TestCompletionsAtMostOnePerDay(t *testing.T) {
	log := model.NewQuestLog("2026-02-10")
	c := NewCompletions(log)

	if !c.Append(model.Completion{QuestID: "a", Date: "2026-02-10", MinutesSpent: 30, XPEarned: 30}) {
		t.Fatalf("expected first append to succeed")
	}
	if c.Append(model.Completion{QuestID: "a", Date: "2026-02-10", MinutesSpent: 5, XPEarned: 5}) {
		t.Fatalf("expected duplicate append to be refused")
	}
	if !c.Append(model.Completion{QuestID: "a", Date: "2026-02-11", MinutesSpent: 10, XPEarned: 10}) {
		t.Fatalf("expected next day append to succeed")
	}
	if len(log.Completions) != 2 {
		t.Fatalf("expected 2 records, got %d", len(log.Completions))
	}
	if rec, ok := c.Find("a", "2026-02-10"); !ok || rec.XPEarned != 30 {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestCompletionsRemoveAndPurge(t *testing.T) {
	log := model.NewQuestLog("2026-02-10")
	c := NewCompletions(log)
	c.Append(model.Completion{QuestID: "a", Date: "2026-02-09", MinutesSpent: 10, XPEarned: 10})
	c.Append(model.Completion{QuestID: "b", Date: "2026-02-09", MinutesSpent: 20, XPEarned: 20})
	c.Append(model.Completion{QuestID: "a", Date: "2026-02-10", MinutesSpent: 30, XPEarned: 30})

	if _, ok := c.Remove("a", "2026-02-08"); ok {
		t.Fatalf("expected nothing removed for unknown day")
	}
	if rec, ok := c.Remove("a", "2026-02-10"); !ok || rec.MinutesSpent != 30 {
		t.Fatalf("unexpected removal %+v %v", rec, ok)
	}
	if c.Done("a", "2026-02-10") {
		t.Fatalf("expected record gone")
	}

	if n := c.Purge("a"); n != 1 {
		t.Fatalf("expected 1 purged, got %d", n)
	}
	if len(c.OnDay("2026-02-09")) != 1 {
		t.Fatalf("expected b to survive purge")
	}
}

func TestCompletionHistory(t *testing.T) {
	log := model.NewQuestLog("2026-02-10")
	c := NewCompletions(log)
	c.Append(model.Completion{QuestID: "a", Date: "2026-02-10", MinutesSpent: 30, XPEarned: 30})
	c.Append(model.Completion{QuestID: "a", Date: "2026-02-08", MinutesSpent: 15, XPEarned: 20})
	c.Append(model.Completion{QuestID: "b", Date: "2026-02-11", MinutesSpent: 99, XPEarned: 99})

	h := c.History("a")
	if h.Count != 2 || h.MinutesSpent != 45 || h.XPEarned != 50 || h.LastDate != "2026-02-10" {
		t.Fatalf("unexpected history %+v", h)
	}
}

package engine

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/sandeepkv93/questd/internal/model"
)

func setupRegistry(t *testing.T, inputs ...QuestInput) (*Registry, *model.QuestLog) {
	t.Helper()
	log := model.NewQuestLog("2026-02-10")
	r := NewRegistry(log)
	for i, in := range inputs {
		id := string(rune('a' + i))
		if _, err := r.Create(id, in, timerBase); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	return r, log
}

func orderOf(t *testing.T, r *Registry) []string {
	t.Helper()
	out := make([]string, 0)
	for i, q := range r.Active() {
		if q.Order != i {
			t.Fatalf("quest %s has order %d at position %d", q.ID, q.Order, i)
		}
		out = append(out, q.ID)
	}
	return out
}

func sameIDs(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestCreateAppliesDefaults(t *testing.T) {
	r, _ := setupRegistry(t)
	q, err := r.Create("a", QuestInput{Name: "  Read  ", EstimateMinutes: est(0)}, time.Now())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.Name != "Read" || q.Category != model.DefaultCategory || q.Schedule != "daily" {
		t.Fatalf("unexpected defaults %+v", q)
	}
	if q.EstimateMinutes != nil || q.Order != 0 {
		t.Fatalf("unexpected estimate/order %+v", q)
	}

	second, err := r.Create("b", QuestInput{Name: "Run", Schedule: "mon-fri", EstimateMinutes: est(20)}, time.Now())
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.Order != 1 || second.Schedule != "mon-fri" || *second.EstimateMinutes != 20 {
		t.Fatalf("unexpected second quest %+v", second)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	r, _ := setupRegistry(t, QuestInput{Name: "Read"})
	if _, err := r.Create("x", QuestInput{Name: "   "}, timerBase); !errors.Is(err, ErrInvalidQuest) {
		t.Fatalf("expected ErrInvalidQuest for blank name, got %v", err)
	}
	if _, err := r.Create("a", QuestInput{Name: "Dup"}, timerBase); !errors.Is(err, ErrInvalidQuest) {
		t.Fatalf("expected ErrInvalidQuest for duplicate id, got %v", err)
	}
}

func TestUpdatePatchesFields(t *testing.T) {
	r, _ := setupRegistry(t, QuestInput{Name: "Read", EstimateMinutes: est(30)})

	name, category := "Read more", "study"
	q, err := r.Update("a", QuestPatch{Name: &name, Category: &category})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if q.Name != name || q.Category != category || *q.EstimateMinutes != 30 {
		t.Fatalf("unexpected quest after patch %+v", q)
	}

	q, err = r.Update("a", QuestPatch{EstimateMinutes: est(-1)})
	if err != nil {
		t.Fatalf("clear estimate: %v", err)
	}
	if q.HasEstimate() {
		t.Fatalf("expected estimate cleared")
	}

	blank := ""
	if _, err := r.Update("a", QuestPatch{Name: &blank}); !errors.Is(err, ErrInvalidQuest) {
		t.Fatalf("expected ErrInvalidQuest, got %v", err)
	}
	if _, err := r.Update("missing", QuestPatch{}); !errors.Is(err, ErrQuestNotFound) {
		t.Fatalf("expected ErrQuestNotFound, got %v", err)
	}
}

func TestArchiveRenumbersActiveList(t *testing.T) {
	r, _ := setupRegistry(t, QuestInput{Name: "A"}, QuestInput{Name: "B"}, QuestInput{Name: "C"})

	if _, err := r.SetArchived("a", true); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if got := orderOf(t, r); !sameIDs(got, []string{"b", "c"}) {
		t.Fatalf("unexpected active order %v", got)
	}
	if archived := r.Archived(); len(archived) != 1 || archived[0].ID != "a" {
		t.Fatalf("unexpected archived list %+v", archived)
	}

	if _, err := r.SetArchived("a", false); err != nil {
		t.Fatalf("unarchive: %v", err)
	}
	if got := orderOf(t, r); !sameIDs(got, []string{"b", "c", "a"}) {
		t.Fatalf("expected unarchived quest at the end, got %v", got)
	}
}

func TestDeleteRenumbers(t *testing.T) {
	r, log := setupRegistry(t, QuestInput{Name: "A"}, QuestInput{Name: "B"}, QuestInput{Name: "C"})
	if _, err := r.Delete("b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(log.Quests) != 2 {
		t.Fatalf("expected 2 quests, got %d", len(log.Quests))
	}
	if got := orderOf(t, r); !sameIDs(got, []string{"a", "c"}) {
		t.Fatalf("unexpected order %v", got)
	}
	if _, err := r.Delete("b"); !errors.Is(err, ErrQuestNotFound) {
		t.Fatalf("expected ErrQuestNotFound, got %v", err)
	}
}

func TestReorderWithinCategory(t *testing.T) {
	r, _ := setupRegistry(t,
		QuestInput{Name: "W1", Category: "work"},
		QuestInput{Name: "H1", Category: "home"},
		QuestInput{Name: "W2", Category: "work"},
		QuestInput{Name: "W3", Category: "work"},
	)
	// a=W1 b=H1 c=W2 d=W3
	r.Reorder("work", []string{"d", "a", "unknown", "b"})
	if got := orderOf(t, r); !sameIDs(got, []string{"d", "a", "b", "c"}) {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestReorderNeverDuplicatesOrders(t *testing.T) {
	categories := []string{"work", "home", "health"}
	inputs := make([]QuestInput, 0, 12)
	for i := 0; i < 12; i++ {
		inputs = append(inputs, QuestInput{Name: "Q", Category: categories[i%len(categories)]})
	}
	r, _ := setupRegistry(t, inputs...)
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		category := categories[rng.Intn(len(categories))]
		var ids []string
		for _, q := range r.Active() {
			if q.Category == category && rng.Intn(2) == 0 {
				ids = append(ids, q.ID)
			}
		}
		rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		r.Reorder(category, ids)

		seen := make(map[int]bool)
		for _, q := range r.Active() {
			if seen[q.Order] {
				t.Fatalf("round %d: duplicate order %d", round, q.Order)
			}
			seen[q.Order] = true
		}
		orderOf(t, r)
	}
}

func TestCategoriesFollowOrder(t *testing.T) {
	r, _ := setupRegistry(t,
		QuestInput{Name: "A", Category: "work"},
		QuestInput{Name: "B"},
		QuestInput{Name: "C", Category: "work"},
	)
	got := r.Categories()
	if !sameIDs(got, []string{"work", model.DefaultCategory}) {
		t.Fatalf("unexpected categories %v", got)
	}
}

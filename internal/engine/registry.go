package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sandeepkv93/questd/internal/model"
)

type QuestInput struct {
	Name            string
	Category        string
	Schedule        string
	EstimateMinutes *int
}

// QuestPatch updates only the non-nil fields. An EstimateMinutes of zero or
// less clears the estimate.
type QuestPatch struct {
	Name            *string
	Category        *string
	Schedule        *string
	EstimateMinutes *int
}

// Registry manages quest definitions and their ordering.
type Registry struct {
	log *model.QuestLog
}

func NewRegistry(log *model.QuestLog) *Registry {
	return &Registry{log: log}
}

func (r *Registry) Create(id string, in QuestInput, now time.Time) (model.Quest, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Quest{}, fmt.Errorf("%w: name is required", ErrInvalidQuest)
	}
	if strings.TrimSpace(id) == "" {
		return model.Quest{}, fmt.Errorf("%w: id is required", ErrInvalidQuest)
	}
	if _, ok := r.index(id); ok {
		return model.Quest{}, fmt.Errorf("%w: duplicate id %q", ErrInvalidQuest, id)
	}
	q := model.Quest{
		ID:              id,
		Name:            name,
		Category:        normalizeCategory(in.Category),
		Schedule:        model.NormalizeSchedule(in.Schedule),
		EstimateMinutes: normalizeEstimate(in.EstimateMinutes),
		Order:           len(r.Active()),
		CreatedAt:       now,
	}
	r.log.Quests = append(r.log.Quests, q)
	return q, nil
}

func (r *Registry) Find(id string) (model.Quest, bool) {
	i, ok := r.index(id)
	if !ok {
		return model.Quest{}, false
	}
	return r.log.Quests[i], true
}

func (r *Registry) Update(id string, patch QuestPatch) (model.Quest, error) {
	i, ok := r.index(id)
	if !ok {
		return model.Quest{}, fmt.Errorf("%w: %s", ErrQuestNotFound, id)
	}
	q := r.log.Quests[i]
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return model.Quest{}, fmt.Errorf("%w: name is required", ErrInvalidQuest)
		}
		q.Name = name
	}
	if patch.Category != nil {
		q.Category = normalizeCategory(*patch.Category)
	}
	if patch.Schedule != nil {
		q.Schedule = model.NormalizeSchedule(*patch.Schedule)
	}
	if patch.EstimateMinutes != nil {
		q.EstimateMinutes = normalizeEstimate(patch.EstimateMinutes)
	}
	r.log.Quests[i] = q
	return q, nil
}

func (r *Registry) SetArchived(id string, archived bool) (model.Quest, error) {
	i, ok := r.index(id)
	if !ok {
		return model.Quest{}, fmt.Errorf("%w: %s", ErrQuestNotFound, id)
	}
	if r.log.Quests[i].Archived != archived {
		r.log.Quests[i].Archived = archived
		if !archived {
			// Unarchived quests rejoin at the end of the list.
			r.log.Quests[i].Order = len(r.Active())
		}
		r.renumber(nil)
	}
	return r.log.Quests[i], nil
}

// Delete removes the quest definition. Callers purge history and timer state.
func (r *Registry) Delete(id string) (model.Quest, error) {
	i, ok := r.index(id)
	if !ok {
		return model.Quest{}, fmt.Errorf("%w: %s", ErrQuestNotFound, id)
	}
	removed := r.log.Quests[i]
	r.log.Quests = append(r.log.Quests[:i], r.log.Quests[i+1:]...)
	r.renumber(nil)
	return removed, nil
}

// Reorder places ids, in the given order, at the position of the category's
// first quest and renumbers the whole active list 0..N-1. Ids that are
// unknown, archived or outside the category are ignored.
func (r *Registry) Reorder(category string, ids []string) {
	category = normalizeCategory(category)
	base := -1
	for _, q := range r.log.Quests {
		if q.Archived || q.Category != category {
			continue
		}
		if base < 0 || q.Order < base {
			base = q.Order
		}
	}
	if base < 0 {
		return
	}

	moved := make(map[string]bool, len(ids))
	next := base
	for _, id := range ids {
		i, ok := r.index(id)
		if !ok || moved[id] {
			continue
		}
		q := &r.log.Quests[i]
		if q.Archived || q.Category != category {
			continue
		}
		q.Order = next
		moved[id] = true
		next++
	}
	r.renumber(moved)
}

// Active returns unarchived quests sorted by order.
func (r *Registry) Active() []model.Quest {
	out := make([]model.Quest, 0, len(r.log.Quests))
	for _, q := range r.log.Quests {
		if !q.Archived {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Archived returns archived quests sorted by name.
func (r *Registry) Archived() []model.Quest {
	out := make([]model.Quest, 0)
	for _, q := range r.log.Quests {
		if q.Archived {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) Categories() []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, q := range r.Active() {
		if !seen[q.Category] {
			seen[q.Category] = true
			out = append(out, q.Category)
		}
	}
	return out
}

// renumber sorts active quests by order, preferring preferred ids on ties,
// and assigns dense orders 0..N-1.
func (r *Registry) renumber(preferred map[string]bool) {
	idx := make([]int, 0, len(r.log.Quests))
	for i, q := range r.log.Quests {
		if !q.Archived {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		qa, qb := r.log.Quests[idx[a]], r.log.Quests[idx[b]]
		if qa.Order != qb.Order {
			return qa.Order < qb.Order
		}
		return preferred[qa.ID] && !preferred[qb.ID]
	})
	for order, i := range idx {
		r.log.Quests[i].Order = order
	}
}

func (r *Registry) index(id string) (int, bool) {
	for i, q := range r.log.Quests {
		if q.ID == id {
			return i, true
		}
	}
	return -1, false
}

func normalizeCategory(raw string) string {
	c := strings.TrimSpace(raw)
	if c == "" {
		return model.DefaultCategory
	}
	return c
}

func normalizeEstimate(v *int) *int {
	if v == nil || *v <= 0 {
		return nil
	}
	est := *v
	return &est
}

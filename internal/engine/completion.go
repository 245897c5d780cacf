package engine

import "github.com/sandeepkv93/questd/internal/model"

// Completions is the per-day completion ledger. It holds at most one record
// per (quest, day).
type Completions struct {
	log *model.QuestLog
}

func NewCompletions(log *model.QuestLog) *Completions {
	return &Completions{log: log}
}

func (c *Completions) Find(questID, day string) (model.Completion, bool) {
	for _, rec := range c.log.Completions {
		if rec.QuestID == questID && rec.Date == day {
			return rec, true
		}
	}
	return model.Completion{}, false
}

func (c *Completions) Done(questID, day string) bool {
	_, ok := c.Find(questID, day)
	return ok
}

// Append records rec unless the quest already has a record for that day.
func (c *Completions) Append(rec model.Completion) bool {
	if c.Done(rec.QuestID, rec.Date) {
		return false
	}
	c.log.Completions = append(c.log.Completions, rec)
	return true
}

func (c *Completions) Remove(questID, day string) (model.Completion, bool) {
	for i, rec := range c.log.Completions {
		if rec.QuestID == questID && rec.Date == day {
			c.log.Completions = append(c.log.Completions[:i], c.log.Completions[i+1:]...)
			return rec, true
		}
	}
	return model.Completion{}, false
}

// Purge drops every record of questID and reports how many were removed.
func (c *Completions) Purge(questID string) int {
	kept := c.log.Completions[:0]
	removed := 0
	for _, rec := range c.log.Completions {
		if rec.QuestID == questID {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	c.log.Completions = kept
	return removed
}

func (c *Completions) OnDay(day string) []model.Completion {
	out := make([]model.Completion, 0)
	for _, rec := range c.log.Completions {
		if rec.Date == day {
			out = append(out, rec)
		}
	}
	return out
}

// History summarises all completions of one quest.
type History struct {
	Count        int
	MinutesSpent int
	XPEarned     int
	LastDate     string
}

func (c *Completions) History(questID string) History {
	var h History
	for _, rec := range c.log.Completions {
		if rec.QuestID != questID {
			continue
		}
		h.Count++
		h.MinutesSpent += rec.MinutesSpent
		h.XPEarned += rec.XPEarned
		if rec.Date > h.LastDate {
			h.LastDate = rec.Date
		}
	}
	return h
}

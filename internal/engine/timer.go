package engine

import (
	"time"

	"github.com/sandeepkv93/questd/internal/model"
)

// Timer is the single-slot focus timer over a TimerState. It enforces that at
// most one quest is active; eligibility checks (archived, completed) live in
// Engine.
type Timer struct {
	state *model.TimerState
}

func NewTimer(state *model.TimerState) *Timer {
	if state.PausedSessions == nil {
		state.PausedSessions = map[string]float64{}
	}
	return &Timer{state: state}
}

func (t *Timer) Active() (string, bool) {
	if t.state.ActiveQuestID == nil {
		return "", false
	}
	return *t.state.ActiveQuestID, true
}

// Start makes questID the active quest. A quest already running, including
// questID itself, is paused first so its elapsed time is banked.
func (t *Timer) Start(questID string, now time.Time) {
	t.AutoPause(now)
	id := questID
	start := now
	t.state.ActiveQuestID = &id
	t.state.StartTime = &start
}

// Pause banks the live elapsed time of questID. It is a no-op unless questID
// is the active quest.
func (t *Timer) Pause(questID string, now time.Time) bool {
	active, ok := t.Active()
	if !ok || active != questID {
		return false
	}
	t.state.PausedSessions[questID] += t.ElapsedMinutes(now)
	t.state.ActiveQuestID = nil
	t.state.StartTime = nil
	return true
}

func (t *Timer) Resume(questID string, now time.Time) {
	t.Start(questID, now)
}

// ElapsedMinutes is the live time of the active quest, never negative.
func (t *Timer) ElapsedMinutes(now time.Time) float64 {
	if t.state.ActiveQuestID == nil || t.state.StartTime == nil {
		return 0
	}
	elapsed := now.Sub(*t.state.StartTime).Minutes()
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func (t *Timer) TotalMinutes(questID string, now time.Time) float64 {
	total := t.state.PausedSessions[questID]
	if t.state.IsRunning(questID) {
		total += t.ElapsedMinutes(now)
	}
	return total
}

// AutoPause pauses whatever quest is running and reports which one it was.
func (t *Timer) AutoPause(now time.Time) (string, bool) {
	active, ok := t.Active()
	if !ok {
		return "", false
	}
	t.Pause(active, now)
	return active, true
}

// Recover folds a timer left running across a restart into its paused
// bucket. When capMinutes > 0 the recovered interval is limited to it.
func (t *Timer) Recover(now time.Time, capMinutes float64) (string, float64, bool) {
	active, ok := t.Active()
	if !ok {
		return "", 0, false
	}
	elapsed := t.ElapsedMinutes(now)
	if capMinutes > 0 && elapsed > capMinutes {
		elapsed = capMinutes
	}
	t.state.PausedSessions[active] += elapsed
	t.state.ActiveQuestID = nil
	t.state.StartTime = nil
	return active, elapsed, true
}

// Discard forgets all tracked time for questID.
func (t *Timer) Discard(questID string) {
	if t.state.IsRunning(questID) {
		t.state.ActiveQuestID = nil
		t.state.StartTime = nil
	}
	delete(t.state.PausedSessions, questID)
}

func (t *Timer) Reset() {
	t.state.ActiveQuestID = nil
	t.state.StartTime = nil
	t.state.PausedSessions = map[string]float64{}
}

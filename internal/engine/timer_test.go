package engine

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/sandeepkv93/questd/internal/model"
)

var timerBase = time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

func TestStartingSecondQuestPausesFirst(t *testing.T) {
	st := &model.TimerState{}
	tm := NewTimer(st)

	tm.Start("a", timerBase)
	tm.Start("b", timerBase.Add(10*time.Minute))

	if active, ok := tm.Active(); !ok || active != "b" {
		t.Fatalf("expected b active, got %q", active)
	}
	if got := st.PausedSessions["a"]; got != 10 {
		t.Fatalf("expected 10 banked minutes for a, got %v", got)
	}
	if got := tm.TotalMinutes("b", timerBase.Add(25*time.Minute)); got != 15 {
		t.Fatalf("expected 15 live minutes for b, got %v", got)
	}
}

func TestPauseIsNoOpForInactiveQuest(t *testing.T) {
	st := &model.TimerState{}
	tm := NewTimer(st)
	tm.Start("a", timerBase)

	if tm.Pause("b", timerBase.Add(time.Minute)) {
		t.Fatalf("expected pause of inactive quest to be a no-op")
	}
	if active, _ := tm.Active(); active != "a" {
		t.Fatalf("expected a to keep running")
	}
	if !tm.Pause("a", timerBase.Add(5*time.Minute)) {
		t.Fatalf("expected pause of active quest")
	}
	if st.ActiveQuestID != nil || st.StartTime != nil {
		t.Fatalf("expected idle timer after pause")
	}
}

func TestResumeAccumulates(t *testing.T) {
	tm := NewTimer(&model.TimerState{})
	tm.Start("a", timerBase)
	tm.Pause("a", timerBase.Add(10*time.Minute))
	tm.Resume("a", timerBase.Add(30*time.Minute))
	if got := tm.TotalMinutes("a", timerBase.Add(35*time.Minute)); got != 15 {
		t.Fatalf("expected 15 total minutes, got %v", got)
	}
}

func TestElapsedNeverNegative(t *testing.T) {
	tm := NewTimer(&model.TimerState{})
	if got := tm.ElapsedMinutes(timerBase); got != 0 {
		t.Fatalf("expected 0 when idle, got %v", got)
	}
	tm.Start("a", timerBase)
	if got := tm.ElapsedMinutes(timerBase.Add(-5 * time.Minute)); got != 0 {
		t.Fatalf("expected clock skew to clamp to 0, got %v", got)
	}
}

func TestSingleTimerAndNoLostTime(t *testing.T) {
	st := &model.TimerState{}
	tm := NewTimer(st)
	ids := []string{"a", "b", "c", "d"}
	rng := rand.New(rand.NewSource(7))

	now := timerBase
	busy := 0.0
	for step := 0; step < 500; step++ {
		advance := time.Duration(1+rng.Intn(5)) * time.Minute
		if _, running := tm.Active(); running {
			busy += advance.Minutes()
		}
		now = now.Add(advance)

		id := ids[rng.Intn(len(ids))]
		switch rng.Intn(3) {
		case 0:
			tm.Start(id, now)
		case 1:
			tm.Pause(id, now)
		case 2:
			tm.Resume(id, now)
		}

		if (st.ActiveQuestID == nil) != (st.StartTime == nil) {
			t.Fatalf("step %d: active id and start time out of sync", step)
		}
		running := 0
		for _, q := range ids {
			if st.IsRunning(q) {
				running++
			}
		}
		if running > 1 {
			t.Fatalf("step %d: %d quests running", step, running)
		}

		tracked := tm.ElapsedMinutes(now)
		for _, minutes := range st.PausedSessions {
			tracked += minutes
		}
		if math.Abs(tracked-busy) > 1e-9 {
			t.Fatalf("step %d: tracked %v minutes, expected %v", step, tracked, busy)
		}
	}
}

func TestAutoPause(t *testing.T) {
	st := &model.TimerState{}
	tm := NewTimer(st)
	if _, ok := tm.AutoPause(timerBase); ok {
		t.Fatalf("expected nothing to pause")
	}
	tm.Start("a", timerBase)
	id, ok := tm.AutoPause(timerBase.Add(20 * time.Minute))
	if !ok || id != "a" {
		t.Fatalf("expected a to be auto-paused, got %q %v", id, ok)
	}
	if st.PausedSessions["a"] != 20 {
		t.Fatalf("expected 20 banked minutes, got %v", st.PausedSessions["a"])
	}
}

func TestRecoverFoldsElapsedTime(t *testing.T) {
	start := timerBase
	id := "a"
	st := &model.TimerState{ActiveQuestID: &id, StartTime: &start, PausedSessions: map[string]float64{"a": 5}}
	tm := NewTimer(st)

	got, minutes, ok := tm.Recover(timerBase.Add(10*time.Hour), 0)
	if !ok || got != "a" || minutes != 600 {
		t.Fatalf("unexpected recovery %q %v %v", got, minutes, ok)
	}
	if st.ActiveQuestID != nil || st.PausedSessions["a"] != 605 {
		t.Fatalf("expected idle timer with 605 banked minutes, got %+v", st)
	}
	if _, _, ok := tm.Recover(timerBase.Add(11*time.Hour), 0); ok {
		t.Fatalf("expected nothing to recover on idle timer")
	}
}

func TestRecoverHonorsCap(t *testing.T) {
	start := timerBase
	id := "a"
	st := &model.TimerState{ActiveQuestID: &id, StartTime: &start}
	tm := NewTimer(st)

	_, minutes, ok := tm.Recover(timerBase.Add(10*time.Hour), 120)
	if !ok || minutes != 120 || st.PausedSessions["a"] != 120 {
		t.Fatalf("expected capped recovery of 120, got %v", minutes)
	}
}

func TestDiscardAndReset(t *testing.T) {
	st := &model.TimerState{}
	tm := NewTimer(st)
	tm.Start("a", timerBase)
	tm.Start("b", timerBase.Add(5*time.Minute))

	tm.Discard("b")
	if _, ok := tm.Active(); ok {
		t.Fatalf("expected discarding the running quest to stop the timer")
	}
	if st.PausedSessions["a"] != 5 {
		t.Fatalf("expected a's bucket to survive, got %v", st.PausedSessions["a"])
	}

	tm.Reset()
	if len(st.PausedSessions) != 0 || st.ActiveQuestID != nil {
		t.Fatalf("expected empty timer after reset, got %+v", st)
	}
}

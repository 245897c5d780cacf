package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestQuestValidate(t *testing.T) {
	if err := (Quest{Name: "Read"}).Validate(); !errors.Is(err, ErrEmptyQuestID) {
		t.Fatalf("expected ErrEmptyQuestID, got %v", err)
	}
	if err := (Quest{ID: "q1", Name: "  "}).Validate(); !errors.Is(err, ErrEmptyQuestName) {
		t.Fatalf("expected ErrEmptyQuestName, got %v", err)
	}
	if err := (Quest{ID: "q1", Name: "Read"}).Validate(); err != nil {
		t.Fatalf("unexpected validate error: %v", err)
	}
}

func TestQuestHasEstimate(t *testing.T) {
	if (Quest{}).HasEstimate() {
		t.Fatal("quest without estimate reported one")
	}
	if (Quest{EstimateMinutes: intPtr(0)}).HasEstimate() {
		t.Fatal("zero estimate should count as flat XP")
	}
	if !(Quest{EstimateMinutes: intPtr(30)}).HasEstimate() {
		t.Fatal("expected estimate to be reported")
	}
}

func TestNewQuestLogDefaults(t *testing.T) {
	l := NewQuestLog("2026-02-09")
	if l.Player.Level != 1 || l.Player.XP != 0 {
		t.Fatalf("unexpected player defaults: %+v", l.Player)
	}
	if l.TimerState.PausedSessions == nil || l.Quests == nil || l.Completions == nil {
		t.Fatalf("expected initialized collections: %+v", l)
	}
	if l.Day != "2026-02-09" {
		t.Fatalf("unexpected day %q", l.Day)
	}
}

func TestQuestLogNormalizeRepairsDecodedRecord(t *testing.T) {
	raw := `{
		"quests": [
			{"id": "q1", "name": "Read", "category": "", "schedule": "", "estimateMinutes": -5, "order": 0},
			{"id": "", "name": "broken"},
			{"id": "q2", "name": "Run", "category": "body", "schedule": "mon,wed", "estimateMinutes": 20, "order": 1}
		],
		"player": {"level": 0, "xp": -10},
		"timerState": {"activeQuestId": "q1", "startTime": null}
	}`
	var l QuestLog
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	l.Normalize()

	if len(l.Quests) != 2 {
		t.Fatalf("expected invalid quest dropped, got %d quests", len(l.Quests))
	}
	first := l.Quests[0]
	if first.Category != DefaultCategory || first.Schedule != "daily" || first.EstimateMinutes != nil {
		t.Fatalf("unexpected normalized quest: %+v", first)
	}
	if l.Quests[1].Schedule != "mon,wed" || *l.Quests[1].EstimateMinutes != 20 {
		t.Fatalf("valid quest should be untouched: %+v", l.Quests[1])
	}
	if l.Player.Level != 1 || l.Player.XP != 0 {
		t.Fatalf("unexpected player after normalize: %+v", l.Player)
	}
	if l.Completions == nil || l.TimerState.PausedSessions == nil {
		t.Fatal("expected nil collections to be initialized")
	}
	if l.TimerState.ActiveQuestID != nil {
		t.Fatal("active quest without start time should be cleared")
	}
}

func TestQuestLogCloneIsDeep(t *testing.T) {
	start := time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)
	active := "q1"
	l := NewQuestLog("2026-02-09")
	l.Quests = append(l.Quests, Quest{ID: "q1", Name: "Read", EstimateMinutes: intPtr(30)})
	l.Completions = append(l.Completions, Completion{QuestID: "q1", Date: "2026-02-09", XPEarned: 30})
	l.TimerState.ActiveQuestID = &active
	l.TimerState.StartTime = &start
	l.TimerState.PausedSessions["q1"] = 12

	c := l.Clone()
	*c.Quests[0].EstimateMinutes = 99
	c.Quests[0].Name = "changed"
	c.Completions[0].XPEarned = 0
	c.TimerState.PausedSessions["q1"] = 0
	*c.TimerState.ActiveQuestID = "other"

	if *l.Quests[0].EstimateMinutes != 30 || l.Quests[0].Name != "Read" {
		t.Fatalf("clone shares quest memory: %+v", l.Quests[0])
	}
	if l.Completions[0].XPEarned != 30 || l.TimerState.PausedSessions["q1"] != 12 {
		t.Fatal("clone shares completion or paused session memory")
	}
	if *l.TimerState.ActiveQuestID != "q1" {
		t.Fatal("clone shares active quest pointer")
	}
}

func TestTimerStateIsRunning(t *testing.T) {
	id := "q1"
	ts := TimerState{ActiveQuestID: &id}
	if !ts.IsRunning("q1") || ts.IsRunning("q2") {
		t.Fatalf("unexpected IsRunning results for %+v", ts)
	}
	if (TimerState{}).IsRunning("q1") {
		t.Fatal("idle timer reported running")
	}
}

func TestRankForLevel(t *testing.T) {
	cases := map[int]string{
		0:  "Novice",
		1:  "Novice",
		4:  "Novice",
		5:  "Apprentice",
		10: "Journeyman",
		20: "Adept",
		35: "Master",
		50: "Legend",
		99: "Legend",
	}
	for level, want := range cases {
		if got := RankForLevel(level); got != want {
			t.Fatalf("RankForLevel(%d) = %q, want %q", level, got, want)
		}
	}
}

package model

import (
	"errors"
	"strings"
	"time"
)

const DefaultCategory = "uncategorized"

var (
	ErrEmptyQuestID   = errors.New("model: quest id is required")
	ErrEmptyQuestName = errors.New("model: quest name is required")
)

type Quest struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	Schedule        string    `json:"schedule"`
	EstimateMinutes *int      `json:"estimateMinutes"`
	Order           int       `json:"order"`
	CreatedAt       time.Time `json:"createdAt"`
	Archived        bool      `json:"archived"`
}

func (q Quest) Validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return ErrEmptyQuestID
	}
	if strings.TrimSpace(q.Name) == "" {
		return ErrEmptyQuestName
	}
	return nil
}

// HasEstimate reports whether the quest earns XP per minute rather than flat XP.
func (q Quest) HasEstimate() bool {
	return q.EstimateMinutes != nil && *q.EstimateMinutes > 0
}

type Completion struct {
	QuestID      string `json:"questId"`
	Date         string `json:"date"`
	MinutesSpent int    `json:"minutesSpent"`
	XPEarned     int    `json:"xpEarned"`
}

type PlayerState struct {
	Level int `json:"level"`
	XP    int `json:"xp"`
}

// TimerState is the single global focus timer. PausedSessions holds banked
// minutes per quest id.
type TimerState struct {
	ActiveQuestID  *string            `json:"activeQuestId"`
	StartTime      *time.Time         `json:"startTime"`
	PausedSessions map[string]float64 `json:"pausedSessions"`
}

func (t TimerState) IsRunning(questID string) bool {
	return t.ActiveQuestID != nil && *t.ActiveQuestID == questID
}

// QuestLog is the whole persisted record. Storage backends read and write it
// wholesale.
type QuestLog struct {
	Quests      []Quest      `json:"quests"`
	Completions []Completion `json:"completions"`
	Player      PlayerState  `json:"player"`
	TimerState  TimerState   `json:"timerState"`
	Day         string       `json:"day"`
}

func NewQuestLog(day string) *QuestLog {
	return &QuestLog{
		Quests:      []Quest{},
		Completions: []Completion{},
		Player:      PlayerState{Level: 1, XP: 0},
		TimerState:  TimerState{PausedSessions: map[string]float64{}},
		Day:         day,
	}
}

// Normalize repairs a decoded record so that it satisfies the basic shape
// invariants. Quests without an id or name are dropped.
func (l *QuestLog) Normalize() {
	if l.Quests == nil {
		l.Quests = []Quest{}
	}
	kept := l.Quests[:0]
	for _, q := range l.Quests {
		if q.Validate() != nil {
			continue
		}
		if strings.TrimSpace(q.Category) == "" {
			q.Category = DefaultCategory
		}
		q.Schedule = NormalizeSchedule(q.Schedule)
		if q.EstimateMinutes != nil && *q.EstimateMinutes <= 0 {
			q.EstimateMinutes = nil
		}
		kept = append(kept, q)
	}
	l.Quests = kept

	if l.Completions == nil {
		l.Completions = []Completion{}
	}
	if l.Player.Level < 1 {
		l.Player.Level = 1
	}
	if l.Player.XP < 0 {
		l.Player.XP = 0
	}
	if l.TimerState.PausedSessions == nil {
		l.TimerState.PausedSessions = map[string]float64{}
	}
	if l.TimerState.ActiveQuestID != nil && l.TimerState.StartTime == nil {
		l.TimerState.ActiveQuestID = nil
	}
	if l.TimerState.ActiveQuestID == nil {
		l.TimerState.StartTime = nil
	}
}

// Clone returns a deep copy so callers can render without holding the owner's lock.
func (l *QuestLog) Clone() *QuestLog {
	out := &QuestLog{
		Quests:      make([]Quest, len(l.Quests)),
		Completions: make([]Completion, len(l.Completions)),
		Player:      l.Player,
		Day:         l.Day,
		TimerState: TimerState{
			PausedSessions: make(map[string]float64, len(l.TimerState.PausedSessions)),
		},
	}
	for i, q := range l.Quests {
		if q.EstimateMinutes != nil {
			est := *q.EstimateMinutes
			q.EstimateMinutes = &est
		}
		out.Quests[i] = q
	}
	copy(out.Completions, l.Completions)
	for id, mins := range l.TimerState.PausedSessions {
		out.TimerState.PausedSessions[id] = mins
	}
	if l.TimerState.ActiveQuestID != nil {
		id := *l.TimerState.ActiveQuestID
		out.TimerState.ActiveQuestID = &id
	}
	if l.TimerState.StartTime != nil {
		start := *l.TimerState.StartTime
		out.TimerState.StartTime = &start
	}
	return out
}

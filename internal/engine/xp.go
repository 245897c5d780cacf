package engine

import (
	"math"

	"github.com/sandeepkv93/questd/internal/config"
	"github.com/sandeepkv93/questd/internal/model"
)

// Ledger converts time into XP and XP into levels. All methods are pure
// arithmetic on the values passed in.
type Ledger struct {
	XPPerMinute      float64
	FlatXP           int
	LevelingBase     float64
	LevelingExponent float64
}

func NewLedger(cfg config.Config) Ledger {
	return Ledger{
		XPPerMinute:      cfg.XPPerMinute,
		FlatXP:           cfg.FlatXP,
		LevelingBase:     cfg.LevelingBase,
		LevelingExponent: cfg.LevelingExponent,
	}
}

// LevelChange describes the effect of an Award or Revert.
type LevelChange struct {
	FromLevel int
	ToLevel   int
	FromRank  string
	ToRank    string
}

func (c LevelChange) LevelsGained() int { return c.ToLevel - c.FromLevel }

func (c LevelChange) RankChanged() bool { return c.FromRank != c.ToRank }

// CalculateXP rewards estimated quests for at least their planned duration.
// Quests without a positive estimate earn the flat amount.
func (l Ledger) CalculateXP(estimateMinutes *int, actualMinutes float64) int {
	if estimateMinutes == nil || *estimateMinutes <= 0 {
		return l.FlatXP
	}
	minutes := math.Max(float64(*estimateMinutes), actualMinutes)
	return int(math.Round(minutes * l.XPPerMinute))
}

// XPForNextLevel is round(base * level^exponent), never less than 1.
func (l Ledger) XPForNextLevel(level int) int {
	if level < 1 {
		level = 1
	}
	req := int(math.Round(l.LevelingBase * math.Pow(float64(level), l.LevelingExponent)))
	if req < 1 {
		return 1
	}
	return req
}

func (l Ledger) Award(p *model.PlayerState, xp int) LevelChange {
	change := l.begin(p)
	if xp < 0 {
		xp = 0
	}
	p.XP += xp
	for p.XP >= l.XPForNextLevel(p.Level) {
		p.XP -= l.XPForNextLevel(p.Level)
		p.Level++
	}
	return l.finish(p, change)
}

// Revert undoes an Award of the same amount. The only loss of precision is
// the clamp at level 1, where XP cannot go below zero.
func (l Ledger) Revert(p *model.PlayerState, xp int) LevelChange {
	change := l.begin(p)
	if xp < 0 {
		xp = 0
	}
	p.XP -= xp
	for p.XP < 0 && p.Level > 1 {
		p.Level--
		p.XP += l.XPForNextLevel(p.Level)
	}
	if p.XP < 0 {
		p.XP = 0
	}
	return l.finish(p, change)
}

func (l Ledger) begin(p *model.PlayerState) LevelChange {
	if p.Level < 1 {
		p.Level = 1
	}
	return LevelChange{FromLevel: p.Level, FromRank: model.RankForLevel(p.Level)}
}

func (l Ledger) finish(p *model.PlayerState, change LevelChange) LevelChange {
	change.ToLevel = p.Level
	change.ToRank = model.RankForLevel(p.Level)
	return change
}

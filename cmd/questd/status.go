package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/questd/internal/config"
	"github.com/sandeepkv93/questd/internal/engine"
	"github.com/sandeepkv93/questd/internal/model"
	"github.com/sandeepkv93/questd/internal/storage"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the player and today's quests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		store := storage.Open(cfg.QuestLogPath)
		defer store.Close()

		questLog, err := store.Load(cmd.Context(), cfg.QuestLogPath)
		if err != nil {
			return fmt.Errorf("loading quest log: %w", err)
		}
		return printStatus(cmd.OutOrStdout(), cfg, questLog, time.Now())
	},
}

// printStatus reads the log without committing anything, so it is safe to run
// while the UI is open.
func printStatus(w io.Writer, cfg config.Config, questLog *model.QuestLog, now time.Time) error {
	today := engine.LogicalDay(now, cfg.DailyResetHour)
	if questLog == nil {
		questLog = model.NewQuestLog(today)
	}
	questLog.Normalize()

	ledger := engine.NewLedger(cfg)
	p := questLog.Player
	if _, err := fmt.Fprintf(w, "level %d (%s)  xp %d/%d  day %s\n",
		p.Level, model.RankForLevel(p.Level), p.XP, ledger.XPForNextLevel(p.Level), today); err != nil {
		return err
	}

	completions := engine.NewCompletions(questLog)
	timer := engine.NewTimer(&questLog.TimerState)
	date := engine.LogicalDate(now, cfg.DailyResetHour)
	due := 0
	for _, q := range engine.NewRegistry(questLog).Active() {
		if !model.IsDue(q.Schedule, date) {
			continue
		}
		due++
		mark := "[ ]"
		detail := engine.FormatMinutes(timer.TotalMinutes(q.ID, now))
		if rec, ok := completions.Find(q.ID, today); ok {
			mark = "[x]"
			detail = fmt.Sprintf("%dm +%dxp", rec.MinutesSpent, rec.XPEarned)
		} else if questLog.TimerState.IsRunning(q.ID) {
			mark = "[>]"
		}
		if _, err := fmt.Fprintf(w, "%s %-24s %-12s %s\n", mark, q.Name, q.Category, detail); err != nil {
			return err
		}
	}
	if due == 0 {
		_, err := fmt.Fprintln(w, "no quests due today")
		return err
	}
	return nil
}

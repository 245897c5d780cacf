package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/questd/internal/config"
	"github.com/sandeepkv93/questd/internal/engine"
	"github.com/sandeepkv93/questd/internal/scheduler"
	"github.com/sandeepkv93/questd/internal/storage"
	"github.com/sandeepkv93/questd/internal/update"
)

const noticeBuffer = 64

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	f, err := tea.LogToFile(logFile, "questd")
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	store := storage.Open(cfg.QuestLogPath)
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("questd: closing store: %v", err)
		}
	}()

	bridge := update.NewBridge(noticeBuffer)
	eng := engine.New(cfg, store,
		engine.WithNotifier(bridge),
		engine.WithRefresher(bridge),
		engine.WithLogger(log.Default()),
	)
	if err := eng.OnInit(ctx); err != nil {
		// The in-memory log is still usable; the next commit retries the save.
		log.Printf("questd: initial save failed: %v", err)
	}

	sched := scheduler.New(cfg.SchedulerBuffer)
	sched.Start()
	defer sched.Stop()

	var notifier update.DesktopNotifier = update.NoopDesktopNotifier{}
	if cfg.DesktopNotify {
		notifier = update.ExecDesktopNotifier{}
	}
	model := update.NewModel(ctx, eng, sched, update.Options{
		Bridge:         bridge,
		DesktopEnabled: cfg.DesktopNotify,
		Notifier:       notifier,
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := program.Run()

	// Quitting through the UI already committed; a signal or crash of the
	// program loop did not.
	if err := eng.OnShutdown(context.WithoutCancel(ctx)); err != nil {
		log.Printf("questd: shutdown save failed: %v", err)
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("running ui: %w", runErr)
	}
	if dropped := sched.Dropped(); dropped > 0 {
		log.Printf("questd: scheduler dropped %d event(s)", dropped)
	}
	return nil
}

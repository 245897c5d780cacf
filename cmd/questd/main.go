package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/questd/internal/config"
)

var (
	configPath string
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:   "questd",
	Short: "questd - a quest and habit tracker for the terminal",
	Long: `questd tracks recurring quests, times focus sessions on them and turns
finished work into experience points, levels and ranks.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", filepath.Join(config.Dir(), "questd.log"), "file that receives log output")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "questd failed: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/speakcoach/go-speakcoach/internal/config"
	"github.com/speakcoach/go-speakcoach/internal/log"
	"github.com/speakcoach/go-speakcoach/pkg/session"
)

var reportLimit int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print recent session summaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log.Init(cfg.LogLevel)

		history, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer history.Close()

		sessions, err := history.Recent(reportLimit)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions recorded yet.")
			return nil
		}

		for _, s := range sessions {
			printSession(s)
		}
		return nil
	},
}

func printSession(s session.Session) {
	fmt.Printf("%s  %s  score %.1f%%\n",
		s.StartTime.Format("2006-01-02 15:04"),
		s.EndTime.Sub(s.StartTime).Round(time.Second),
		s.FinalScore)

	sum := s.Summary
	if sum == nil {
		fmt.Println()
		return
	}

	fmt.Printf("  avg eye contact %.1f%%, best streak %d frames, consistency %.0f%%\n",
		sum.AvgEyeContact, sum.BestStreak, sum.Consistency*100)
	fmt.Printf("  dominant gaze %s, mood %s, tempo %d WPM, fillers %d (%.1f%%)\n",
		sum.DominantGazeZone, sum.DominantEmotion,
		sum.WordsPerMinute, s.Speech.FillerCount, sum.FillerRatio*100)

	if len(sum.Improvements) > 0 {
		fmt.Printf("  suggestions:\n")
		for _, imp := range sum.Improvements {
			fmt.Printf("    - %s\n", imp)
		}
	}
	fmt.Println(strings.Repeat("-", 60))
}

func init() {
	reportCmd.Flags().IntVarP(&reportLimit, "limit", "n", 10, "number of sessions to print")
	rootCmd.AddCommand(reportCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seqflow/seqflow/pkg/analyze"
)

var statsInput string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show descriptive statistics for a prepared event log",
	Long: `Analyze an events Parquet file written by 'prepare --events-parquet':
session counts, events per session, action frequencies, and the most common
session variants.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVarP(&statsInput, "input", "i", "", "Events Parquet path (required)")
	statsCmd.MarkFlagRequired("input")
}

func runStats(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(statsInput); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", statsInput)
	}

	analyzer, err := analyze.New()
	if err != nil {
		return err
	}
	defer analyzer.Close()

	stats, err := analyzer.Analyze(cmd.Context(), statsInput)
	if err != nil {
		return err
	}

	fmt.Printf("Events:    %d\n", stats.TotalEvents)
	fmt.Printf("Sessions:  %d\n", stats.TotalSessions)
	fmt.Printf("Actions:   %d distinct\n", stats.UniqueActions)
	if !stats.TimeRange.Start.IsZero() {
		fmt.Printf("Range:     %s – %s (%s)\n",
			stats.TimeRange.Start.Format("2006-01-02 15:04:05"),
			stats.TimeRange.End.Format("2006-01-02 15:04:05"),
			stats.TimeRange.Duration)
	}
	fmt.Printf("Per session: min %d, max %d, avg %.1f\n",
		stats.SessionStats.MinEventsPerSession,
		stats.SessionStats.MaxEventsPerSession,
		stats.SessionStats.AvgEventsPerSession)

	if len(stats.TopActions) > 0 {
		fmt.Println("\nTop actions:")
		for _, ac := range stats.TopActions {
			fmt.Printf("  %-30s %8d  %5.1f%%\n", ac.Action, ac.Count, ac.Percent)
		}
	}

	if len(stats.TopVariants) > 0 {
		fmt.Println("\nTop variants:")
		for _, vc := range stats.TopVariants {
			fmt.Printf("  %-50s %6d  %5.1f%%\n", vc.Variant, vc.Count, vc.Percent)
		}
	}

	return nil
}

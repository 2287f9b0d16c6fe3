package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/volam-cli/internal/core/domain"
	"github.com/custodia-labs/volam-cli/internal/core/ports/driving"
)

var (
	nullnessAction    string
	nullnessStrength  float64
	nullnessK         float64
	nullnessLambda    float64
	nullnessTimeDelta float64
	nullnessLimit     int
	historyWindow     float64
	deltaWindow       float64
)

var nullnessCmd = &cobra.Command{
	Use:   "nullness",
	Short: "Inspect and update per-concept uncertainty",
}

var nullnessUpdateCmd = &cobra.Command{
	Use:   "update [concept]",
	Short: "Apply a support or refute update to a concept",
	Long: `Applies an explicit evidence update to the concept's nullness.
Supporting evidence lowers nullness, refuting evidence raises it; the
impact decays with the evidence age (lambda^timeDelta).`,
	Args: cobra.ExactArgs(1),
	RunE: runNullnessUpdate,
}

var nullnessCurrentCmd = &cobra.Command{
	Use:   "current [concept]",
	Short: "Print a concept's current nullness",
	Args:  cobra.ExactArgs(1),
	RunE:  runNullnessCurrent,
}

var nullnessHistoryCmd = &cobra.Command{
	Use:   "history [concept]",
	Short: "Print a concept's nullness history, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runNullnessHistory,
}

var nullnessDeltaCmd = &cobra.Command{
	Use:   "delta [concept]",
	Short: "Print the nullness change over a trailing window",
	Args:  cobra.ExactArgs(1),
	RunE:  runNullnessDelta,
}

func init() {
	nullnessUpdateCmd.Flags().StringVarP(&nullnessAction, "action", "a", "", "support or refute (required)")
	nullnessUpdateCmd.Flags().Float64VarP(&nullnessStrength, "strength", "s", 1.0, "evidence strength in [0,1]")
	nullnessUpdateCmd.Flags().Float64Var(&nullnessK, "k", 0, "impact scale (0 uses the configured default)")
	nullnessUpdateCmd.Flags().Float64Var(&nullnessLambda, "lambda", 0, "decay base (0 uses the configured default)")
	nullnessUpdateCmd.Flags().Float64Var(&nullnessTimeDelta, "time-delta", -1,
		"evidence age in hours (negative derives it from the last entry)")
	_ = nullnessUpdateCmd.MarkFlagRequired("action")

	nullnessHistoryCmd.Flags().IntVarP(&nullnessLimit, "limit", "n", 0, "maximum number of entries (0 for all)")
	nullnessHistoryCmd.Flags().Float64VarP(&historyWindow, "window", "w", 0, "trailing window in hours (0 for all)")

	nullnessDeltaCmd.Flags().Float64VarP(&deltaWindow, "window", "w", 24, "trailing window in hours")

	nullnessCmd.AddCommand(nullnessUpdateCmd)
	nullnessCmd.AddCommand(nullnessCurrentCmd)
	nullnessCmd.AddCommand(nullnessHistoryCmd)
	nullnessCmd.AddCommand(nullnessDeltaCmd)
	rootCmd.AddCommand(nullnessCmd)
}

func runNullnessUpdate(cmd *cobra.Command, args []string) error {
	if nullnessService == nil {
		return errors.New("nullness service not configured")
	}

	update, err := nullnessService.ApplyEvidence(context.Background(), args[0], driving.EvidenceUpdate{
		Action:    domain.NullnessAction(nullnessAction),
		Strength:  nullnessStrength,
		K:         nullnessK,
		Lambda:    nullnessLambda,
		TimeDelta: nullnessTimeDelta,
	})
	if err != nil {
		return fmt.Errorf("nullness update failed: %w", err)
	}

	cmd.Printf("Concept %s: %.3f -> %.3f (delta %+.3f)\n",
		update.Concept, update.Old, update.New, update.Delta)
	return nil
}

func runNullnessCurrent(cmd *cobra.Command, args []string) error {
	if nullnessService == nil {
		return errors.New("nullness service not configured")
	}

	current, err := nullnessService.Current(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("nullness lookup failed: %w", err)
	}

	cmd.Printf("Concept %s: %.3f\n", args[0], current)
	return nil
}

func runNullnessHistory(cmd *cobra.Command, args []string) error {
	if nullnessService == nil {
		return errors.New("nullness service not configured")
	}

	entries, err := nullnessService.History(context.Background(), args[0], nullnessLimit, historyWindow)
	if err != nil {
		return fmt.Errorf("nullness history failed: %w", err)
	}

	if len(entries) == 0 {
		cmd.Printf("No history for concept %s.\n", args[0])
		return nil
	}

	cmd.Printf("History for %s:\n", args[0])
	for _, entry := range entries {
		cmd.Printf("  %s  %.3f  %s", entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.Nullness, entry.Trigger)
		if entry.Context != "" {
			cmd.Printf("  (%s)", entry.Context)
		}
		cmd.Println()
	}
	return nil
}

func runNullnessDelta(cmd *cobra.Command, args []string) error {
	if nullnessService == nil {
		return errors.New("nullness service not configured")
	}

	delta, err := nullnessService.Delta(context.Background(), args[0], deltaWindow)
	if err != nil {
		return fmt.Errorf("nullness delta failed: %w", err)
	}

	cmd.Printf("Concept %s: %+.3f over the last %.0fh\n", args[0], delta, deltaWindow)
	return nil
}

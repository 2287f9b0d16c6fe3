package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/volam-cli/internal/core/domain"
)

var (
	askMode    string
	askTopK    int
	askProfile string
	askAlpha   float64
	askBeta    float64
	askGamma   float64
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from indexed evidence",
	Long: `Retrieves evidence for the question, ranks it, and composes an
answer with citations and a confidence value.
Baseline mode ranks by cosine similarity; volam mode blends similarity,
nullness, and empathy fit for the selected stakeholder profile.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askMode, "mode", "m", "baseline", "ranking mode: baseline or volam")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 5, "number of evidence items to return")
	askCmd.Flags().StringVarP(&askProfile, "profile", "p", "", "empathy profile name (volam mode)")
	askCmd.Flags().Float64Var(&askAlpha, "alpha", 0.6, "weight on cosine similarity (volam mode)")
	askCmd.Flags().Float64Var(&askBeta, "beta", 0.3, "weight on certainty (volam mode)")
	askCmd.Flags().Float64Var(&askGamma, "gamma", 0.1, "weight on empathy fit (volam mode)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if rankingService == nil {
		return errors.New("ranking service not configured")
	}

	opts := domain.RankOptions{
		Mode:    domain.RankingMode(askMode),
		TopK:    askTopK,
		Profile: askProfile,
	}
	if cmd.Flags().Changed("alpha") || cmd.Flags().Changed("beta") || cmd.Flags().Changed("gamma") {
		opts.Params = &domain.VOLaMParams{Alpha: askAlpha, Beta: askBeta, Gamma: askGamma}
	}

	result, err := rankingService.Ask(context.Background(), args[0], opts)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAskJSON(cmd, result)
	}
	return outputAskText(cmd, result)
}

func outputAskJSON(cmd *cobra.Command, result *domain.RankingResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAskText(cmd *cobra.Command, result *domain.RankingResult) error {
	cmd.Println(result.Answer.Text)
	cmd.Println()
	cmd.Printf("Confidence: %.3f (%s)\n", result.Answer.Confidence,
		domain.ConfidenceBand(result.Answer.Confidence))
	if result.Mode == domain.ModeVOLaM {
		cmd.Printf("Profile: %s  (alpha=%.2f beta=%.2f gamma=%.2f)\n",
			result.Profile, result.Params.Alpha, result.Params.Beta, result.Params.Gamma)
	}

	if len(result.Evidence) == 0 {
		return nil
	}

	cmd.Println()
	cmd.Println("Evidence:")
	for i, ev := range result.Evidence {
		cmd.Printf("  [%d] %s (score %.3f, cosine %.3f, nullness %.3f)\n",
			i+1, ev.ID, ev.Score, ev.CosineScore, ev.Nullness)
		if ev.Source != "" {
			cmd.Printf("      Source: %s\n", ev.Source)
		}
		cmd.Printf("      %q\n", result.Answer.Citations[i].QuotedText)
	}
	cmd.Println()
	cmd.Println(result.Answer.Rationale)
	return nil
}

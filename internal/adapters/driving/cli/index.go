package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/volam-cli/internal/core/domain"
)

var indexSource string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the evidence index",
}

var indexAddCmd = &cobra.Command{
	Use:   "add [file...]",
	Short: "Embed and index text files as evidence",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIndexAdd,
}

var indexStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print index statistics",
	RunE:  runIndexStats,
}

var indexClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all indexed evidence",
	RunE:  runIndexClear,
}

func init() {
	indexAddCmd.Flags().StringVar(&indexSource, "source", "", "source label (defaults to the file path)")
	indexCmd.AddCommand(indexAddCmd)
	indexCmd.AddCommand(indexStatsCmd)
	indexCmd.AddCommand(indexClearCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexAdd(cmd *cobra.Command, args []string) error {
	if embeddingService == nil {
		return errors.New("embedding service not configured")
	}
	if vectorIndex == nil {
		return errors.New("vector index not configured")
	}

	ctx := context.Background()

	texts := make([]string, len(args))
	for i, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		texts[i] = string(data)
	}

	embeddings, err := embeddingService.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed failed: %w", err)
	}

	docs := make([]domain.Document, len(args))
	for i, path := range args {
		source := indexSource
		if source == "" {
			source = path
		}
		docs[i] = domain.Document{
			ID:        uuid.NewString(),
			Content:   texts[i],
			Source:    source,
			Embedding: embeddings[i].Vector,
			Metadata: domain.EvidenceMetadata{
				Domain:     filepath.Base(filepath.Dir(path)),
				TokenCount: embeddings[i].Tokens,
			},
		}
	}

	if err := vectorIndex.AddDocuments(ctx, docs); err != nil {
		return fmt.Errorf("index failed: %w", err)
	}
	if err := vectorIndex.Save(ctx); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}

	cmd.Printf("Indexed %d documents.\n", len(docs))
	return nil
}

func runIndexStats(cmd *cobra.Command, _ []string) error {
	if vectorIndex == nil {
		return errors.New("vector index not configured")
	}

	count, err := vectorIndex.Count(context.Background())
	if err != nil {
		return fmt.Errorf("index stats failed: %w", err)
	}

	cmd.Printf("Documents: %d\n", count)
	if embeddingService != nil {
		cmd.Printf("Model: %s (%d dimensions)\n",
			embeddingService.ModelName(), embeddingService.Dimensions())
	}
	return nil
}

func runIndexClear(cmd *cobra.Command, _ []string) error {
	if vectorIndex == nil {
		return errors.New("vector index not configured")
	}

	ctx := context.Background()
	if err := vectorIndex.Clear(ctx); err != nil {
		return fmt.Errorf("index clear failed: %w", err)
	}
	if err := vectorIndex.Save(ctx); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}

	cmd.Println("Index cleared.")
	return nil
}

// Package cli provides the cobra command tree for the volam binary.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/volam-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/volam-cli/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/volam-cli/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/volam-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/volam-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/volam-cli/internal/adapters/driven/tagger/keyword"
	"github.com/custodia-labs/volam-cli/internal/adapters/driven/vector"
	"github.com/custodia-labs/volam-cli/internal/core/ports/driven"
	"github.com/custodia-labs/volam-cli/internal/core/ports/driving"
	"github.com/custodia-labs/volam-cli/internal/core/services"
	"github.com/custodia-labs/volam-cli/internal/logger"
)

var version = "dev"

// Services the commands run against. main wires them through Execute;
// tests substitute their own.
var (
	rankingService   driving.RankingService
	nullnessService  driving.NullnessService
	profileStore     driven.ProfileStore
	vectorIndex      driven.VectorIndex
	embeddingService driven.EmbeddingService
)

var (
	verbose     bool
	configPath  string
	dataDir     string
	historyKind string
	provider    string
)

var rootCmd = &cobra.Command{
	Use:   "volam",
	Short: "Stakeholder-aware evidence ranking",
	Long: `volam answers questions over an indexed evidence corpus.
The VOLaM mode blends cosine similarity, nullness (tracked uncertainty),
and empathy fit against a stakeholder profile; baseline mode ranks by
cosine similarity alone.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return wireServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the TOML config file (default ~/.volam/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.volam/data)")
	rootCmd.PersistentFlags().StringVar(&historyKind, "history", "memory", "nullness history backend: memory or sqlite")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "ollama", "embedding provider: ollama or openai")
}

// SetVersion records the build version printed by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

// wireServices builds the default adapter stack. Already-configured
// services (tests, embedders) are left alone.
func wireServices() error {
	if rankingService != nil {
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}
	if configPath == "" {
		configPath = filepath.Join(home, ".volam", "config.toml")
	}
	if dataDir == "" {
		dataDir = filepath.Join(home, ".volam", "data")
	}

	profiles, err := file.NewProfileStore(configPath)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}
	if err := profiles.Watch(); err != nil {
		logger.Debug("Config watch unavailable: %v", err)
	}
	profileStore = profiles
	defaults := profiles.Defaults()

	if embeddingService == nil {
		embeddingService, err = newEmbeddingService()
		if err != nil {
			return err
		}
	}

	vectorIndex, err = vector.New(vector.Config{
		Dimension: embeddingService.Dimensions(),
		Path:      filepath.Join(dataDir, "index.json"),
	})
	if err != nil {
		return fmt.Errorf("open vector index: %w", err)
	}
	if err := vectorIndex.Load(context.Background()); err != nil {
		return fmt.Errorf("load vector index: %w", err)
	}

	store, err := newHistoryStore()
	if err != nil {
		return err
	}
	tracker := services.NewNullnessTracker(store)
	nullnessService = tracker

	rankingService = services.NewRankingService(
		services.NewRetrievalService(embeddingService, vectorIndex),
		keyword.New(),
		services.NewEmpathyService(profileStore),
		services.NewRanker(),
		services.NewComposer(tracker),
		tracker,
		defaults.Params,
	)
	return nil
}

// newEmbeddingService constructs the configured embedding provider.
func newEmbeddingService() (driven.EmbeddingService, error) {
	switch provider {
	case "ollama":
		return ollama.NewEmbeddingService(ollama.Config{}), nil
	case "openai":
		return openai.NewEmbeddingService(openai.Config{
			APIKey: os.Getenv("OPENAI_API_KEY"),
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}

// newHistoryStore constructs the configured nullness history backend.
func newHistoryStore() (driven.HistoryStore, error) {
	switch historyKind {
	case "memory":
		return memory.NewHistoryStore(), nil
	case "sqlite":
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", historyKind)
	}
}

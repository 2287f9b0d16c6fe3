// Package file provides a TOML-backed empathy profile store.
package file

import (
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/volam-cli/internal/core/domain"
	"github.com/custodia-labs/volam-cli/internal/core/ports/driven"
	"github.com/custodia-labs/volam-cli/internal/logger"
)

// Ensure ProfileStore implements the interface.
var _ driven.ProfileStore = (*ProfileStore)(nil)

// fileConfig is the on-disk TOML layout.
type fileConfig struct {
	Engine   engineConfig                  `toml:"engine"`
	Profiles map[string]map[string]float64 `toml:"profiles"`
}

// engineConfig holds the tunable engine defaults.
type engineConfig struct {
	Alpha  float64 `toml:"alpha"`
	Beta   float64 `toml:"beta"`
	Gamma  float64 `toml:"gamma"`
	K      float64 `toml:"k"`
	Lambda float64 `toml:"lambda"`
}

// EngineDefaults are the configured ranking and nullness-update parameters.
type EngineDefaults struct {
	Params domain.VOLaMParams
	K      float64
	Lambda float64
}

// ProfileStore loads named empathy profiles from a TOML file. Profiles are
// normalised at load time and replaced wholesale: readers take an atomic
// snapshot of the whole set, never a partially reloaded one.
type ProfileStore struct {
	path string

	mu       sync.RWMutex
	profiles map[string]domain.EmpathyProfile
	defaults EngineDefaults

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewProfileStore loads profiles from the given TOML file. A missing file
// yields just the hard-coded default profile; a malformed file is an error.
func NewProfileStore(path string) (*ProfileStore, error) {
	s := &ProfileStore{path: path}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load parses the file and atomically swaps in the fresh profile set.
func (s *ProfileStore) load() error {
	cfg := fileConfig{}

	data, err := os.ReadFile(s.path)
	switch {
	case os.IsNotExist(err):
		logger.Debug("Profile config %s absent, using built-in defaults", s.path)
	case err != nil:
		return fmt.Errorf("reading profile config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing profile config: %w", err)
		}
	}

	profiles := make(map[string]domain.EmpathyProfile, len(cfg.Profiles)+1)
	for name, weights := range cfg.Profiles {
		profiles[name] = domain.EmpathyProfile{
			Name:    name,
			Weights: domain.NormalizeWeights(weights),
		}
	}
	if _, ok := profiles[domain.DefaultProfileName]; !ok {
		profiles[domain.DefaultProfileName] = domain.EmpathyProfile{
			Name:    domain.DefaultProfileName,
			Weights: domain.DefaultStakeholderWeights(),
		}
	}

	defaults := EngineDefaults{Params: domain.DefaultParams(), K: 0.1, Lambda: 0.9}
	if cfg.Engine.Alpha > 0 || cfg.Engine.Beta > 0 || cfg.Engine.Gamma > 0 {
		defaults.Params = domain.VOLaMParams{
			Alpha: cfg.Engine.Alpha,
			Beta:  cfg.Engine.Beta,
			Gamma: cfg.Engine.Gamma,
		}
	}
	if cfg.Engine.K > 0 {
		defaults.K = cfg.Engine.K
	}
	if cfg.Engine.Lambda > 0 {
		defaults.Lambda = cfg.Engine.Lambda
	}

	s.mu.Lock()
	s.profiles = profiles
	s.defaults = defaults
	s.mu.Unlock()

	logger.Debug("Loaded %d empathy profiles from %s", len(profiles), s.path)
	return nil
}

// Profile returns the named profile.
func (s *ProfileStore) Profile(name string) (domain.EmpathyProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[name]
	if !ok {
		return domain.EmpathyProfile{}, fmt.Errorf("%w: %q", domain.ErrProfileNotFound, name)
	}
	return profile, nil
}

// Profiles returns a snapshot of all loaded profiles keyed by name.
func (s *ProfileStore) Profiles() map[string]domain.EmpathyProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.EmpathyProfile, len(s.profiles))
	for name, profile := range s.profiles {
		out[name] = profile
	}
	return out
}

// Replace swaps in a caller-supplied profile wholesale after normalising
// its weights.
func (s *ProfileStore) Replace(profile domain.EmpathyProfile) {
	normalized := domain.EmpathyProfile{
		Name:    profile.Name,
		Weights: domain.NormalizeWeights(profile.Weights),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[normalized.Name] = normalized
}

// Defaults returns the configured engine defaults.
func (s *ProfileStore) Defaults() EngineDefaults {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaults
}

// Watch reloads the profile set when the config file changes on disk.
// Reload failures keep the previous set; they never leave readers with a
// partial one. Call Close to stop watching.
func (s *ProfileStore) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	if err := watcher.Add(s.path); err != nil {
		watcher.Close()
		return fmt.Errorf("watching profile config: %w", err)
	}

	s.watcher = watcher
	s.done = make(chan struct{})

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					if err := s.load(); err != nil {
						logger.Warn("Profile reload failed: %v", err)
					} else {
						logger.Info("Profiles reloaded from %s", s.path)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Profile watcher error: %v", err)
			case <-s.done:
				return
			}
		}
	}()

	return nil
}

// Close stops the config watcher, if one was started.
func (s *ProfileStore) Close() error {
	if s.watcher == nil {
		return nil
	}
	close(s.done)
	return s.watcher.Close()
}

// Package sqlite provides a SQLite-backed nullness history store.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/volam-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/volam-cli/internal/core/domain"
	"github.com/custodia-labs/volam-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.HistoryStore = (*Store)(nil)

// Store is a SQLite-backed implementation of driven.HistoryStore. It keeps
// nullness histories across restarts; rows are append-only and unbounded.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.volam/data/nullness.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".volam", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "nullness.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate applies any pending schema migrations from the embedded FS.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Append adds an entry to the concept's history.
func (s *Store) Append(ctx context.Context, concept string, entry domain.HistoryEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO nullness_history (concept, nullness, trigger_type, context, recorded_at)
		VALUES (?, ?, ?, ?, ?)`,
		concept, entry.Nullness, entry.Trigger, entry.Context, entry.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}
	return nil
}

// Latest returns the most recent entry for the concept.
func (s *Store) Latest(ctx context.Context, concept string) (*domain.HistoryEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT nullness, trigger_type, context, recorded_at
		FROM nullness_history
		WHERE concept = ?
		ORDER BY id DESC
		LIMIT 1`,
		concept,
	)

	entry, err := scanEntry(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("querying latest entry: %w", err)
	}
	return entry, nil
}

// Entries returns the concept's history ordered oldest first.
func (s *Store) Entries(ctx context.Context, concept string, limit int) ([]domain.HistoryEntry, error) {
	query := `
		SELECT nullness, trigger_type, context, recorded_at
		FROM nullness_history
		WHERE concept = ?
		ORDER BY id ASC`
	args := []any{concept}

	if limit > 0 {
		// Most recent N, restored to oldest-first order.
		query = `
			SELECT nullness, trigger_type, context, recorded_at FROM (
				SELECT id, nullness, trigger_type, context, recorded_at
				FROM nullness_history
				WHERE concept = ?
				ORDER BY id DESC
				LIMIT ?
			) ORDER BY id ASC`
		args = append(args, limit)
	}

	return s.queryEntries(ctx, query, args...)
}

// EntriesSince returns entries at or after the cutoff, ordered oldest first.
func (s *Store) EntriesSince(ctx context.Context, concept string, since time.Time) ([]domain.HistoryEntry, error) {
	return s.queryEntries(ctx, `
		SELECT nullness, trigger_type, context, recorded_at
		FROM nullness_history
		WHERE concept = ? AND recorded_at >= ?
		ORDER BY id ASC`,
		concept, since.UTC(),
	)
}

// Concepts lists all concept keys with at least one entry.
func (s *Store) Concepts(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT concept FROM nullness_history ORDER BY concept`)
	if err != nil {
		return nil, fmt.Errorf("querying concepts: %w", err)
	}
	defer rows.Close()

	var concepts []string
	for rows.Next() {
		var concept string
		if err := rows.Scan(&concept); err != nil {
			return nil, fmt.Errorf("scanning concept: %w", err)
		}
		concepts = append(concepts, concept)
	}
	return concepts, rows.Err()
}

// queryEntries runs an entry query and scans the result rows.
func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]domain.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// scanEntry reads one history row.
func scanEntry(scan func(...any) error) (*domain.HistoryEntry, error) {
	var entry domain.HistoryEntry
	if err := scan(&entry.Nullness, &entry.Trigger, &entry.Context, &entry.Timestamp); err != nil {
		return nil, err
	}
	return &entry, nil
}

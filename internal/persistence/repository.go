// Package persistence serializes the durable slice of store state (alerts,
// groups, preferences) to local SQLite storage and rehydrates it on startup.
// Notifications are session-only and deliberately excluded: a fresh start
// must never replay stale toasts.
//
// The persisted blob carries an explicit schema version. Evolution is
// additive-only; breaking changes go through registered migration functions
// applied in order on load.
package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/watchdeck/internal/domain"
)

// StateKey is the fixed namespace key the blob is stored under.
// Kept stable so existing installs keep their state across upgrades.
const StateKey = "stock-alerts-storage"

// CurrentSchemaVersion is the version written by this build.
//
// Version history:
//
//	1 - alerts, groups, preferences (no aggregator fields)
//	2 - preferences gained aggregator, news_sources, aggregator_interval
const CurrentSchemaVersion = 2

// PersistedState is the durable subset of store state.
type PersistedState struct {
	SchemaVersion int                 `json:"schema_version" msgpack:"schema_version"`
	Alerts        []domain.Alert      `json:"alerts" msgpack:"alerts"`
	Groups        []domain.StockGroup `json:"groups" msgpack:"groups"`
	Preferences   domain.Preferences  `json:"preferences" msgpack:"preferences"`
}

// DefaultState returns the built-in fallback used when no blob exists.
func DefaultState() *PersistedState {
	return &PersistedState{
		SchemaVersion: CurrentSchemaVersion,
		Alerts:        []domain.Alert{},
		Groups:        []domain.StockGroup{},
		Preferences:   domain.DefaultPreferences(),
	}
}

// migration upgrades a state blob from exactly one version to the next.
type migration func(*PersistedState)

// migrations maps a source schema version to its upgrade. Applied in order
// until the blob reaches CurrentSchemaVersion.
var migrations = map[int]migration{
	// v1 blobs predate the aggregator preferences.
	1: func(state *PersistedState) {
		if state.Preferences.NewsSources == nil {
			state.Preferences.NewsSources = []string{}
		}
		if state.Preferences.AggregatorInterval == "" {
			state.Preferences.AggregatorInterval = domain.IntervalDaily
		}
		state.SchemaVersion = 2
	},
}

// Migrate upgrades the state blob to CurrentSchemaVersion in place.
// Blobs written before versioning existed carry version 0 and are treated
// as version 1.
func Migrate(state *PersistedState) error {
	if state.SchemaVersion == 0 {
		state.SchemaVersion = 1
	}
	for state.SchemaVersion < CurrentSchemaVersion {
		m, ok := migrations[state.SchemaVersion]
		if !ok {
			return fmt.Errorf("no migration registered for schema version %d", state.SchemaVersion)
		}
		m(state)
	}
	if state.SchemaVersion > CurrentSchemaVersion {
		return fmt.Errorf("state schema version %d is newer than supported version %d",
			state.SchemaVersion, CurrentSchemaVersion)
	}
	return nil
}

// Repository stores the state blob in the app_state table.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new persistence repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "persistence").Logger(),
	}
}

// EnsureSchema creates the app_state table if it doesn't exist.
func (r *Repository) EnsureSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS app_state (
			key TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			schema_version INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create app_state table: %w", err)
	}
	return nil
}

// Save serializes the durable slices and upserts them under StateKey.
// Implements the store's Saver contract.
func (r *Repository) Save(alerts []domain.Alert, groups []domain.StockGroup, prefs domain.Preferences) error {
	state := &PersistedState{
		SchemaVersion: CurrentSchemaVersion,
		Alerts:        alerts,
		Groups:        groups,
		Preferences:   prefs,
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO app_state (key, data, schema_version, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			schema_version = excluded.schema_version,
			updated_at = excluded.updated_at
	`, StateKey, string(data), CurrentSchemaVersion, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to store state blob: %w", err)
	}

	return nil
}

// Load reads and migrates the persisted blob.
// Returns nil, nil when no blob exists (fresh install) - callers fall back
// to DefaultState.
func (r *Repository) Load() (*PersistedState, error) {
	var data string
	err := r.db.QueryRow("SELECT data FROM app_state WHERE key = ?", StateKey).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state blob: %w", err)
	}

	var state PersistedState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state blob: %w", err)
	}

	if err := Migrate(&state); err != nil {
		return nil, err
	}

	if state.Alerts == nil {
		state.Alerts = []domain.Alert{}
	}
	if state.Groups == nil {
		state.Groups = []domain.StockGroup{}
	}

	return &state, nil
}

// Clear removes the persisted blob. Used by tests and the import flow.
func (r *Repository) Clear() error {
	_, err := r.db.Exec("DELETE FROM app_state WHERE key = ?", StateKey)
	if err != nil {
		return fmt.Errorf("failed to clear state blob: %w", err)
	}
	return nil
}

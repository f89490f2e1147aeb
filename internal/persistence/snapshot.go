package persistence

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotMetadata describes an exported snapshot file.
type SnapshotMetadata struct {
	CreatedAt     time.Time `msgpack:"created_at"`
	SchemaVersion int       `msgpack:"schema_version"`
	Checksum      string    `msgpack:"checksum"` // sha256 of the encoded state
}

// snapshotFile is the on-disk layout of an exported snapshot.
type snapshotFile struct {
	Meta  SnapshotMetadata `msgpack:"meta"`
	State []byte           `msgpack:"state"` // msgpack-encoded PersistedState
}

// ExportSnapshot writes the current persisted state to a compact
// checksum-verified snapshot file. Snapshots never leave the local device.
func (r *Repository) ExportSnapshot(path string) (*SnapshotMetadata, error) {
	state, err := r.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load state for export: %w", err)
	}
	if state == nil {
		state = DefaultState()
	}

	encoded, err := msgpack.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}

	meta := SnapshotMetadata{
		CreatedAt:     time.Now().UTC(),
		SchemaVersion: state.SchemaVersion,
		Checksum:      fmt.Sprintf("%x", sha256.Sum256(encoded)),
	}

	file, err := msgpack.Marshal(snapshotFile{Meta: meta, State: encoded})
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(path, file, 0644); err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}

	r.log.Info().
		Str("path", path).
		Int("schema_version", meta.SchemaVersion).
		Msg("Exported state snapshot")

	return &meta, nil
}

// ImportSnapshot reads a snapshot file, verifies its checksum, migrates the
// contained state to the current schema version and persists it.
// The caller is responsible for rehydrating the store afterwards.
func (r *Repository) ImportSnapshot(path string) (*PersistedState, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var file snapshotFile
	if err := msgpack.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	checksum := fmt.Sprintf("%x", sha256.Sum256(file.State))
	if checksum != file.Meta.Checksum {
		return nil, fmt.Errorf("snapshot checksum mismatch: expected %s, got %s",
			file.Meta.Checksum, checksum)
	}

	var state PersistedState
	if err := msgpack.Unmarshal(file.State, &state); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot state: %w", err)
	}

	if err := Migrate(&state); err != nil {
		return nil, err
	}

	if err := r.Save(state.Alerts, state.Groups, state.Preferences); err != nil {
		return nil, fmt.Errorf("failed to persist imported state: %w", err)
	}

	r.log.Info().
		Str("path", path).
		Int("schema_version", state.SchemaVersion).
		Msg("Imported state snapshot")

	return &state, nil
}

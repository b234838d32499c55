package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const syncStateFile = "sync.json"

// SyncState records the outcome of the most recent sync run. It is persisted
// as .relog/sync.json so the status command can report on it without
// touching the store.
type SyncState struct {
	// RunID is the identifier of the sync run that wrote this state.
	RunID string `json:"runId"`

	// SyncedAt is when the run finished.
	SyncedAt time.Time `json:"syncedAt"`

	// Branch is the branch that was checked out during the run.
	Branch string `json:"branch"`

	// MaxVersion is the highest version name known after the run.
	MaxVersion string `json:"maxVersion"`

	// CommitCount and TagCount are the totals persisted by the run.
	CommitCount int `json:"commitCount"`
	TagCount    int `json:"tagCount"`
}

// LoadSyncState loads .relog/sync.json. Returns nil, nil when no state has
// been written yet.
func (m *Manager) LoadSyncState() (*SyncState, error) {
	root, err := m.Root()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(root, syncStateFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading sync state: %w", err)
	}

	state := &SyncState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parsing sync state: %w", err)
	}
	return state, nil
}

// SaveSyncState persists the sync state to .relog/sync.json.
func (m *Manager) SaveSyncState(state *SyncState) error {
	if state == nil {
		return errors.New("cannot save nil sync state")
	}

	root, err := m.Root()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling sync state: %w", err)
	}

	path := filepath.Join(root, syncStateFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing sync state: %w", err)
	}
	return nil
}

// ClearSyncState removes .relog/sync.json. Returns nil when the file does
// not exist.
func (m *Manager) ClearSyncState() error {
	root, err := m.Root()
	if err != nil {
		return err
	}

	path := filepath.Join(root, syncStateFile)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing sync state: %w", err)
	}
	return nil
}

package state

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mensylisir/tapsmith/common"
)

// Store persists one snapshot document per run id under an explicit base
// directory, at <base>/runs/<run-id>/state.json. The base directory is
// passed in rather than discovered globally so tests and callers control
// where state lands.
type Store struct {
	baseDir string
}

// NewStore creates a store rooted at baseDir.
func NewStore(baseDir string) (*Store, error) {
	if baseDir == "" {
		return nil, errors.New("state store base directory is required")
	}
	return &Store{baseDir: baseDir}, nil
}

// DefaultBaseDir returns the per-user application state directory.
func DefaultBaseDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "could not resolve user config directory")
	}
	return filepath.Join(configDir, common.AppName), nil
}

// InitRun creates the storage location for a new run id and writes the
// initial snapshot.
func (st *Store) InitRun(runID string, s *State) error {
	runDir := st.runDir(runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create run directory %s", runDir)
	}
	return st.WriteState(runID, s)
}

// ReadState loads and decodes the snapshot for an existing run id. It
// returns ErrNotFound when no snapshot exists and *CorruptError when the
// snapshot cannot be decoded.
func (st *Store) ReadState(runID string) (*State, error) {
	statePath := st.StatePath(runID)
	data, err := os.ReadFile(statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "no snapshot at %s", statePath)
		}
		return nil, errors.Wrapf(err, "failed to read state %s", statePath)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &CorruptError{Path: statePath, Err: err}
	}
	return &s, nil
}

// WriteState fully overwrites the snapshot for an existing run id. The
// document is written to a temporary file in the run directory and renamed
// into place so a crash mid-write never leaves a truncated snapshot.
func (st *Store) WriteState(runID string, s *State) error {
	statePath := st.StatePath(runID)
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode run state")
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(st.runDir(runID), "state-*.tmp")
	if err != nil {
		return errors.Wrapf(err, "failed to create temp state file in %s", st.runDir(runID))
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Wrapf(err, "failed to write state %s", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "failed to close state %s", tmpPath)
	}
	if err := os.Rename(tmpPath, statePath); err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "failed to replace state %s", statePath)
	}
	return nil
}

// StatePath returns the addressable location of a run's snapshot, for
// diagnostic display.
func (st *Store) StatePath(runID string) string {
	return filepath.Join(st.runDir(runID), common.StateFileName)
}

// BaseDir returns the store's root directory.
func (st *Store) BaseDir() string {
	return st.baseDir
}

func (st *Store) runDir(runID string) string {
	return filepath.Join(st.baseDir, common.RunsDirName, runID)
}

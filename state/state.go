package state

import (
	"time"

	"github.com/mensylisir/tapsmith/common"
	"github.com/mensylisir/tapsmith/inputs"
)

// StepStatus is the lifecycle state of one step record.
// Pending -> Running -> Complete | DryRun | Failed.
// Failed and DryRun are re-entered as Running on a later invocation.
type StepStatus string

const (
	StatusPending  StepStatus = "Pending"
	StatusRunning  StepStatus = "Running"
	StatusComplete StepStatus = "Complete"
	StatusFailed   StepStatus = "Failed"
	StatusDryRun   StepStatus = "DryRun"
)

// Terminal reports whether the status ends a step for the current invocation.
func (s StepStatus) Terminal() bool {
	switch s {
	case StatusComplete, StatusFailed, StatusDryRun:
		return true
	}
	return false
}

// StepRecord is the persisted execution record for one step id within a run.
// It is created lazily when the runner first reaches the step and is never
// deleted.
type StepRecord struct {
	ID           string     `json:"id"`
	Status       StepStatus `json:"status"`
	StartedAt    string     `json:"started_at,omitempty"`
	FinishedAt   string     `json:"finished_at,omitempty"`
	Error        string     `json:"error,omitempty"`
	SkippedApply bool       `json:"skipped_apply"`
}

// State is the full persisted document for one run. Every field update is
// followed by a full snapshot overwrite through the store, so crash loss is
// bounded to the single most recent transition.
type State struct {
	SchemaVersion int          `json:"schema_version"`
	RunID         string       `json:"run_id"`
	StartedAt     string       `json:"started_at"`
	Steps         []StepRecord `json:"steps"`
	DryRun        bool         `json:"dry_run"`

	// Inputs is embedded once at creation and immutable for the life of
	// the run; a snapshot without it cannot be resumed.
	Inputs *inputs.Inputs `json:"inputs,omitempty"`

	// Scratch fields written by steps to pass derived data forward.
	TapPath        string `json:"tap_path,omitempty"`
	FormulaName    string `json:"formula_name,omitempty"`
	SummaryPrinted bool   `json:"summary_printed,omitempty"`
}

// New creates a fresh State for the given run id.
func New(runID string) *State {
	return &State{
		SchemaVersion: common.SchemaVersion,
		RunID:         runID,
		StartedAt:     NowRFC3339(),
		Steps:         []StepRecord{},
	}
}

// EnsureStep returns the index of the record for the given step id, creating
// a Pending record if this is the first encounter.
func (s *State) EnsureStep(id string) int {
	for i := range s.Steps {
		if s.Steps[i].ID == id {
			return i
		}
	}
	s.Steps = append(s.Steps, StepRecord{ID: id, Status: StatusPending})
	return len(s.Steps) - 1
}

// Step returns the record for the given step id, or nil if the runner has
// not reached it yet.
func (s *State) Step(id string) *StepRecord {
	for i := range s.Steps {
		if s.Steps[i].ID == id {
			return &s.Steps[i]
		}
	}
	return nil
}

// NowRFC3339 returns the current local time as an RFC 3339 string, the
// timestamp format used throughout the snapshot.
func NowRFC3339() string {
	return time.Now().Format(time.RFC3339)
}

package runtime

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mensylisir/tapsmith/cache"
	"github.com/mensylisir/tapsmith/executor"
	"github.com/mensylisir/tapsmith/inputs"
	"github.com/mensylisir/tapsmith/state"
)

// ErrMissingInputs is returned by Load when a snapshot exists but does not
// embed the run's domain configuration, which means it was created by an
// incompatible version or corrupted.
var ErrMissingInputs = errors.New("run state does not contain inputs")

// RunContext aggregates everything a step needs for one run: the run's
// identity, its mutable persisted state, the immutable inputs, the store
// handle and the command executor. A process-local memo cache is included
// for steps that repeat expensive external lookups across phases.
type RunContext struct {
	RunID  string
	DryRun bool
	Store  *state.Store
	State  *state.State
	Inputs inputs.Inputs
	Exec   executor.Executor
	Memo   *cache.Cache[string, string]
}

// New creates a fresh run: generates a run id, builds the initial state
// embedding the inputs, and writes the first snapshot.
func New(store *state.Store, exec executor.Executor, dryRun bool, in inputs.Inputs) (*RunContext, error) {
	runID := uuid.NewString()

	s := state.New(runID)
	s.DryRun = dryRun
	s.Inputs = &in

	if err := store.InitRun(runID, s); err != nil {
		return nil, err
	}

	return &RunContext{
		RunID:  runID,
		DryRun: dryRun,
		Store:  store,
		State:  s,
		Inputs: in,
		Exec:   exec,
		Memo:   cache.NewCache[string, string](),
	}, nil
}

// Load resumes an existing run: reads its snapshot, extracts the embedded
// inputs, refreshes the dry-run flag for this invocation and re-persists.
func Load(store *state.Store, exec executor.Executor, runID string, dryRun bool) (*RunContext, error) {
	s, err := store.ReadState(runID)
	if err != nil {
		return nil, err
	}
	if s.Inputs == nil {
		return nil, errors.Wrapf(ErrMissingInputs, "run %s", runID)
	}

	s.DryRun = dryRun
	if err := store.WriteState(runID, s); err != nil {
		return nil, err
	}

	return &RunContext{
		RunID:  runID,
		DryRun: dryRun,
		Store:  store,
		State:  s,
		Inputs: *s.Inputs,
		Exec:   exec,
		Memo:   cache.NewCache[string, string](),
	}, nil
}

// Persist fully overwrites the stored snapshot with the in-memory state.
// Call it after every observable transition.
func (rc *RunContext) Persist() error {
	return rc.Store.WriteState(rc.RunID, rc.State)
}

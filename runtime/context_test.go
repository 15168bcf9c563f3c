package runtime

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/tapsmith/executor"
	"github.com/mensylisir/tapsmith/inputs"
	"github.com/mensylisir/tapsmith/state"
)

func testInputs(t *testing.T) inputs.Inputs {
	t.Helper()
	in, err := inputs.New("alice", "tools", "", inputs.VisibilityPublic, "main", inputs.FormulaModeStub, "", "")
	require.NoError(t, err)
	return in
}

func newStore(t *testing.T) *state.Store {
	t.Helper()
	st, err := state.NewStore(t.TempDir())
	require.NoError(t, err)
	return st
}

func TestNewCreatesSnapshot(t *testing.T) {
	store := newStore(t)

	rc, err := New(store, executor.NewLocalExecutor(), true, testInputs(t))
	require.NoError(t, err)

	assert.NotEmpty(t, rc.RunID)
	assert.True(t, rc.DryRun)
	assert.True(t, rc.State.DryRun)
	require.NotNil(t, rc.State.Inputs)
	assert.Equal(t, "alice", rc.State.Inputs.Owner)

	// The initial snapshot is on disk immediately.
	loaded, err := store.ReadState(rc.RunID)
	require.NoError(t, err)
	assert.Equal(t, rc.RunID, loaded.RunID)
	assert.True(t, loaded.DryRun)
}

func TestLoadResumesRun(t *testing.T) {
	store := newStore(t)
	rc, err := New(store, executor.NewLocalExecutor(), false, testInputs(t))
	require.NoError(t, err)

	rc.State.TapPath = "/tmp/tap"
	idx := rc.State.EnsureStep("alpha")
	rc.State.Steps[idx].Status = state.StatusComplete
	require.NoError(t, rc.Persist())

	resumed, err := Load(store, executor.NewLocalExecutor(), rc.RunID, false)
	require.NoError(t, err)
	assert.Equal(t, rc.RunID, resumed.RunID)
	assert.Equal(t, "/tmp/tap", resumed.State.TapPath)
	assert.Equal(t, "alice", resumed.Inputs.Owner)
	require.Len(t, resumed.State.Steps, 1)
	assert.Equal(t, state.StatusComplete, resumed.State.Steps[0].Status)
}

func TestLoadRefreshesDryRun(t *testing.T) {
	store := newStore(t)
	rc, err := New(store, executor.NewLocalExecutor(), true, testInputs(t))
	require.NoError(t, err)

	resumed, err := Load(store, executor.NewLocalExecutor(), rc.RunID, false)
	require.NoError(t, err)
	assert.False(t, resumed.DryRun)
	assert.False(t, resumed.State.DryRun)

	// The refreshed flag is persisted, not just in memory.
	loaded, err := store.ReadState(rc.RunID)
	require.NoError(t, err)
	assert.False(t, loaded.DryRun)
}

func TestLoadMissingRun(t *testing.T) {
	store := newStore(t)

	_, err := Load(store, executor.NewLocalExecutor(), "no-such-run", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, state.ErrNotFound))
}

func TestLoadMissingInputs(t *testing.T) {
	store := newStore(t)
	rc, err := New(store, executor.NewLocalExecutor(), false, testInputs(t))
	require.NoError(t, err)

	// Strip the embedded inputs from the snapshot on disk.
	raw, err := os.ReadFile(store.StatePath(rc.RunID))
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	delete(doc, "inputs")
	stripped, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.StatePath(rc.RunID), stripped, 0644))

	_, err = Load(store, executor.NewLocalExecutor(), rc.RunID, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingInputs))
}

func TestPersistWritesThrough(t *testing.T) {
	store := newStore(t)
	rc, err := New(store, executor.NewLocalExecutor(), false, testInputs(t))
	require.NoError(t, err)

	rc.State.FormulaName = "tools"
	require.NoError(t, rc.Persist())

	loaded, err := store.ReadState(rc.RunID)
	require.NoError(t, err)
	assert.Equal(t, "tools", loaded.FormulaName)
}

package tap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/tapsmith/step"
)

func TestFinalSummary(t *testing.T) {
	fake := newFakeExec()
	rc := newRunContext(t, fake, stubInputs(t))
	rc.State.TapPath = "/tmp/tap"
	rc.State.FormulaName = "tools"
	s := NewFinalSummaryStep()

	status, err := s.Verify(context.Background(), rc, testEntry())
	require.NoError(t, err)
	assert.Equal(t, step.Incomplete, status)

	require.NoError(t, s.Apply(context.Background(), rc, testEntry()))
	assert.True(t, rc.State.SummaryPrinted)

	// The flag survives in the snapshot, so a resumed run skips the print.
	loaded, err := rc.Store.ReadState(rc.RunID)
	require.NoError(t, err)
	assert.True(t, loaded.SummaryPrinted)

	status, err = s.Verify(context.Background(), rc, testEntry())
	require.NoError(t, err)
	assert.Equal(t, step.Complete, status)
}

package tap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/tapsmith/inputs"
	"github.com/mensylisir/tapsmith/step"
)

func customRepoInputs(t *testing.T) inputs.Inputs {
	t.Helper()
	in, err := inputs.New("alice", "tools", "my-tap", inputs.VisibilityPublic, "main", inputs.FormulaModeStub, "", "")
	require.NoError(t, err)
	return in
}

func TestTapCandidates(t *testing.T) {
	assert.Equal(t, []string{"alice/homebrew-tools", "alice/tools"}, tapCandidates(stubInputs(t)))
	assert.Equal(t, []string{"alice/my-tap"}, tapCandidates(customRepoInputs(t)))
}

func TestPreferredTap(t *testing.T) {
	assert.Equal(t, "alice/tools", preferredTap(stubInputs(t)))
	assert.Equal(t, "alice/my-tap", preferredTap(customRepoInputs(t)))
}

func TestValidateTapVerify(t *testing.T) {
	fake := newFakeExec()
	rc := newRunContext(t, fake, stubInputs(t))
	fake.script("brew tap", fakeResult{stdout: "homebrew/core\nalice/tools\n"})

	status, err := NewValidateTapStep().Verify(context.Background(), rc, testEntry())
	require.NoError(t, err)
	assert.Equal(t, step.Complete, status)
}

func TestValidateTapVerifyNotTapped(t *testing.T) {
	fake := newFakeExec()
	rc := newRunContext(t, fake, stubInputs(t))
	fake.script("brew tap", fakeResult{stdout: "homebrew/core\n"})

	status, err := NewValidateTapStep().Verify(context.Background(), rc, testEntry())
	require.NoError(t, err)
	assert.Equal(t, step.Incomplete, status)
}

func TestValidateTapApplyUsesPreferredIdentifier(t *testing.T) {
	fake := newFakeExec()
	rc := newRunContext(t, fake, stubInputs(t))

	require.NoError(t, NewValidateTapStep().Apply(context.Background(), rc, testEntry()))
	assert.True(t, fake.called("brew tap alice/tools"))
}

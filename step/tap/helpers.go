package tap

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/mensylisir/tapsmith/runtime"
	"github.com/mensylisir/tapsmith/step"
)

// memoKeyBrewRepository caches the output of `brew --repository` for the
// lifetime of the process so repeated verifies do not re-spawn brew.
const memoKeyBrewRepository = "brew-repository"

// Workflow returns the full ordered step list for setting up a tap. List
// order is the dependency order: the tap must exist before the repo is
// created, the repo before the push, and so on.
func Workflow() []step.Step {
	return []step.Step{
		NewPreflightStep(),
		NewBrewTapNewStep(),
		NewGhRepoCreateStep(),
		NewAddFormulaStep(),
		NewCommitAndPushStep(),
		NewValidateTapStep(),
		NewFinalSummaryStep(),
	}
}

// recordedTapPath returns the tap checkout path written to the run state by
// the tap-new step. Later steps depend on it and fail fast when it is absent.
func recordedTapPath(rc *runtime.RunContext) (string, error) {
	path := strings.TrimSpace(rc.State.TapPath)
	if path == "" {
		return "", errors.New("tap path is not set; brew tap-new must run first")
	}
	return path, nil
}

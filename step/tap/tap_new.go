package tap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/tapsmith/runtime"
	"github.com/mensylisir/tapsmith/step"
	"github.com/mensylisir/tapsmith/util"
)

// BrewTapNewStep creates the local tap checkout with `brew tap-new` and
// records its filesystem path in the run state for later steps.
type BrewTapNewStep struct {
	step.BaseStep
}

func NewBrewTapNewStep() *BrewTapNewStep {
	return &BrewTapNewStep{
		BaseStep: step.NewBaseStep("brew_tap_new", "Create local tap (brew tap-new)"),
	}
}

// ensureTapPath resolves the tap checkout path under the brew repository and
// persists it in the run state. The `brew --repository` lookup is memoized
// per process.
func (s *BrewTapNewStep) ensureTapPath(ctx context.Context, rc *runtime.RunContext) (string, error) {
	if path := strings.TrimSpace(rc.State.TapPath); path != "" {
		return path, nil
	}

	base, ok := rc.Memo.Get(memoKeyBrewRepository)
	if !ok {
		stdout, stderr, exitCode, err := rc.Exec.Run(ctx, "brew", "--repository")
		if err != nil {
			return "", errors.Wrap(err, "failed to run brew --repository")
		}
		if exitCode != 0 {
			return "", errors.Errorf("brew --repository exited with status %d: %s", exitCode, strings.TrimSpace(stderr))
		}
		base = strings.TrimSpace(stdout)
		if base == "" {
			return "", errors.New("brew --repository returned empty output")
		}
		rc.Memo.Set(memoKeyBrewRepository, base)
	}

	tapPath := filepath.Join(base, "Library", "Taps", rc.Inputs.Owner, rc.Inputs.RepoName)
	rc.State.TapPath = tapPath
	if err := rc.Persist(); err != nil {
		return "", err
	}
	return tapPath, nil
}

func (s *BrewTapNewStep) Apply(ctx context.Context, rc *runtime.RunContext, log *logrus.Entry) error {
	repoSlug := rc.Inputs.RepoSlug()
	fmt.Printf("    brew tap-new %s\n", repoSlug)

	_, stderr, exitCode, err := rc.Exec.Run(ctx, "brew", "tap-new", repoSlug)
	if err != nil {
		return errors.Wrap(err, "failed to run brew tap-new")
	}
	if exitCode != 0 {
		return errors.Errorf("brew tap-new exited with status %d: %s", exitCode, strings.TrimSpace(stderr))
	}

	_, err = s.ensureTapPath(ctx, rc)
	return err
}

func (s *BrewTapNewStep) Verify(ctx context.Context, rc *runtime.RunContext, log *logrus.Entry) (step.VerifyStatus, error) {
	tapPath, err := s.ensureTapPath(ctx, rc)
	if err != nil {
		return step.Incomplete, err
	}

	exists, err := util.PathExists(tapPath)
	if err != nil {
		return step.Incomplete, errors.Wrapf(err, "failed to stat tap path %s", tapPath)
	}
	if !exists {
		return step.Incomplete, nil
	}

	if !util.DirExists(filepath.Join(tapPath, ".git")) {
		return step.Incomplete, errors.Errorf("tap path exists but is not a git repo: %s", tapPath)
	}
	return step.Complete, nil
}

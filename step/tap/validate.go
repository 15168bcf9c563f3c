package tap

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/tapsmith/inputs"
	"github.com/mensylisir/tapsmith/runtime"
	"github.com/mensylisir/tapsmith/step"
)

// ValidateTapStep registers the tap with brew and confirms it shows up in
// the `brew tap` listing. The owner/short shorthand only resolves when the
// repo follows the homebrew-<short> naming convention; otherwise the full
// owner/repo identifier is used.
type ValidateTapStep struct {
	step.BaseStep
}

func NewValidateTapStep() *ValidateTapStep {
	return &ValidateTapStep{
		BaseStep: step.NewBaseStep("validate_tap", "Validate tap is registered"),
	}
}

// tapCandidates returns the identifiers under which the tap may appear in
// the `brew tap` listing.
func tapCandidates(in inputs.Inputs) []string {
	candidates := []string{in.RepoSlug()}
	if in.Canonical() {
		candidates = append(candidates, in.Shorthand())
	}
	return candidates
}

// preferredTap returns the identifier passed to `brew tap`.
func preferredTap(in inputs.Inputs) string {
	if in.Canonical() {
		return in.Shorthand()
	}
	return in.RepoSlug()
}

func (s *ValidateTapStep) isTapped(ctx context.Context, rc *runtime.RunContext, identifier string) (bool, error) {
	stdout, stderr, exitCode, err := rc.Exec.Run(ctx, "brew", "tap")
	if err != nil {
		return false, errors.Wrap(err, "failed to run brew tap")
	}
	if exitCode != 0 {
		return false, errors.Errorf("brew tap exited with status %d: %s", exitCode, strings.TrimSpace(stderr))
	}

	for _, line := range strings.Split(stdout, "\n") {
		if strings.TrimSpace(line) == identifier {
			return true, nil
		}
	}
	return false, nil
}

func (s *ValidateTapStep) Apply(ctx context.Context, rc *runtime.RunContext, log *logrus.Entry) error {
	identifier := preferredTap(rc.Inputs)
	fmt.Printf("    brew tap %s\n", identifier)

	_, stderr, exitCode, err := rc.Exec.Run(ctx, "brew", "tap", identifier)
	if err != nil {
		return errors.Wrap(err, "failed to run brew tap")
	}
	if exitCode != 0 {
		return errors.Errorf("brew tap exited with status %d: %s", exitCode, strings.TrimSpace(stderr))
	}
	return nil
}

func (s *ValidateTapStep) Verify(ctx context.Context, rc *runtime.RunContext, log *logrus.Entry) (step.VerifyStatus, error) {
	for _, identifier := range tapCandidates(rc.Inputs) {
		tapped, err := s.isTapped(ctx, rc, identifier)
		if err != nil {
			return step.Incomplete, err
		}
		if tapped {
			return step.Complete, nil
		}
	}
	return step.Incomplete, nil
}

package tap

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/tapsmith/executor"
	"github.com/mensylisir/tapsmith/runtime"
	"github.com/mensylisir/tapsmith/step"
)

type requiredTool struct {
	name  string
	args  []string
	label string
}

// PreflightStep confirms that every external tool the workflow shells out to
// is installed and runnable. It performs no effect of its own: verify runs
// the same checks as preflight, so the step always records skipped apply.
type PreflightStep struct {
	step.BaseStep
	required []requiredTool
}

func NewPreflightStep() *PreflightStep {
	return &PreflightStep{
		BaseStep: step.NewBaseStep("preflight", "Preflight checks"),
		required: []requiredTool{
			{name: "git", args: []string{"--version"}, label: "git"},
			{name: "brew", args: []string{"--version"}, label: "homebrew"},
			{name: "gh", args: []string{"--version"}, label: "GitHub CLI"},
		},
	}
}

func (s *PreflightStep) checkRequired(ctx context.Context, rc *runtime.RunContext, log *logrus.Entry) error {
	var missing []string
	var failures []string

	for _, tool := range s.required {
		_, _, exitCode, err := rc.Exec.Run(ctx, tool.name, tool.args...)
		if err != nil {
			if executor.IsNotFound(err) {
				log.Debugf("%s not found on PATH", tool.name)
				missing = append(missing, tool.label)
				continue
			}
			failures = append(failures, fmt.Sprintf("%s: %v", tool.label, err))
			continue
		}
		if exitCode != 0 {
			failures = append(failures, fmt.Sprintf("%s: exited with status %d", tool.label, exitCode))
		}
	}

	if len(missing) > 0 {
		return errors.Errorf("missing required tools: %s", strings.Join(missing, ", "))
	}
	if len(failures) > 0 {
		return errors.Errorf("required tools failed to run: %s", strings.Join(failures, "; "))
	}
	return nil
}

func (s *PreflightStep) Preflight(ctx context.Context, rc *runtime.RunContext, log *logrus.Entry) error {
	return errors.Wrap(s.checkRequired(ctx, rc, log), "preflight checks failed")
}

func (s *PreflightStep) Apply(ctx context.Context, rc *runtime.RunContext, log *logrus.Entry) error {
	return nil
}

func (s *PreflightStep) Verify(ctx context.Context, rc *runtime.RunContext, log *logrus.Entry) (step.VerifyStatus, error) {
	if err := s.checkRequired(ctx, rc, log); err != nil {
		return step.Incomplete, err
	}
	return step.Complete, nil
}

package runner

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mensylisir/tapsmith/common"
	"github.com/mensylisir/tapsmith/logger"
	"github.com/mensylisir/tapsmith/runtime"
	"github.com/mensylisir/tapsmith/state"
	"github.com/mensylisir/tapsmith/step"
)

// Runner drives an ordered list of steps against a run context. List order
// defines execution order and is the only inter-step dependency mechanism:
// later steps assume earlier steps' scratch fields are populated.
type Runner struct {
	steps []step.Step
}

// New creates a Runner over the given steps.
func New(steps ...step.Step) *Runner {
	return &Runner{steps: steps}
}

// Run executes every step in order. Each step is looked up (or created) in
// the run state by id, marked Running, then driven through preflight,
// verify and apply; the snapshot is persisted after every observable
// transition. The first failure marks the step Failed, persists the error
// text and halts the run; no retry, no compensation. Steps already
// satisfied (verify Complete on entry) are skipped without re-applying,
// which is what makes resume idempotent.
func (r *Runner) Run(ctx context.Context, rc *runtime.RunContext) error {
	log := logger.Log.WithField(common.LogFieldRun, rc.RunID)

	rc.State.DryRun = rc.DryRun
	if err := rc.Persist(); err != nil {
		return err
	}

	for _, s := range r.steps {
		stepLog := log.WithField(common.LogFieldStep, s.ID())
		fmt.Printf("==> %s (%s)\n", s.Description(), s.ID())

		index := rc.State.EnsureStep(s.ID())
		rec := &rc.State.Steps[index]

		// A record completed by a previous invocation is left untouched;
		// resume picks up at the first step that still needs work. Failed,
		// DryRun and interrupted Running records all re-enter the lifecycle.
		if rec.Status == state.StatusComplete {
			stepLog.Debug("Step completed in a previous invocation, skipping")
			fmt.Println("    already complete")
			continue
		}

		rec.Status = state.StatusRunning
		rec.StartedAt = state.NowRFC3339()
		rec.FinishedAt = ""
		rec.Error = ""
		rec.SkippedApply = false
		if err := rc.Persist(); err != nil {
			return err
		}

		if err := r.runStep(ctx, s, rc, rec, stepLog); err != nil {
			rec.Status = state.StatusFailed
			rec.FinishedAt = state.NowRFC3339()
			rec.Error = err.Error()
			stepLog.Errorf("Step failed: %v", err)
			if perr := rc.Persist(); perr != nil {
				return perr
			}
			return err
		}
	}

	return nil
}

func (r *Runner) runStep(ctx context.Context, s step.Step, rc *runtime.RunContext, rec *state.StepRecord, log *logrus.Entry) error {
	phaseLog := func(phase Phase) *logrus.Entry {
		return log.WithField(common.LogFieldPhase, string(phase))
	}

	if err := s.Preflight(ctx, rc, phaseLog(PhasePreflight)); err != nil {
		return &PhaseError{StepID: s.ID(), Phase: PhasePreflight, Err: err}
	}

	status, err := s.Verify(ctx, rc, phaseLog(PhaseVerify))
	if err != nil {
		return &PhaseError{StepID: s.ID(), Phase: PhaseVerify, Err: err}
	}
	if status == step.Complete {
		rec.Status = state.StatusComplete
		rec.FinishedAt = state.NowRFC3339()
		rec.SkippedApply = true
		if err := rc.Persist(); err != nil {
			return err
		}
		log.Debug("Step already complete, apply skipped")
		fmt.Println("    already complete")
		return nil
	}

	if rc.DryRun {
		rec.Status = state.StatusDryRun
		rec.FinishedAt = state.NowRFC3339()
		rec.SkippedApply = true
		if err := rc.Persist(); err != nil {
			return err
		}
		log.Debug("Dry-run, apply skipped")
		fmt.Println("    dry-run: apply skipped")
		return nil
	}

	if err := s.Apply(ctx, rc, phaseLog(PhaseApply)); err != nil {
		return &PhaseError{StepID: s.ID(), Phase: PhaseApply, Err: err}
	}

	status, err = s.Verify(ctx, rc, phaseLog(PhaseVerify))
	if err != nil {
		return &PhaseError{StepID: s.ID(), Phase: PhaseVerify, Err: err}
	}
	if status != step.Complete {
		return &PostconditionError{StepID: s.ID()}
	}

	rec.Status = state.StatusComplete
	rec.FinishedAt = state.NowRFC3339()
	rec.SkippedApply = false
	return rc.Persist()
}

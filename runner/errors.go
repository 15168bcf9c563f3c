package runner

import "fmt"

// Phase names the step lifecycle phase in which a failure occurred.
type Phase string

const (
	// PhasePreflight covers precondition failures: the environment is
	// unsuitable for the step to attempt its effect.
	PhasePreflight Phase = "preflight"
	// PhaseApply covers effect failures.
	PhaseApply Phase = "apply"
	// PhaseVerify covers failures of the check itself, distinct from the
	// check reporting an unmet goal.
	PhaseVerify Phase = "verify"
)

// PhaseError wraps a failure from one of a step's lifecycle phases. The run
// halts at the failing step; errors.As lets callers distinguish precondition
// failures from effect and check failures.
type PhaseError struct {
	StepID string
	Phase  Phase
	Err    error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s failed for step %s: %v", e.Phase, e.StepID, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// PostconditionError reports that a step's Apply succeeded but the
// immediately following Verify still found the goal state unmet. This
// signals an environment or logic inconsistency and is never retried.
type PostconditionError struct {
	StepID string
}

func (e *PostconditionError) Error() string {
	return fmt.Sprintf("step %s did not verify after apply; inspect the persisted run state", e.StepID)
}

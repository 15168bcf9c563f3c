package step

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mensylisir/tapsmith/runtime"
)

// VerifyStatus is the result of a step's postcondition check.
type VerifyStatus int

const (
	// Incomplete means the step's goal state does not hold yet. It is a
	// normal result, not an error.
	Incomplete VerifyStatus = iota
	// Complete means the step's goal state already holds.
	Complete
)

func (v VerifyStatus) String() string {
	if v == Complete {
		return "Complete"
	}
	return "Incomplete"
}

// Step is one unit of idempotent, verifiable work in the workflow. The
// runner drives each step through Preflight, Verify and Apply; Verify must
// be side-effect free so re-running a workflow skips work already done.
type Step interface {
	// ID returns the stable identifier used as the step record key. It must
	// be unique across the runner's step list.
	ID() string

	// Description returns a human-readable label for display.
	Description() string

	// Preflight validates preconditions without producing side effects.
	// A failure means the environment is unsuitable for the step to even
	// attempt its effect.
	Preflight(ctx context.Context, rc *runtime.RunContext, log *logrus.Entry) error

	// Apply performs the effect. It may invoke external processes and wait
	// for them synchronously.
	Apply(ctx context.Context, rc *runtime.RunContext, log *logrus.Entry) error

	// Verify checks whether the step's goal state holds. An error means the
	// check itself could not be performed, not that the goal is unmet.
	Verify(ctx context.Context, rc *runtime.RunContext, log *logrus.Entry) (VerifyStatus, error)

	// Undo is a compensating action. The runner never invokes it; it exists
	// for manual rollback tooling.
	Undo(ctx context.Context, rc *runtime.RunContext, log *logrus.Entry) error
}

package step

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mensylisir/tapsmith/runtime"
)

// BaseStep provides identity storage and default method implementations.
// Concrete steps embed it and override the phases they need; Preflight and
// Undo default to no-ops.
type BaseStep struct {
	StepID          string
	StepDescription string
}

// NewBaseStep is a helper constructor for initializing common BaseStep fields.
func NewBaseStep(id, description string) BaseStep {
	return BaseStep{
		StepID:          id,
		StepDescription: description,
	}
}

// ID returns the stable identifier of the step.
func (bs *BaseStep) ID() string {
	return bs.StepID
}

// Description returns the human-readable label of the step.
func (bs *BaseStep) Description() string {
	return bs.StepDescription
}

// Preflight is a no-op by default; steps with preconditions override it.
func (bs *BaseStep) Preflight(ctx context.Context, rc *runtime.RunContext, log *logrus.Entry) error {
	return nil
}

// Undo is a no-op by default.
func (bs *BaseStep) Undo(ctx context.Context, rc *runtime.RunContext, log *logrus.Entry) error {
	return nil
}

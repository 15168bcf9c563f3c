package tap

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mensylisir/tapsmith/inputs"
	"github.com/mensylisir/tapsmith/runtime"
	"github.com/mensylisir/tapsmith/step"
	"github.com/mensylisir/tapsmith/util"
)

// FinalSummaryStep prints the run outcome and next steps for the operator.
// Its effect is the persisted summary_printed flag, which makes the summary
// show exactly once per run even across resumes.
type FinalSummaryStep struct {
	step.BaseStep
}

func NewFinalSummaryStep() *FinalSummaryStep {
	return &FinalSummaryStep{
		BaseStep: step.NewBaseStep("final_summary", "Final summary"),
	}
}

func (s *FinalSummaryStep) Apply(ctx context.Context, rc *runtime.RunContext, log *logrus.Entry) error {
	in := rc.Inputs
	tapPath := util.FirstNonEmpty(rc.State.TapPath, "<unknown>")
	tapName := in.RepoSlug()
	if in.Canonical() {
		tapName = in.Shorthand()
	}

	fmt.Println("\nSummary")
	fmt.Printf("  Run ID: %s\n", rc.RunID)
	fmt.Printf("  Repo: %s\n", in.RepoSlug())
	fmt.Printf("  Tap path: %s\n", tapPath)
	fmt.Printf("  State: %s\n", rc.Store.StatePath(rc.RunID))

	if in.FormulaMode == inputs.FormulaModeBrewCreate {
		fmt.Printf("  Formula directory: %s/Formula\n", tapPath)
	} else {
		fmt.Printf("  Stub formula: %s/Formula/%s.rb\n", tapPath, in.Tap)
	}

	fmt.Println("\nNext steps")
	fmt.Println("  - Edit the formula and replace the TODO fields.")
	installFormula := util.FirstNonEmpty(rc.State.FormulaName, in.Tap)
	fmt.Printf("  - brew install %s/%s (once the formula URL and sha256 are valid)\n", tapName, installFormula)

	rc.State.SummaryPrinted = true
	return rc.Persist()
}

func (s *FinalSummaryStep) Verify(ctx context.Context, rc *runtime.RunContext, log *logrus.Entry) (step.VerifyStatus, error) {
	if rc.State.SummaryPrinted {
		return step.Complete, nil
	}
	return step.Incomplete, nil
}

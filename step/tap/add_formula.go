package tap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/tapsmith/common"
	"github.com/mensylisir/tapsmith/inputs"
	"github.com/mensylisir/tapsmith/runtime"
	"github.com/mensylisir/tapsmith/step"
	"github.com/mensylisir/tapsmith/util"
)

const stubFormulaTemplate = `class %s < Formula
  desc "TODO: add a short description"
  homepage "https://example.com"
  url "https://example.com/TODO.tar.gz"
  sha256 "TODO"
  license "MIT"

  def install
    # TODO: install steps
  end

  test do
    # TODO: add a test
  end
end
`

// AddFormulaStep seeds the tap with its first formula, either by writing a
// templated stub or by running `brew create` against a source URL. The
// resulting formula name is recorded in the run state for the summary.
type AddFormulaStep struct {
	step.BaseStep
}

func NewAddFormulaStep() *AddFormulaStep {
	return &AddFormulaStep{
		BaseStep: step.NewBaseStep("add_formula", "Add formula"),
	}
}

func formulaDir(tapPath string) string {
	return filepath.Join(tapPath, "Formula")
}

func stubFormulaPath(tapPath, tapShort string) string {
	return filepath.Join(formulaDir(tapPath), tapShort+".rb")
}

// formulaClassName converts a tap short name to the Ruby class name brew
// expects: split on '-' and '_', capitalize each part, join.
func formulaClassName(tapShort string) string {
	parts := strings.FieldsFunc(tapShort, func(r rune) bool {
		return r == '-' || r == '_'
	})
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// deriveNameFromURL guesses a formula name from a source tarball URL:
// last path segment, archive extension stripped, trailing version removed.
func deriveNameFromURL(url string) string {
	url = strings.SplitN(url, "?", 2)[0]
	url = strings.SplitN(url, "#", 2)[0]

	segments := strings.Split(url, "/")
	base := segments[len(segments)-1]

	for _, ext := range []string{".tar.gz", ".tgz", ".tar.bz2", ".tar.xz", ".zip"} {
		if strings.HasSuffix(base, ext) {
			base = strings.TrimSuffix(base, ext)
			break
		}
	}

	if idx := strings.LastIndex(base, "-"); idx >= 0 {
		suffix := base[idx+1:]
		if suffix != "" && (suffix[0] >= '0' && suffix[0] <= '9' || suffix[0] == 'v') {
			base = base[:idx]
		}
	}

	return base
}

func hasFormulaFiles(dir string) (bool, error) {
	names, err := collectFormulaNames(dir)
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// collectFormulaNames lists the stems of all .rb files in the formula
// directory, sorted by os.ReadDir's lexical order.
func collectFormulaNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read formula directory %s", dir)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".rb") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".rb"))
	}
	return names, nil
}

func (s *AddFormulaStep) setFormulaName(rc *runtime.RunContext, name string) error {
	rc.State.FormulaName = name
	return rc.Persist()
}

func (s *AddFormulaStep) Preflight(ctx context.Context, rc *runtime.RunContext, log *logrus.Entry) error {
	tapPath, err := recordedTapPath(rc)
	if err != nil {
		return err
	}

	exists, err := util.PathExists(tapPath)
	if err != nil {
		return errors.Wrapf(err, "failed to stat tap path %s", tapPath)
	}
	if !exists {
		return errors.Errorf("tap path does not exist: %s", tapPath)
	}

	if rc.Inputs.FormulaMode == inputs.FormulaModeBrewCreate && strings.TrimSpace(rc.Inputs.FormulaURL) == "" {
		return errors.New("formula-url is required for brew-create mode")
	}
	return nil
}

func (s *AddFormulaStep) Apply(ctx context.Context, rc *runtime.RunContext, log *logrus.Entry) error {
	tapPath, err := recordedTapPath(rc)
	if err != nil {
		return err
	}
	dir := formulaDir(tapPath)

	switch rc.Inputs.FormulaMode {
	case inputs.FormulaModeBrewCreate:
		return s.applyBrewCreate(ctx, rc, dir)
	default:
		return s.applyStub(rc, dir, tapPath)
	}
}

func (s *AddFormulaStep) applyStub(rc *runtime.RunContext, dir, tapPath string) error {
	if err := util.EnsureDir(dir); err != nil {
		return err
	}

	formulaPath := stubFormulaPath(tapPath, rc.Inputs.Tap)
	if !util.FileExists(formulaPath) {
		content := fmt.Sprintf(stubFormulaTemplate, formulaClassName(rc.Inputs.Tap))
		if err := os.WriteFile(formulaPath, []byte(content), common.FileMode0644); err != nil {
			return errors.Wrapf(err, "failed to write stub formula %s", formulaPath)
		}
	}

	return s.setFormulaName(rc, rc.Inputs.Tap)
}

func (s *AddFormulaStep) applyBrewCreate(ctx context.Context, rc *runtime.RunContext, dir string) error {
	url := strings.TrimSpace(rc.Inputs.FormulaURL)
	name := rc.Inputs.FormulaName
	if name == "" {
		name = deriveNameFromURL(url)
	}
	if name == "" {
		return errors.New("formula-name is required when it cannot be derived from the URL")
	}

	fmt.Printf("    brew create --tap %s %s\n", rc.Inputs.RepoSlug(), url)

	// brew create opens an editor on the generated formula; pointing it at
	// /usr/bin/true keeps the run non-interactive.
	env := []string{"HOMEBREW_EDITOR=/usr/bin/true", "EDITOR=/usr/bin/true"}
	_, stderr, exitCode, err := rc.Exec.RunEnv(ctx, env, "brew",
		"create", "--tap", rc.Inputs.RepoSlug(), "--set-name", name, url)
	if err != nil {
		return errors.Wrap(err, "failed to run brew create")
	}
	if exitCode != 0 {
		return errors.Errorf("brew create exited with status %d: %s", exitCode, strings.TrimSpace(stderr))
	}

	names, err := collectFormulaNames(dir)
	if err != nil {
		return err
	}
	if len(names) == 1 {
		name = names[0]
	}
	return s.setFormulaName(rc, name)
}

func (s *AddFormulaStep) Verify(ctx context.Context, rc *runtime.RunContext, log *logrus.Entry) (step.VerifyStatus, error) {
	tapPath, err := recordedTapPath(rc)
	if err != nil {
		return step.Incomplete, err
	}

	if rc.Inputs.FormulaMode == inputs.FormulaModeBrewCreate {
		found, err := hasFormulaFiles(formulaDir(tapPath))
		if err != nil {
			return step.Incomplete, err
		}
		if found {
			return step.Complete, nil
		}
		return step.Incomplete, nil
	}

	if util.FileExists(stubFormulaPath(tapPath, rc.Inputs.Tap)) {
		return step.Complete, nil
	}
	return step.Incomplete, nil
}

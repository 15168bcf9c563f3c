package inputs

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/mensylisir/tapsmith/logger"
)

// Visibility controls whether the created GitHub repository is public or private.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ParseVisibility validates a user-supplied visibility value.
func ParseVisibility(value string) (Visibility, error) {
	switch Visibility(strings.ToLower(strings.TrimSpace(value))) {
	case VisibilityPublic:
		return VisibilityPublic, nil
	case VisibilityPrivate:
		return VisibilityPrivate, nil
	default:
		return "", errors.Errorf("invalid visibility %q (expected public or private)", value)
	}
}

// FormulaMode selects how the first formula lands in the tap.
type FormulaMode string

const (
	// FormulaModeStub writes a templated placeholder formula.
	FormulaModeStub FormulaMode = "stub"
	// FormulaModeBrewCreate runs `brew create` against a source URL.
	FormulaModeBrewCreate FormulaMode = "brew-create"
)

// ParseFormulaMode validates a user-supplied formula mode value.
func ParseFormulaMode(value string) (FormulaMode, error) {
	switch FormulaMode(strings.ToLower(strings.TrimSpace(value))) {
	case FormulaModeStub:
		return FormulaModeStub, nil
	case FormulaModeBrewCreate:
		return FormulaModeBrewCreate, nil
	default:
		return "", errors.Errorf("invalid formula mode %q (expected stub or brew-create)", value)
	}
}

// Inputs is the immutable domain configuration for one run. It is embedded
// into the persisted snapshot at run creation and carried through every
// resume unchanged.
type Inputs struct {
	Owner       string      `json:"owner" yaml:"owner"`
	Tap         string      `json:"tap" yaml:"tap"`
	RepoName    string      `json:"repo_name" yaml:"repoName"`
	Visibility  Visibility  `json:"visibility" yaml:"visibility"`
	Branch      string      `json:"branch" yaml:"branch"`
	FormulaMode FormulaMode `json:"formula_mode" yaml:"formulaMode"`
	FormulaURL  string      `json:"formula_url,omitempty" yaml:"formulaURL"`
	FormulaName string      `json:"formula_name,omitempty" yaml:"formulaName"`
}

// New normalizes and validates raw user input into an Inputs value.
// The repo name defaults to homebrew-<tap> when not supplied.
func New(owner, tap, repoName string, visibility Visibility, branch string, mode FormulaMode, formulaURL, formulaName string) (Inputs, error) {
	var in Inputs
	var err error

	if in.Owner, err = normalizeToken("owner", owner); err != nil {
		return Inputs{}, err
	}
	if in.Tap, err = normalizeToken("tap", tap); err != nil {
		return Inputs{}, err
	}
	if in.Branch = strings.TrimSpace(branch); in.Branch == "" {
		return Inputs{}, errors.New("branch is required")
	}

	in.Visibility = visibility
	in.FormulaMode = mode

	in.FormulaURL = strings.TrimSpace(formulaURL)
	if formulaName != "" {
		if in.FormulaName, err = normalizeToken("formula name", formulaName); err != nil {
			return Inputs{}, err
		}
	}

	if mode == FormulaModeBrewCreate && in.FormulaURL == "" {
		return Inputs{}, errors.New("formula-url is required when formula-mode is brew-create")
	}

	if strings.HasPrefix(in.Tap, "homebrew-") {
		logger.Log.Warnf("tap short name includes 'homebrew-'; default repo would become 'homebrew-%s'", in.Tap)
	}

	canonical := "homebrew-" + in.Tap
	if repoName == "" {
		in.RepoName = canonical
	} else {
		if in.RepoName, err = normalizeToken("repo name", repoName); err != nil {
			return Inputs{}, err
		}
		if in.RepoName != canonical {
			logger.Log.Warnf("repo name does not match homebrew-<short>; 'brew tap %s/%s' shorthand may not work", in.Owner, in.Tap)
		}
	}

	return in, nil
}

// RepoSlug returns the owner/repo identifier used by gh and brew.
func (in Inputs) RepoSlug() string {
	return fmt.Sprintf("%s/%s", in.Owner, in.RepoName)
}

// Canonical reports whether the repo name follows the homebrew-<short>
// convention, which enables the owner/short tap shorthand.
func (in Inputs) Canonical() bool {
	return in.RepoName == "homebrew-"+in.Tap
}

// Shorthand returns the owner/short tap identifier.
func (in Inputs) Shorthand() string {
	return fmt.Sprintf("%s/%s", in.Owner, in.Tap)
}

func normalizeToken(label, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", errors.Errorf("%s is required", label)
	}
	if strings.Contains(trimmed, "/") {
		return "", errors.Errorf("%s must not include '/'", label)
	}
	for _, r := range trimmed {
		if unicode.IsSpace(r) {
			return "", errors.Errorf("%s must not contain whitespace", label)
		}
	}
	return trimmed, nil
}

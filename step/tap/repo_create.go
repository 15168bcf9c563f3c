package tap

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/tapsmith/inputs"
	"github.com/mensylisir/tapsmith/runtime"
	"github.com/mensylisir/tapsmith/step"
	"github.com/mensylisir/tapsmith/util"
)

// GhRepoCreateStep publishes the tap checkout to GitHub: it creates the
// remote repository from the local source and pushes in one `gh repo create`
// invocation. Verify cross-checks that the repo exists and that the local
// origin remote points at it.
type GhRepoCreateStep struct {
	step.BaseStep
}

func NewGhRepoCreateStep() *GhRepoCreateStep {
	return &GhRepoCreateStep{
		BaseStep: step.NewBaseStep("gh_repo_create", "Create GitHub repo and push"),
	}
}

type repoURLs struct {
	SSHURL string `json:"sshUrl"`
	WebURL string `json:"url"`
}

func repoMissing(stderr string) bool {
	text := strings.ToLower(stderr)
	return strings.Contains(text, "not found") ||
		strings.Contains(text, "could not resolve to a repository") ||
		strings.Contains(text, "404")
}

func (s *GhRepoCreateStep) repoExists(ctx context.Context, rc *runtime.RunContext, repoSlug string) (bool, error) {
	_, stderr, exitCode, err := rc.Exec.Run(ctx, "gh", "repo", "view", repoSlug, "--json", "name")
	if err != nil {
		return false, errors.Wrap(err, "failed to run gh repo view")
	}
	if exitCode == 0 {
		return true, nil
	}
	if repoMissing(stderr) {
		return false, nil
	}
	return false, errors.Errorf("gh repo view failed: %s", strings.TrimSpace(stderr))
}

func (s *GhRepoCreateStep) fetchRepoURLs(ctx context.Context, rc *runtime.RunContext, repoSlug string) (repoURLs, error) {
	stdout, stderr, exitCode, err := rc.Exec.Run(ctx, "gh", "repo", "view", repoSlug, "--json", "sshUrl,url")
	if err != nil {
		return repoURLs{}, errors.Wrap(err, "failed to run gh repo view")
	}
	if exitCode != 0 {
		return repoURLs{}, errors.Errorf("gh repo view failed: %s", strings.TrimSpace(stderr))
	}

	var urls repoURLs
	if err := json.Unmarshal([]byte(stdout), &urls); err != nil {
		return repoURLs{}, errors.Wrap(err, "failed to parse gh repo view output")
	}
	return urls, nil
}

// gitRemoteURL returns the url of the named remote, or "" when the remote
// does not exist.
func (s *GhRepoCreateStep) gitRemoteURL(ctx context.Context, rc *runtime.RunContext, path, remote string) (string, error) {
	stdout, stderr, exitCode, err := rc.Exec.Run(ctx, "git", "-C", path, "remote", "get-url", remote)
	if err != nil {
		return "", errors.Wrap(err, "failed to query git remote")
	}
	if exitCode == 0 {
		return strings.TrimSpace(stdout), nil
	}

	text := strings.ToLower(stderr)
	if strings.Contains(text, "no such remote") || strings.Contains(text, "does not appear to be a git repository") {
		return "", nil
	}
	return "", errors.Errorf("git remote get-url failed: %s", strings.TrimSpace(stderr))
}

// ensureBranch renames the checkout's current branch to the configured one
// so the initial push lands on the branch the user asked for.
func (s *GhRepoCreateStep) ensureBranch(ctx context.Context, rc *runtime.RunContext, path, branch string) error {
	stdout, stderr, exitCode, err := rc.Exec.Run(ctx, "git", "-C", path, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return errors.Wrap(err, "failed to read current git branch")
	}
	if exitCode != 0 {
		return errors.Errorf("git rev-parse failed: %s", strings.TrimSpace(stderr))
	}
	if strings.TrimSpace(stdout) == branch {
		return nil
	}

	_, stderr, exitCode, err = rc.Exec.Run(ctx, "git", "-C", path, "branch", "-M", branch)
	if err != nil {
		return errors.Wrap(err, "failed to rename git branch")
	}
	if exitCode != 0 {
		return errors.Errorf("git branch -M exited with status %d: %s", exitCode, strings.TrimSpace(stderr))
	}
	return nil
}

func (s *GhRepoCreateStep) Preflight(ctx context.Context, rc *runtime.RunContext, log *logrus.Entry) error {
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
	if !util.DirExists(filepath.Join(tapPath, ".git")) {
		return errors.Errorf("tap path is not a git repo: %s", tapPath)
	}
	return nil
}

func (s *GhRepoCreateStep) Apply(ctx context.Context, rc *runtime.RunContext, log *logrus.Entry) error {
	tapPath, err := recordedTapPath(rc)
	if err != nil {
		return err
	}
	repoSlug := rc.Inputs.RepoSlug()

	if err := s.ensureBranch(ctx, rc, tapPath, rc.Inputs.Branch); err != nil {
		return err
	}

	visibilityFlag := "--public"
	if rc.Inputs.Visibility == inputs.VisibilityPrivate {
		visibilityFlag = "--private"
	}

	fmt.Printf("    gh repo create %s --source %s --push\n", repoSlug, tapPath)

	_, stderr, exitCode, err := rc.Exec.Run(ctx, "gh",
		"repo", "create", repoSlug,
		"--source", tapPath,
		"--push",
		"--remote", "origin",
		visibilityFlag,
	)
	if err != nil {
		return errors.Wrap(err, "failed to run gh repo create")
	}
	if exitCode != 0 {
		return errors.Errorf("gh repo create exited with status %d: %s", exitCode, strings.TrimSpace(stderr))
	}
	return nil
}

func (s *GhRepoCreateStep) Verify(ctx context.Context, rc *runtime.RunContext, log *logrus.Entry) (step.VerifyStatus, error) {
	tapPath, err := recordedTapPath(rc)
	if err != nil {
		return step.Incomplete, err
	}
	repoSlug := rc.Inputs.RepoSlug()

	exists, err := s.repoExists(ctx, rc, repoSlug)
	if err != nil {
		return step.Incomplete, err
	}
	if !exists {
		return step.Incomplete, nil
	}

	remoteURL, err := s.gitRemoteURL(ctx, rc, tapPath, "origin")
	if err != nil {
		return step.Incomplete, err
	}
	if remoteURL == "" {
		return step.Incomplete, errors.Errorf("GitHub repo exists but no 'origin' remote is set for %s", tapPath)
	}

	urls, err := s.fetchRepoURLs(ctx, rc, repoSlug)
	if err != nil {
		return step.Incomplete, err
	}
	if remoteURL != urls.SSHURL && remoteURL != urls.WebURL && remoteURL != urls.WebURL+".git" {
		return step.Incomplete, errors.Errorf("origin remote does not match repo %s (found: %s)", repoSlug, remoteURL)
	}
	return step.Complete, nil
}

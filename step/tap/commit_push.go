package tap

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/tapsmith/runtime"
	"github.com/mensylisir/tapsmith/step"
	"github.com/mensylisir/tapsmith/util"
)

const commitMessage = "Update tap files"

// CommitAndPushStep stages and commits any local tap changes and pushes the
// branch to origin. A branch behind its upstream is a hard error: pushing
// over unseen remote commits is never attempted.
type CommitAndPushStep struct {
	step.BaseStep
}

func NewCommitAndPushStep() *CommitAndPushStep {
	return &CommitAndPushStep{
		BaseStep: step.NewBaseStep("commit_and_push", "Commit and push changes"),
	}
}

type gitStatus struct {
	dirty       bool
	ahead       int
	behind      int
	hasUpstream bool
	branch      string
}

// parseBranchHeader parses the "## branch...upstream [ahead N, behind M]"
// header line of `git status -sb` output.
func parseBranchHeader(line string) (branch string, hasUpstream bool, ahead, behind int) {
	line = strings.TrimSpace(line)
	rest, ok := strings.CutPrefix(line, "## ")
	if !ok {
		return "", false, 0, 0
	}

	branchPart, tracking, ok := strings.Cut(rest, "...")
	if !ok {
		return strings.TrimSpace(rest), false, 0, 0
	}
	branch = strings.TrimSpace(branchPart)
	hasUpstream = true

	start := strings.Index(tracking, "[")
	if start < 0 {
		return branch, hasUpstream, 0, 0
	}
	end := strings.Index(tracking[start+1:], "]")
	if end < 0 {
		return branch, hasUpstream, 0, 0
	}

	for _, part := range strings.Split(tracking[start+1:start+1+end], ",") {
		part = strings.TrimSpace(part)
		if value, ok := strings.CutPrefix(part, "ahead "); ok {
			ahead, _ = strconv.Atoi(strings.TrimSpace(value))
		} else if value, ok := strings.CutPrefix(part, "behind "); ok {
			behind, _ = strconv.Atoi(strings.TrimSpace(value))
		}
	}
	return branch, hasUpstream, ahead, behind
}

func (s *CommitAndPushStep) statusInfo(ctx context.Context, rc *runtime.RunContext, path string) (gitStatus, error) {
	stdout, stderr, exitCode, err := rc.Exec.Run(ctx, "git", "-C", path, "status", "--porcelain")
	if err != nil {
		return gitStatus{}, errors.Wrap(err, "failed to run git status --porcelain")
	}
	if exitCode != 0 {
		return gitStatus{}, errors.Errorf("git status --porcelain failed: %s", strings.TrimSpace(stderr))
	}
	dirty := strings.TrimSpace(stdout) != ""

	stdout, stderr, exitCode, err = rc.Exec.Run(ctx, "git", "-C", path, "status", "-sb")
	if err != nil {
		return gitStatus{}, errors.Wrap(err, "failed to run git status -sb")
	}
	if exitCode != 0 {
		return gitStatus{}, errors.Errorf("git status -sb failed: %s", strings.TrimSpace(stderr))
	}

	firstLine, _, _ := strings.Cut(stdout, "\n")
	branch, hasUpstream, ahead, behind := parseBranchHeader(firstLine)

	if branch == "" {
		stdout, stderr, exitCode, err = rc.Exec.Run(ctx, "git", "-C", path, "rev-parse", "--abbrev-ref", "HEAD")
		if err != nil {
			return gitStatus{}, errors.Wrap(err, "failed to read current branch")
		}
		if exitCode != 0 {
			return gitStatus{}, errors.Errorf("git rev-parse failed: %s", strings.TrimSpace(stderr))
		}
		branch = strings.TrimSpace(stdout)
	}

	return gitStatus{
		dirty:       dirty,
		ahead:       ahead,
		behind:      behind,
		hasUpstream: hasUpstream,
		branch:      branch,
	}, nil
}

func (s *CommitAndPushStep) ensureOrigin(ctx context.Context, rc *runtime.RunContext, path string) error {
	_, stderr, exitCode, err := rc.Exec.Run(ctx, "git", "-C", path, "remote", "get-url", "origin")
	if err != nil {
		return errors.Wrap(err, "failed to read git remote origin")
	}
	if exitCode != 0 {
		return errors.Errorf("origin remote is missing: %s", strings.TrimSpace(stderr))
	}
	return nil
}

func (s *CommitAndPushStep) commitChanges(ctx context.Context, rc *runtime.RunContext, path string, log *logrus.Entry) error {
	_, stderr, exitCode, err := rc.Exec.Run(ctx, "git", "-C", path, "add", "-A")
	if err != nil {
		return errors.Wrap(err, "failed to stage changes")
	}
	if exitCode != 0 {
		return errors.Errorf("git add exited with status %d: %s", exitCode, strings.TrimSpace(stderr))
	}

	stdout, stderr, exitCode, err := rc.Exec.Run(ctx, "git", "-C", path, "commit", "-m", commitMessage)
	if err != nil {
		return errors.Wrap(err, "failed to commit changes")
	}
	if exitCode == 0 {
		return nil
	}

	// A race between the porcelain check and the commit can leave nothing
	// staged; git reports that through a non-zero exit.
	combined := strings.ToLower(stdout + stderr)
	if strings.Contains(combined, "nothing to commit") {
		log.Debug("Nothing to commit after staging")
		return nil
	}
	return errors.Errorf("git commit failed: %s", strings.TrimSpace(stdout+stderr))
}

func (s *CommitAndPushStep) pushChanges(ctx context.Context, rc *runtime.RunContext, path, branch string, setUpstream bool) error {
	args := []string{"-C", path, "push"}
	if setUpstream {
		args = append(args, "-u", "origin", branch)
	}

	_, stderr, exitCode, err := rc.Exec.Run(ctx, "git", args...)
	if err != nil {
		return errors.Wrap(err, "failed to push changes")
	}
	if exitCode != 0 {
		return errors.Errorf("git push exited with status %d: %s", exitCode, strings.TrimSpace(stderr))
	}
	return nil
}

func (s *CommitAndPushStep) Preflight(ctx context.Context, rc *runtime.RunContext, log *logrus.Entry) error {
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
	return s.ensureOrigin(ctx, rc, tapPath)
}

func (s *CommitAndPushStep) Apply(ctx context.Context, rc *runtime.RunContext, log *logrus.Entry) error {
	tapPath, err := recordedTapPath(rc)
	if err != nil {
		return err
	}

	status, err := s.statusInfo(ctx, rc, tapPath)
	if err != nil {
		return err
	}
	if status.behind > 0 {
		return errors.New("local branch is behind origin; pull is required before pushing")
	}

	if status.dirty {
		if err := s.commitChanges(ctx, rc, tapPath, log); err != nil {
			return err
		}
		if status, err = s.statusInfo(ctx, rc, tapPath); err != nil {
			return err
		}
		if status.behind > 0 {
			return errors.New("local branch is behind origin; pull is required before pushing")
		}
	}

	if status.ahead > 0 || !status.hasUpstream {
		return s.pushChanges(ctx, rc, tapPath, status.branch, !status.hasUpstream)
	}
	return nil
}

func (s *CommitAndPushStep) Verify(ctx context.Context, rc *runtime.RunContext, log *logrus.Entry) (step.VerifyStatus, error) {
	tapPath, err := recordedTapPath(rc)
	if err != nil {
		return step.Incomplete, err
	}

	status, err := s.statusInfo(ctx, rc, tapPath)
	if err != nil {
		return step.Incomplete, err
	}
	if status.behind > 0 {
		return step.Incomplete, errors.New("local branch is behind origin; pull is required before pushing")
	}
	if status.dirty || status.ahead > 0 || !status.hasUpstream {
		return step.Incomplete, nil
	}
	return step.Complete, nil
}

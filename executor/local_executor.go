package executor

import (
	"bytes"
	"context"
	"os"
	"os/exec"

	"github.com/pkg/errors"
)

// localExecutor implements the Executor interface for local machine operations.
type localExecutor struct{}

// NewLocalExecutor creates a new Executor for local operations.
func NewLocalExecutor() Executor {
	return &localExecutor{}
}

func (l *localExecutor) Run(ctx context.Context, name string, args ...string) (string, string, int, error) {
	return l.run(ctx, nil, name, args...)
}

func (l *localExecutor) RunEnv(ctx context.Context, env []string, name string, args ...string) (string, string, int, error) {
	return l.run(ctx, env, name, args...)
}

func (l *localExecutor) run(ctx context.Context, extraEnv []string, name string, args ...string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.String(), stderr.String(), 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// The command ran and exited non-zero; the exit code carries the
		// failure, not the error return.
		return stdout.String(), stderr.String(), exitErr.ExitCode(), nil
	}

	return stdout.String(), stderr.String(), -1, errors.Wrapf(err, "failed to run %s", name)
}

func (l *localExecutor) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.Wrapf(err, "%s not found on PATH", name)
	}
	return path, nil
}

// IsNotFound reports whether err (from Run or LookPath) means the binary
// does not exist, as opposed to existing but failing to start.
func IsNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist)
}

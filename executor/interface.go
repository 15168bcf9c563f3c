package executor

import "context"

// Executor runs external commands on the local machine. Steps never reach
// for os/exec directly; routing every invocation through this interface
// keeps the workflow testable with a fake.
type Executor interface {
	// Run executes a command and waits for it to finish. A non-zero exit
	// status is reported through exitCode with a nil error; err is reserved
	// for spawn failures (command not found, permission denied).
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, exitCode int, err error)

	// RunEnv behaves like Run with extra environment entries ("KEY=value")
	// appended to the current process environment.
	RunEnv(ctx context.Context, env []string, name string, args ...string) (stdout, stderr string, exitCode int, err error)

	// LookPath reports whether the named binary is resolvable on PATH,
	// returning its absolute path.
	LookPath(name string) (string, error)
}

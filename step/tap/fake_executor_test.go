package tap

import (
	"context"
	"strings"
)

type fakeResult struct {
	stdout   string
	stderr   string
	exitCode int
	err      error
}

// fakeExec is a scripted Executor: responses are keyed by the full command
// line, unscripted commands succeed with empty output. Every invocation is
// recorded for assertions.
type fakeExec struct {
	responses map[string]fakeResult
	calls     []string
}

func newFakeExec() *fakeExec {
	return &fakeExec{responses: map[string]fakeResult{}}
}

func (f *fakeExec) script(cmdline string, result fakeResult) {
	f.responses[cmdline] = result
}

func (f *fakeExec) Run(ctx context.Context, name string, args ...string) (string, string, int, error) {
	cmdline := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, cmdline)
	result := f.responses[cmdline]
	return result.stdout, result.stderr, result.exitCode, result.err
}

func (f *fakeExec) RunEnv(ctx context.Context, env []string, name string, args ...string) (string, string, int, error) {
	return f.Run(ctx, name, args...)
}

func (f *fakeExec) LookPath(name string) (string, error) {
	return "/usr/bin/" + name, nil
}

func (f *fakeExec) called(cmdline string) bool {
	for _, call := range f.calls {
		if call == cmdline {
			return true
		}
	}
	return false
}

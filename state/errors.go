package state

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by ReadState when no snapshot exists for a run id.
var ErrNotFound = errors.New("run state not found")

// CorruptError is returned by ReadState when a snapshot exists but cannot be
// decoded, typically after a crash mid-write in an older snapshot layout or
// manual editing.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt run state at %s: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

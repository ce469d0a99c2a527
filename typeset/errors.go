package typeset

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownMutation     = errors.New("unknown mutation kind")
	ErrBatchWhileRendering = errors.New("batch delivered while rendering")
	ErrNotStarted          = errors.New("scheduler not started")
	ErrAlreadyStarted      = errors.New("scheduler already started")
	ErrClosed              = errors.New("scheduler closed")
)

// RenderError wraps a failed or panicking render. The dirty set it covered is
// dropped; the scheduler never retries.
type RenderError struct {
	Cycle uint64
	Nodes int
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render cycle %d over %d nodes: %v", e.Cycle, e.Nodes, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

// Package transform defines the view transform stage contract and the
// chain that composes stages into a pipeline.
//
// A stage is a pure function of its inputs: (stream, hints) -> stream.
// Stages compose left-to-right; identity is the neutral element. A
// stage whose output fails validation is discarded wholesale and the
// previous stream is kept, so the pipeline always has a stream to
// render.
package transform

import (
	"fmt"

	"github.com/dshills/viewpipe/internal/view/core"
)

// Stage rewrites a view stream while keeping its mapping consistent.
// Implementations must not retain state across applications; a stage
// is re-applied from scratch after every edit.
type Stage interface {
	// Name identifies the stage in errors and logs.
	Name() string

	// Apply produces a new stream from the input. The input must not
	// be mutated.
	Apply(stream core.ViewStream, hints core.LayoutHints) (core.ViewStream, error)
}

// Identity is the neutral stage: it returns its input unchanged.
type Identity struct{}

// Name implements Stage.
func (Identity) Name() string { return "identity" }

// Apply implements Stage.
func (Identity) Apply(stream core.ViewStream, _ core.LayoutHints) (core.ViewStream, error) {
	return stream, nil
}

// StageError records a rejected stage application.
type StageError struct {
	Stage string
	Err   error
}

// Error implements error.
func (e StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e StageError) Unwrap() error { return e.Err }

// Chain applies stages strictly sequentially in registration order.
// The zero value is the zero-stage chain, whose application is the
// identity.
type Chain struct {
	stages []Stage
}

// NewChain creates a chain over the given stages.
func NewChain(stages ...Stage) *Chain {
	return &Chain{stages: stages}
}

// Append adds stages to the end of the chain.
func (c *Chain) Append(stages ...Stage) {
	c.stages = append(c.stages, stages...)
}

// Len returns the number of registered stages.
func (c *Chain) Len() int {
	return len(c.stages)
}

// Stages returns the registered stages in application order.
func (c *Chain) Stages() []Stage {
	out := make([]Stage, len(c.stages))
	copy(out, c.stages)
	return out
}

// Apply threads the stream through every stage. A stage that errors
// or produces a structurally invalid stream is skipped: its output is
// discarded in full and the previous stream feeds the next stage.
// Rejections are reported in the returned slice; the stream result is
// always usable.
func (c *Chain) Apply(stream core.ViewStream, hints core.LayoutHints) (core.ViewStream, []StageError) {
	var rejected []StageError
	for _, stage := range c.stages {
		out, err := stage.Apply(stream, hints)
		if err == nil {
			err = out.Validate()
		}
		if err != nil {
			rejected = append(rejected, StageError{Stage: stage.Name(), Err: err})
			continue
		}
		stream = out
	}
	return stream, rejected
}

package view

import (
	"sync"

	"github.com/dshills/viewpipe/internal/view/core"
	"github.com/dshills/viewpipe/internal/view/ingest"
	"github.com/dshills/viewpipe/internal/view/layout"
	"github.com/dshills/viewpipe/internal/view/state"
	"github.com/dshills/viewpipe/internal/view/transform"
)

// Frame is the result of one render pass for a (buffer, split).
type Frame struct {
	// Lines are the final display lines for the render adapter.
	Lines []core.DisplayLine

	// Generation is the ingest generation the frame was built from.
	Generation uint64

	// Rejected lists stages whose output was discarded this frame.
	Rejected []transform.StageError
}

// ViewPosition resolves a source byte offset to the nearest display
// position as (line, column), for cursor and selection placement.
func (f *Frame) ViewPosition(offset core.Anchor) (line, col int, ok bool) {
	bestLine, bestCol := 0, 0
	bestDist := core.Anchor(-1)
	for li := range f.Lines {
		m := f.Lines[li].Mapping
		pos, found := m.ToView(offset)
		if !found {
			continue
		}
		a := m.At(pos)
		dist := a - offset
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			bestLine, bestCol, bestDist = li, pos, dist
			if dist == 0 {
				break
			}
		}
	}
	if bestDist < 0 {
		return 0, 0, false
	}
	return bestLine, bestCol, true
}

// SourceOffset resolves a display position to its source byte offset.
// Returns false for generated content (margins, injected breaks,
// overlay text).
func (f *Frame) SourceOffset(line, col int) (core.Anchor, bool) {
	if line < 0 || line >= len(f.Lines) {
		return core.NoAnchor, false
	}
	return f.Lines[line].Mapping.ToSource(col)
}

// pairKey identifies a (buffer, split) stage registration.
type pairKey struct {
	buffer state.BufferID
	split  state.SplitID
}

// Options configures a Pipeline.
type Options struct {
	Ingest ingest.Options
	Layout layout.Options

	// Defaults derives initial view state per buffer; nil means
	// source mode for everything.
	Defaults state.DefaultsFunc
}

// DefaultOptions returns default pipeline options.
func DefaultOptions() Options {
	return Options{
		Ingest: ingest.DefaultOptions(),
		Layout: layout.DefaultOptions(),
	}
}

// Pipeline orchestrates ingest, transform stages, and layout per
// (buffer, split) frame. The only shared mutable resource is the view
// state store; render passes are single-threaded per split.
type Pipeline struct {
	mu sync.RWMutex

	store      *state.Store
	engine     *layout.Engine
	ingestOpts ingest.Options
	stages     map[pairKey]*transform.Chain
}

// NewPipeline creates a pipeline.
func NewPipeline(opts Options) *Pipeline {
	return &Pipeline{
		store:      state.NewStore(opts.Defaults),
		engine:     layout.NewEngine(opts.Layout),
		ingestOpts: opts.Ingest,
		stages:     make(map[pairKey]*transform.Chain),
	}
}

// Store exposes the view state store for collaborators (hint ops,
// persistence, plugin extras).
func (p *Pipeline) Store() *state.Store {
	return p.store
}

// RegisterStage appends an external stage for a (buffer, split), to
// run after the mode stages in registration order.
func (p *Pipeline) RegisterStage(buffer state.BufferID, split state.SplitID, stage transform.Stage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	k := pairKey{buffer: buffer, split: split}
	chain, ok := p.stages[k]
	if !ok {
		chain = transform.NewChain()
		p.stages[k] = chain
	}
	chain.Append(stage)
}

// Invalidate advances the ingest generation for (buffer, split),
// dropping in-flight transform submissions against the old snapshot.
// Called on every source edit.
func (p *Pipeline) Invalidate(buffer state.BufferID, split state.SplitID) uint64 {
	return p.store.BumpGeneration(buffer, split)
}

// SubmitViewTransform submits an externally computed view transform.
// Returns state.ErrStaleTransform on generation mismatch.
func (p *Pipeline) SubmitViewTransform(payload state.Payload) error {
	return p.store.SubmitTransform(payload)
}

// RenderFrame runs one full render pass: ingest the viewport window,
// replay the submitted external transform if still current, apply
// mode and registered stages, then lay out display lines with the
// active hints. On any rejection the last-known-good stream carries
// forward; the frame is never empty.
func (p *Pipeline) RenderFrame(buffer state.BufferID, split state.SplitID, slice []byte, overlays []ingest.Overlay, vp ingest.Viewport) (*Frame, error) {
	p.store.OpenSplit(split, buffer)
	if active, _, err := p.store.ActiveState(split); err == nil && active != buffer {
		if err := p.store.SwitchBuffer(split, buffer); err != nil {
			return nil, err
		}
	}

	_, bvs, err := p.store.ActiveState(split)
	if err != nil {
		return nil, err
	}
	gen := p.store.Generation(buffer, split)

	// Wrap, margins, and guides are compose-view behavior. Source mode
	// is the raw text view: the recorded hints stay in the state but do
	// not reach the stages or the layout engine.
	var hints core.LayoutHints
	if bvs.Mode == state.ModeCompose {
		hints = bvs.Hints()
	}

	stream := ingest.Ingest(slice, overlays, vp, p.ingestOpts)

	var rejected []transform.StageError

	// Replay the analyzer's submitted stream while its generation is
	// current. A stale or structurally invalid stream is dropped in
	// full; ingest's stream is the fallback. The stored stream is
	// cloned so stages downstream never see a shared container.
	if lt := bvs.LastTransform; lt != nil && lt.Generation == gen {
		candidate := lt.Stream.Clone()
		candidate.SourceLen = len(slice)
		if err := candidate.Validate(); err == nil {
			stream = candidate
		} else {
			rejected = append(rejected, transform.StageError{Stage: "submitted-transform", Err: err})
		}
	}

	chain := p.chainFor(buffer, split, bvs.Mode)
	stream, chainRejected := chain.Apply(stream, hints)
	rejected = append(rejected, chainRejected...)

	lines := p.engine.Layout(stream, hints)

	p.store.Dirty(split)

	return &Frame{
		Lines:      lines,
		Generation: gen,
		Rejected:   rejected,
	}, nil
}

// chainFor assembles the stage chain for a frame: mode stages first,
// then externally registered stages in submission order.
func (p *Pipeline) chainFor(buffer state.BufferID, split state.SplitID, mode state.Mode) *transform.Chain {
	p.mu.RLock()
	defer p.mu.RUnlock()

	chain := transform.NewChain()
	if mode == state.ModeCompose {
		chain.Append(transform.SoftBreakFold{}, transform.ColumnGuides{})
	}
	if ext, ok := p.stages[pairKey{buffer: buffer, split: split}]; ok && ext.Len() > 0 {
		chain.Append(ext.Stages()...)
	}
	return chain
}

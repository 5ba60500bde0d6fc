package view

import (
	"testing"

	"github.com/dshills/viewpipe/internal/view/core"
	"github.com/dshills/viewpipe/internal/view/ingest"
	"github.com/dshills/viewpipe/internal/view/state"
)

func composeDefaults(width int) state.DefaultsFunc {
	return func(state.BufferID) *state.BufferViewState {
		bvs := state.NewBufferViewState(state.ModeCompose)
		bvs.ComposeWidth = width
		return bvs
	}
}

func render(t *testing.T, p *Pipeline, buf state.BufferID, split state.SplitID, src string) *Frame {
	t.Helper()
	frame, err := p.RenderFrame(buf, split, []byte(src), nil, ingest.Viewport{})
	if err != nil {
		t.Fatalf("render frame: %v", err)
	}
	return frame
}

func TestIdentityFallback(t *testing.T) {
	// With no registered stage and source mode, every source offset's
	// inverse lookup lands exactly on that character.
	p := NewPipeline(DefaultOptions())
	split := state.NewSplitID()
	src := "hello\nworld"

	frame := render(t, p, "buf", split, src)

	checks := []struct {
		offset core.Anchor
		line   int
		col    int
	}{
		{0, 0, 0},
		{2, 0, 2},
		{5, 0, 5}, // the newline itself
		{6, 1, 0},
		{10, 1, 4},
	}
	for _, c := range checks {
		line, col, ok := frame.ViewPosition(c.offset)
		if !ok {
			t.Fatalf("offset %d: no view position", c.offset)
		}
		if line != c.line || col != c.col {
			t.Errorf("offset %d = (%d,%d), want (%d,%d)", c.offset, line, col, c.line, c.col)
		}
		// And the forward direction agrees.
		if a, ok := frame.SourceOffset(line, col); !ok || a != c.offset {
			t.Errorf("position (%d,%d) = offset %d, want %d", line, col, a, c.offset)
		}
	}
}

func TestComposeSoftBreakRoundTrip(t *testing.T) {
	p := NewPipeline(Options{
		Ingest:   ingest.DefaultOptions(),
		Defaults: composeDefaults(0),
	})
	split := state.NewSplitID()

	frame := render(t, p, "doc.md", split, "a\nb")

	if len(frame.Lines) != 1 {
		t.Fatalf("got %d lines, want 1 (newline folded)", len(frame.Lines))
	}
	if got := frame.Lines[0].ContentText(); got != "a b" {
		t.Errorf("got %q, want %q", got, "a b")
	}
	// The folded space still resolves to the newline's byte.
	if a, ok := frame.SourceOffset(0, 1); !ok || a != 1 {
		t.Errorf("folded space = offset %d, want 1", a)
	}
}

func TestComposeWrap(t *testing.T) {
	p := NewPipeline(Options{
		Ingest:   ingest.DefaultOptions(),
		Defaults: composeDefaults(5),
	})
	split := state.NewSplitID()

	frame := render(t, p, "doc.md", split, "hello world")

	if len(frame.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(frame.Lines))
	}
	if frame.Lines[1].ContentText() != "world" {
		t.Errorf("line 1 = %q, want %q", frame.Lines[1].ContentText(), "world")
	}
}

func TestClearComposeWidthDisablesWrap(t *testing.T) {
	p := NewPipeline(Options{
		Ingest:   ingest.DefaultOptions(),
		Defaults: composeDefaults(5),
	})
	split := state.NewSplitID()

	frame := render(t, p, "doc.md", split, "hello world")
	if len(frame.Lines) != 2 {
		t.Fatalf("got %d lines, want 2 before clearing", len(frame.Lines))
	}

	if err := p.Store().SetComposeWidth(split, 0); err != nil {
		t.Fatalf("clear compose width: %v", err)
	}

	frame = render(t, p, "doc.md", split, "hello world")
	if len(frame.Lines) != 1 {
		t.Fatalf("got %d lines, want 1 (wrapping disabled)", len(frame.Lines))
	}
	if got := frame.Lines[0].ContentText(); got != "hello world" {
		t.Errorf("got %q, want %q", got, "hello world")
	}
}

func TestSourceModeIgnoresComposeHints(t *testing.T) {
	// A buffer toggled back to source keeps its recorded widths in the
	// state but renders as raw text: no wrap, no margins.
	p := NewPipeline(Options{
		Ingest: ingest.DefaultOptions(),
		Defaults: func(state.BufferID) *state.BufferViewState {
			bvs := state.NewBufferViewState(state.ModeSource)
			bvs.ComposeWidth = 5
			bvs.MaxWidth = 9
			return bvs
		},
	})
	split := state.NewSplitID()

	frame := render(t, p, "doc.md", split, "hello world")
	if len(frame.Lines) != 1 {
		t.Fatalf("got %d lines, want 1 (no wrapping)", len(frame.Lines))
	}
	line := frame.Lines[0]
	if line.LeftMargin != 0 || line.RightMargin != 0 {
		t.Errorf("margins = %d/%d, want 0/0", line.LeftMargin, line.RightMargin)
	}
	if got := line.Text(); got != "hello world" {
		t.Errorf("got %q, want raw text", got)
	}

	// Toggling to compose brings the recorded hints back.
	if _, err := p.Store().ToggleComposeMode(split); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	frame = render(t, p, "doc.md", split, "hello world")
	if len(frame.Lines) != 2 {
		t.Errorf("got %d lines after toggle, want 2 (wrapped)", len(frame.Lines))
	}
	if frame.Lines[0].LeftMargin != 2 {
		t.Errorf("left margin = %d after toggle, want 2", frame.Lines[0].LeftMargin)
	}
}

func TestStaleSubmissionLeavesStreamUnchanged(t *testing.T) {
	p := NewPipeline(DefaultOptions())
	split := state.NewSplitID()
	src := "abc"

	frame := render(t, p, "buf", split, src)
	gen := frame.Generation

	// An edit invalidates the snapshot the submitter observed.
	p.Invalidate("buf", split)

	payload := state.Payload{
		BufferID:   "buf",
		SplitID:    split,
		Stream:     core.NewStream([]core.Token{core.TextToken("REWRITTEN", core.NoAnchor)}, len(src)),
		Generation: gen,
	}
	if err := p.SubmitViewTransform(payload); err == nil {
		t.Fatal("stale submission should be rejected")
	}

	next := render(t, p, "buf", split, src)
	if got := next.Lines[0].ContentText(); got != "abc" {
		t.Errorf("stream changed after stale submission: %q", got)
	}
}

func TestCurrentSubmissionApplied(t *testing.T) {
	p := NewPipeline(DefaultOptions())
	split := state.NewSplitID()
	src := "abc"

	frame := render(t, p, "buf", split, src)

	payload := state.Payload{
		BufferID:   "buf",
		SplitID:    split,
		Stream:     core.NewStream([]core.Token{core.TextToken("abc!", core.NoAnchor)}, len(src)),
		Generation: frame.Generation,
	}
	if err := p.SubmitViewTransform(payload); err != nil {
		t.Fatalf("current submission rejected: %v", err)
	}

	next := render(t, p, "buf", split, src)
	if got := next.Lines[0].ContentText(); got != "abc!" {
		t.Errorf("submission not applied: %q", got)
	}
}

func TestRejectedStageKeepsLastKnownGood(t *testing.T) {
	p := NewPipeline(DefaultOptions())
	split := state.NewSplitID()

	p.RegisterStage("buf", split, badStage{})

	frame := render(t, p, "buf", split, "abc")
	if len(frame.Rejected) != 1 {
		t.Fatalf("got %d rejections, want 1", len(frame.Rejected))
	}
	if got := frame.Lines[0].ContentText(); got != "abc" {
		t.Errorf("rejected stage altered output: %q", got)
	}
}

// badStage emits an out-of-slice anchor.
type badStage struct{}

func (badStage) Name() string { return "bad" }

func (badStage) Apply(stream core.ViewStream, _ core.LayoutHints) (core.ViewStream, error) {
	return core.NewStream([]core.Token{core.TextToken("x", 500)}, stream.SourceLen), nil
}

func TestRegisteredStageRuns(t *testing.T) {
	p := NewPipeline(DefaultOptions())
	split := state.NewSplitID()

	p.RegisterStage("buf", split, prefixStage{})

	frame := render(t, p, "buf", split, "abc")
	if got := frame.Lines[0].ContentText(); got != "* abc" {
		t.Errorf("got %q, want %q", got, "* abc")
	}
}

// prefixStage injects generated text at the stream head.
type prefixStage struct{}

func (prefixStage) Name() string { return "prefix" }

func (prefixStage) Apply(stream core.ViewStream, _ core.LayoutHints) (core.ViewStream, error) {
	tokens := append([]core.Token{core.TextToken("* ", core.NoAnchor)}, stream.Tokens...)
	return core.NewStream(tokens, stream.SourceLen), nil
}

func TestMappingLengthInvariantEndToEnd(t *testing.T) {
	p := NewPipeline(Options{
		Ingest:   ingest.DefaultOptions(),
		Defaults: composeDefaults(10),
	})
	split := state.NewSplitID()

	frame := render(t, p, "doc.md", split, "one two three four five\n\nnext paragraph here")

	for i, line := range frame.Lines {
		cells := 0
		for _, seg := range line.Segments {
			if !seg.Margin {
				cells += len([]rune(seg.Text))
			}
		}
		// Terminator cells (newlines, breaks) are in the mapping but
		// not in the segment text.
		if line.Mapping.Len() < cells {
			t.Errorf("line %d: mapping %d < visible cells %d", i, line.Mapping.Len(), cells)
		}
	}
}

func TestEmptySourceRendersOneEmptyLine(t *testing.T) {
	p := NewPipeline(DefaultOptions())
	split := state.NewSplitID()

	frame := render(t, p, "buf", split, "")
	if len(frame.Lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(frame.Lines))
	}
	if _, _, ok := frame.ViewPosition(0); ok {
		t.Error("empty frame should have no resolvable positions")
	}
}

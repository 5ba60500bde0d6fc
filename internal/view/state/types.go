// Package state owns per-(buffer, split) view state: mode, layout
// hints, the last-submitted external transform, and opaque plugin
// extras. Exactly one authoritative BufferViewState exists per
// (buffer, split) pair at all times, either active or keyed.
package state

import (
	"github.com/google/uuid"

	"github.com/dshills/viewpipe/internal/view/core"
)

// BufferID identifies a buffer.
type BufferID string

// SplitID identifies a split pane.
type SplitID string

// NewSplitID creates a unique split identifier.
func NewSplitID() SplitID {
	return SplitID(uuid.NewString())
}

// Mode selects the view rendering mode for a buffer in a split.
type Mode uint8

// View modes.
const (
	// ModeSource is the raw text view with logical-line navigation.
	ModeSource Mode = iota

	// ModeCompose is the structured, styled view with soft-break
	// folding and width-aware wrapping.
	ModeCompose
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeCompose {
		return "compose"
	}
	return "source"
}

// SubmittedTransform is the retained result of an external transform
// submission, replayed each frame while its generation stays current.
type SubmittedTransform struct {
	Stream     core.ViewStream
	Hints      *core.LayoutHints
	Generation uint64
}

// BufferViewState is the per-(buffer, split) view state.
type BufferViewState struct {
	Mode          Mode
	ComposeWidth  int
	MaxWidth      int
	ColumnGuides  []int
	LastTransform *SubmittedTransform

	// pluginExtra is an opaque JSON document owned by collaborators,
	// read and written by key path without the core interpreting it.
	pluginExtra []byte
}

// NewBufferViewState creates a view state with defaults for the given
// mode.
func NewBufferViewState(mode Mode) *BufferViewState {
	return &BufferViewState{
		Mode:        mode,
		pluginExtra: []byte(`{}`),
	}
}

// PluginExtra returns the raw opaque JSON document.
func (s *BufferViewState) PluginExtra() []byte {
	out := make([]byte, len(s.pluginExtra))
	copy(out, s.pluginExtra)
	return out
}

// SetPluginExtra replaces the opaque JSON document, as when restoring
// persisted state. A nil or empty value resets to an empty document.
func (s *BufferViewState) SetPluginExtra(extra []byte) {
	if len(extra) == 0 {
		extra = []byte(`{}`)
	}
	s.pluginExtra = append([]byte{}, extra...)
}

// Hints returns the layout hints implied by the state.
func (s *BufferViewState) Hints() core.LayoutHints {
	return core.LayoutHints{
		ComposeWidth: s.ComposeWidth,
		MaxWidth:     s.MaxWidth,
		ColumnGuides: append([]int{}, s.ColumnGuides...),
	}
}

// applyHints merges hints into the state.
func (s *BufferViewState) applyHints(hints core.LayoutHints) {
	merged := s.Hints().Merge(hints)
	s.ComposeWidth = merged.ComposeWidth
	s.MaxWidth = merged.MaxWidth
	s.ColumnGuides = merged.ColumnGuides
}

// SplitViewState is the per-split state: one active buffer view plus
// the keyed states of every other buffer this split has displayed.
// Keyed never contains the active buffer; a switch swaps states, it
// never duplicates them.
type SplitViewState struct {
	ActiveBuffer BufferID
	Active       *BufferViewState
	Keyed        map[BufferID]*BufferViewState
}

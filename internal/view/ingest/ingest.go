// Package ingest builds the initial token stream for a render frame
// from a read-only source slice. Ingest is a pure function of its
// inputs: identical (slice, overlays, viewport) always yields a
// byte-identical stream and mapping.
package ingest

import (
	"sort"
	"unicode/utf8"

	"github.com/dshills/viewpipe/internal/view/core"
)

// Overlay is virtual text spliced into the stream at a declared source
// offset. Overlay content carries no source anchor.
type Overlay struct {
	// Offset is the absolute byte offset the overlay attaches to.
	Offset int

	// Content is the overlay text.
	Content string

	// Style is carried through to the render adapter.
	Style core.Style
}

// Viewport selects the window of the source slice to ingest.
type Viewport struct {
	// TopByte is the absolute byte offset of the first ingested byte.
	TopByte int

	// VisibleLength is the number of bytes to ingest. 0 means the
	// rest of the slice.
	VisibleLength int
}

// Options configures ingest.
type Options struct {
	// TabWidth is the tab expansion width. Defaults to 4.
	TabWidth int
}

// DefaultOptions returns the default ingest options.
func DefaultOptions() Options {
	return Options{TabWidth: 4}
}

// Ingest splits the viewport window of the slice into Text, Newline,
// and Space tokens, splicing overlays in at their declared offsets.
// Tab expansion emits Space(n) with n the distance to the next tab
// stop. An empty slice yields an empty stream, not an error.
//
// Anchors are absolute offsets into the full slice, so the stream's
// source length is the whole slice even when the viewport narrows the
// window.
func Ingest(slice []byte, overlays []Overlay, vp Viewport, opts Options) core.ViewStream {
	if opts.TabWidth < 1 {
		opts.TabWidth = 4
	}

	start, end := window(len(slice), vp)

	// Overlays inside the window, in offset order. Order among
	// overlays at the same offset follows submission order; overlays
	// sort before any break injected at the same position later in
	// the pipeline.
	pending := overlaysInWindow(overlays, start, end)
	next := 0

	var tokens []core.Token
	col := 0 // visual column since last newline, for tab stops
	pos := start

	flushOverlays := func(at int) {
		for next < len(pending) && pending[next].Offset <= at {
			ov := pending[next]
			if ov.Content != "" {
				tokens = append(tokens, core.TextToken(ov.Content, core.NoAnchor).WithStyle(ov.Style))
			}
			next++
		}
	}

	var textStart = -1
	flushText := func() {
		if textStart < 0 {
			return
		}
		tokens = append(tokens, core.TextToken(string(slice[textStart:pos]), core.Anchor(textStart)))
		textStart = -1
	}

	for pos < end {
		// An overlay declared mid-word splits the text token at its
		// exact insertion offset.
		if next < len(pending) && pending[next].Offset == pos {
			flushText()
			flushOverlays(pos)
		}

		b := slice[pos]
		switch b {
		case '\n':
			flushText()
			flushOverlays(pos)
			tokens = append(tokens, core.NewlineToken(core.Anchor(pos)))
			col = 0
			pos++
		case '\t':
			flushText()
			flushOverlays(pos)
			n := opts.TabWidth - (col % opts.TabWidth)
			tokens = append(tokens, core.SpaceToken(n, core.Anchor(pos)))
			col += n
			pos++
		case ' ':
			flushText()
			flushOverlays(pos)
			tokens = append(tokens, core.SpaceToken(1, core.Anchor(pos)))
			col++
			pos++
		default:
			r, size := utf8.DecodeRune(slice[pos:])
			if r == utf8.RuneError && size <= 1 {
				// Invalid byte: emit a lone replacement token so the
				// surrounding text tokens stay byte-accurate.
				flushText()
				flushOverlays(pos)
				tokens = append(tokens, core.TextToken(string(utf8.RuneError), core.Anchor(pos)))
				col++
				pos++
				continue
			}
			if textStart < 0 {
				flushOverlays(pos)
				textStart = pos
			}
			pos += size
			col++ // approximate; layout recomputes real widths
		}
	}
	flushText()
	flushOverlays(end)

	return core.NewStream(tokens, len(slice))
}

// window clamps the viewport to the slice bounds.
func window(sliceLen int, vp Viewport) (start, end int) {
	start = vp.TopByte
	if start < 0 {
		start = 0
	}
	if start > sliceLen {
		start = sliceLen
	}
	end = sliceLen
	if vp.VisibleLength > 0 && start+vp.VisibleLength < end {
		end = start + vp.VisibleLength
	}
	return start, end
}

// overlaysInWindow returns the overlays attaching inside [start, end],
// sorted by offset with submission order preserved within an offset.
func overlaysInWindow(overlays []Overlay, start, end int) []Overlay {
	var out []Overlay
	for _, ov := range overlays {
		if ov.Offset >= start && ov.Offset <= end {
			out = append(out, ov)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Offset < out[j].Offset
	})
	return out
}

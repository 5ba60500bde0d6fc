// Package layout is the built-in terminal transform stage: width-aware
// wrapping and centering of a token stream into final display lines,
// each carrying the mapping slice for exactly its characters.
package layout

import (
	"github.com/dshills/viewpipe/internal/view/core"
)

// Options configures the layout engine.
type Options struct {
	// BaseBackground is the content background color; the margin tint
	// is derived from it. Default colors produce a dim-only margin.
	BaseBackground core.Color
}

// DefaultOptions returns default layout options.
func DefaultOptions() Options {
	return Options{BaseBackground: core.ColorDefault}
}

// Engine performs greedy word-wrap with no hyphenation, plus symmetric
// margin centering. It never breaks inside a Text token: wrapping
// happens only at Space/Newline/Break boundaries already present in
// the stream.
type Engine struct {
	marginStyle core.Style
}

// NewEngine creates a layout engine.
func NewEngine(opts Options) *Engine {
	style := core.DefaultStyle().Dim()
	if !opts.BaseBackground.IsDefault() {
		tint := opts.BaseBackground.Tint(core.ColorFromRGB(128, 128, 128), 0.15)
		style = style.WithBackground(tint)
	}
	return &Engine{marginStyle: style}
}

// MarginStyle returns the style applied to margin padding.
func (e *Engine) MarginStyle() core.Style {
	return e.marginStyle
}

// lineBuilder accumulates one display line.
type lineBuilder struct {
	tokens  []core.Token
	anchors []core.Anchor
	width   int
}

func (b *lineBuilder) add(t core.Token, anchors []core.Anchor) {
	b.tokens = append(b.tokens, t)
	b.anchors = append(b.anchors, anchors...)
	b.width += t.Width()
}

func (b *lineBuilder) empty() bool {
	return len(b.tokens) == 0
}

// Layout walks the stream and produces final display lines.
//
// Wrapping: when a token would push the accumulated width past
// ComposeWidth, a Break(soft, injected) with no source anchor is
// inserted and a new line starts. A single token wider than
// ComposeWidth is placed alone on its own line; width overflow is
// tolerated, never forced-split. ComposeWidth 0 disables wrapping.
//
// Margins: when MaxWidth exceeds ComposeWidth, each line is padded
// with symmetric margins of (MaxWidth-ComposeWidth)/2 columns, styled
// with the margin tint and excluded from the line's mapping.
func (e *Engine) Layout(stream core.ViewStream, hints core.LayoutHints) []core.DisplayLine {
	var lines []core.DisplayLine
	cur := &lineBuilder{}
	margin := hints.MarginWidth()

	flush := func() {
		lines = append(lines, e.finishLine(cur, margin))
		cur = &lineBuilder{}
	}

	anchors := stream.Mapping.Anchors()
	cell := 0

	for _, t := range stream.Tokens {
		cellAnchors := anchorsFor(anchors, cell, t.Cells())
		cell += t.Cells()

		switch t.Kind {
		case core.KindNewline, core.KindBreak:
			// Line terminators end the line they sit on; their cell
			// stays in that line's mapping so a cursor on the
			// terminator resolves to its source byte.
			cur.add(t, cellAnchors)
			flush()
			continue
		}

		if hints.Wrapping() && !cur.empty() && cur.width+t.Width() > hints.ComposeWidth {
			// Inject a wrap break and start a new line. The break is
			// generated content: no source anchor.
			br := core.BreakToken(core.BreakSoft, true, core.NoAnchor)
			cur.add(br, []core.Anchor{core.NoAnchor})
			flush()

			// A leading space after a wrap would misalign the new
			// line, but its mapping entry must survive: fold it into
			// the break's line instead of dropping it.
			if t.Kind == core.KindSpace {
				last := &lines[len(lines)-1]
				last.Mapping.Append(cellAnchors...)
				continue
			}
		}

		cur.add(t, cellAnchors)
	}

	if !cur.empty() {
		flush()
	}
	if len(lines) == 0 {
		lines = append(lines, e.finishLine(cur, margin))
	}
	return lines
}

// finishLine converts an accumulated line into a DisplayLine.
func (e *Engine) finishLine(b *lineBuilder, margin int) core.DisplayLine {
	line := core.DisplayLine{
		Mapping:     core.NewMapping(b.anchors),
		Width:       b.width,
		LeftMargin:  margin,
		RightMargin: margin,
	}

	if margin > 0 {
		line.Segments = append(line.Segments, core.Segment{
			Text:   spaces(margin),
			Style:  e.marginStyle,
			Margin: true,
		})
	}

	line.Segments = append(line.Segments, segments(b.tokens)...)

	if margin > 0 {
		line.Segments = append(line.Segments, core.Segment{
			Text:   spaces(margin),
			Style:  e.marginStyle,
			Margin: true,
		})
	}

	return line
}

// segments groups consecutive same-styled tokens into segments.
func segments(tokens []core.Token) []core.Segment {
	var segs []core.Segment
	for _, t := range tokens {
		text := tokenText(t)
		if text == "" {
			continue
		}
		style := t.Style
		if style == (core.Style{}) {
			style = core.DefaultStyle()
		}
		if n := len(segs); n > 0 && segs[n-1].Style.Equals(style) {
			segs[n-1].Text += text
			continue
		}
		segs = append(segs, core.Segment{Text: text, Style: style})
	}
	return segs
}

// tokenText returns the visible text of a token within a line.
// Terminators contribute nothing.
func tokenText(t core.Token) string {
	switch t.Kind {
	case core.KindText:
		return t.Content
	case core.KindSpace:
		return spaces(t.Count)
	default:
		return ""
	}
}

// anchorsFor slices the per-cell anchors for a token.
func anchorsFor(anchors []core.Anchor, start, n int) []core.Anchor {
	if start >= len(anchors) {
		return nil
	}
	end := start + n
	if end > len(anchors) {
		end = len(anchors)
	}
	return anchors[start:end]
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

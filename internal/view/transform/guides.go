package transform

import "github.com/dshills/viewpipe/internal/view/core"

// GuideRune is the glyph inserted for a column guide.
const GuideRune = '│'

// ColumnGuides inserts a guide glyph at each hinted column on every
// line wide enough to reach it. Guides are generated content: their
// tokens and mapping entries carry NoAnchor, and dropped view
// positions never occur (insertion only), so the mapping is patched
// by splicing rather than rebuilt.
//
// Placement is at token boundaries only. A hinted column that falls
// inside a single token's width gets its guide at the next boundary;
// tokens are never split.
type ColumnGuides struct{}

// Name implements Stage.
func (ColumnGuides) Name() string { return "column-guides" }

// Apply implements Stage.
func (ColumnGuides) Apply(stream core.ViewStream, hints core.LayoutHints) (core.ViewStream, error) {
	if len(hints.ColumnGuides) == 0 {
		return stream, nil
	}

	out := core.ViewStream{
		Mapping:   core.NewMapping(stream.Mapping.Anchors()),
		SourceLen: stream.SourceLen,
	}
	out.Tokens = make([]core.Token, 0, len(stream.Tokens))

	col := 0  // display column on the current line
	cell := 0 // view position of the next token's first cell, in out
	nextGuide := 0

	insertGuide := func() {
		out.Tokens = append(out.Tokens, core.TextToken(string(GuideRune), core.NoAnchor))
		out.Mapping.InsertAt(cell, core.NoAnchor)
		cell++
		col++
		nextGuide++
	}

	for _, t := range stream.Tokens {
		if t.Kind == core.KindNewline || t.Kind == core.KindBreak {
			col = 0
			nextGuide = 0
			out.Tokens = append(out.Tokens, t)
			cell += t.Cells()
			continue
		}

		for nextGuide < len(hints.ColumnGuides) && col >= hints.ColumnGuides[nextGuide] {
			insertGuide()
		}

		out.Tokens = append(out.Tokens, t)
		col += t.Width()
		cell += t.Cells()
	}

	return out, nil
}

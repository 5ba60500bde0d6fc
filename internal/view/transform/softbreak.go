package transform

import "github.com/dshills/viewpipe/internal/view/core"

// SoftBreakFold rewrites newlines inside a paragraph into single
// spaces so compose mode can reflow prose. Each rewritten token keeps
// its source anchor, so the mapping stays valid without recomputation:
// the view position of the folded space still resolves to the original
// newline's byte offset.
//
// Paragraph boundaries survive: a newline adjacent to another newline
// (a blank line) is left alone, as are hard breaks.
type SoftBreakFold struct{}

// Name implements Stage.
func (SoftBreakFold) Name() string { return "softbreak-fold" }

// Apply implements Stage.
func (SoftBreakFold) Apply(stream core.ViewStream, _ core.LayoutHints) (core.ViewStream, error) {
	tokens := make([]core.Token, len(stream.Tokens))
	copy(tokens, stream.Tokens)

	for i, t := range tokens {
		if t.Kind != core.KindNewline {
			continue
		}
		if adjacentNewline(tokens, i) {
			continue
		}
		// Kind rewrite in place; cell count (1) and anchor unchanged.
		tokens[i] = core.SpaceToken(1, t.Anchor)
	}

	return core.ViewStream{
		Tokens:    tokens,
		Mapping:   core.NewMapping(stream.Mapping.Anchors()),
		SourceLen: stream.SourceLen,
	}, nil
}

// adjacentNewline reports whether the newline at index i borders
// another newline, i.e. participates in a blank line.
func adjacentNewline(tokens []core.Token, i int) bool {
	if i > 0 && tokens[i-1].Kind == core.KindNewline {
		return true
	}
	if i+1 < len(tokens) && tokens[i+1].Kind == core.KindNewline {
		return true
	}
	return false
}

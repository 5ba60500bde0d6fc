// Package core provides shared types for the view pipeline.
// This package breaks import cycles between ingest, transform, and layout.
package core

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Anchor is a byte offset into the ingested source slice.
// NoAnchor marks generated content with no source correspondence.
type Anchor int

// NoAnchor is the sentinel anchor for generated content
// (injected breaks, overlay text, margins).
const NoAnchor Anchor = -1

// Valid returns true if the anchor references a source byte.
func (a Anchor) Valid() bool {
	return a >= 0
}

// InRange returns true if the anchor is NoAnchor or references a byte
// inside a slice of the given length.
func (a Anchor) InRange(srcLen int) bool {
	return a == NoAnchor || (a >= 0 && int(a) < srcLen)
}

// TokenKind identifies the variant of a token.
type TokenKind uint8

// Token kinds.
const (
	KindText TokenKind = iota
	KindNewline
	KindSpace
	KindBreak
)

// String returns the kind name.
func (k TokenKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNewline:
		return "newline"
	case KindSpace:
		return "space"
	case KindBreak:
		return "break"
	default:
		return "unknown"
	}
}

// BreakKind distinguishes soft (rendering-only) from hard
// (source-significant) breaks.
type BreakKind uint8

// Break kinds.
const (
	BreakSoft BreakKind = iota
	BreakHard
)

// String returns the break kind name.
func (b BreakKind) String() string {
	if b == BreakHard {
		return "hard"
	}
	return "soft"
}

// Token is one element of a view stream. Tokens are immutable value
// objects; transforms produce new tokens rather than mutating.
type Token struct {
	// Kind selects which of the remaining fields are meaningful.
	Kind TokenKind

	// Content holds the text for KindText tokens.
	Content string

	// Count holds the space width for KindSpace tokens.
	Count int

	// Break holds the break kind for KindBreak tokens.
	Break BreakKind

	// Injected marks breaks inserted by the layout engine rather than
	// present in the source or a transform's output.
	Injected bool

	// Anchor is the source byte offset of the token's first cell,
	// or NoAnchor for generated content.
	Anchor Anchor

	// Style is the token's base style. The zero value means unstyled;
	// the layout engine substitutes the default style.
	Style Style
}

// TextToken creates a text token anchored at the given offset.
func TextToken(content string, anchor Anchor) Token {
	return Token{Kind: KindText, Content: content, Anchor: anchor}
}

// NewlineToken creates a newline token anchored at the given offset.
func NewlineToken(anchor Anchor) Token {
	return Token{Kind: KindNewline, Anchor: anchor}
}

// SpaceToken creates a space token of the given width.
func SpaceToken(count int, anchor Anchor) Token {
	if count < 1 {
		count = 1
	}
	return Token{Kind: KindSpace, Count: count, Anchor: anchor}
}

// BreakToken creates a break token.
func BreakToken(kind BreakKind, injected bool, anchor Anchor) Token {
	return Token{Kind: KindBreak, Break: kind, Injected: injected, Anchor: anchor}
}

// Cells returns the number of view positions the token occupies.
// Newlines and breaks occupy one position each so the mapping can
// resolve a cursor sitting on them back to a source byte.
func (t Token) Cells() int {
	switch t.Kind {
	case KindText:
		return uniseg.GraphemeClusterCount(t.Content)
	case KindSpace:
		return t.Count
	default:
		return 1
	}
}

// Width returns the display width of the token in terminal columns.
// Line terminators contribute no width.
func (t Token) Width() int {
	switch t.Kind {
	case KindText:
		return runewidth.StringWidth(t.Content)
	case KindSpace:
		return t.Count
	default:
		return 0
	}
}

// IsBoundary returns true if the layout engine may start a new line
// after this token (greedy word wrap never splits inside text).
func (t Token) IsBoundary() bool {
	return t.Kind == KindSpace || t.Kind == KindNewline || t.Kind == KindBreak
}

// CellAnchors returns the per-cell anchor sequence for the token.
// Text cells anchor at the byte offset of each grapheme cluster;
// tab-expanded spaces all share the tab's anchor; generated tokens
// yield NoAnchor for every cell.
func (t Token) CellAnchors() []Anchor {
	n := t.Cells()
	anchors := make([]Anchor, 0, n)

	if t.Kind == KindText && t.Anchor.Valid() {
		state := -1
		rest := t.Content
		byteOff := 0
		for len(rest) > 0 {
			var cluster string
			cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
			anchors = append(anchors, t.Anchor+Anchor(byteOff))
			byteOff += len(cluster)
		}
		return anchors
	}

	for i := 0; i < n; i++ {
		anchors = append(anchors, t.Anchor)
	}
	return anchors
}

// WithStyle returns a copy of the token with the given style.
func (t Token) WithStyle(style Style) Token {
	t.Style = style
	return t
}

// Equals returns true if two tokens are identical.
func (t Token) Equals(other Token) bool {
	return t.Kind == other.Kind &&
		t.Content == other.Content &&
		t.Count == other.Count &&
		t.Break == other.Break &&
		t.Injected == other.Injected &&
		t.Anchor == other.Anchor &&
		t.Style.Equals(other.Style)
}

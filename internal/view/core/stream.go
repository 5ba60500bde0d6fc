package core

// ViewStream is the unit all transform stages operate on: an ordered
// token sequence plus the mapping covering its view positions.
//
// Streams are created fresh per render frame from the current source
// slice and never persisted across frames; rendering is derived, never
// stored.
type ViewStream struct {
	Tokens  []Token
	Mapping Mapping

	// SourceLen is the length of the ingested slice, used to bounds-
	// check anchors as the stream moves through the stage chain.
	SourceLen int
}

// NewStream builds a stream from tokens, deriving the mapping from
// each token's per-cell anchors.
func NewStream(tokens []Token, sourceLen int) ViewStream {
	return ViewStream{
		Tokens:    tokens,
		Mapping:   BuildMapping(tokens),
		SourceLen: sourceLen,
	}
}

// BuildMapping derives a mapping from the per-cell anchors of a token
// sequence.
func BuildMapping(tokens []Token) Mapping {
	var anchors []Anchor
	for _, t := range tokens {
		anchors = append(anchors, t.CellAnchors()...)
	}
	return NewMapping(anchors)
}

// CharLen returns the total number of view positions in the stream.
func (s ViewStream) CharLen() int {
	n := 0
	for _, t := range s.Tokens {
		n += t.Cells()
	}
	return n
}

// Validate checks the stream's structural invariants: the mapping
// covers exactly the stream's view positions and every anchor lands
// inside the source slice. Returns ErrMalformedPayload or
// ErrInvalidAnchor.
func (s ViewStream) Validate() error {
	if s.Mapping.Len() != s.CharLen() {
		return ErrMalformedPayload
	}
	return s.Mapping.Validate(s.SourceLen)
}

// Clone returns a deep copy of the stream. Token values are immutable
// so only the containers need copying.
func (s ViewStream) Clone() ViewStream {
	tokens := make([]Token, len(s.Tokens))
	copy(tokens, s.Tokens)
	return ViewStream{
		Tokens:    tokens,
		Mapping:   NewMapping(s.Mapping.Anchors()),
		SourceLen: s.SourceLen,
	}
}

// String reconstructs the visible text of the stream, with newlines
// and breaks rendered as line feeds. Intended for tests and debugging.
func (s ViewStream) String() string {
	var out []byte
	for _, t := range s.Tokens {
		switch t.Kind {
		case KindText:
			out = append(out, t.Content...)
		case KindSpace:
			for i := 0; i < t.Count; i++ {
				out = append(out, ' ')
			}
		case KindNewline, KindBreak:
			out = append(out, '\n')
		}
	}
	return string(out)
}

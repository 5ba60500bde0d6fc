package core

import "sort"

// inverseEntry associates a source byte offset with a view position.
type inverseEntry struct {
	offset Anchor
	pos    int
}

// Mapping is the bidirectional correspondence between view positions
// and source byte offsets. The forward direction is one anchor per
// view position; the inverse index answers "where did this source byte
// end up" for cursor and selection placement.
//
// Anchors are not required to be monotonic: transforms may reorder
// content (table column reflow, for example). Each valid anchor must
// reference a byte inside the ingested slice.
type Mapping struct {
	anchors []Anchor
	inverse []inverseEntry // sorted by offset, then pos
}

// NewMapping creates a mapping from per-position anchors.
func NewMapping(anchors []Anchor) Mapping {
	m := Mapping{anchors: anchors}
	m.rebuildInverse(0, len(anchors))
	return m
}

// Len returns the number of view positions covered.
func (m Mapping) Len() int {
	return len(m.anchors)
}

// At returns the anchor for a view position.
// Out-of-range positions yield NoAnchor.
func (m Mapping) At(pos int) Anchor {
	if pos < 0 || pos >= len(m.anchors) {
		return NoAnchor
	}
	return m.anchors[pos]
}

// ToSource resolves a view position to its source byte offset.
// Returns false for generated content and out-of-range positions.
func (m Mapping) ToSource(pos int) (Anchor, bool) {
	a := m.At(pos)
	return a, a.Valid()
}

// ToView resolves a source byte offset to the nearest view position.
// An exact match wins; otherwise the position of the closest anchored
// offset is returned. Returns false only when no position has a source
// anchor at all.
func (m Mapping) ToView(offset Anchor) (int, bool) {
	if len(m.inverse) == 0 {
		return 0, false
	}

	i := sort.Search(len(m.inverse), func(i int) bool {
		return m.inverse[i].offset >= offset
	})

	if i < len(m.inverse) && m.inverse[i].offset == offset {
		return m.inverse[i].pos, true
	}

	// No exact match: pick the closer neighbor.
	if i == 0 {
		return m.inverse[0].pos, true
	}
	if i == len(m.inverse) {
		return m.inverse[len(m.inverse)-1].pos, true
	}
	before := m.inverse[i-1]
	after := m.inverse[i]
	if offset-before.offset <= after.offset-offset {
		return before.pos, true
	}
	return after.pos, true
}

// Append extends the mapping with additional per-position anchors.
func (m *Mapping) Append(anchors ...Anchor) {
	start := len(m.anchors)
	m.anchors = append(m.anchors, anchors...)
	for i, a := range anchors {
		if a.Valid() {
			m.insertInverse(inverseEntry{offset: a, pos: start + i})
		}
	}
}

// Slice returns a mapping covering positions [start, end) of m,
// renumbered from zero. Used by the layout engine to give each display
// line exactly the mapping for its characters.
func (m Mapping) Slice(start, end int) Mapping {
	if start < 0 {
		start = 0
	}
	if end > len(m.anchors) {
		end = len(m.anchors)
	}
	if start >= end {
		return Mapping{}
	}
	anchors := make([]Anchor, end-start)
	copy(anchors, m.anchors[start:end])
	return NewMapping(anchors)
}

// Anchors returns a copy of the per-position anchor sequence.
func (m Mapping) Anchors() []Anchor {
	out := make([]Anchor, len(m.anchors))
	copy(out, m.anchors)
	return out
}

// RemoveRange deletes positions [start, end) from the mapping, as when
// a transform drops or merges tokens. The inverse index is patched for
// the removed entries' byte range only; surviving entries keep their
// associations and get a positional shift.
func (m *Mapping) RemoveRange(start, end int) {
	if start < 0 {
		start = 0
	}
	if end > len(m.anchors) {
		end = len(m.anchors)
	}
	if start >= end {
		return
	}

	removed := end - start
	m.anchors = append(m.anchors[:start], m.anchors[end:]...)

	// Drop inverse entries whose position fell in the removed run and
	// shift the survivors that followed it.
	kept := m.inverse[:0]
	for _, e := range m.inverse {
		switch {
		case e.pos < start:
			kept = append(kept, e)
		case e.pos >= end:
			e.pos -= removed
			kept = append(kept, e)
		}
	}
	m.inverse = kept
}

// InsertAt splices per-position anchors in at the given view position.
func (m *Mapping) InsertAt(pos int, anchors ...Anchor) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(m.anchors) {
		pos = len(m.anchors)
	}
	n := len(anchors)
	m.anchors = append(m.anchors[:pos], append(append([]Anchor{}, anchors...), m.anchors[pos:]...)...)

	for i := range m.inverse {
		if m.inverse[i].pos >= pos {
			m.inverse[i].pos += n
		}
	}
	for i, a := range anchors {
		if a.Valid() {
			m.insertInverse(inverseEntry{offset: a, pos: pos + i})
		}
	}
}

// Validate checks that every anchor references a byte inside a source
// slice of the given length.
func (m Mapping) Validate(srcLen int) error {
	for _, a := range m.anchors {
		if !a.InRange(srcLen) {
			return ErrInvalidAnchor
		}
	}
	return nil
}

// rebuildInverse rebuilds the inverse index for positions [start, end).
func (m *Mapping) rebuildInverse(start, end int) {
	if start == 0 && end == len(m.anchors) {
		m.inverse = m.inverse[:0]
	}
	for pos := start; pos < end; pos++ {
		if m.anchors[pos].Valid() {
			m.inverse = append(m.inverse, inverseEntry{offset: m.anchors[pos], pos: pos})
		}
	}
	sort.Slice(m.inverse, func(i, j int) bool {
		if m.inverse[i].offset != m.inverse[j].offset {
			return m.inverse[i].offset < m.inverse[j].offset
		}
		return m.inverse[i].pos < m.inverse[j].pos
	})
}

// insertInverse inserts a single entry keeping the index sorted.
func (m *Mapping) insertInverse(e inverseEntry) {
	i := sort.Search(len(m.inverse), func(i int) bool {
		ei := m.inverse[i]
		if ei.offset != e.offset {
			return ei.offset > e.offset
		}
		return ei.pos >= e.pos
	})
	m.inverse = append(m.inverse, inverseEntry{})
	copy(m.inverse[i+1:], m.inverse[i:])
	m.inverse[i] = e
}

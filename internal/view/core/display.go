package core

// Segment is a run of identically styled text within a display line.
type Segment struct {
	Text  string
	Style Style

	// Margin marks generated margin padding; margin segments carry no
	// mapping entries.
	Margin bool
}

// DisplayLine is one final output line of the layout engine. Its
// Mapping covers the line's content characters in original order,
// plus the cell of the terminator that ended the line and, after a
// wrap, the entry of the space the wrap consumed. Terminator and
// consumed-space cells contribute no segment text; margins are
// outside the mapping entirely.
type DisplayLine struct {
	Segments []Segment
	Mapping  Mapping

	// LeftMargin and RightMargin are the margin widths in columns.
	LeftMargin  int
	RightMargin int

	// Width is the content width in columns, margins excluded.
	Width int
}

// Text reconstructs the visible text of the line, margins included.
func (l DisplayLine) Text() string {
	var out []byte
	for _, seg := range l.Segments {
		out = append(out, seg.Text...)
	}
	return string(out)
}

// ContentText reconstructs the visible text without margin padding.
func (l DisplayLine) ContentText() string {
	var out []byte
	for _, seg := range l.Segments {
		if seg.Margin {
			continue
		}
		out = append(out, seg.Text...)
	}
	return string(out)
}

package core

// LayoutHints carries the width and guide configuration the layout
// engine consumes. Zero widths mean unset.
type LayoutHints struct {
	// ComposeWidth is the wrapping column. 0 disables wrapping.
	ComposeWidth int

	// MaxWidth is the total rendering width. When it exceeds
	// ComposeWidth the composed column is centered between tinted
	// margins.
	MaxWidth int

	// ColumnGuides are view columns where guide tokens may be
	// inserted by the column-guide stage.
	ColumnGuides []int
}

// Merge overlays set fields of other onto h and returns the result.
// Unset (zero) fields in other leave h's values in place; a non-nil
// empty guide slice clears the guides.
func (h LayoutHints) Merge(other LayoutHints) LayoutHints {
	out := h
	if other.ComposeWidth != 0 {
		out.ComposeWidth = other.ComposeWidth
	}
	if other.MaxWidth != 0 {
		out.MaxWidth = other.MaxWidth
	}
	if other.ColumnGuides != nil {
		out.ColumnGuides = append([]int{}, other.ColumnGuides...)
	}
	return out
}

// Wrapping returns true if the hints enable width-aware wrapping.
func (h LayoutHints) Wrapping() bool {
	return h.ComposeWidth > 0
}

// MarginWidth returns the symmetric margin width implied by the
// hints, or 0 when no margin applies.
func (h LayoutHints) MarginWidth() int {
	if h.MaxWidth <= h.ComposeWidth || h.ComposeWidth <= 0 {
		return 0
	}
	return (h.MaxWidth - h.ComposeWidth) / 2
}

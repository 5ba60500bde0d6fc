// Package main is a demo render adapter for the view pipeline: it
// ingests a file, runs the compose pipeline, and paints the resulting
// display lines to the terminal.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/viewpipe/internal/view"
	"github.com/dshills/viewpipe/internal/view/core"
	"github.com/dshills/viewpipe/internal/view/ingest"
	"github.com/dshills/viewpipe/internal/view/state"
)

func main() {
	os.Exit(run())
}

func run() int {
	composeWidth := flag.Int("compose", 80, "wrapping column (0 disables)")
	maxWidth := flag.Int("max", 0, "total rendering width (0 disables margins)")
	sourceMode := flag.Bool("source", false, "render in source mode instead of compose")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: viewpipe [flags] <file>")
		return 2
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading %s: %v\n", flag.Arg(0), err)
		return 1
	}

	mode := state.ModeCompose
	if *sourceMode {
		mode = state.ModeSource
	}

	pipeline := view.NewPipeline(view.Options{
		Ingest: ingest.DefaultOptions(),
		Defaults: func(state.BufferID) *state.BufferViewState {
			bvs := state.NewBufferViewState(mode)
			bvs.ComposeWidth = *composeWidth
			bvs.MaxWidth = *maxWidth
			return bvs
		},
	})

	buffer := state.BufferID(flag.Arg(0))
	split := state.NewSplitID()

	frame, err := pipeline.RenderFrame(buffer, split, data, nil, ingest.Viewport{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: rendering: %v\n", err)
		return 1
	}

	if err := paint(frame); err != nil {
		fmt.Fprintf(os.Stderr, "Error: painting: %v\n", err)
		return 1
	}
	return 0
}

// paint draws the frame on a tcell screen and waits for a key.
func paint(frame *view.Frame) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	screen.Clear()
	_, height := screen.Size()

	for row, line := range frame.Lines {
		if row >= height {
			break
		}
		col := 0
		for _, seg := range line.Segments {
			style := toTcell(seg.Style)
			for _, r := range seg.Text {
				screen.SetContent(col, row, r, nil, style)
				col++
			}
		}
	}
	screen.Show()

	for {
		switch ev := screen.PollEvent().(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' {
				return nil
			}
		case *tcell.EventResize:
			screen.Sync()
		}
	}
}

// toTcell converts a pipeline style to a tcell style.
func toTcell(s core.Style) tcell.Style {
	style := tcell.StyleDefault
	if !s.Foreground.IsDefault() {
		style = style.Foreground(tcell.NewRGBColor(int32(s.Foreground.R), int32(s.Foreground.G), int32(s.Foreground.B)))
	}
	if !s.Background.IsDefault() {
		style = style.Background(tcell.NewRGBColor(int32(s.Background.R), int32(s.Background.G), int32(s.Background.B)))
	}
	if s.Attributes.Has(core.AttrBold) {
		style = style.Bold(true)
	}
	if s.Attributes.Has(core.AttrDim) {
		style = style.Dim(true)
	}
	if s.Attributes.Has(core.AttrItalic) {
		style = style.Italic(true)
	}
	if s.Attributes.Has(core.AttrUnderline) {
		style = style.Underline(true)
	}
	if s.Attributes.Has(core.AttrReverse) {
		style = style.Reverse(true)
	}
	return style
}

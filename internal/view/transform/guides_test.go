package transform

import (
	"testing"

	"github.com/dshills/viewpipe/internal/view/core"
)

func TestColumnGuidesInsert(t *testing.T) {
	stream := core.NewStream([]core.Token{
		core.TextToken("ab", 0),
		core.SpaceToken(1, 2),
		core.TextToken("cd", 3),
	}, 5)

	out, err := ColumnGuides{}.Apply(stream, core.LayoutHints{ColumnGuides: []int{2}})
	if err != nil {
		t.Fatalf("guides errored: %v", err)
	}

	var guide *core.Token
	for i := range out.Tokens {
		if out.Tokens[i].Content == string(GuideRune) {
			guide = &out.Tokens[i]
			break
		}
	}
	if guide == nil {
		t.Fatal("no guide token inserted")
	}
	if guide.Anchor != core.NoAnchor {
		t.Errorf("guide anchor = %d, want NoAnchor", guide.Anchor)
	}
	if out.Mapping.Len() != out.CharLen() {
		t.Errorf("mapping len %d != char len %d", out.Mapping.Len(), out.CharLen())
	}
	// Source positions keep resolving after the insertion shift.
	if pos, ok := out.Mapping.ToView(3); !ok || pos != 4 {
		t.Errorf("offset 3 resolves to position %d, want 4", pos)
	}
}

func TestColumnGuidesNoHints(t *testing.T) {
	stream := core.NewStream([]core.Token{core.TextToken("ab", 0)}, 2)
	out, err := ColumnGuides{}.Apply(stream, core.LayoutHints{})
	if err != nil {
		t.Fatalf("guides errored: %v", err)
	}
	if len(out.Tokens) != 1 {
		t.Errorf("got %d tokens, want 1 (pass-through)", len(out.Tokens))
	}
}

func TestColumnGuidesBoundaryOnly(t *testing.T) {
	// A token spanning the hinted column is never split; the guide
	// lands at the next token boundary.
	stream := core.NewStream([]core.Token{
		core.TextToken("abcdef", 0),
		core.SpaceToken(1, 6),
		core.TextToken("g", 7),
	}, 8)

	out, err := ColumnGuides{}.Apply(stream, core.LayoutHints{ColumnGuides: []int{3}})
	if err != nil {
		t.Fatalf("guides errored: %v", err)
	}

	if out.Tokens[0].Content != "abcdef" {
		t.Fatalf("spanning token split: %+v", out.Tokens[0])
	}
	if out.Tokens[1].Content != string(GuideRune) {
		t.Errorf("guide not at the next boundary: %+v", out.Tokens[1])
	}
	if out.Mapping.Len() != out.CharLen() {
		t.Errorf("mapping len %d != char len %d", out.Mapping.Len(), out.CharLen())
	}
}

func TestColumnGuidesResetPerLine(t *testing.T) {
	stream := core.NewStream([]core.Token{
		core.TextToken("ab", 0),
		core.SpaceToken(1, 2),
		core.NewlineToken(3),
		core.TextToken("cd", 4),
		core.SpaceToken(1, 6),
	}, 7)

	out, err := ColumnGuides{}.Apply(stream, core.LayoutHints{ColumnGuides: []int{2}})
	if err != nil {
		t.Fatalf("guides errored: %v", err)
	}

	count := 0
	for _, tok := range out.Tokens {
		if tok.Content == string(GuideRune) {
			count++
		}
	}
	if count != 2 {
		t.Errorf("got %d guides, want one per line = 2", count)
	}
}

package core

import "testing"

func TestMappingToSource(t *testing.T) {
	m := NewMapping([]Anchor{0, 1, NoAnchor, 5})

	if a, ok := m.ToSource(1); !ok || a != 1 {
		t.Errorf("ToSource(1) = %d, %v; want 1, true", a, ok)
	}
	if _, ok := m.ToSource(2); ok {
		t.Error("ToSource of generated position should return false")
	}
	if _, ok := m.ToSource(99); ok {
		t.Error("ToSource out of range should return false")
	}
}

func TestMappingToView(t *testing.T) {
	m := NewMapping([]Anchor{0, 1, NoAnchor, 5, 9})

	tests := []struct {
		name   string
		offset Anchor
		pos    int
	}{
		{"exact match", 1, 1},
		{"exact later", 9, 4},
		{"between anchors picks closer low", 2, 1},
		{"between anchors picks closer high", 4, 3},
		{"before all anchors", -0, 0},
		{"after all anchors", 50, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, ok := m.ToView(tt.offset)
			if !ok {
				t.Fatal("expected a view position")
			}
			if pos != tt.pos {
				t.Errorf("ToView(%d) = %d, want %d", tt.offset, pos, tt.pos)
			}
		})
	}
}

func TestMappingToViewEmpty(t *testing.T) {
	m := NewMapping([]Anchor{NoAnchor, NoAnchor})
	if _, ok := m.ToView(3); ok {
		t.Error("mapping with no source anchors should have no view position")
	}
}

func TestMappingRemoveRange(t *testing.T) {
	m := NewMapping([]Anchor{0, 1, 2, 3, 4})
	m.RemoveRange(1, 3)

	if m.Len() != 3 {
		t.Fatalf("got len %d, want 3", m.Len())
	}
	if a := m.At(1); a != 3 {
		t.Errorf("position 1 = anchor %d, want 3", a)
	}

	// Removed offsets no longer resolve exactly; survivors keep their
	// associations at shifted positions.
	if pos, ok := m.ToView(4); !ok || pos != 2 {
		t.Errorf("ToView(4) = %d, %v; want 2, true", pos, ok)
	}
	if pos, ok := m.ToView(0); !ok || pos != 0 {
		t.Errorf("ToView(0) = %d, %v; want 0, true", pos, ok)
	}
}

func TestMappingInsertAt(t *testing.T) {
	m := NewMapping([]Anchor{0, 1})
	m.InsertAt(1, NoAnchor, 7)

	if m.Len() != 4 {
		t.Fatalf("got len %d, want 4", m.Len())
	}
	want := []Anchor{0, NoAnchor, 7, 1}
	for i, a := range want {
		if m.At(i) != a {
			t.Errorf("position %d = %d, want %d", i, m.At(i), a)
		}
	}
	if pos, ok := m.ToView(1); !ok || pos != 3 {
		t.Errorf("ToView(1) = %d, %v; want 3, true (shifted)", pos, ok)
	}
	if pos, ok := m.ToView(7); !ok || pos != 2 {
		t.Errorf("ToView(7) = %d, %v; want 2, true", pos, ok)
	}
}

func TestMappingSlice(t *testing.T) {
	m := NewMapping([]Anchor{10, 11, 12, 13})
	s := m.Slice(1, 3)

	if s.Len() != 2 {
		t.Fatalf("got len %d, want 2", s.Len())
	}
	if s.At(0) != 11 || s.At(1) != 12 {
		t.Errorf("slice anchors = [%d %d], want [11 12]", s.At(0), s.At(1))
	}
	// Renumbered from zero.
	if pos, ok := s.ToView(12); !ok || pos != 1 {
		t.Errorf("ToView(12) = %d, %v; want 1, true", pos, ok)
	}
}

func TestMappingValidate(t *testing.T) {
	good := NewMapping([]Anchor{0, NoAnchor, 4})
	if err := good.Validate(5); err != nil {
		t.Errorf("valid mapping rejected: %v", err)
	}

	bad := NewMapping([]Anchor{0, 5})
	if err := bad.Validate(5); err != ErrInvalidAnchor {
		t.Errorf("got %v, want ErrInvalidAnchor", err)
	}
}

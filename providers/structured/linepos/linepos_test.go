package linepos

import "testing"

func TestPositionAndOffsetRoundTrip(t *testing.T) {
	source := []byte("line one\nline two\nline three\n")
	idx := NewIndex(source)

	cases := []struct {
		offset       int
		line, column int
	}{
		{0, 1, 0},
		{5, 1, 5},
		{9, 2, 0},
		{14, 2, 5},
		{18, 3, 0},
	}

	for _, c := range cases {
		line, column := idx.Position(c.offset)
		if line != c.line || column != c.column {
			t.Errorf("Position(%d) = (%d,%d), want (%d,%d)", c.offset, line, column, c.line, c.column)
		}
		if got := idx.Offset(c.line, c.column); got != c.offset {
			t.Errorf("Offset(%d,%d) = %d, want %d", c.line, c.column, got, c.offset)
		}
	}
}

func TestOffsetClampsOutOfRangeLine(t *testing.T) {
	idx := NewIndex([]byte("a\nb\n"))
	if got := idx.Offset(100, 0); got != idx.Offset(3, 0) {
		t.Errorf("Offset should clamp to the last known line, got %d", got)
	}
	if got := idx.Offset(0, 0); got != idx.Offset(1, 0) {
		t.Errorf("Offset should clamp line below 1, got %d", got)
	}
}

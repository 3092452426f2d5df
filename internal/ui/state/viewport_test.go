package state

import "testing"

func TestViewportShowsEverythingWithoutHeight(t *testing.T) {
	v := Viewport{Offset: 3}
	start, end := v.Window(5)
	if start != 0 || end != 5 {
		t.Fatalf("expected full window, got [%d,%d)", start, end)
	}
	v.Ensure(4, 5)
	if v.Offset != 0 {
		t.Fatalf("expected offset reset to 0, got %d", v.Offset)
	}
}

func TestViewportEnsureScrollsDown(t *testing.T) {
	v := Viewport{Height: 3}
	v.Ensure(4, 10)
	if v.Offset != 2 {
		t.Fatalf("expected offset 2, got %d", v.Offset)
	}
	start, end := v.Window(10)
	if start != 2 || end != 5 {
		t.Fatalf("expected window [2,5), got [%d,%d)", start, end)
	}
}

func TestViewportEnsureScrollsUp(t *testing.T) {
	v := Viewport{Height: 3, Offset: 6}
	v.Ensure(1, 10)
	if v.Offset != 1 {
		t.Fatalf("expected offset 1, got %d", v.Offset)
	}
}

func TestViewportEnsureIgnoresMissingCursor(t *testing.T) {
	v := Viewport{Height: 3, Offset: 4}
	v.Ensure(-1, 10)
	if v.Offset != 4 {
		t.Fatalf("expected offset to stay 4, got %d", v.Offset)
	}
}

func TestViewportClampsAfterShrink(t *testing.T) {
	v := Viewport{Height: 3, Offset: 7}
	v.Ensure(-1, 4)
	if v.Offset != 1 {
		t.Fatalf("expected offset clamped to 1, got %d", v.Offset)
	}
	v.Ensure(0, 0)
	if v.Offset != 0 {
		t.Fatalf("expected offset 0 for empty list, got %d", v.Offset)
	}
}

func TestViewportIndexAt(t *testing.T) {
	v := Viewport{Height: 2, Offset: 3}
	if idx, ok := v.IndexAt(1, 10); !ok || idx != 4 {
		t.Fatalf("expected index 4, got %d (%v)", idx, ok)
	}
	if _, ok := v.IndexAt(2, 10); ok {
		t.Fatalf("expected row 2 to be outside the window")
	}
	if _, ok := v.IndexAt(-1, 10); ok {
		t.Fatalf("expected negative row to miss")
	}
}

func TestViewportScroll(t *testing.T) {
	v := Viewport{Height: 4}
	if !v.Scroll(3, 6) {
		t.Fatalf("expected scroll to move")
	}
	if v.Offset != 2 {
		t.Fatalf("expected offset clamped to 2, got %d", v.Offset)
	}
	if v.Scroll(1, 6) {
		t.Fatalf("expected no movement at the end")
	}
	v.Scroll(-10, 6)
	if v.Offset != 0 {
		t.Fatalf("expected offset 0, got %d", v.Offset)
	}
}

package core

import "testing"

func TestNewScreen(t *testing.T) {
	s := NewScreen(80, 24)

	if s.Width() != 80 {
		t.Errorf("Width() = %d, expected 80", s.Width())
	}
	if s.Height() != 24 {
		t.Errorf("Height() = %d, expected 24", s.Height())
	}

	// Check that it's initialized with spaces
	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if s.Get(x, y) != ' ' {
				t.Errorf("New screen should be filled with spaces, got %q at (%d, %d)", s.Get(x, y), x, y)
			}
		}
	}
}

func TestScreenSetGet(t *testing.T) {
	s := NewScreen(10, 10)

	s.Set(5, 5, 'X')
	if s.Get(5, 5) != 'X' {
		t.Errorf("Get(5, 5) = %q, expected 'X'", s.Get(5, 5))
	}

	// Out of bounds should be silent
	s.Set(-1, 0, 'A')  // Should not panic
	s.Set(100, 0, 'A') // Should not panic
	s.Set(0, -1, 'A')  // Should not panic
	s.Set(0, 100, 'A') // Should not panic

	// Out of bounds get should return space
	if s.Get(-1, 0) != ' ' {
		t.Error("Out of bounds Get should return space")
	}
	if s.Get(100, 0) != ' ' {
		t.Error("Out of bounds Get should return space")
	}
}

func TestScreenClear(t *testing.T) {
	s := NewScreen(10, 10)

	// Fill with some characters
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			s.Set(x, y, 'X')
		}
	}

	s.Clear()

	// Should all be spaces now
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if s.Get(x, y) != ' ' {
				t.Errorf("After Clear, expected space at (%d, %d), got %q", x, y, s.Get(x, y))
			}
		}
	}
}

func TestScreenDrawText(t *testing.T) {
	s := NewScreen(20, 5)
	s.DrawText(2, 1, "Hello")

	expected := "Hello"
	for i, ch := range expected {
		if s.Get(2+i, 1) != ch {
			t.Errorf("DrawText: expected %q at (%d, 1), got %q", ch, 2+i, s.Get(2+i, 1))
		}
	}

	// Text should be clipped at boundaries
	s.DrawText(18, 0, "Hello") // Only "He" should fit
	if s.Get(18, 0) != 'H' || s.Get(19, 0) != 'e' {
		t.Error("Text should be clipped at right boundary")
	}
}

func TestScreenSetCellColor(t *testing.T) {
	s := NewScreen(4, 2)
	s.SetCell(1, 1, '@', ColorCyan)

	cell := s.GetCell(1, 1)
	if cell.Rune != '@' || cell.Color != ColorCyan {
		t.Errorf("GetCell(1, 1) = %+v, expected '@' in cyan", cell)
	}
	if !s.GetCell(0, 0).Color.IsDefault() {
		t.Error("untouched cell should have the default color")
	}

	s.Clear()
	if !s.GetCell(1, 1).Color.IsDefault() {
		t.Error("Clear should reset colors")
	}
}

func TestScreenResizePreservesContent(t *testing.T) {
	s := NewScreen(5, 5)
	s.Set(1, 1, 'A')
	s.Set(4, 4, 'B')

	s.Resize(3, 3)
	if s.Width() != 3 || s.Height() != 3 {
		t.Fatalf("size after Resize = %dx%d, expected 3x3", s.Width(), s.Height())
	}
	if s.Get(1, 1) != 'A' {
		t.Errorf("Resize lost content at (1, 1): %q", s.Get(1, 1))
	}

	s.Resize(6, 2)
	if s.Get(1, 1) != 'A' {
		t.Errorf("Resize lost content when growing: %q", s.Get(1, 1))
	}
}

func TestScreenNegativeSize(t *testing.T) {
	s := NewScreen(-3, 4)
	if s.Width() != 0 {
		t.Errorf("Width() = %d, expected 0", s.Width())
	}
	s.Set(0, 0, 'X') // must not panic
	if s.String() != "\n\n\n" {
		t.Errorf("String() = %q, expected three newlines", s.String())
	}
}

func TestScreenRow(t *testing.T) {
	s := NewScreen(5, 2)
	s.DrawText(0, 1, "abc")
	if got := s.Row(1); got != "abc  " {
		t.Errorf("Row(1) = %q, expected %q", got, "abc  ")
	}
	if got := s.Row(9); got != "     " {
		t.Errorf("Row(9) = %q, expected blanks", got)
	}
}

func TestScreenString(t *testing.T) {
	s := NewScreen(5, 3)
	s.DrawText(0, 0, "AAAAA")
	s.DrawText(0, 1, "BBBBB")
	s.DrawText(0, 2, "CCCCC")

	expected := "AAAAA\nBBBBB\nCCCCC"
	if result := s.String(); result != expected {
		t.Errorf("String() = %q, expected %q", result, expected)
	}
}

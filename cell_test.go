package densityfield

import "testing"

func TestCell_InitialValueIsAChange(t *testing.T) {
	c := NewCell(42)
	if !c.ChangedSince(0) {
		t.Error("fresh cell should report a change relative to version 0")
	}
	if c.Get() != 42 {
		t.Errorf("Get = %d, want 42", c.Get())
	}
}

func TestCell_SetAdvancesVersion(t *testing.T) {
	c := NewCell("a")
	v := c.Version()

	if c.ChangedSince(v) {
		t.Error("no change expected before Set")
	}

	c.Set("b")
	if !c.ChangedSince(v) {
		t.Error("Set should advance version")
	}
	if c.Get() != "b" {
		t.Errorf("Get = %q, want %q", c.Get(), "b")
	}

	// Each write is observable individually.
	v = c.Version()
	c.Set("b") // same value still counts as a write
	if !c.ChangedSince(v) {
		t.Error("rewriting the same value should still advance version")
	}
}

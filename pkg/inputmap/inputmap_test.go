package inputmap

import "testing"

func TestDefaultBindingsColumnCounts(t *testing.T) {
	for _, n := range []int{4, 5, 6, 7} {
		b := DefaultBindings(n)
		if b.Columns() != n {
			t.Errorf("DefaultBindings(%d).Columns() = %d", n, b.Columns())
		}
	}
}

func TestDefaultBindingsUnsupportedFallsBackToFour(t *testing.T) {
	b := DefaultBindings(3)
	if b.Columns() != 4 {
		t.Errorf("expected fallback to 4 columns, got %d", b.Columns())
	}
}

func TestTranslateKnownKeyPress(t *testing.T) {
	b := DefaultBindings(4)
	action, ok := b.Translate("d", true)
	if !ok {
		t.Fatal("expected 'd' to be bound")
	}
	if action.Kind != 0 || action.Column != 0 {
		t.Errorf("unexpected action: %+v", action)
	}
}

func TestTranslateKnownKeyRelease(t *testing.T) {
	b := DefaultBindings(4)
	action, ok := b.Translate("f", false)
	if !ok {
		t.Fatal("expected 'f' to be bound")
	}
	if action.Column != 1 {
		t.Errorf("expected column 1, got %d", action.Column)
	}
}

func TestTranslateUnboundKeyFails(t *testing.T) {
	b := DefaultBindings(4)
	if _, ok := b.Translate("q", true); ok {
		t.Error("expected 'q' to be unbound in the 4-column layout")
	}
}

func TestReloadReplacesTable(t *testing.T) {
	b := DefaultBindings(4)
	b.Reload(6)
	if b.Columns() != 6 {
		t.Errorf("expected 6 columns after reload, got %d", b.Columns())
	}
	if _, ok := b.Translate("s", true); !ok {
		t.Error("expected 's' to be bound after reloading to the 6-column layout")
	}
}

// Package inputmap translates raw key names into gameplay actions via a
// keybinding table keyed by column count, following the usual
// piano-style key-to-note layout.
package inputmap

import "rhythmforge/pkg/engine"

// Bindings maps a key name to the column it triggers, for a fixed
// column count.
type Bindings struct {
	columns     int
	keyToColumn map[string]uint8
}

// DefaultBindings returns the stock keybinding table for the given
// column count. Unsupported counts fall back to the 4-column layout.
func DefaultBindings(columns int) *Bindings {
	switch columns {
	case 4:
		return &Bindings{columns: 4, keyToColumn: map[string]uint8{
			"d": 0, "f": 1, "j": 2, "k": 3,
		}}
	case 5:
		return &Bindings{columns: 5, keyToColumn: map[string]uint8{
			"d": 0, "f": 1, "space": 2, "j": 3, "k": 4,
		}}
	case 6:
		return &Bindings{columns: 6, keyToColumn: map[string]uint8{
			"s": 0, "d": 1, "f": 2, "j": 3, "k": 4, "l": 5,
		}}
	case 7:
		return &Bindings{columns: 7, keyToColumn: map[string]uint8{
			"s": 0, "d": 1, "f": 2, "space": 3, "j": 4, "k": 5, "l": 6,
		}}
	default:
		return DefaultBindings(4)
	}
}

// Columns reports how many lanes this table addresses.
func (b *Bindings) Columns() int { return b.columns }

// Translate maps a pressed key name to the engine action it triggers,
// or reports false if the key is unbound.
func (b *Bindings) Translate(key string, press bool) (engine.Action, bool) {
	col, ok := b.keyToColumn[key]
	if !ok {
		return engine.Action{}, false
	}
	if press {
		return engine.Hit(col), true
	}
	return engine.Release(col), true
}

// Reload replaces the binding table in place with the default table for
// columns, without the caller needing a fresh pointer.
func (b *Bindings) Reload(columns int) {
	fresh := DefaultBindings(columns)
	b.columns = fresh.columns
	b.keyToColumn = fresh.keyToColumn
}

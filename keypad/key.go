// Package keypad scans a column/row switch matrix and turns the raw contact
// levels into debounced press and release events.
package keypad

import "fmt"

// Matrix dimensions of the keypad.
const (
	NCols = 3
	NRows = 4
)

// Key identifies one physical switch by the column line that drives it and the
// row line that senses it.
type Key struct {
	Col uint8
	Row uint8
}

var labels = [NRows][NCols]rune{
	{'1', '2', '3'},
	{'4', '5', '6'},
	{'7', '8', '9'},
	{'*', '0', '#'},
}

// Valid reports whether k lies inside the matrix.
func (k Key) Valid() bool {
	return int(k.Col) < NCols && int(k.Row) < NRows
}

// Label returns the printed legend of the key, or '?' for keys outside the
// matrix.
func (k Key) Label() rune {
	if !k.Valid() {
		return '?'
	}
	return labels[k.Row][k.Col]
}

func (k Key) String() string {
	return fmt.Sprintf("%c@(%d,%d)", k.Label(), k.Col, k.Row)
}

// Keys returns every key of the matrix, row by row.
func Keys() []Key {
	keys := make([]Key, 0, NCols*NRows)
	for row := 0; row < NRows; row++ {
		for col := 0; col < NCols; col++ {
			keys = append(keys, Key{Col: uint8(col), Row: uint8(row)})
		}
	}
	return keys
}

// KeyForLabel looks up the key carrying label r.
func KeyForLabel(r rune) (Key, bool) {
	for row := 0; row < NRows; row++ {
		for col := 0; col < NCols; col++ {
			if labels[row][col] == r {
				return Key{Col: uint8(col), Row: uint8(row)}, true
			}
		}
	}
	return Key{}, false
}

// EventKind distinguishes presses from releases.
type EventKind uint8

const (
	KeyDown EventKind = iota + 1
	KeyUp
)

func (k EventKind) String() string {
	switch k {
	case KeyDown:
		return "down"
	case KeyUp:
		return "up"
	default:
		return "unknown"
	}
}

// KeyEvent is one debounced transition of a key.
type KeyEvent struct {
	Kind EventKind
	Key  Key
}

// Down returns a press event for k.
func Down(k Key) KeyEvent { return KeyEvent{Kind: KeyDown, Key: k} }

// Up returns a release event for k.
func Up(k Key) KeyEvent { return KeyEvent{Kind: KeyUp, Key: k} }

func (e KeyEvent) String() string {
	return fmt.Sprintf("%s %s", e.Kind, e.Key)
}

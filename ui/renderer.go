// Package ui draws the on-screen keypad and keeps it in step with the key
// events, redrawing one button per event.
package ui

import (
	"fmt"
	"image/color"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"

	"keyvisor/gfx"
	"keyvisor/keypad"
)

// Button geometry, identical for every style.
const (
	ButtonInset  = 3
	CornerRadius = 10
	BorderWidth  = 1
)

// ButtonStyle colors one button state.
type ButtonStyle struct {
	Fill   color.RGBA
	Border color.RGBA
	Text   color.RGBA
}

var (
	Background = color.RGBA{A: 0xFF}

	ReleasedStyle = ButtonStyle{
		Fill:   color.RGBA{A: 0xFF},
		Border: color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		Text:   color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
	}
	PressedStyle = ButtonStyle{
		Fill:   color.RGBA{R: 0xFA, G: 0x80, B: 0x72, A: 0xFF}, // salmon
		Border: color.RGBA{R: 0x69, G: 0x69, B: 0x69, A: 0xFF}, // dim gray
		Text:   color.RGBA{A: 0xFF},
	}
)

// Layout splits the screen into one cell per key.
type Layout struct {
	Bounds       gfx.Rect
	CellW, CellH int
}

// NewLayout divides a w x h screen evenly between the keys.
func NewLayout(w, h int) Layout {
	return Layout{
		Bounds: gfx.Rect{W: w, H: h},
		CellW:  w / keypad.NCols,
		CellH:  h / keypad.NRows,
	}
}

// Cell returns the bounds of k's cell.
func (l Layout) Cell(k keypad.Key) gfx.Rect {
	return gfx.Rect{
		X: int(k.Col) * l.CellW,
		Y: int(k.Row) * l.CellH,
		W: l.CellW,
		H: l.CellH,
	}
}

// Renderer owns the draw target and the displayed state of every key.
type Renderer struct {
	target  gfx.Target
	layout  Layout
	font    tinyfont.Fonter
	pressed [keypad.NRows][keypad.NCols]bool
}

// NewRenderer draws on t with font; nil selects FreeMono Bold 12pt.
func NewRenderer(t gfx.Target, font tinyfont.Fonter) *Renderer {
	if font == nil {
		font = &freemono.Bold12pt7b
	}
	b := t.Bounds()
	return &Renderer{target: t, layout: NewLayout(b.W, b.H), font: font}
}

func (r *Renderer) Layout() Layout { return r.layout }

// Pressed reports how k is currently drawn.
func (r *Renderer) Pressed(k keypad.Key) bool {
	return k.Valid() && r.pressed[k.Row][k.Col]
}

// DrawAll clears the screen and draws every key released. It returns the
// whole screen as the damaged region.
func (r *Renderer) DrawAll() (gfx.Rect, error) {
	r.target.FillRect(r.layout.Bounds, Background)
	for _, k := range keypad.Keys() {
		if _, err := r.DrawButton(k, ReleasedStyle); err != nil {
			return gfx.Rect{}, err
		}
		r.pressed[k.Row][k.Col] = false
	}
	return r.layout.Bounds, nil
}

// DrawButton redraws k's cell in style and returns the cell. The cell is
// cleared first, so its bytes depend only on k and style.
func (r *Renderer) DrawButton(k keypad.Key, style ButtonStyle) (gfx.Rect, error) {
	if !k.Valid() {
		return gfx.Rect{}, fmt.Errorf("ui: key %v outside the keypad", k)
	}
	cell := r.layout.Cell(k)
	btn := cell.Inset(ButtonInset)

	r.target.FillRect(cell, Background)
	if err := r.target.FillRoundedRect(btn, CornerRadius, style.Border); err != nil {
		return gfx.Rect{}, fmt.Errorf("ui: draw %v: %w", k, err)
	}
	if err := r.target.FillRoundedRect(btn.Inset(BorderWidth), CornerRadius-BorderWidth, style.Fill); err != nil {
		return gfx.Rect{}, fmt.Errorf("ui: draw %v: %w", k, err)
	}
	r.target.DrawLabel(btn, string(k.Label()), r.font, style.Text)
	return cell, nil
}

// Apply redraws the key of ev in the style matching the event and returns
// the damaged cell.
func (r *Renderer) Apply(ev keypad.KeyEvent) (gfx.Rect, error) {
	style := ReleasedStyle
	down := false
	switch ev.Kind {
	case keypad.KeyDown:
		style, down = PressedStyle, true
	case keypad.KeyUp:
	default:
		return gfx.Rect{}, fmt.Errorf("ui: unknown event kind %d", ev.Kind)
	}
	rect, err := r.DrawButton(ev.Key, style)
	if err != nil {
		return gfx.Rect{}, err
	}
	r.pressed[ev.Key.Row][ev.Key.Col] = down
	return rect, nil
}

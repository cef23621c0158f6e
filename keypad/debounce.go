package keypad

import "math/bits"

// DefaultThreshold is the number of agreeing scan cycles a new level has to
// collect before it is reported. At 400 Hz this is about 25 ms.
const DefaultThreshold = 10

// ColumnState holds one bit per row line; bit r is set when row r is active
// (pulled low by a closed switch) while the column is driven.
type ColumnState uint8

// Has reports whether row r is active.
func (s ColumnState) Has(row int) bool { return s&(1<<uint(row)) != 0 }

// With returns s with row r set to active.
func (s ColumnState) With(row int, active bool) ColumnState {
	if active {
		return s | 1<<uint(row)
	}
	return s &^ (1 << uint(row))
}

// Any reports whether any row is active.
func (s ColumnState) Any() bool { return s != 0 }

// Count returns the number of active rows.
func (s ColumnState) Count() int { return bits.OnesCount8(uint8(s)) }

// Transitions are the rows confirmed by one Apply call.
type Transitions struct {
	Pressed  ColumnState
	Released ColumnState
}

// Any reports whether a transition was confirmed.
func (t Transitions) Any() bool { return (t.Pressed | t.Released).Any() }

// ColumnDebouncer is the per-row debounce state machine of one column.
//
// For every row it keeps the last reported level (stable), the candidate
// level being confirmed (staging) and the number of consecutive samples that
// agreed with the candidate. Any disagreement restarts the count, so contact
// chatter never accumulates enough agreement to be reported.
type ColumnDebouncer struct {
	threshold uint8
	stable    ColumnState
	staging   ColumnState
	ticks     [NRows]uint8
}

// NewColumnDebouncer returns a debouncer with every row released.
func NewColumnDebouncer(threshold uint8) ColumnDebouncer {
	return ColumnDebouncer{threshold: threshold}
}

// Stable returns the last reported level of every row.
func (d *ColumnDebouncer) Stable() ColumnState { return d.stable }

// Apply feeds one raw sample of the column and returns the rows whose new
// level got confirmed by it.
func (d *ColumnDebouncer) Apply(raw ColumnState) Transitions {
	var t Transitions
	for r := 0; r < NRows; r++ {
		level := raw.Has(r)

		if level != d.staging.Has(r) {
			d.staging = d.staging.With(r, level)
			d.ticks[r] = 0
			continue
		}

		if d.ticks[r] < d.threshold {
			d.ticks[r]++
			continue
		}

		if level == d.stable.Has(r) {
			continue
		}

		d.stable = d.stable.With(r, level)
		if level {
			t.Pressed = t.Pressed.With(r, true)
		} else {
			t.Released = t.Released.With(r, true)
		}
	}
	return t
}

// ConfirmationSamples is the number of consecutive samples of a new level,
// counting the sample where the level flips, after which Apply reports it.
func ConfirmationSamples(threshold uint8) int {
	return int(threshold) + 2
}

// Filter debounces the whole matrix, one ColumnDebouncer per column.
type Filter struct {
	cols [NCols]ColumnDebouncer
}

// NewFilter returns a filter with every key released.
func NewFilter(threshold uint8) *Filter {
	f := &Filter{}
	for c := range f.cols {
		f.cols[c] = NewColumnDebouncer(threshold)
	}
	return f
}

// Apply feeds one raw sample of column col.
func (f *Filter) Apply(col int, raw ColumnState) Transitions {
	return f.cols[col].Apply(raw)
}

// Threshold returns the confirmation threshold shared by every column.
func (f *Filter) Threshold() uint8 { return f.cols[0].threshold }

// Stable returns the reported level of every row of column col.
func (f *Filter) Stable(col int) ColumnState {
	return f.cols[col].Stable()
}

// Events converts the transitions of column col into key events: releases
// first, then presses, each in ascending row order.
func Events(col int, t Transitions, dst []KeyEvent) []KeyEvent {
	for r := 0; r < NRows; r++ {
		if t.Released.Has(r) {
			dst = append(dst, Up(Key{Col: uint8(col), Row: uint8(r)}))
		}
	}
	for r := 0; r < NRows; r++ {
		if t.Pressed.Has(r) {
			dst = append(dst, Down(Key{Col: uint8(col), Row: uint8(r)}))
		}
	}
	return dst
}

package keypad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feed runs samples of row 0 through a fresh debouncer and returns, per
// sample, the transition it produced.
func feed(threshold uint8, samples []bool) []Transitions {
	d := NewColumnDebouncer(threshold)
	out := make([]Transitions, len(samples))
	for i, s := range samples {
		out[i] = d.Apply(ColumnState(0).With(0, s))
	}
	return out
}

func repeat(level bool, n int) []bool {
	s := make([]bool, n)
	for i := range s {
		s[i] = level
	}
	return s
}

func count(ts []Transitions) (pressed, released int) {
	for _, t := range ts {
		pressed += t.Pressed.Count()
		released += t.Released.Count()
	}
	return pressed, released
}

func TestBounceRejection(t *testing.T) {
	for _, threshold := range []uint8{0, 1, 2, 10} {
		samples := make([]bool, 1000)
		for i := range samples {
			samples[i] = i%2 == 0
		}
		pressed, released := count(feed(threshold, samples))
		assert.Zero(t, pressed, "threshold %d", threshold)
		assert.Zero(t, released, "threshold %d", threshold)
	}
}

func TestBounceShorterThanWindowIsIgnored(t *testing.T) {
	const threshold = DefaultThreshold
	n := ConfirmationSamples(threshold)

	// Runs one sample shorter than the window, alternating.
	var samples []bool
	level := true
	for i := 0; i < 20; i++ {
		samples = append(samples, repeat(level, n-1)...)
		level = !level
	}
	pressed, released := count(feed(threshold, samples))
	assert.Zero(t, pressed)
	assert.Zero(t, released)
}

func TestConfirmationDelay(t *testing.T) {
	for _, threshold := range []uint8{1, 3, DefaultThreshold, 255} {
		n := ConfirmationSamples(threshold)
		ts := feed(threshold, repeat(true, n+50))

		for i := 0; i < n-1; i++ {
			require.False(t, ts[i].Any(), "threshold %d: event at sample %d, before confirmation", threshold, i+1)
		}
		require.True(t, ts[n-1].Pressed.Has(0), "threshold %d: no press at sample %d", threshold, n)
		pressed, released := count(ts)
		assert.Equal(t, 1, pressed, "threshold %d", threshold)
		assert.Zero(t, released, "threshold %d", threshold)
	}
}

func TestConfirmationCountsFromTheFlip(t *testing.T) {
	const threshold = DefaultThreshold
	n := ConfirmationSamples(threshold)

	// A long released prefix does not shorten the window.
	samples := append(repeat(false, 100), repeat(true, n)...)
	ts := feed(threshold, samples)
	for i, tr := range ts[:len(ts)-1] {
		require.False(t, tr.Any(), "event at sample %d", i+1)
	}
	assert.True(t, ts[len(ts)-1].Pressed.Has(0))
}

func TestNoDuplicateReporting(t *testing.T) {
	const threshold = DefaultThreshold
	n := ConfirmationSamples(threshold)

	samples := repeat(true, n*10)
	// Short glitches while held are absorbed.
	samples = append(samples, false, false, true)
	samples = append(samples, repeat(true, n*3)...)
	pressed, released := count(feed(threshold, samples))
	assert.Equal(t, 1, pressed)
	assert.Zero(t, released)
}

func TestPressThenRelease(t *testing.T) {
	const threshold = DefaultThreshold
	n := ConfirmationSamples(threshold)

	samples := append(repeat(true, n), repeat(false, n)...)
	ts := feed(threshold, samples)
	assert.True(t, ts[n-1].Pressed.Has(0))
	assert.True(t, ts[2*n-1].Released.Has(0))
	pressed, released := count(ts)
	assert.Equal(t, 1, pressed)
	assert.Equal(t, 1, released)
}

func TestRowsAreIndependent(t *testing.T) {
	const threshold = 2
	d := NewColumnDebouncer(threshold)

	// Row 1 toggles every sample while row 3 holds.
	var got Transitions
	for i := 0; i < 40; i++ {
		raw := ColumnState(0).With(3, true).With(1, i%2 == 0)
		tr := d.Apply(raw)
		got.Pressed |= tr.Pressed
		got.Released |= tr.Released
	}
	assert.Equal(t, ColumnState(0).With(3, true), got.Pressed)
	assert.Zero(t, got.Released)
	assert.True(t, d.Stable().Has(3))
	assert.False(t, d.Stable().Has(1))
}

func TestEventsOrder(t *testing.T) {
	tr := Transitions{
		Pressed:  ColumnState(0).With(0, true).With(2, true),
		Released: ColumnState(0).With(3, true).With(1, true),
	}
	got := Events(2, tr, nil)
	want := []KeyEvent{
		Up(Key{Col: 2, Row: 1}),
		Up(Key{Col: 2, Row: 3}),
		Down(Key{Col: 2, Row: 0}),
		Down(Key{Col: 2, Row: 2}),
	}
	assert.Equal(t, want, got)
}

func TestFilterKeepsColumnsApart(t *testing.T) {
	f := NewFilter(1)
	n := ConfirmationSamples(1)
	var events []KeyEvent
	for i := 0; i < n; i++ {
		for col := 0; col < NCols; col++ {
			raw := ColumnState(0)
			if col == 1 {
				raw = raw.With(2, true)
			}
			events = Events(col, f.Apply(col, raw), events)
		}
	}
	assert.Equal(t, []KeyEvent{Down(Key{Col: 1, Row: 2})}, events)
	assert.True(t, f.Stable(1).Has(2))
	assert.False(t, f.Stable(0).Any())
	assert.Equal(t, uint8(1), f.Threshold())
}

func TestKeyLabels(t *testing.T) {
	tests := []struct {
		key  Key
		want rune
	}{
		{Key{0, 0}, '1'},
		{Key{1, 0}, '2'},
		{Key{2, 0}, '3'},
		{Key{0, 1}, '4'},
		{Key{1, 1}, '5'},
		{Key{2, 1}, '6'},
		{Key{0, 2}, '7'},
		{Key{1, 2}, '8'},
		{Key{2, 2}, '9'},
		{Key{0, 3}, '*'},
		{Key{1, 3}, '0'},
		{Key{2, 3}, '#'},
		{Key{3, 0}, '?'},
		{Key{0, 4}, '?'},
	}
	for _, tt := range tests {
		if got := tt.key.Label(); got != tt.want {
			t.Fatalf("%v.Label() = %q, want %q", tt.key, got, tt.want)
		}
		if !tt.key.Valid() {
			continue
		}
		k, ok := KeyForLabel(tt.want)
		require.True(t, ok)
		assert.Equal(t, tt.key, k)
	}

	_, ok := KeyForLabel('x')
	assert.False(t, ok)
	assert.Len(t, Keys(), NCols*NRows)
	assert.Equal(t, "5@(1,1)", Key{1, 1}.String())
	assert.Equal(t, "down 5@(1,1)", Down(Key{1, 1}).String())
}

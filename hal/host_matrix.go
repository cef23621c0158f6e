//go:build !tinygo

package hal

import (
	"fmt"
	"math/rand"
	"sync"
)

// maxBounceRun caps how many consecutive reads a bouncing contact stays at
// one level.
const maxBounceRun = 3

// SwitchMatrix simulates a column/row switch matrix wired to GPIO lines.
//
// Columns are open-drain style outputs and rows are inputs that need a
// pull-up. A row reads low when some column is driven low and the switch at
// their crossing is closed. After a switch changes, the next chatter reads of
// it see a bouncing contact: random runs of at most three reads per level.
type SwitchMatrix struct {
	mu      sync.Mutex
	cols    []*matrixPin
	rows    []*matrixPin
	closed  [][]bool
	bounce  [][]bounceState
	chatter int
	rng     *rand.Rand
}

type bounceState struct {
	left  int
	run   int
	level bool
}

// NewSwitchMatrix returns an open matrix with ncols column and nrows row lines.
func NewSwitchMatrix(ncols, nrows int, seed int64) *SwitchMatrix {
	m := &SwitchMatrix{rng: rand.New(rand.NewSource(seed))}
	for c := 0; c < ncols; c++ {
		m.cols = append(m.cols, &matrixPin{
			m:    m,
			idx:  c,
			name: fmt.Sprintf("COL%d", c),
			caps: GPIOCapInput | GPIOCapOutput,
		})
	}
	for r := 0; r < nrows; r++ {
		m.rows = append(m.rows, &matrixPin{
			m:    m,
			idx:  r,
			row:  true,
			name: fmt.Sprintf("ROW%d", r),
			caps: GPIOCapInput | GPIOCapPullUp | GPIOCapPullDown,
		})
	}
	m.closed = make([][]bool, ncols)
	m.bounce = make([][]bounceState, ncols)
	for c := range m.closed {
		m.closed[c] = make([]bool, nrows)
		m.bounce[c] = make([]bounceState, nrows)
	}
	return m
}

// Columns returns the driven lines.
func (m *SwitchMatrix) Columns() []GPIOPin {
	pins := make([]GPIOPin, len(m.cols))
	for i, p := range m.cols {
		pins[i] = p
	}
	return pins
}

// Rows returns the sensed lines.
func (m *SwitchMatrix) Rows() []GPIOPin {
	pins := make([]GPIOPin, len(m.rows))
	for i, p := range m.rows {
		pins[i] = p
	}
	return pins
}

// SetChatter sets how many reads of a switch bounce after it changes.
func (m *SwitchMatrix) SetChatter(reads int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if reads < 0 {
		reads = 0
	}
	m.chatter = reads
}

// Set closes or opens the switch at (col, row). Out-of-range switches are
// ignored.
func (m *SwitchMatrix) Set(col, row int, closed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if col < 0 || col >= len(m.closed) || row < 0 || row >= len(m.closed[col]) {
		return
	}
	if m.closed[col][row] == closed {
		return
	}
	m.closed[col][row] = closed
	if m.chatter > 0 {
		m.bounce[col][row] = bounceState{left: m.chatter, level: closed}
	}
}

// Closed reports the settled state of the switch at (col, row).
func (m *SwitchMatrix) Closed(col, row int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if col < 0 || col >= len(m.closed) || row < 0 || row >= len(m.closed[col]) {
		return false
	}
	return m.closed[col][row]
}

// OpenAll opens every switch and stops any bounce in progress.
func (m *SwitchMatrix) OpenAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for c := range m.closed {
		for r := range m.closed[c] {
			m.closed[c][r] = false
			m.bounce[c][r] = bounceState{}
		}
	}
}

// contact returns what a read through switch (col, row) sees. Called with mu
// held.
func (m *SwitchMatrix) contact(col, row int) bool {
	b := &m.bounce[col][row]
	if b.left == 0 {
		return m.closed[col][row]
	}
	if b.run == 0 {
		b.level = !b.level
		b.run = 1 + m.rng.Intn(maxBounceRun)
	}
	b.run--
	b.left--
	return b.level
}

// rowLevel resolves the electrical level of row r. Called with mu held.
func (m *SwitchMatrix) rowLevel(r int) bool {
	level := m.rows[r].pull != GPIOPullDown
	for c, col := range m.cols {
		if col.mode != GPIOModeOutput || col.level {
			continue
		}
		if m.contact(c, r) {
			level = false
		}
	}
	return level
}

type matrixPin struct {
	m     *SwitchMatrix
	idx   int
	row   bool
	name  string
	caps  GPIOCaps
	mode  GPIOMode
	pull  GPIOPull
	level bool
}

func (p *matrixPin) Name() string   { return p.name }
func (p *matrixPin) Caps() GPIOCaps { return p.caps }

func (p *matrixPin) Configure(mode GPIOMode, pull GPIOPull) error {
	if err := checkConfig(p.name, p.caps, mode, pull); err != nil {
		return err
	}
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	p.mode = mode
	p.pull = pull
	if mode == GPIOModeOutput {
		p.level = true
	}
	return nil
}

func (p *matrixPin) Read() (bool, error) {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	switch {
	case p.mode == GPIOModeUnset:
		return false, fmt.Errorf("gpio: pin %s: not configured", p.name)
	case !p.row:
		return p.level, nil
	case p.pull == GPIOPullNone:
		return false, fmt.Errorf("gpio: pin %s: floating input", p.name)
	}
	return p.m.rowLevel(p.idx), nil
}

func (p *matrixPin) Write(level bool) error {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	if p.mode != GPIOModeOutput {
		return fmt.Errorf("gpio: pin %s: not in output mode", p.name)
	}
	p.level = level
	return nil
}

package keypad

import (
	"errors"
	"fmt"
	"time"

	"keyvisor/hal"
)

// DefaultSettleDelay is how long a driven column is left to settle before the
// rows are sampled.
const DefaultSettleDelay = 2 * time.Microsecond

// Scanner drives the column lines one at a time and samples the row lines.
// Columns idle high; the selected column is driven low, and a closed switch
// pulls its row low against the row pull-up.
type Scanner struct {
	cols   []hal.GPIOPin
	rows   []hal.GPIOPin
	settle time.Duration
	sleep  func(time.Duration)
}

// NewScanner wraps the matrix lines of kp. A zero settle delay skips the wait.
func NewScanner(kp hal.Keypad, settle time.Duration) (*Scanner, error) {
	if kp == nil {
		return nil, errors.New("keypad: no matrix")
	}
	cols, rows := kp.Columns(), kp.Rows()
	if len(cols) != NCols || len(rows) != NRows {
		return nil, fmt.Errorf("keypad: matrix is %dx%d, want %dx%d", len(cols), len(rows), NCols, NRows)
	}
	return &Scanner{cols: cols, rows: rows, settle: settle, sleep: time.Sleep}, nil
}

// Configure puts the columns in output mode driven inactive and the rows in
// input mode with pull-ups.
func (s *Scanner) Configure() error {
	for _, p := range s.cols {
		if err := p.Configure(hal.GPIOModeOutput, hal.GPIOPullNone); err != nil {
			return fmt.Errorf("keypad: configure column: %w", err)
		}
		if err := p.Write(true); err != nil {
			return fmt.Errorf("keypad: release column: %w", err)
		}
	}
	for _, p := range s.rows {
		if err := p.Configure(hal.GPIOModeInput, hal.GPIOPullUp); err != nil {
			return fmt.Errorf("keypad: configure row: %w", err)
		}
	}
	return nil
}

// Release drives every column inactive.
func (s *Scanner) Release() error {
	for _, p := range s.cols {
		if err := p.Write(true); err != nil {
			return fmt.Errorf("keypad: release %s: %w", p.Name(), err)
		}
	}
	return nil
}

// Scan drives column col low and every other column high.
func (s *Scanner) Scan(col int) error {
	if col < 0 || col >= len(s.cols) {
		return fmt.Errorf("keypad: column %d out of range", col)
	}
	if err := s.Release(); err != nil {
		return err
	}
	if err := s.cols[col].Write(false); err != nil {
		return fmt.Errorf("keypad: drive %s: %w", s.cols[col].Name(), err)
	}
	return nil
}

// Read samples the rows; bit r is set when row r reads low.
func (s *Scanner) Read() (ColumnState, error) {
	var st ColumnState
	for r, p := range s.rows {
		level, err := p.Read()
		if err != nil {
			return 0, fmt.Errorf("keypad: read %s: %w", p.Name(), err)
		}
		st = st.With(r, !level)
	}
	return st, nil
}

// Sample scans col, waits the settle delay and reads the rows.
func (s *Scanner) Sample(col int) (ColumnState, error) {
	if err := s.Scan(col); err != nil {
		return 0, err
	}
	if s.settle > 0 {
		s.sleep(s.settle)
	}
	return s.Read()
}

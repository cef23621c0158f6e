//go:build !tinygo

package hal

import (
	"strings"
	"testing"
)

func TestCheckConfig(t *testing.T) {
	rowCaps := GPIOCapInput | GPIOCapPullUp
	if err := checkConfig("ROW0", rowCaps, GPIOModeInput, GPIOPullUp); err != nil {
		t.Fatalf("input with pull-up: %v", err)
	}
	if err := checkConfig("ROW0", rowCaps, GPIOModeOutput, GPIOPullNone); err == nil {
		t.Fatal("expected output to be rejected")
	}
	if err := checkConfig("ROW0", rowCaps, GPIOModeInput, GPIOPullDown); err == nil {
		t.Fatal("expected pull-down to be rejected")
	}
	err := checkConfig("ROW0", rowCaps, GPIOModeUnset, GPIOPullNone)
	if err == nil || !strings.Contains(err.Error(), "ROW0") {
		t.Fatalf("unset mode: got %v", err)
	}
}

func TestMatrixRowFollowsDrivenColumn(t *testing.T) {
	m := NewSwitchMatrix(3, 4, 1)
	cols, rows := m.Columns(), m.Rows()
	for _, c := range cols {
		if err := c.Configure(GPIOModeOutput, GPIOPullNone); err != nil {
			t.Fatalf("configure %s: %v", c.Name(), err)
		}
	}
	for _, r := range rows {
		if err := r.Configure(GPIOModeInput, GPIOPullUp); err != nil {
			t.Fatalf("configure %s: %v", r.Name(), err)
		}
	}

	m.Set(1, 2, true)

	// Columns idle high: nothing reads low.
	if level, _ := rows[2].Read(); !level {
		t.Fatal("row 2 low with no column driven")
	}

	cols[0].Write(false)
	if level, _ := rows[2].Read(); !level {
		t.Fatal("row 2 low while column 0 is driven")
	}
	cols[0].Write(true)

	cols[1].Write(false)
	if level, _ := rows[2].Read(); level {
		t.Fatal("row 2 high while column 1 is driven over a closed switch")
	}
	if level, _ := rows[1].Read(); !level {
		t.Fatal("row 1 low with its switch open")
	}
}

func TestMatrixPinErrors(t *testing.T) {
	m := NewSwitchMatrix(1, 1, 1)
	row := m.Rows()[0]
	if _, err := row.Read(); err == nil {
		t.Fatal("expected read of an unconfigured pin to fail")
	}
	if err := row.Configure(GPIOModeInput, GPIOPullNone); err != nil {
		t.Fatal(err)
	}
	if _, err := row.Read(); err == nil {
		t.Fatal("expected floating row read to fail")
	}
	if err := row.Write(false); err == nil {
		t.Fatal("expected write to an input to fail")
	}
}

func TestMatrixChatterSettles(t *testing.T) {
	m := NewSwitchMatrix(1, 1, 7)
	m.SetChatter(20)
	col, row := m.Columns()[0], m.Rows()[0]
	col.Configure(GPIOModeOutput, GPIOPullNone)
	row.Configure(GPIOModeInput, GPIOPullUp)
	col.Write(false)

	m.Set(0, 0, true)
	run, prev := 0, true
	for i := 0; i < 20; i++ {
		level, _ := row.Read()
		if level == prev {
			run++
		} else {
			run, prev = 1, level
		}
		if run > maxBounceRun {
			t.Fatalf("read %d: level held for %d reads while bouncing", i, run)
		}
	}
	for i := 0; i < 5; i++ {
		if level, _ := row.Read(); level {
			t.Fatalf("read %d after bounce: still high", i)
		}
	}
}

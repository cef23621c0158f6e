package app

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"

	"keyvisor/gfx"
	"keyvisor/hal"
	"keyvisor/internal/buildinfo"
)

const (
	fatalFontHeight = 10
	fatalFontOffset = 6
)

// ShowFatal logs err and paints it on the panel as a terminal screen. The
// panel push is best effort; the returned error reports only that step.
func ShowFatal(h hal.HAL, err error) error {
	lines := fatalLines(err)
	if l := h.Logger(); l != nil {
		for _, line := range lines {
			l.WriteLineString(line)
		}
	}

	panel := h.Panel()
	if panel == nil {
		return hal.ErrNotImplemented
	}
	w, ht := panel.Size()
	fb := gfx.NewFrameBuffer(w, ht)
	fb.Clear(gfx.RGBA(0))

	font := &proggy.TinySZ8pt7b
	_, adv := tinyfont.LineWidth(font, "0")
	cols := 1
	if adv > 0 {
		cols = max(1, w/int(adv))
	}
	rows := max(1, ht/fatalFontHeight)

	term := tinyterm.NewTerminal(fb)
	term.Configure(&tinyterm.Config{
		Font:       font,
		FontHeight: fatalFontHeight,
		FontOffset: fatalFontOffset,
	})

	// The frame buffer cannot scroll, so output stops at the last row.
	used := 0
	for i, line := range lines {
		for first := true; first || line != ""; first = false {
			if used == rows {
				break
			}
			var chunk string
			chunk, line = takeRunes(line, cols)
			if i == 0 {
				fmt.Fprintf(term, "\x1b[31m%s\x1b[0m", chunk)
			} else {
				fmt.Fprint(term, chunk)
			}
			used++
			if used < rows && utf8.RuneCountInString(chunk) < cols {
				fmt.Fprint(term, "\r\n")
			}
			line = strings.TrimLeft(line, " ")
		}
	}

	return panel.PushRegion(0, 0, w, ht, fb.Bytes())
}

func fatalLines(err error) []string {
	lines := []string{"keyvisor fatal", "build: " + buildinfo.Short()}
	if err == nil {
		return append(lines, "error: unknown")
	}
	lines = append(lines, "error:")
	for _, e := range unwrapJoined(err) {
		for _, l := range strings.Split(e.Error(), "\n") {
			if l != "" {
				lines = append(lines, "  "+l)
			}
		}
	}
	return lines
}

func unwrapJoined(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

// takeRunes splits s after n runes.
func takeRunes(s string, n int) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i], s[i:]
		}
		count++
	}
	return s, ""
}

// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_presenter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
)

const levelBarCells = 20

var hexColors = map[string]*color.Color{
	"#666":    color.New(color.FgHiBlack),
	"#ff4444": color.New(color.FgHiRed, color.Bold),
	"#ff9800": color.New(color.FgYellow),
	"#4CAF50": color.New(color.FgGreen, color.Bold),
	"#f44336": color.New(color.FgRed, color.Bold),
}

// Terminal renders the elements as one status line redrawn in place.
type Terminal struct {
	out io.Writer

	mu          sync.Mutex
	timer       string
	level       float64
	status      string
	statusColor string
	recording   bool
	drawn       bool
}

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out, timer: "00:00", statusColor: "#666"}
}

func (t *Terminal) SetText(id, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch id {
	case RecordingTimer:
		t.timer = text
	case RecordingStatus:
		t.status = text
	default:
		return
	}
	t.redraw()
}

func (t *Terminal) SetStyle(id, property, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case id == AudioLevelBar && property == "width":
		pct, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64)
		if err != nil {
			return
		}
		t.level = pct
	case id == RecordingStatus && property == "color":
		t.statusColor = value
	case id == StopButton && property == "display":
		t.recording = value != "none"
	default:
		return
	}
	t.redraw()
}

func (t *Terminal) Alert(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.drawn {
		fmt.Fprintln(t.out)
		t.drawn = false
	}
	color.New(color.FgRed, color.Bold).Fprintln(t.out, "! "+message)
}

// Done moves the cursor past the status line.
func (t *Terminal) Done() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.drawn {
		fmt.Fprintln(t.out)
		t.drawn = false
	}
}

func (t *Terminal) redraw() {
	filled := int(t.level / 100 * levelBarCells)
	if filled > levelBarCells {
		filled = levelBarCells
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", levelBarCells-filled)

	c, ok := hexColors[t.statusColor]
	if !ok {
		c = hexColors["#666"]
	}
	hint := ""
	if t.recording {
		hint = "  (Enter to stop)"
	}
	fmt.Fprintf(t.out, "\r\033[K%s %s %s%s", t.timer, bar, c.Sprint(t.status), hint)
	t.drawn = true
}

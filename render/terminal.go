// Package render draws simulation state to a terminal.
package render

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/hupe1980/rocketsim/controller"
	"github.com/hupe1980/rocketsim/event"
	"github.com/hupe1980/rocketsim/resource"
)

const (
	ansiClear  = "\033[2J"
	ansiHome   = "\033[H"
	ansiLnClr  = "\033[K"
	ansiYellow = "\033[33m"
	ansiReset  = "\033[0m"
)

// Option configures a Terminal.
type Option func(*Terminal)

// WithLowThreshold sets the fraction of capacity below which a resource is
// flagged LOW. Defaults to resource.DefaultLowThreshold.
func WithLowThreshold(threshold float64) Option {
	return func(t *Terminal) { t.lowThreshold = threshold }
}

// WithoutANSI disables cursor control and colour, for logs and pipes.
func WithoutANSI() Option {
	return func(t *Terminal) { t.ansi = false }
}

// Terminal implements controller.Renderer by redrawing a full-screen dump
// of resources and subsystem statuses. Events are written as single lines.
type Terminal struct {
	mu           sync.Mutex
	w            io.Writer
	ansi         bool
	lowThreshold float64
}

var _ controller.Renderer = (*Terminal)(nil)

// New creates a terminal renderer writing to w.
func New(w io.Writer, opts ...Option) *Terminal {
	t := &Terminal{
		w:            w,
		ansi:         true,
		lowThreshold: resource.DefaultLowThreshold,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Render draws a full snapshot.
func (t *Terminal) Render(s controller.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	bw := bufio.NewWriter(t.w)

	if t.ansi {
		bw.WriteString(ansiClear + ansiHome)
	}

	t.line(bw, "Current Resource Amounts:")
	t.line(bw, "-------------------------")
	for _, r := range s.Resources {
		text := fmt.Sprintf("%s: %d / %d", r.Name, r.Amount, r.MaxCapacity)
		if r.IsLow(t.lowThreshold) {
			if t.ansi {
				text = ansiYellow + text + " (LOW)" + ansiReset
			} else {
				text += " (LOW)"
			}
		}
		t.line(bw, text)
	}

	t.line(bw, "")
	t.line(bw, "System Statuses:")
	t.line(bw, "----------------")
	for _, sys := range s.Subsystems {
		t.line(bw, fmt.Sprintf("%s: %s", sys.Name, sys.Status))
	}

	_ = bw.Flush()
}

// RenderEvent writes one event line.
func (t *Terminal) RenderEvent(e event.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	bw := bufio.NewWriter(t.w)
	t.line(bw, e.String())
	_ = bw.Flush()
}

func (t *Terminal) line(w *bufio.Writer, s string) {
	if t.ansi {
		w.WriteString(ansiLnClr)
	}
	w.WriteString(s)
	w.WriteByte('\n')
}

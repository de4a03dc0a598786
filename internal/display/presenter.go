package display

import (
	"fmt"
	"sync"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/sweeney/reservoir-monitor/internal/state"
)

const (
	HeaderReadings = "Current levels"
	HeaderSettings = "Settings"

	activeMarker = " <-"
)

// FormatFill renders a fill percentage, e.g. "42%".
func FormatFill(fill int) string {
	return fmt.Sprintf("%d%%", fill)
}

// FormatTemperature renders a temperature with one decimal, e.g. "23.1 .C".
func FormatTemperature(t float32) string {
	return fmt.Sprintf("%.1f .C", t)
}

// FormatFillThreshold renders the fill threshold, marked when active.
func FormatFillThreshold(threshold int, active bool) string {
	return mark(fmt.Sprintf("%d%%", threshold), active)
}

// FormatTemperatureThreshold renders the temperature threshold without
// decimals, marked when active.
func FormatTemperatureThreshold(threshold float32, active bool) string {
	return mark(fmt.Sprintf("%.0f .C", threshold), active)
}

func mark(s string, active bool) string {
	if active {
		return s + activeMarker
	}
	return s
}

// Presenter renders readings and configuration into the fixed rows. Several
// loops render concurrently, so every render holds a mutex for the whole
// clear-then-write sequence.
type Presenter struct {
	mu     sync.Mutex
	d      Display
	logger kitlog.Logger
}

// NewPresenter creates a Presenter drawing on d.
func NewPresenter(d Display, logger kitlog.Logger) *Presenter {
	return &Presenter{d: d, logger: kitlog.With(logger, "component", "display")}
}

// RenderHeaders draws the two static section headers.
func (p *Presenter) RenderHeaders() error {
	return p.render(
		line{RowHeader, HeaderReadings},
		line{RowSettings, HeaderSettings},
	)
}

// RenderFill redraws the fill row.
func (p *Presenter) RenderFill(fill int) error {
	return p.render(line{RowHeader, HeaderReadings}, line{RowFill, FormatFill(fill)})
}

// RenderTemperature redraws the temperature row.
func (p *Presenter) RenderTemperature(t float32) error {
	return p.render(line{RowHeader, HeaderReadings}, line{RowTemperature, FormatTemperature(t)})
}

// RenderReadings redraws both reading rows.
func (p *Presenter) RenderReadings(fill int, t float32) error {
	return p.render(
		line{RowHeader, HeaderReadings},
		line{RowFill, FormatFill(fill)},
		line{RowTemperature, FormatTemperature(t)},
	)
}

// RenderConfig redraws the settings rows, marking the threshold the
// increment and decrement buttons currently adjust.
func (p *Presenter) RenderConfig(c state.Config) error {
	return p.render(
		line{RowSettings, HeaderSettings},
		line{RowFillThreshold, FormatFillThreshold(c.FillThreshold, c.Mode == state.ModeDistance)},
		line{RowTemperatureThreshold, FormatTemperatureThreshold(c.TemperatureThreshold, c.Mode == state.ModeTemperature)},
	)
}

type line struct {
	row  int
	text string
}

func (p *Presenter) render(lines ...line) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var first error
	for _, l := range lines {
		err := p.d.ClearLine(l.row)
		if err == nil {
			err = p.d.WriteText(l.row, l.text)
		}
		if err != nil {
			level.Warn(p.logger).Log("msg", "render failed", "row", l.row, "err", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

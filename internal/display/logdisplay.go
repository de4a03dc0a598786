package display

import (
	"sync"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// LogDisplay is a headless backend: every row written is logged.
type LogDisplay struct {
	mu     sync.Mutex
	lines  [Rows]string
	logger kitlog.Logger
}

// NewLogDisplay creates a LogDisplay writing to logger.
func NewLogDisplay(logger kitlog.Logger) *LogDisplay {
	return &LogDisplay{logger: kitlog.With(logger, "component", "screen")}
}

func (l *LogDisplay) ClearLine(row int) error {
	if err := checkRow(row); err != nil {
		return err
	}
	l.mu.Lock()
	l.lines[row] = ""
	l.mu.Unlock()
	return nil
}

func (l *LogDisplay) WriteText(row int, text string) error {
	if err := checkRow(row); err != nil {
		return err
	}
	l.mu.Lock()
	changed := l.lines[row] != text
	l.lines[row] = text
	l.mu.Unlock()
	if changed {
		level.Info(l.logger).Log("row", row, "text", text)
	}
	return nil
}

func (l *LogDisplay) Close() error {
	return nil
}

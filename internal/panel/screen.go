package panel

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/sweeney/reservoir-monitor/internal/display"
)

// Screen is a Display drawn as a column of monospace labels. Calls may come
// from any goroutine; label updates are handed to the fyne event loop.
type Screen struct {
	mu     sync.Mutex
	lines  [display.Rows]string
	labels [display.Rows]*widget.Label
	do     func(func())
}

// NewScreen creates an empty Screen.
func NewScreen() *Screen {
	s := &Screen{do: fyne.Do}
	for i := range s.labels {
		l := widget.NewLabel("")
		l.TextStyle = fyne.TextStyle{Monospace: true}
		s.labels[i] = l
	}
	return s
}

// Object returns the canvas object showing every row.
func (s *Screen) Object() fyne.CanvasObject {
	objs := make([]fyne.CanvasObject, len(s.labels))
	for i, l := range s.labels {
		objs[i] = l
	}
	return container.NewVBox(objs...)
}

func (s *Screen) ClearLine(row int) error {
	return s.set(row, func(string) string { return "" })
}

func (s *Screen) WriteText(row int, text string) error {
	return s.set(row, func(old string) string { return old + text })
}

func (s *Screen) Close() error {
	return nil
}

// Line returns the text of one row.
func (s *Screen) Line(row int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row < 0 || row >= display.Rows {
		return ""
	}
	return s.lines[row]
}

func (s *Screen) set(row int, fn func(string) string) error {
	if row < 0 || row >= display.Rows {
		return display.ErrRow
	}
	s.mu.Lock()
	text := fn(s.lines[row])
	s.lines[row] = text
	s.mu.Unlock()

	label := s.labels[row]
	s.do(func() { label.SetText(text) })
	return nil
}

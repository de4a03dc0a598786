// Package display renders readings and settings onto a small row-addressed
// text display. Backends only need to clear and write whole rows.
package display

import "github.com/pkg/errors"

// Display is a row-addressed text display.
type Display interface {
	ClearLine(row int) error
	WriteText(row int, text string) error
	Close() error
}

// Fixed row layout.
const (
	RowHeader               = 0
	RowFill                 = 1
	RowTemperature          = 2
	RowSettings             = 4
	RowFillThreshold        = 5
	RowTemperatureThreshold = 6

	// Rows is the number of text rows every backend provides.
	Rows = 8
)

// ErrRow is returned for a row outside [0, Rows).
var ErrRow = errors.New("row out of range")

func checkRow(row int) error {
	if row < 0 || row >= Rows {
		return errors.Wrapf(ErrRow, "row %d", row)
	}
	return nil
}

// Multi fans every call out to several displays. It keeps going after a
// failure and returns the first error.
type Multi []Display

func (m Multi) ClearLine(row int) error {
	return m.each(func(d Display) error { return d.ClearLine(row) })
}

func (m Multi) WriteText(row int, text string) error {
	return m.each(func(d Display) error { return d.WriteText(row, text) })
}

func (m Multi) Close() error {
	return m.each(Display.Close)
}

func (m Multi) each(fn func(Display) error) error {
	var first error
	for _, d := range m {
		if err := fn(d); err != nil && first == nil {
			first = err
		}
	}
	return first
}

package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

// Terminal renders rows on a VT100-compatible terminal, typically a serial
// console attached to the controller.
type Terminal struct {
	mu sync.Mutex
	w  io.WriteCloser
}

// NewTerminal clears the screen and hides the cursor.
func NewTerminal(w io.WriteCloser) (*Terminal, error) {
	t := &Terminal{w: w}
	if _, err := io.WriteString(w, "\x1b[2J\x1b[H\x1b[?25l"); err != nil {
		return nil, errors.Wrap(err, "reset terminal")
	}
	return t, nil
}

// OpenSerial opens a serial port and wraps it in a Terminal.
func OpenSerial(port string, baud int) (*Terminal, error) {
	p, err := serial.Open(port, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, errors.Wrapf(err, "open serial port %s", port)
	}
	t, err := NewTerminal(p)
	if err != nil {
		p.Close()
		return nil, err
	}
	return t, nil
}

// ClearLine erases one row.
func (t *Terminal) ClearLine(row int) error {
	if err := checkRow(row); err != nil {
		return err
	}
	return t.printf("\x1b[%d;1H\x1b[2K", row+1)
}

// WriteText writes text at the start of row.
func (t *Terminal) WriteText(row int, text string) error {
	if err := checkRow(row); err != nil {
		return err
	}
	return t.printf("\x1b[%d;1H%s", row+1, text)
}

// Close restores the cursor and closes the underlying port.
func (t *Terminal) Close() error {
	t.printf("\x1b[%d;1H\x1b[?25h", Rows+1)
	return t.w.Close()
}

func (t *Terminal) printf(format string, args ...interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintf(t.w, format, args...)
	return errors.Wrap(err, "write terminal")
}

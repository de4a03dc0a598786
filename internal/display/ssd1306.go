package display

import (
	"image/color"
	"io"
	"sync"

	"github.com/pkg/errors"
	"tinygo.org/x/tinyfont"
)

// SSD1306 geometry: 128x64 pixels, eight 8-pixel pages. One text row maps to
// one page.
const (
	oledWidth  = 128
	oledHeight = 64
	oledPages  = oledHeight / 8

	// baseline of TomThumb glyphs within a page
	glyphBaseline = 6
)

// Control bytes prefixing every I2C transfer.
const (
	ctrlCommand = 0x00
	ctrlData    = 0x40
)

var ssd1306Init = []byte{
	0xAE,       // display off
	0xD5, 0x80, // clock divide
	0xA8, 0x3F, // multiplex 64
	0xD3, 0x00, // display offset
	0x40,       // start line 0
	0x8D, 0x14, // charge pump on
	0x20, 0x00, // horizontal addressing
	0xA1,       // segment remap
	0xC8,       // COM scan descending
	0xDA, 0x12, // COM pins
	0x81, 0xCF, // contrast
	0xD9, 0xF1, // precharge
	0xDB, 0x40, // VCOM detect
	0xA4,       // resume from RAM
	0xA6,       // normal (not inverted)
	0xAF,       // display on
}

// Transport writes raw bytes to the controller. periph's *i2c.Dev satisfies it.
type Transport interface {
	Tx(w, r []byte) error
}

// SSD1306 drives a 128x64 OLED. Text is drawn into a local framebuffer with
// tinyfont and flushed one page at a time.
type SSD1306 struct {
	mu     sync.Mutex
	tr     Transport
	fb     framebuffer
	closer io.Closer
}

// NewSSD1306 initializes the controller and clears the screen.
func NewSSD1306(tr Transport) (*SSD1306, error) {
	d := &SSD1306{tr: tr}
	if err := d.command(ssd1306Init...); err != nil {
		return nil, errors.Wrap(err, "init ssd1306")
	}
	for page := 0; page < oledPages; page++ {
		if err := d.flush(page); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// ClearLine blanks one row.
func (d *SSD1306) ClearLine(row int) error {
	if err := checkRow(row); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fb.clearPage(row)
	return d.flush(row)
}

// WriteText draws text at the start of row. Characters past the right edge
// are clipped.
func (d *SSD1306) WriteText(row int, text string) error {
	if err := checkRow(row); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	tinyfont.WriteLine(&d.fb, &tinyfont.TomThumb, 0, int16(row*8+glyphBaseline), text, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	return d.flush(row)
}

// Close blanks the panel, switches it off and releases the bus.
func (d *SSD1306) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.fb = framebuffer{}
	var first error
	for page := 0; page < oledPages && first == nil; page++ {
		first = d.flush(page)
	}
	if err := d.command(0xAE); err != nil && first == nil {
		first = err
	}
	if d.closer != nil {
		if err := d.closer.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (d *SSD1306) command(cmds ...byte) error {
	return d.tr.Tx(append([]byte{ctrlCommand}, cmds...), nil)
}

func (d *SSD1306) flush(page int) error {
	if err := d.command(0x21, 0, oledWidth-1, 0x22, byte(page), byte(page)); err != nil {
		return errors.Wrapf(err, "address page %d", page)
	}
	buf := make([]byte, 0, oledWidth+1)
	buf = append(buf, ctrlData)
	buf = append(buf, d.fb[page][:]...)
	return errors.Wrapf(d.tr.Tx(buf, nil), "write page %d", page)
}

// framebuffer is the panel's GDDRAM layout: each byte is a vertical strip of
// eight pixels, least significant bit on top.
type framebuffer [oledPages][oledWidth]byte

func (f *framebuffer) Size() (int16, int16) {
	return oledWidth, oledHeight
}

func (f *framebuffer) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || x >= oledWidth || y < 0 || y >= oledHeight {
		return
	}
	bit := byte(1) << uint(y%8)
	if c.R != 0 || c.G != 0 || c.B != 0 {
		f[y/8][x] |= bit
	} else {
		f[y/8][x] &^= bit
	}
}

func (f *framebuffer) Display() error {
	return nil
}

func (f *framebuffer) clearPage(page int) {
	f[page] = [oledWidth]byte{}
}

func (f *framebuffer) pixel(x, y int) bool {
	return f[y/8][x]&(1<<uint(y%8)) != 0
}

package display

import (
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// DefaultSSD1306Addr is the usual 7-bit address of SSD1306 modules.
const DefaultSSD1306Addr = 0x3C

// OpenSSD1306 opens an I2C bus by name ("" picks the first one) and
// initializes the panel at addr.
func OpenSSD1306(bus string, addr uint16) (*SSD1306, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "init periph host")
	}
	b, err := i2creg.Open(bus)
	if err != nil {
		return nil, errors.Wrapf(err, "open i2c bus %q", bus)
	}

	d, err := NewSSD1306(&i2c.Dev{Addr: addr, Bus: b})
	if err != nil {
		b.Close()
		return nil, err
	}
	d.closer = b
	return d, nil
}

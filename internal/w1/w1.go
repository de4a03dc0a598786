// Package w1 reads DS18B20 thermometers through the Linux w1_therm sysfs
// interface. The kernel performs the one-wire conversion; this package only
// parses what it reports.
package w1

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultBaseDir is where the w1 bus exposes its slaves.
const DefaultBaseDir = "/sys/bus/w1/devices"

// FamilyDS18B20 is the device id prefix of DS18B20 thermometers.
const FamilyDS18B20 = "28-"

var (
	ErrNoDevice = errors.New("no DS18B20 device found")
	ErrCRC      = errors.New("CRC check failed")
	ErrFormat   = errors.New("unexpected w1_slave format")
)

// ListDevices returns the ids of all DS18B20 devices under baseDir, sorted.
func ListDevices(baseDir string) ([]string, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, errors.Wrap(err, "list w1 devices")
	}
	var ids []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), FamilyDS18B20) {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Thermometer is one DS18B20 on the bus.
type Thermometer struct {
	id  string
	dir string
}

// Open returns the thermometer with the given id. An empty id selects the
// first device found.
func Open(baseDir, id string) (*Thermometer, error) {
	if id == "" {
		ids, err := ListDevices(baseDir)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, errors.Wrapf(ErrNoDevice, "under %s", baseDir)
		}
		id = ids[0]
	}

	dir := filepath.Join(baseDir, id)
	if _, err := os.Stat(dir); err != nil {
		return nil, errors.Wrapf(ErrNoDevice, "%s: %v", id, err)
	}
	return &Thermometer{id: id, dir: dir}, nil
}

// ID returns the device id, e.g. "28-0316a2795aff".
func (t *Thermometer) ID() string {
	return t.id
}

// Measure returns the temperature in degrees Celsius. Newer kernels expose a
// plain "temperature" attribute in millidegrees; older ones only w1_slave.
func (t *Thermometer) Measure(ctx context.Context) (float32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if data, err := os.ReadFile(filepath.Join(t.dir, "temperature")); err == nil {
		return parseMillidegrees(strings.TrimSpace(string(data)))
	}

	data, err := os.ReadFile(filepath.Join(t.dir, "w1_slave"))
	if err != nil {
		return 0, errors.Wrapf(err, "read %s", t.id)
	}
	return ParseSlave(data)
}

// ParseSlave parses the two-line w1_slave report:
//
//	72 01 4b 46 7f ff 0e 10 57 : crc=57 YES
//	72 01 4b 46 7f ff 0e 10 57 t=23125
func ParseSlave(data []byte) (float32, error) {
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) < 2 {
		return 0, errors.Wrapf(ErrFormat, "%d lines", len(lines))
	}
	if !strings.HasSuffix(strings.TrimSpace(lines[0]), "YES") {
		return 0, ErrCRC
	}
	i := strings.LastIndex(lines[1], "t=")
	if i < 0 {
		return 0, errors.Wrap(ErrFormat, "missing t=")
	}
	return parseMillidegrees(strings.TrimSpace(lines[1][i+2:]))
}

func parseMillidegrees(s string) (float32, error) {
	milli, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(ErrFormat, "temperature %q", s)
	}
	return float32(milli) / 1000, nil
}

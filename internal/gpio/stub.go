//go:build !linux

package gpio

import "github.com/pkg/errors"

// Open is not available on non-Linux platforms. Use --simulate instead.
func Open(cfg Config, onEdge EdgeFunc) (*Hardware, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Package logging builds the structured logger shared by every component.
package logging

import (
	"io"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/google/uuid"
)

// Service is the value of the "service" key on every log line.
const Service = "reservoir"

// New returns a logfmt logger writing to w with timestamp and service keys.
// Debug lines are dropped unless verbose is set.
func New(w io.Writer, verbose bool) kitlog.Logger {
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(w))
	logger = kitlog.With(logger, "service", Service, "ts", kitlog.DefaultTimestampUTC)

	allow := level.AllowInfo()
	if verbose {
		allow = level.AllowDebug()
	}
	return level.NewFilter(logger, allow)
}

// WithBoot tags logger with a random per-process boot id and returns both.
func WithBoot(logger kitlog.Logger) (kitlog.Logger, string) {
	boot := uuid.New().String()
	return kitlog.With(logger, "boot", boot), boot
}

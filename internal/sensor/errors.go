package sensor

import "github.com/pkg/errors"

// Sentinel errors returned (possibly wrapped) by sensor drivers.
var (
	ErrPing        = errors.New("cannot ping (device is in invalid state)")
	ErrPingTimeout = errors.New("ping timeout (no device found)")
	ErrEchoTimeout = errors.New("echo timeout (distance too big)")
	ErrImplausible = errors.New("implausible reading")
)

// Code classifies a measurement outcome.
type Code string

const (
	CodeOK          Code = "OK"
	CodePing        Code = "PING_ERROR"
	CodePingTimeout Code = "PING_TIMEOUT"
	CodeEchoTimeout Code = "ECHO_TIMEOUT"
	CodeImplausible Code = "IMPLAUSIBLE"
	CodeOther       Code = "OTHER"
)

// Classify maps a driver error onto its Code. A nil error is CodeOK.
func Classify(err error) Code {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrPing):
		return CodePing
	case errors.Is(err, ErrPingTimeout):
		return CodePingTimeout
	case errors.Is(err, ErrEchoTimeout):
		return CodeEchoTimeout
	case errors.Is(err, ErrImplausible):
		return CodeImplausible
	default:
		return CodeOther
	}
}

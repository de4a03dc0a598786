package sensor

import (
	"time"

	"github.com/chewxy/math32"
)

const (
	// SpeedOfSound is the speed of sound in air in centimeters per microsecond.
	SpeedOfSound float32 = 0.0343

	// TriggerPulse is the width of the trigger pulse that starts a ping.
	TriggerPulse = 10 * time.Microsecond

	// PingTimeout bounds the wait for the echo line to rise after a trigger.
	PingTimeout = 6 * time.Millisecond
)

// EchoDistance converts an echo pulse width (round trip) into centimeters.
func EchoDistance(width time.Duration) float32 {
	us := float32(width) / float32(time.Microsecond)
	return us * SpeedOfSound / 2
}

// EchoWidth is the inverse of EchoDistance: the echo pulse width expected for
// a target at the given distance.
func EchoWidth(distanceCm float32) time.Duration {
	us := math32.Ceil(distanceCm * 2 / SpeedOfSound)
	return time.Duration(us) * time.Microsecond
}

// Package level converts raw ultrasonic distance into tank fill percentage.
// This package has NO external state; every function is pure.
package level

import "github.com/chewxy/math32"

const (
	// DeadZoneCm is the distance below which the ultrasonic sensor reads
	// inaccurately because the water surface is inside its blind spot.
	DeadZoneCm float32 = 3.5

	// DeadZoneOffset is added to the computed percentage inside the dead zone.
	DeadZoneOffset float32 = 25

	// LowWaterPercent is the fill level below which the tank counts as
	// near-empty: the pump always refills and the heater is never enabled.
	LowWaterPercent = 10
)

// FillPercent returns the fill percentage in [0,100] for a distance measured
// from the sensor down to the water surface in a tank of the given height.
// The fractional part is truncated toward zero before clamping.
func FillPercent(distance, tankHeight float32) int {
	if math32.IsNaN(distance) || tankHeight <= 0 {
		return 0
	}

	var offset float32
	if distance < DeadZoneCm {
		offset = DeadZoneOffset
	}

	pct := (tankHeight-distance)/tankHeight*100 + offset
	return Clamp(int(math32.Max(math32.Min(math32.Trunc(pct), 1000), -1000)))
}

// Clamp limits a percentage to [0,100].
func Clamp(pct int) int {
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

package level

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const tank = float32(13.5)

func TestFillPercentKnownValues(t *testing.T) {
	tests := []struct {
		name     string
		distance float32
		height   float32
		want     int
	}{
		{"empty tank", 13.5, tank, 0},
		{"half full", 6.75, tank, 50},
		{"truncates toward zero", 10, tank, 25}, // 25.92
		{"just outside dead zone", 3.5, tank, 74},
		{"inside dead zone clamps", 1.0, tank, 100},
		{"dead zone below clamp", 3, 4, 50},
		{"below tank bottom", 20, tank, 0},
		{"negative distance", -5, tank, 100},
		{"zero height", 5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FillPercent(tt.distance, tt.height))
		})
	}
}

func TestFillPercentMonotonicOutsideDeadZone(t *testing.T) {
	prev := FillPercent(DeadZoneCm, tank)
	for d := DeadZoneCm; d <= 40; d += 0.05 {
		got := FillPercent(d, tank)
		if got > prev {
			t.Fatalf("FillPercent(%v)=%d greater than previous %d", d, got, prev)
		}
		prev = got
	}
}

func TestFillPercentClampedForAllInputs(t *testing.T) {
	inputs := []float32{
		-1e9, -100, -0.1, 0, 0.5, 3.49, 3.5, 13.5, 13.6, 100, 1e9,
		float32(math.Inf(1)), float32(math.Inf(-1)), float32(math.NaN()),
	}
	for _, d := range inputs {
		got := FillPercent(d, tank)
		assert.GreaterOrEqual(t, got, 0, "distance %v", d)
		assert.LessOrEqual(t, got, 100, "distance %v", d)
	}
}

func TestFillPercentDeadZoneOffset(t *testing.T) {
	// A tall tank keeps the corrected value inside [0,100] so the offset is
	// visible before clamping: (4-3)/4*100 = 25, plus 25.
	assert.Equal(t, 50, FillPercent(3, 4))
	// The same geometry one step outside the dead zone carries no offset.
	assert.Equal(t, 12, FillPercent(3.5, 4))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-3))
	assert.Equal(t, 42, Clamp(42))
	assert.Equal(t, 100, Clamp(125))
}

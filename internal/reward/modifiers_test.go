package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpeedMaintainBonus(t *testing.T) {
	assert.Equal(t, 1.0, SpeedMaintainBonus(nil, 2, false))
	assert.Equal(t, 0.5, SpeedMaintainBonus(&Previous{Speed: 4}, 2, false))
	assert.Equal(t, 1.0, SpeedMaintainBonus(&Previous{Speed: 4}, 2, true), "slowing for a turn is free")
	assert.Equal(t, 1.0, SpeedMaintainBonus(&Previous{Speed: 2}, 4, false))
	assert.Equal(t, 1.0, SpeedMaintainBonus(&Previous{Speed: 0}, -1, false))
}

func TestHeadingDecreaseBonus(t *testing.T) {
	assert.Equal(t, 0.0, HeadingDecreaseBonus(nil, 10, true))
	assert.Equal(t, 2.0, HeadingDecreaseBonus(&Previous{DirectionDiff: 20}, 10, true))
	assert.Equal(t, 2.0, HeadingDecreaseBonus(&Previous{DirectionDiff: -20}, 10, true))
	assert.Equal(t, 10.0, HeadingDecreaseBonus(&Previous{DirectionDiff: 200}, 10, true))
	assert.Equal(t, 0.0, HeadingDecreaseBonus(&Previous{DirectionDiff: 5}, 10, true))
	assert.Equal(t, 0.0, HeadingDecreaseBonus(&Previous{DirectionDiff: 20}, 10, false))
	assert.Equal(t, 0.0, HeadingDecreaseBonus(&Previous{DirectionDiff: 20}, 0, true))
}

func TestSteeringMaintainBonus(t *testing.T) {
	cases := []struct {
		name     string
		prev     *Previous
		steering float64
		diff     float64
		correct  bool
		want     float64
	}{
		{name: "wrong direction", prev: nil, steering: 0, diff: 1, correct: false, want: 1},
		{name: "first step tight", prev: nil, steering: 0, diff: 7, correct: true, want: 2},
		{name: "first step exact", prev: nil, steering: 0, diff: 3, correct: true, want: 4},
		{name: "improving exact", prev: &Previous{SteeringAngle: 5, DirectionDiff: 6}, steering: 5, diff: -3, correct: true, want: 8},
		{name: "improving but wide", prev: &Previous{SteeringAngle: 5, DirectionDiff: 40}, steering: 5, diff: 30, correct: true, want: 2},
		{name: "steering changed", prev: &Previous{SteeringAngle: 5, DirectionDiff: 6}, steering: 4, diff: 3, correct: true, want: 1},
		{name: "steering within tolerance", prev: &Previous{SteeringAngle: 0.1 + 0.2, DirectionDiff: 1}, steering: 0.3, diff: 3, correct: true, want: 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SteeringMaintainBonus(tc.prev, tc.steering, tc.diff, tc.correct))
		})
	}
}

func TestDistanceReductionBonus(t *testing.T) {
	assert.Equal(t, 1.0, DistanceReductionBonus(nil, 0.1))
	assert.InDelta(t, 1.5, DistanceReductionBonus(&Previous{RouteDistance: 0.3}, 0.2), 1e-12)
	assert.Equal(t, 2.0, DistanceReductionBonus(&Previous{RouteDistance: 0.4}, 0.1))
	assert.Equal(t, 1.0, DistanceReductionBonus(&Previous{RouteDistance: 0.4}, 0))
	assert.Equal(t, 1.0, DistanceReductionBonus(&Previous{RouteDistance: 0.1}, 0.4))
	assert.InDelta(t, 0.25, DistanceReductionBonus(&Previous{RouteDistance: 0.1}, -0.4), 1e-12, "crossing the line compares magnitudes")
}

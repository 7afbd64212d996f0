package reward

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

const (
	maxHeadingDecreaseBonus   = 10.0
	maxDistanceReductionBonus = 2.0

	steeringTolerance   = 1e-9
	steeringTightDegree = 10.0
	steeringExactDegree = 5.0
)

// SpeedMaintainBonus penalizes slowing down when no turn is coming. It is the
// ratio of current to previous speed, capped at 1, and 1 otherwise.
func SpeedMaintainBonus(prev *Previous, speed float64, turnUpcoming bool) float64 {
	if prev == nil || prev.Speed <= speed || turnUpcoming {
		return 1
	}
	if prev.Speed == 0 {
		return 1
	}
	return math.Min(speed/prev.Speed, 1)
}

// HeadingDecreaseBonus rewards shrinking the direction difference while
// heading the right way. It is reported in the breakdown but not part of the
// aggregate.
func HeadingDecreaseBonus(prev *Previous, directionDiff float64, headingCorrect bool) float64 {
	if prev == nil || !headingCorrect || directionDiff == 0 {
		return 0
	}
	ratio := math.Abs(prev.DirectionDiff / directionDiff)
	if ratio <= 1 {
		return 0
	}
	return math.Min(maxHeadingDecreaseBonus, ratio)
}

// SteeringMaintainBonus doubles up to three times when the vehicle holds its
// steering angle while heading the right way: once for |diff| < 10, once more
// for |diff| < 5 and once more when |diff| shrank since the previous step.
func SteeringMaintainBonus(prev *Previous, steeringAngle, directionDiff float64, headingCorrect bool) float64 {
	if !headingCorrect || steeringChanged(prev, steeringAngle) {
		return 1
	}
	bonus := 1.0
	abs := math.Abs(directionDiff)
	if abs < steeringTightDegree {
		bonus *= 2
	}
	if abs < steeringExactDegree {
		bonus *= 2
	}
	if prev != nil && math.Abs(prev.DirectionDiff) > abs {
		bonus *= 2
	}
	return bonus
}

func steeringChanged(prev *Previous, steeringAngle float64) bool {
	if prev == nil {
		return false
	}
	return !scalar.EqualWithinRel(prev.SteeringAngle, steeringAngle, steeringTolerance)
}

// DistanceReductionBonus rewards closing in on the racing line with the ratio
// of previous to current distance, capped at 2.
func DistanceReductionBonus(prev *Previous, routeDistance float64) float64 {
	if prev == nil || prev.RouteDistance <= routeDistance || routeDistance == 0 {
		return 1
	}
	return math.Min(math.Abs(prev.RouteDistance/routeDistance), maxDistanceReductionBonus)
}

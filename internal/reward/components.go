package reward

import (
	"math"
	"strings"

	"trackreward/internal/model"
)

const (
	// alignedHeadingDegrees is the widest |diff| still scored with the
	// shallow falloff.
	alignedHeadingDegrees = 20.0
	alignedHeadingPower   = 4
	headingPower          = 10

	// borderSigmaDivisor turns a border distance into the Gaussian width.
	borderSigmaDivisor = 4.0
)

// HeadingReward scores how well the vehicle points at the next waypoint.
func HeadingReward(heading float64, position, next model.Waypoint) float64 {
	return headingRewardFromDiff(DirectionDiff(heading, position, next))
}

func headingRewardFromDiff(diff float64) float64 {
	abs := math.Abs(diff)
	c := math.Cos(abs * math.Pi / 180)
	if abs <= alignedHeadingDegrees {
		return math.Pow(c, alignedHeadingPower)
	}
	return math.Pow(c, headingPower)
}

// DistanceReward scores the lateral offset from the racing line. A vehicle on
// the line earns 1; off the line the reward decays as a Gaussian whose width
// is a quarter of the distance from the line to the border on that side.
func DistanceReward(bearing string, carDistance, innerBorder, outerBorder float64) float64 {
	switch {
	case strings.Contains(bearing, "center"):
		return 1
	case strings.Contains(bearing, "right"):
		return gaussian(carDistance, math.Abs(innerBorder)/borderSigmaDivisor)
	case strings.Contains(bearing, "left"):
		return gaussian(carDistance, math.Abs(outerBorder)/borderSigmaDivisor)
	default:
		return 0
	}
}

func gaussian(x, sigma float64) float64 {
	if sigma == 0 {
		return 0
	}
	r := x / sigma
	return math.Exp(-0.5 * r * r)
}

// SpeedReward ramps linearly up to maxSpeed and saturates at 1.
func SpeedReward(speed, maxSpeed float64) float64 {
	if maxSpeed <= 0 {
		return 1
	}
	return math.Min(speed/maxSpeed, 1)
}

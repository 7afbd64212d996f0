package reward

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"trackreward/internal/model"
)

// DirectionDiff returns the angle in degrees between the vehicle heading and
// the bearing from the vehicle to next. The result is not wrapped into
// (-180, 180]; threshold checks downstream operate on the raw value.
func DirectionDiff(heading float64, position, next model.Waypoint) float64 {
	d := r2.Sub(toVec(next), toVec(position))
	routeDirection := math.Atan2(d.Y, d.X) * 180 / math.Pi
	return routeDirection - heading
}

func toVec(w model.Waypoint) r2.Vec {
	return r2.Vec{X: w.X(), Y: w.Y()}
}

func nextWaypoint(in model.StepInput) (model.Waypoint, error) {
	idx := in.ClosestWaypoints[1]
	if idx < 0 || idx >= len(in.Waypoints) {
		return model.Waypoint{}, invalidInputf("closest waypoint index %d out of range for %d waypoints", idx, len(in.Waypoints))
	}
	return in.Waypoints[idx], nil
}

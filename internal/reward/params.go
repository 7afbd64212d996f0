package reward

import (
	"encoding/json"
	"fmt"

	"trackreward/internal/model"
)

var requiredParams = []string{
	"heading",
	"distance_from_center",
	"steps",
	"steering_angle",
	"speed",
	"x",
	"y",
	"waypoints",
	"closest_waypoints",
}

// DecodeParams converts a simulator parameter record into a StepInput.
// Optional keys that are absent keep their zero value.
func DecodeParams(raw map[string]any) (model.StepInput, error) {
	for _, key := range requiredParams {
		if _, ok := raw[key]; !ok {
			return model.StepInput{}, fmt.Errorf("%w: %s", ErrMissingParam, key)
		}
	}

	var (
		in  model.StepInput
		err error
	)
	floats := []struct {
		key string
		dst *float64
	}{
		{"heading", &in.Heading},
		{"distance_from_center", &in.DistanceFromCenter},
		{"steering_angle", &in.SteeringAngle},
		{"speed", &in.Speed},
		{"x", &in.X},
		{"y", &in.Y},
		{"progress", &in.Progress},
		{"normalized_car_distance_from_route", &in.NormalizedCarDistanceFromRoute},
		{"normalized_route_distance_from_inner_border", &in.NormalizedRouteDistanceFromInnerBorder},
		{"normalized_route_distance_from_outer_border", &in.NormalizedRouteDistanceFromOuterBorder},
		{"normalized_distance_from_route", &in.NormalizedDistanceFromRoute},
		{"curve_bonus", &in.CurveBonus},
		{"straight_section_bonus", &in.StraightSectionBonus},
	}
	for _, f := range floats {
		v, ok := raw[f.key]
		if !ok {
			continue
		}
		if *f.dst, ok = asFloat64(v); !ok {
			return model.StepInput{}, invalidParam(f.key, v)
		}
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"is_turn_upcoming", &in.IsTurnUpcoming},
		{"is_heading_in_right_direction", &in.IsHeadingInRightDirection},
		{"unpardonable_action", &in.UnpardonableAction},
	}
	for _, f := range bools {
		v, ok := raw[f.key]
		if !ok {
			continue
		}
		if *f.dst, ok = v.(bool); !ok {
			return model.StepInput{}, invalidParam(f.key, v)
		}
	}

	steps, ok := asInt(raw["steps"])
	if !ok {
		return model.StepInput{}, invalidParam("steps", raw["steps"])
	}
	in.Steps = steps

	if v, ok := raw["bearing"]; ok {
		if in.Bearing, ok = v.(string); !ok {
			return model.StepInput{}, invalidParam("bearing", v)
		}
	}

	if in.Waypoints, err = asWaypoints(raw["waypoints"]); err != nil {
		return model.StepInput{}, err
	}
	if in.ClosestWaypoints, err = asIndexPair(raw["closest_waypoints"]); err != nil {
		return model.StepInput{}, err
	}
	return in, nil
}

func invalidParam(key string, v any) error {
	return fmt.Errorf("%w: %s has type %T", ErrInvalidParam, key, v)
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		return int(x), true
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			f, ferr := x.Float64()
			return int(f), ferr == nil
		}
		return int(i), true
	default:
		return 0, false
	}
}

func asWaypoints(v any) ([]model.Waypoint, error) {
	switch x := v.(type) {
	case []model.Waypoint:
		return x, nil
	case [][2]float64:
		out := make([]model.Waypoint, len(x))
		for i, p := range x {
			out[i] = model.Waypoint(p)
		}
		return out, nil
	case [][]float64:
		out := make([]model.Waypoint, len(x))
		for i, p := range x {
			if len(p) < 2 {
				return nil, fmt.Errorf("%w: waypoint %d has %d coordinates", ErrInvalidParam, i, len(p))
			}
			out[i] = model.Waypoint{p[0], p[1]}
		}
		return out, nil
	case []any:
		out := make([]model.Waypoint, len(x))
		for i, item := range x {
			coords, ok := item.([]any)
			if !ok || len(coords) < 2 {
				return nil, fmt.Errorf("%w: waypoint %d is not an [x, y] pair", ErrInvalidParam, i)
			}
			px, okx := asFloat64(coords[0])
			py, oky := asFloat64(coords[1])
			if !okx || !oky {
				return nil, fmt.Errorf("%w: waypoint %d has non-numeric coordinates", ErrInvalidParam, i)
			}
			out[i] = model.Waypoint{px, py}
		}
		return out, nil
	default:
		return nil, invalidParam("waypoints", v)
	}
}

func asIndexPair(v any) ([2]int, error) {
	switch x := v.(type) {
	case [2]int:
		return x, nil
	case []int:
		if len(x) != 2 {
			return [2]int{}, fmt.Errorf("%w: closest_waypoints needs 2 indices, got %d", ErrInvalidParam, len(x))
		}
		return [2]int{x[0], x[1]}, nil
	case []any:
		if len(x) != 2 {
			return [2]int{}, fmt.Errorf("%w: closest_waypoints needs 2 indices, got %d", ErrInvalidParam, len(x))
		}
		a, oka := asInt(x[0])
		b, okb := asInt(x[1])
		if !oka || !okb {
			return [2]int{}, fmt.Errorf("%w: closest_waypoints has non-integer indices", ErrInvalidParam)
		}
		return [2]int{a, b}, nil
	default:
		return [2]int{}, invalidParam("closest_waypoints", v)
	}
}

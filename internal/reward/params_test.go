package reward

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackreward/internal/model"
)

const straightParamsJSON = `{
	"heading": 0, "x": 0, "y": 0, "distance_from_center": 0,
	"steps": 1, "steering_angle": 0, "speed": 5,
	"bearing": "center", "progress": 0,
	"waypoints": [[0, 0], [10, 0]], "closest_waypoints": [0, 1]
}`

func decodeJSON(t *testing.T, raw string) map[string]any {
	t.Helper()
	var params map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &params))
	return params
}

func TestDecodeParamsAppliesDefaults(t *testing.T) {
	in, err := DecodeParams(decodeJSON(t, straightParamsJSON))
	require.NoError(t, err)

	assert.Equal(t, 1, in.Steps)
	assert.Equal(t, 5.0, in.Speed)
	assert.Equal(t, "center", in.Bearing)
	assert.Equal(t, []model.Waypoint{{0, 0}, {10, 0}}, in.Waypoints)
	assert.Equal(t, [2]int{0, 1}, in.ClosestWaypoints)
	assert.False(t, in.IsHeadingInRightDirection)
	assert.False(t, in.IsTurnUpcoming)
	assert.Zero(t, in.NormalizedDistanceFromRoute)
	assert.Zero(t, in.CurveBonus)
}

func TestDecodeParamsMissingRequired(t *testing.T) {
	params := decodeJSON(t, straightParamsJSON)
	delete(params, "closest_waypoints")
	_, err := DecodeParams(params)
	assert.ErrorIs(t, err, ErrMissingParam)
	assert.Contains(t, err.Error(), "closest_waypoints")
}

func TestDecodeParamsRejectsWrongTypes(t *testing.T) {
	params := decodeJSON(t, straightParamsJSON)
	params["is_turn_upcoming"] = "yes"
	_, err := DecodeParams(params)
	assert.ErrorIs(t, err, ErrInvalidParam)

	params = decodeJSON(t, straightParamsJSON)
	params["waypoints"] = []any{[]any{1.0}}
	_, err = DecodeParams(params)
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestDecodeParamsAcceptsGoValues(t *testing.T) {
	in, err := DecodeParams(map[string]any{
		"heading":              10,
		"distance_from_center": 0.5,
		"steps":                int64(7),
		"steering_angle":       -15,
		"speed":                float32(2.5),
		"x":                    1,
		"y":                    2,
		"waypoints":            [][]float64{{1, 2}, {3, 4}},
		"closest_waypoints":    []int{0, 1},
		"is_turn_upcoming":     true,
		"unpardonable_action":  true,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, in.Steps)
	assert.Equal(t, 2.5, in.Speed)
	assert.Equal(t, -15.0, in.SteeringAngle)
	assert.True(t, in.IsTurnUpcoming)
	assert.True(t, in.UnpardonableAction)
}

func TestSessionReward(t *testing.T) {
	s := NewSession(DefaultConfig())
	total, err := s.Reward(decodeJSON(t, straightParamsJSON))
	require.NoError(t, err)
	assert.Equal(t, 1000.0, total)

	s.SetUnpardonable(true)
	total, err = s.Reward(decodeJSON(t, straightParamsJSON))
	require.NoError(t, err)
	assert.Equal(t, 1e-3, total)

	s.Reset()
	assert.Equal(t, startSnapshot(), s.State())
}

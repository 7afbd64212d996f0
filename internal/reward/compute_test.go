package reward

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackreward/internal/model"
)

func straightInput(steps int) model.StepInput {
	return model.StepInput{
		Heading:          0,
		X:                0,
		Y:                0,
		Steps:            steps,
		SteeringAngle:    0,
		Speed:            5,
		Bearing:          "center",
		Waypoints:        []model.Waypoint{{0, 0}, {10, 0}},
		ClosestWaypoints: [2]int{0, 1},
	}
}

func TestComputeStraightLineSaturates(t *testing.T) {
	var state EpisodeState
	b, err := Compute(DefaultConfig(), &state, straightInput(1))
	require.NoError(t, err)

	assert.True(t, b.NewEpisode)
	assert.InDelta(t, 1.0, b.HeadingReward, 1e-12)
	assert.Equal(t, 1.0, b.DistanceReward)
	assert.Equal(t, 1.0, b.SpeedReward)
	assert.Equal(t, 1.0, b.SteeringMaintainBonus)
	assert.InDelta(t, 10.0, b.HeadingComponent, 1e-9)
	assert.Equal(t, 10.0, b.DistanceComponent)
	assert.Equal(t, 5.0, b.SpeedComponent)
	assert.InDelta(t, 1125.0, b.Immediate, 1e-6)
	assert.Equal(t, 0.0, b.LongTerm)
	assert.Equal(t, 1000.0, b.Total)
}

func TestComputeUnpardonableFloorsImmediate(t *testing.T) {
	var state EpisodeState
	state.SetUnpardonable(true)

	b, err := Compute(DefaultConfig(), &state, straightInput(1))
	require.NoError(t, err)
	assert.True(t, b.Unpardonable)
	assert.Equal(t, 1e-3, b.Immediate)
	assert.Equal(t, 1e-3, b.Total)

	// the flag is owned by the caller and survives an episode restart
	_, err = Compute(DefaultConfig(), &state, straightInput(0))
	require.NoError(t, err)
	assert.True(t, state.Unpardonable)
}

func TestComputeUnpardonableParamIsPerCall(t *testing.T) {
	var state EpisodeState
	in := straightInput(1)
	in.UnpardonableAction = true
	in.CurveBonus = 2

	b, err := Compute(DefaultConfig(), &state, in)
	require.NoError(t, err)
	assert.InDelta(t, 2.001, b.Total, 1e-12)
	assert.False(t, state.Unpardonable)
}

func TestComputeMilestoneAwardedOncePerEpisode(t *testing.T) {
	var state EpisodeState
	in := straightInput(10)
	in.Progress = 45

	first, err := Compute(DefaultConfig(), &state, in)
	require.NoError(t, err)
	assert.InEpsilon(t, math.Pow(45, 8), first.MilestoneBonus, 1e-12)
	assert.Equal(t, first.MilestoneBonus, state.MilestoneAwarded(4))

	second, err := Compute(DefaultConfig(), &state, in)
	require.NoError(t, err)
	assert.False(t, second.NewEpisode)
	assert.Equal(t, 0.0, second.MilestoneBonus)
	assert.Equal(t, []int{4}, state.AwardedMilestones())
}

func TestComputeStepRegressionStartsNewEpisode(t *testing.T) {
	var state EpisodeState
	in := straightInput(50)
	in.Progress = 45
	b, err := Compute(DefaultConfig(), &state, in)
	require.NoError(t, err)
	assert.InEpsilon(t, math.Pow(9, 8), b.MilestoneBonus, 1e-12)

	in.Steps = 3
	b, err = Compute(DefaultConfig(), &state, in)
	require.NoError(t, err)
	assert.True(t, b.NewEpisode)
	assert.Equal(t, 1.0, b.MilestoneBonus, "bucket is awardable again and the warm-up rate is 1")
}

func TestComputeBonusesUsePreviousStep(t *testing.T) {
	var state EpisodeState
	in := straightInput(1)
	in.Speed = 4
	_, err := Compute(DefaultConfig(), &state, in)
	require.NoError(t, err)

	in.Steps = 2
	in.Speed = 2
	b, err := Compute(DefaultConfig(), &state, in)
	require.NoError(t, err)
	assert.Equal(t, 0.5, b.SpeedMaintainBonus)
	assert.InDelta(t, 1.0, b.SpeedComponent, 1e-12)

	prev := state.Previous()
	require.NotNil(t, prev)
	assert.Equal(t, 2.0, prev.Speed)
}

func TestComputeHeadingDecreaseBonusStaysOutOfAggregate(t *testing.T) {
	var state EpisodeState
	in := straightInput(1)
	in.Heading = 20
	in.IsHeadingInRightDirection = true
	_, err := Compute(DefaultConfig(), &state, in)
	require.NoError(t, err)

	in.Steps = 2
	in.Heading = 10
	b, err := Compute(DefaultConfig(), &state, in)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, b.HeadingDecreaseBonus, 1e-12)
	assert.Equal(t, 2.0, b.SteeringMaintainBonus)
	assert.InDelta(t, 10*math.Pow(math.Cos(10*math.Pi/180), 4)*2, b.HeadingComponent, 1e-9)
	assert.Equal(t, Immediate(b.HeadingComponent, b.DistanceComponent, b.SpeedComponent), b.Immediate)
}

func TestComputeRejectsOutOfRangeWaypoint(t *testing.T) {
	var state EpisodeState
	_, err := Compute(DefaultConfig(), &state, straightInput(1))
	require.NoError(t, err)
	before := state.Snapshot()

	in := straightInput(2)
	in.ClosestWaypoints = [2]int{1, 2}
	_, err = Compute(DefaultConfig(), &state, in)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, before, state.Snapshot())
}

func TestComputeTotalAlwaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cfg := DefaultConfig()
	bearings := []string{"center", "left", "right", "", "far-left"}
	var state EpisodeState

	for i := 0; i < 2000; i++ {
		in := model.StepInput{
			Heading:                                rng.Float64()*720 - 360,
			X:                                      rng.Float64()*20 - 10,
			Y:                                      rng.Float64()*20 - 10,
			Steps:                                  rng.Intn(200),
			SteeringAngle:                          float64(rng.Intn(7)*10 - 30),
			Speed:                                  rng.Float64() * 8,
			Progress:                               rng.Float64() * 100,
			Bearing:                                bearings[rng.Intn(len(bearings))],
			NormalizedCarDistanceFromRoute:         rng.Float64()*2 - 1,
			NormalizedRouteDistanceFromInnerBorder: float64(rng.Intn(3)) * rng.Float64(),
			NormalizedRouteDistanceFromOuterBorder: float64(rng.Intn(3)) * rng.Float64(),
			NormalizedDistanceFromRoute:            float64(rng.Intn(3)) * (rng.Float64()*2 - 1),
			IsTurnUpcoming:                         rng.Intn(2) == 0,
			IsHeadingInRightDirection:              rng.Intn(2) == 0,
			Waypoints:                              []model.Waypoint{{0, 0}, {5, 5}, {-3, 2}},
			ClosestWaypoints:                       [2]int{rng.Intn(3), rng.Intn(3)},
		}
		if i%97 == 0 {
			state.SetUnpardonable(!state.Unpardonable)
		}
		b, err := Compute(cfg, &state, in)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, b.Total, cfg.MinReward)
		assert.LessOrEqual(t, b.Total, cfg.MaxReward)
		assert.False(t, math.IsNaN(b.Total))
	}
}

func TestClampRewardMapsNaNToFloor(t *testing.T) {
	assert.Equal(t, 1e-3, clampReward(DefaultConfig(), math.NaN()))
	assert.Equal(t, 1000.0, clampReward(DefaultConfig(), math.Inf(1)))
	assert.Equal(t, 1e-3, clampReward(DefaultConfig(), -5))
}

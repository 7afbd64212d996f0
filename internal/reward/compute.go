package reward

import (
	"math"

	"github.com/samber/lo"

	"trackreward/internal/model"
)

// Breakdown reports every term that went into one reward.
type Breakdown struct {
	NewEpisode    bool    `json:"new_episode"`
	DirectionDiff float64 `json:"direction_diff"`

	HeadingReward  float64 `json:"heading_reward"`
	DistanceReward float64 `json:"distance_reward"`
	SpeedReward    float64 `json:"speed_reward"`

	SpeedMaintainBonus     float64 `json:"speed_maintain_bonus"`
	HeadingDecreaseBonus   float64 `json:"heading_decrease_bonus"`
	SteeringMaintainBonus  float64 `json:"steering_maintain_bonus"`
	DistanceReductionBonus float64 `json:"distance_reduction_bonus"`
	MilestoneBonus         float64 `json:"milestone_bonus"`

	HeadingComponent  float64 `json:"heading_component"`
	DistanceComponent float64 `json:"distance_component"`
	SpeedComponent    float64 `json:"speed_component"`
	Immediate         float64 `json:"immediate"`
	LongTerm          float64 `json:"long_term"`
	Unpardonable      bool    `json:"unpardonable"`
	Total             float64 `json:"total"`
}

// Compute scores one step against state and advances state. Only a broken
// input contract returns an error, and in that case state is left untouched.
func Compute(cfg Config, state *EpisodeState, in model.StepInput) (Breakdown, error) {
	next, err := nextWaypoint(in)
	if err != nil {
		return Breakdown{}, err
	}
	position := model.Waypoint{in.X, in.Y}

	var b Breakdown
	b.NewEpisode = state.ResetIfNewEpisode(in.Steps)
	prev := state.Previous()

	b.SpeedMaintainBonus = SpeedMaintainBonus(prev, in.Speed, in.IsTurnUpcoming)
	b.DirectionDiff = DirectionDiff(in.Heading, position, next)
	// Heading-decrease shaping is still being evaluated; it is reported but
	// deliberately left out of the aggregate below.
	b.HeadingDecreaseBonus = HeadingDecreaseBonus(prev, b.DirectionDiff, in.IsHeadingInRightDirection)
	b.SteeringMaintainBonus = SteeringMaintainBonus(prev, in.SteeringAngle, b.DirectionDiff, in.IsHeadingInRightDirection)
	b.DistanceReductionBonus = DistanceReductionBonus(prev, in.NormalizedDistanceFromRoute)

	state.Commit(in.Speed, in.SteeringAngle, b.DirectionDiff, in.Steps, in.NormalizedDistanceFromRoute)

	b.HeadingReward = headingRewardFromDiff(b.DirectionDiff)
	b.DistanceReward = DistanceReward(
		in.Bearing,
		in.NormalizedCarDistanceFromRoute,
		in.NormalizedRouteDistanceFromInnerBorder,
		in.NormalizedRouteDistanceFromOuterBorder,
	)
	b.SpeedReward = SpeedReward(in.Speed, cfg.MaxSpeed)

	b.HeadingComponent = cfg.HeadingWeight * b.HeadingReward * b.SteeringMaintainBonus
	b.DistanceComponent = cfg.DistanceWeight * b.DistanceReward * b.DistanceReductionBonus
	b.SpeedComponent = cfg.SpeedWeight * b.SpeedReward * b.SpeedMaintainBonus
	b.Immediate = Immediate(b.HeadingComponent, b.DistanceComponent, b.SpeedComponent)
	b.Unpardonable = state.Unpardonable || in.UnpardonableAction
	if b.Unpardonable {
		b.Immediate = cfg.MinReward
	}

	b.MilestoneBonus = state.AwardMilestone(in.Progress, in.Steps)
	b.LongTerm = in.CurveBonus + b.MilestoneBonus + in.StraightSectionBonus
	b.Total = clampReward(cfg, b.Immediate+b.LongTerm)
	return b, nil
}

// Immediate combines the three weighted components. The squared sum rewards
// doing well overall and the product rewards doing well on all three at once.
func Immediate(heading, distance, speed float64) float64 {
	sum := heading + distance + speed
	return sum*sum + heading*distance*speed
}

func clampReward(cfg Config, total float64) float64 {
	if math.IsNaN(total) {
		return cfg.MinReward
	}
	return lo.Clamp(total, cfg.MinReward, cfg.MaxReward)
}

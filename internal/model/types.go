package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Waypoint is an (x, y) track coordinate.
type Waypoint [2]float64

func (w Waypoint) X() float64 { return w[0] }
func (w Waypoint) Y() float64 { return w[1] }

// StepInput is one simulation snapshot handed to the reward function.
type StepInput struct {
	Heading            float64    `json:"heading"`
	X                  float64    `json:"x"`
	Y                  float64    `json:"y"`
	DistanceFromCenter float64    `json:"distance_from_center"`
	Steps              int        `json:"steps"`
	SteeringAngle      float64    `json:"steering_angle"`
	Speed              float64    `json:"speed"`
	Progress           float64    `json:"progress"`
	Bearing            string     `json:"bearing"`
	Waypoints          []Waypoint `json:"waypoints"`
	ClosestWaypoints   [2]int     `json:"closest_waypoints"`

	NormalizedCarDistanceFromRoute         float64 `json:"normalized_car_distance_from_route"`
	NormalizedRouteDistanceFromInnerBorder float64 `json:"normalized_route_distance_from_inner_border"`
	NormalizedRouteDistanceFromOuterBorder float64 `json:"normalized_route_distance_from_outer_border"`
	NormalizedDistanceFromRoute            float64 `json:"normalized_distance_from_route"`
	IsTurnUpcoming                         bool    `json:"is_turn_upcoming"`
	IsHeadingInRightDirection              bool    `json:"is_heading_in_right_direction"`
	CurveBonus                             float64 `json:"curve_bonus"`
	StraightSectionBonus                   float64 `json:"straight_section_bonus"`
	UnpardonableAction                     bool    `json:"unpardonable_action,omitempty"`
}

// StepRecord is the persisted outcome of one reward call.
type StepRecord struct {
	Steps                  int     `json:"steps"`
	Progress               float64 `json:"progress"`
	Speed                  float64 `json:"speed"`
	SteeringAngle          float64 `json:"steering_angle"`
	DirectionDiff          float64 `json:"direction_diff"`
	HeadingReward          float64 `json:"heading_reward"`
	DistanceReward         float64 `json:"distance_reward"`
	SpeedReward            float64 `json:"speed_reward"`
	SpeedMaintainBonus     float64 `json:"speed_maintain_bonus"`
	HeadingDecreaseBonus   float64 `json:"heading_decrease_bonus"`
	SteeringMaintainBonus  float64 `json:"steering_maintain_bonus"`
	DistanceReductionBonus float64 `json:"distance_reduction_bonus"`
	MilestoneBonus         float64 `json:"milestone_bonus"`
	Immediate              float64 `json:"immediate"`
	LongTerm               float64 `json:"long_term"`
	Total                  float64 `json:"total"`
	Unpardonable           bool    `json:"unpardonable"`
}

// EpisodeSummary aggregates the rewards handed out during one episode.
type EpisodeSummary struct {
	VersionedRecord
	ID                string  `json:"id"`
	AgentID           string  `json:"agent_id"`
	StartedAtUTC      string  `json:"started_at_utc"`
	EndedAtUTC        string  `json:"ended_at_utc"`
	Steps             int     `json:"steps"`
	LastStep          int     `json:"last_step"`
	FinalProgress     float64 `json:"final_progress"`
	TotalReward       float64 `json:"total_reward"`
	MeanReward        float64 `json:"mean_reward"`
	StdReward         float64 `json:"std_reward"`
	MinReward         float64 `json:"min_reward"`
	MaxReward         float64 `json:"max_reward"`
	MilestoneBonus    float64 `json:"milestone_bonus"`
	Milestones        []int   `json:"milestones,omitempty"`
	UnpardonableSteps int     `json:"unpardonable_steps"`
}

package reward

// MilestoneBuckets is the number of 10% progress buckets, 0% through 100%.
const MilestoneBuckets = 11

// EpisodeState carries the history one reward stream needs between calls.
// A zero EpisodeState is the process-start state. It is not safe for
// concurrent use; give each concurrently running episode its own state.
type EpisodeState struct {
	// primed is set once the four previous values below hold data for the
	// current episode. They are always set and cleared together.
	primed            bool
	prevSpeed         float64
	prevSteering      float64
	prevDirectionDiff float64
	prevRouteDistance float64

	// The step counter survives episode resets so the next call can still
	// detect a regression.
	hasSteps  bool
	prevSteps int

	milestones [MilestoneBuckets]float64

	// Unpardonable forces the immediate reward to its floor while set. It is
	// owned by the caller and is not cleared on episode boundaries.
	Unpardonable bool
}

// StateSnapshot is a read-only copy of an EpisodeState.
type StateSnapshot struct {
	Primed            bool                      `json:"primed"`
	PrevSpeed         *float64                  `json:"prev_speed,omitempty"`
	PrevSteering      *float64                  `json:"prev_steering_angle,omitempty"`
	PrevDirectionDiff *float64                  `json:"prev_direction_diff,omitempty"`
	PrevRouteDistance *float64                  `json:"prev_normalized_route_distance,omitempty"`
	PrevSteps         *int                      `json:"prev_step_count,omitempty"`
	Milestones        [MilestoneBuckets]float64 `json:"milestones"`
	Unpardonable      bool                      `json:"unpardonable_action"`
}

// ResetIfNewEpisode clears the per-episode history when steps signals a new
// episode: either no call has been seen yet or the counter went backwards.
// It reports whether a new episode started.
func (s *EpisodeState) ResetIfNewEpisode(steps int) bool {
	if s.hasSteps && steps >= s.prevSteps {
		return false
	}
	s.primed = false
	s.prevSpeed = 0
	s.prevSteering = 0
	s.prevDirectionDiff = 0
	s.prevRouteDistance = 0
	s.milestones = [MilestoneBuckets]float64{}
	return true
}

// Commit records the values of the step that was just scored. It must run
// after every bonus of that step has been computed.
func (s *EpisodeState) Commit(speed, steeringAngle, directionDiff float64, steps int, routeDistance float64) {
	s.primed = true
	s.prevSpeed = speed
	s.prevSteering = steeringAngle
	s.prevDirectionDiff = directionDiff
	s.prevRouteDistance = routeDistance
	s.hasSteps = true
	s.prevSteps = steps
}

// Reset returns the state to its process-start value, including the step
// counter and the unpardonable flag.
func (s *EpisodeState) Reset() {
	*s = EpisodeState{}
}

// SetUnpardonable raises or lowers the immediate-reward floor flag.
func (s *EpisodeState) SetUnpardonable(v bool) {
	s.Unpardonable = v
}

// MilestoneAwarded returns the amount granted for bucket i in the current
// episode, or zero when it has not been awarded.
func (s *EpisodeState) MilestoneAwarded(i int) float64 {
	if i < 0 || i >= MilestoneBuckets {
		return 0
	}
	return s.milestones[i]
}

// AwardedMilestones lists the buckets that have been granted this episode.
func (s *EpisodeState) AwardedMilestones() []int {
	var out []int
	for i, v := range s.milestones {
		if v != 0 {
			out = append(out, i)
		}
	}
	return out
}

// Snapshot copies the state. Previous values are nil until the episode has
// committed a step.
func (s *EpisodeState) Snapshot() StateSnapshot {
	snap := StateSnapshot{
		Primed:       s.primed,
		Milestones:   s.milestones,
		Unpardonable: s.Unpardonable,
	}
	if s.primed {
		speed, steering, diff, route := s.prevSpeed, s.prevSteering, s.prevDirectionDiff, s.prevRouteDistance
		snap.PrevSpeed = &speed
		snap.PrevSteering = &steering
		snap.PrevDirectionDiff = &diff
		snap.PrevRouteDistance = &route
	}
	if s.hasSteps {
		steps := s.prevSteps
		snap.PrevSteps = &steps
	}
	return snap
}

// Previous returns the values committed by the last call of the current
// episode, or nil at the start of an episode.
func (s *EpisodeState) Previous() *Previous {
	if !s.primed {
		return nil
	}
	return &Previous{
		Speed:         s.prevSpeed,
		SteeringAngle: s.prevSteering,
		DirectionDiff: s.prevDirectionDiff,
		RouteDistance: s.prevRouteDistance,
	}
}

// Previous holds the telemetry of the prior step within an episode.
type Previous struct {
	Speed         float64
	SteeringAngle float64
	DirectionDiff float64
	RouteDistance float64
}

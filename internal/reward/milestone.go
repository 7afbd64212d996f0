package reward

import "math"

const (
	// warmupSteps is the number of opening steps whose progress rate is
	// pinned to 1.
	warmupSteps = 5

	completionBucket   = MilestoneBuckets - 1
	completionExponent = 14.0
	milestoneBase      = 5.0
	milestoneSlope     = 0.75
)

// ProgressRate is progress per step scaled by 10, pinned to 1 during the
// first few steps.
func ProgressRate(progress float64, steps int) float64 {
	if steps <= warmupSteps {
		return 1
	}
	return 10 * progress / float64(steps)
}

// MilestoneBucket maps progress in percent to its 10% bucket.
func MilestoneBucket(progress float64) int {
	if math.IsNaN(progress) || math.IsInf(progress, 0) {
		return 0
	}
	return int(math.Floor(progress / 10))
}

// AwardMilestone grants the one-off bonus for the bucket progress falls into,
// if it has not been granted yet this episode. Later buckets raise the
// progress rate to a higher power; finishing the lap uses the largest one.
func (s *EpisodeState) AwardMilestone(progress float64, steps int) float64 {
	bucket := MilestoneBucket(progress)
	if bucket <= 0 || bucket > completionBucket || s.milestones[bucket] != 0 {
		return 0
	}

	rate := ProgressRate(progress, steps)
	exponent := milestoneBase + milestoneSlope*float64(bucket)
	if bucket == completionBucket {
		exponent = completionExponent
	}
	bonus := math.Pow(rate, exponent)
	s.milestones[bucket] = bonus
	return bonus
}

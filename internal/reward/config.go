package reward

import "fmt"

// Config holds the tunable constants of the reward shaping.
type Config struct {
	MaxSpeed       float64 `mapstructure:"max_speed" json:"max_speed"`
	MinReward      float64 `mapstructure:"min_reward" json:"min_reward"`
	MaxReward      float64 `mapstructure:"max_reward" json:"max_reward"`
	HeadingWeight  float64 `mapstructure:"heading_weight" json:"heading_weight"`
	DistanceWeight float64 `mapstructure:"distance_weight" json:"distance_weight"`
	SpeedWeight    float64 `mapstructure:"speed_weight" json:"speed_weight"`
}

// DefaultConfig returns the tuned constants of the reference track.
func DefaultConfig() Config {
	return Config{
		MaxSpeed:       5,
		MinReward:      1e-3,
		MaxReward:      1e3,
		HeadingWeight:  10,
		DistanceWeight: 10,
		SpeedWeight:    5,
	}
}

// Validate reports the first constant that cannot produce a bounded reward.
func (c Config) Validate() error {
	if c.MaxSpeed <= 0 {
		return fmt.Errorf("max speed must be positive, got %v", c.MaxSpeed)
	}
	if c.MinReward <= 0 {
		return fmt.Errorf("min reward must be positive, got %v", c.MinReward)
	}
	if c.MaxReward < c.MinReward {
		return fmt.Errorf("max reward %v is below min reward %v", c.MaxReward, c.MinReward)
	}
	if c.HeadingWeight < 0 || c.DistanceWeight < 0 || c.SpeedWeight < 0 {
		return fmt.Errorf("component weights must be non-negative")
	}
	return nil
}

package trackreward

import (
	"trackreward/internal/model"
	"trackreward/internal/reward"
)

type (
	Config         = reward.Config
	Breakdown      = reward.Breakdown
	StateSnapshot  = reward.StateSnapshot
	StepInput      = model.StepInput
	Waypoint       = model.Waypoint
	StepRecord     = model.StepRecord
	EpisodeSummary = model.EpisodeSummary
)

var (
	ErrInvalidInput = reward.ErrInvalidInput
	ErrMissingParam = reward.ErrMissingParam
	ErrInvalidParam = reward.ErrInvalidParam
)

// DefaultConfig returns the tuned reward constants.
func DefaultConfig() Config {
	return reward.DefaultConfig()
}

// Session scores a single episode stream without any persistence. It is not
// safe for concurrent use; run one Session per concurrently simulated agent.
type Session struct {
	inner *reward.Session
}

func NewSession(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Session{inner: reward.NewSession(cfg)}, nil
}

// Reward is the simulator-facing entry point: it takes one parameter record
// and returns the scalar reward.
func (s *Session) Reward(params map[string]any) (float64, error) {
	return s.inner.Reward(params)
}

func (s *Session) Step(in StepInput) (Breakdown, error) {
	return s.inner.Step(in)
}

// StepParams is Reward with the full breakdown.
func (s *Session) StepParams(params map[string]any) (Breakdown, error) {
	in, err := reward.DecodeParams(params)
	if err != nil {
		return Breakdown{}, err
	}
	return s.inner.Step(in)
}

func (s *Session) Reset() {
	s.inner.Reset()
}

func (s *Session) SetUnpardonable(v bool) {
	s.inner.SetUnpardonable(v)
}

func (s *Session) State() StateSnapshot {
	return s.inner.State()
}

package reward

import "trackreward/internal/model"

// Session binds a Config to the state of a single reward stream. Calls must
// be serialized by the owner.
type Session struct {
	cfg   Config
	state EpisodeState
}

// NewSession returns a session in the process-start state. cfg is not
// validated here.
func NewSession(cfg Config) *Session {
	return &Session{cfg: cfg}
}

func (s *Session) Config() Config {
	return s.cfg
}

func (s *Session) Step(in model.StepInput) (Breakdown, error) {
	return Compute(s.cfg, &s.state, in)
}

// Reward decodes a simulator parameter record and returns the total reward.
func (s *Session) Reward(params map[string]any) (float64, error) {
	in, err := DecodeParams(params)
	if err != nil {
		return 0, err
	}
	b, err := s.Step(in)
	if err != nil {
		return 0, err
	}
	return b.Total, nil
}

func (s *Session) Reset() {
	s.state.Reset()
}

func (s *Session) SetUnpardonable(v bool) {
	s.state.SetUnpardonable(v)
}

func (s *Session) State() StateSnapshot {
	return s.state.Snapshot()
}

// AwardedMilestones lists the milestone buckets granted in the current episode.
func (s *Session) AwardedMilestones() []int {
	return s.state.AwardedMilestones()
}

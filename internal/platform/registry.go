package platform

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"trackreward/internal/model"
	"trackreward/internal/reward"
	"trackreward/internal/stats"
	"trackreward/internal/storage"
)

var log = logrus.WithField("component", "platform")

var errNotStarted = errors.New("registry is not started")

type Config struct {
	Store  storage.Store
	Reward reward.Config
	// KeepTraces persists every step record of a finished episode next to
	// its summary.
	KeepTraces bool
	// Now defaults to time.Now.
	Now func() time.Time
}

// StepResult is the outcome of one reward call routed through the registry.
type StepResult struct {
	AgentID   string           `json:"agent_id"`
	EpisodeID string           `json:"episode_id"`
	Breakdown reward.Breakdown `json:"breakdown"`
}

// Registry owns one reward session per agent. Calls for the same agent are
// serialized; different agents proceed in parallel.
type Registry struct {
	store storage.Store
	cfg   Config

	mu      sync.RWMutex
	started bool
	agents  map[string]*agentSession
}

func NewRegistry(cfg Config) *Registry {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Registry{
		store:  cfg.Store,
		cfg:    cfg,
		agents: make(map[string]*agentSession),
	}
}

func (r *Registry) Init(ctx context.Context) error {
	if r.store == nil {
		return fmt.Errorf("store is required")
	}
	if err := r.cfg.Reward.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return nil
	}
	if err := r.store.Init(ctx); err != nil {
		return err
	}
	r.started = true
	log.WithField("keep_traces", r.cfg.KeepTraces).Debug("registry started")
	return nil
}

func (r *Registry) Started() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.started
}

func (r *Registry) Store() storage.Store {
	return r.store
}

// Step decodes a simulator parameter record and scores it for agentID.
func (r *Registry) Step(ctx context.Context, agentID string, params map[string]any) (StepResult, error) {
	in, err := reward.DecodeParams(params)
	if err != nil {
		return StepResult{}, err
	}
	return r.StepInput(ctx, agentID, in)
}

func (r *Registry) StepInput(ctx context.Context, agentID string, in model.StepInput) (StepResult, error) {
	agent, err := r.agent(agentID)
	if err != nil {
		return StepResult{}, err
	}

	agent.mu.Lock()
	defer agent.mu.Unlock()
	if agent.closed {
		return StepResult{}, errNotStarted
	}

	b, err := agent.session.Step(in)
	if err != nil {
		return StepResult{}, err
	}
	if b.NewEpisode && len(agent.records) > 0 {
		r.closeEpisode(ctx, agent)
	}
	if agent.episodeID == "" {
		agent.begin(r.cfg.Now())
		log.WithFields(logrus.Fields{
			"agent_id":   agent.agentID,
			"episode_id": agent.episodeID,
		}).Debug("episode started")
	}
	agent.records = append(agent.records, newStepRecord(in, b))

	return StepResult{AgentID: agentID, EpisodeID: agent.episodeID, Breakdown: b}, nil
}

// Reset closes the open episode of agentID and returns its reward state to
// the process-start value.
func (r *Registry) Reset(ctx context.Context, agentID string) error {
	agent, err := r.agent(agentID)
	if err != nil {
		return err
	}

	agent.mu.Lock()
	defer agent.mu.Unlock()
	if agent.closed {
		return errNotStarted
	}

	if len(agent.records) > 0 {
		r.closeEpisode(ctx, agent)
	}
	agent.session.Reset()
	return nil
}

func (r *Registry) SetUnpardonable(agentID string, v bool) error {
	agent, err := r.agent(agentID)
	if err != nil {
		return err
	}

	agent.mu.Lock()
	defer agent.mu.Unlock()
	if agent.closed {
		return errNotStarted
	}
	agent.session.SetUnpardonable(v)
	return nil
}

// State returns a copy of the reward state held for agentID.
func (r *Registry) State(agentID string) (reward.StateSnapshot, bool) {
	r.mu.RLock()
	agent, ok := r.agents[agentID]
	r.mu.RUnlock()
	if !ok {
		return reward.StateSnapshot{}, false
	}

	agent.mu.Lock()
	defer agent.mu.Unlock()
	return agent.session.State(), true
}

// OpenEpisode returns the id of the episode currently accumulating steps for
// agentID.
func (r *Registry) OpenEpisode(agentID string) (string, bool) {
	r.mu.RLock()
	agent, ok := r.agents[agentID]
	r.mu.RUnlock()
	if !ok {
		return "", false
	}

	agent.mu.Lock()
	defer agent.mu.Unlock()
	return agent.episodeID, agent.episodeID != ""
}

func (r *Registry) Agents() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Episodes(ctx context.Context, agentID string, limit int) ([]model.EpisodeSummary, error) {
	if !r.Started() {
		return nil, errNotStarted
	}
	return r.store.ListEpisodes(ctx, agentID, limit)
}

func (r *Registry) Episode(ctx context.Context, episodeID string) (model.EpisodeSummary, bool, error) {
	if !r.Started() {
		return model.EpisodeSummary{}, false, errNotStarted
	}
	return r.store.GetEpisode(ctx, episodeID)
}

func (r *Registry) StepTrace(ctx context.Context, episodeID string) ([]model.StepRecord, bool, error) {
	if !r.Started() {
		return nil, false, errNotStarted
	}
	return r.store.GetStepTrace(ctx, episodeID)
}

// Close flushes every open episode to the store. The registry can be
// started again with Init.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return nil
	}

	var firstErr error
	for _, agent := range r.agents {
		agent.mu.Lock()
		if len(agent.records) > 0 {
			if err := r.persistEpisode(ctx, agent); err != nil && firstErr == nil {
				firstErr = err
			}
			agent.clear()
		}
		agent.closed = true
		agent.mu.Unlock()
	}
	r.agents = make(map[string]*agentSession)
	r.started = false
	return firstErr
}

func (r *Registry) agent(agentID string) (*agentSession, error) {
	if agentID == "" {
		return nil, fmt.Errorf("agent id is required")
	}

	r.mu.RLock()
	agent, ok := r.agents[agentID]
	started := r.started
	r.mu.RUnlock()
	if !started {
		return nil, errNotStarted
	}
	if ok {
		return agent, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return nil, errNotStarted
	}
	if agent, ok := r.agents[agentID]; ok {
		return agent, nil
	}
	agent = &agentSession{
		agentID: agentID,
		session: reward.NewSession(r.cfg.Reward),
	}
	r.agents[agentID] = agent
	return agent, nil
}

// closeEpisode persists the open episode and clears it. Storage failures are
// logged; the reward stream keeps going.
func (r *Registry) closeEpisode(ctx context.Context, agent *agentSession) {
	if err := r.persistEpisode(ctx, agent); err != nil {
		log.WithError(err).WithField("episode_id", agent.episodeID).Error("unable to persist episode")
	}
	agent.clear()
}

func (r *Registry) persistEpisode(ctx context.Context, agent *agentSession) error {
	summary := stats.Summarize(agent.agentID, agent.episodeID, agent.records)
	summary.VersionedRecord = storage.Stamp()
	summary.StartedAtUTC = agent.startedAt.UTC().Format(time.RFC3339)
	summary.EndedAtUTC = r.cfg.Now().UTC().Format(time.RFC3339)

	if err := r.store.SaveEpisode(ctx, summary); err != nil {
		return fmt.Errorf("save episode %s: %w", summary.ID, err)
	}
	if r.cfg.KeepTraces {
		if err := r.store.SaveStepTrace(ctx, summary.ID, agent.records); err != nil {
			return fmt.Errorf("save step trace %s: %w", summary.ID, err)
		}
	}

	log.WithFields(logrus.Fields{
		"agent_id":     summary.AgentID,
		"episode_id":   summary.ID,
		"steps":        summary.Steps,
		"total_reward": summary.TotalReward,
	}).Info("episode closed")
	return nil
}

type agentSession struct {
	agentID string

	mu        sync.Mutex
	session   *reward.Session
	episodeID string
	startedAt time.Time
	records   []model.StepRecord
	// closed is set by Registry.Close. Callers that resolved the session
	// before Close must not record into it.
	closed bool
}

func (a *agentSession) begin(now time.Time) {
	a.episodeID = uuid.NewString()
	a.startedAt = now
	a.records = nil
}

func (a *agentSession) clear() {
	a.episodeID = ""
	a.records = nil
}

func newStepRecord(in model.StepInput, b reward.Breakdown) model.StepRecord {
	return model.StepRecord{
		Steps:                  in.Steps,
		Progress:               in.Progress,
		Speed:                  in.Speed,
		SteeringAngle:          in.SteeringAngle,
		DirectionDiff:          b.DirectionDiff,
		HeadingReward:          b.HeadingReward,
		DistanceReward:         b.DistanceReward,
		SpeedReward:            b.SpeedReward,
		SpeedMaintainBonus:     b.SpeedMaintainBonus,
		HeadingDecreaseBonus:   b.HeadingDecreaseBonus,
		SteeringMaintainBonus:  b.SteeringMaintainBonus,
		DistanceReductionBonus: b.DistanceReductionBonus,
		MilestoneBonus:         b.MilestoneBonus,
		Immediate:              b.Immediate,
		LongTerm:               b.LongTerm,
		Total:                  b.Total,
		Unpardonable:           b.Unpardonable,
	}
}

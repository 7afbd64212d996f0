package storage

import (
	"context"
	"errors"
	"sync"

	"trackreward/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	episodes    map[string]model.EpisodeSummary
	order       []string
	traces      map[string][]model.StepRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Init prepares an empty store. Calling it again keeps the saved data.
func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.clear()
	s.initialized = true
	return nil
}

func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clear()
	s.initialized = true
	return nil
}

func (s *MemoryStore) clear() {
	s.episodes = make(map[string]model.EpisodeSummary)
	s.order = nil
	s.traces = make(map[string][]model.StepRecord)
}

func (s *MemoryStore) SaveEpisode(_ context.Context, summary model.EpisodeSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	if _, ok := s.episodes[summary.ID]; !ok {
		s.order = append(s.order, summary.ID)
	}
	summary.Milestones = append([]int(nil), summary.Milestones...)
	s.episodes[summary.ID] = summary
	return nil
}

func (s *MemoryStore) GetEpisode(_ context.Context, id string) (model.EpisodeSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.episodes[id]
	return summary, ok, nil
}

func (s *MemoryStore) ListEpisodes(_ context.Context, agentID string, limit int) ([]model.EpisodeSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.EpisodeSummary
	for i := len(s.order) - 1; i >= 0; i-- {
		summary := s.episodes[s.order[i]]
		if agentID != "" && summary.AgentID != agentID {
			continue
		}
		out = append(out, summary)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) SaveStepTrace(_ context.Context, episodeID string, records []model.StepRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	s.traces[episodeID] = append([]model.StepRecord(nil), records...)
	return nil
}

func (s *MemoryStore) GetStepTrace(_ context.Context, episodeID string) ([]model.StepRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.traces[episodeID]
	if !ok {
		return nil, false, nil
	}
	return append([]model.StepRecord(nil), records...), true, nil
}

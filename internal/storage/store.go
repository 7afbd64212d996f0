package storage

import (
	"context"

	"trackreward/internal/model"
)

// Store persists finished episodes and, optionally, their per-step traces.
type Store interface {
	Init(ctx context.Context) error
	SaveEpisode(ctx context.Context, summary model.EpisodeSummary) error
	GetEpisode(ctx context.Context, id string) (model.EpisodeSummary, bool, error)
	// ListEpisodes returns the most recently saved episodes first. An empty
	// agentID matches every agent; limit <= 0 disables the limit.
	ListEpisodes(ctx context.Context, agentID string, limit int) ([]model.EpisodeSummary, error)
	SaveStepTrace(ctx context.Context, episodeID string, records []model.StepRecord) error
	GetStepTrace(ctx context.Context, episodeID string) ([]model.StepRecord, bool, error)
	Reset(ctx context.Context) error
}

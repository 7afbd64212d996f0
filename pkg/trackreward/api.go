package trackreward

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"trackreward/internal/platform"
	"trackreward/internal/stats"
	"trackreward/internal/storage"
	"trackreward/internal/telemetry"
)

const (
	defaultDBPath     = "trackreward.db"
	defaultExportsDir = "exports"
)

type Options struct {
	StoreKind  string
	DBPath     string
	ExportsDir string
	KeepTraces bool
	// Reward defaults to DefaultConfig when nil.
	Reward *Config
}

type Client struct {
	store    storage.Store
	registry *platform.Registry

	exportsDir string
}

type StepResult = platform.StepResult

type EpisodesRequest struct {
	AgentID string
	Limit   int
}

type ReplayRequest struct {
	Files []string
	// Workers bounds how many files are replayed at once; 0 means no bound.
	Workers int
}

type ReplaySummary struct {
	File        string
	AgentID     string
	Steps       int
	EpisodeIDs  []string
	TotalReward float64
}

type ExportRequest struct {
	EpisodeID string
	Latest    bool
	AgentID   string
	OutDir    string
}

type ExportSummary struct {
	EpisodeID string
	Directory string
	WithSteps bool
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	cfg := DefaultConfig()
	if opts.Reward != nil {
		cfg = *opts.Reward
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store: store,
		registry: platform.NewRegistry(platform.Config{
			Store:      store,
			Reward:     cfg,
			KeepTraces: opts.KeepTraces,
		}),
		exportsDir: exportsDir,
	}, nil
}

func (c *Client) Init(ctx context.Context) error {
	return c.registry.Init(ctx)
}

// Close flushes open episodes and releases the store.
func (c *Client) Close(ctx context.Context) error {
	flushErr := c.registry.Close(ctx)
	closeErr := storage.CloseIfSupported(c.store)
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// Registry exposes the agent registry, for serving it over HTTP.
func (c *Client) Registry() *platform.Registry {
	return c.registry
}

func (c *Client) Step(ctx context.Context, agentID string, params map[string]any) (StepResult, error) {
	return c.registry.Step(ctx, agentID, params)
}

func (c *Client) StepInput(ctx context.Context, agentID string, in StepInput) (StepResult, error) {
	return c.registry.StepInput(ctx, agentID, in)
}

func (c *Client) Reset(ctx context.Context, agentID string) error {
	return c.registry.Reset(ctx, agentID)
}

func (c *Client) SetUnpardonable(agentID string, v bool) error {
	return c.registry.SetUnpardonable(agentID, v)
}

func (c *Client) Episodes(ctx context.Context, req EpisodesRequest) ([]EpisodeSummary, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	return c.registry.Episodes(ctx, req.AgentID, req.Limit)
}

func (c *Client) Episode(ctx context.Context, episodeID string) (EpisodeSummary, bool, error) {
	return c.registry.Episode(ctx, episodeID)
}

func (c *Client) StepTrace(ctx context.Context, episodeID string) ([]StepRecord, bool, error) {
	return c.registry.StepTrace(ctx, episodeID)
}

// Replay scores recorded telemetry files. Each file is its own agent with
// its own reward state, so files run in parallel without sharing history.
// Every file's last episode is closed once the file is exhausted.
func (c *Client) Replay(ctx context.Context, req ReplayRequest) ([]ReplaySummary, error) {
	if len(req.Files) == 0 {
		return nil, errors.New("replay requires at least one file")
	}

	agentIDs := replayAgentIDs(req.Files)
	summaries := make([]ReplaySummary, len(req.Files))

	g, ctx := errgroup.WithContext(ctx)
	if req.Workers > 0 {
		g.SetLimit(req.Workers)
	}
	for i, file := range req.Files {
		i, file := i, file
		g.Go(func() error {
			summary, err := c.replayFile(ctx, file, agentIDs[i])
			if err != nil {
				return fmt.Errorf("replay %s: %w", file, err)
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (c *Client) replayFile(ctx context.Context, file, agentID string) (ReplaySummary, error) {
	params, err := telemetry.ReadFile(file)
	if err != nil {
		return ReplaySummary{}, err
	}

	summary := ReplaySummary{File: file, AgentID: agentID}
	for i, p := range params {
		if err := ctx.Err(); err != nil {
			return ReplaySummary{}, err
		}
		res, err := c.registry.Step(ctx, agentID, p)
		if err != nil {
			return ReplaySummary{}, fmt.Errorf("record %d: %w", i+1, err)
		}
		summary.Steps++
		summary.TotalReward += res.Breakdown.Total
		if n := len(summary.EpisodeIDs); n == 0 || summary.EpisodeIDs[n-1] != res.EpisodeID {
			summary.EpisodeIDs = append(summary.EpisodeIDs, res.EpisodeID)
		}
	}
	if err := c.registry.Reset(ctx, agentID); err != nil {
		return ReplaySummary{}, err
	}
	return summary, nil
}

// replayAgentIDs names each file's agent after the file. A name already
// handed out gets the lowest free numeric suffix, so every file replays
// under its own agent.
func replayAgentIDs(files []string) []string {
	used := make(map[string]struct{}, len(files))
	out := make([]string, len(files))
	for i, file := range files {
		base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		id := base
		for n := 2; ; n++ {
			if _, taken := used[id]; !taken {
				break
			}
			id = fmt.Sprintf("%s-%d", base, n)
		}
		used[id] = struct{}{}
		out[i] = id
	}
	return out
}

// Export writes an episode's summary, and its step trace when one was kept,
// under OutDir.
func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	if req.EpisodeID != "" && req.Latest {
		return ExportSummary{}, errors.New("use either episode id or latest")
	}
	if req.EpisodeID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires episode id or latest")
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	var summary EpisodeSummary
	if req.Latest {
		episodes, err := c.registry.Episodes(ctx, req.AgentID, 1)
		if err != nil {
			return ExportSummary{}, err
		}
		if len(episodes) == 0 {
			return ExportSummary{}, errors.New("no episodes available to export")
		}
		summary = episodes[0]
	} else {
		found, ok, err := c.registry.Episode(ctx, req.EpisodeID)
		if err != nil {
			return ExportSummary{}, err
		}
		if !ok {
			return ExportSummary{}, fmt.Errorf("episode not found: %s", req.EpisodeID)
		}
		summary = found
	}

	records, withSteps, err := c.registry.StepTrace(ctx, summary.ID)
	if err != nil {
		return ExportSummary{}, err
	}
	dir, err := stats.WriteEpisodeArtifacts(req.OutDir, summary, records)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{EpisodeID: summary.ID, Directory: filepath.Clean(dir), WithSteps: withSteps}, nil
}

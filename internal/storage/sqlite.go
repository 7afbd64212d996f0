//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"trackreward/internal/model"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveEpisode(ctx context.Context, summary model.EpisodeSummary) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeEpisode(summary)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO episodes (id, agent_id, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			agent_id = excluded.agent_id,
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, summary.ID, summary.AgentID, summary.SchemaVersion, summary.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetEpisode(ctx context.Context, id string) (model.EpisodeSummary, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.EpisodeSummary{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM episodes WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.EpisodeSummary{}, false, nil
		}
		return model.EpisodeSummary{}, false, err
	}

	summary, err := DecodeEpisode(payload)
	if err != nil {
		return model.EpisodeSummary{}, false, fmt.Errorf("decode episode %s: %w", id, err)
	}
	return summary, true, nil
}

func (s *SQLiteStore) ListEpisodes(ctx context.Context, agentID string, limit int) ([]model.EpisodeSummary, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, payload FROM episodes
		WHERE ? = '' OR agent_id = ?
		ORDER BY seq DESC
		LIMIT ?
	`, agentID, agentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.EpisodeSummary
	for rows.Next() {
		var (
			id      string
			payload []byte
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, err
		}
		summary, err := DecodeEpisode(payload)
		if err != nil {
			return nil, fmt.Errorf("decode episode %s: %w", id, err)
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveStepTrace(ctx context.Context, episodeID string, records []model.StepRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeStepTrace(records)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO step_traces (episode_id, payload)
		VALUES (?, ?)
		ON CONFLICT(episode_id) DO UPDATE SET
			payload = excluded.payload
	`, episodeID, payload)
	return err
}

func (s *SQLiteStore) GetStepTrace(ctx context.Context, episodeID string) ([]model.StepRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM step_traces WHERE episode_id = ?`, episodeID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	records, err := DecodeStepTrace(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode step trace %s: %w", episodeID, err)
	}
	return records, true, nil
}

func (s *SQLiteStore) Reset(ctx context.Context) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `DELETE FROM episodes; DELETE FROM step_traces;`)
	return err
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS episodes (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			agent_id TEXT NOT NULL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS episodes_agent ON episodes (agent_id);
		CREATE TABLE IF NOT EXISTS step_traces (
			episode_id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		);
	`)
	return err
}

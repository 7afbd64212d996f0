package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"trackreward/internal/model"
)

// Bucket structure is
//
//	episodes       > {episode_id}  > {EncodeEpisode payload}
//	episode_index  > {seq}         > {episode_id}
//	step_traces    > {episode_id}  > {EncodeStepTrace payload}
var (
	episodesBucketName = []byte("episodes")
	indexBucketName    = []byte("episode_index")
	tracesBucketName   = []byte("step_traces")
)

// BoltStore persists episodes in a single bbolt file.
type BoltStore struct {
	path string

	mu sync.RWMutex
	db *bolt.DB
}

func NewBoltStore(path string) *BoltStore {
	return &BoltStore{path: path}
}

func (s *BoltStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("bolt path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := bolt.Open(s.path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return err
	}
	if err := db.Update(createBuckets); err != nil {
		_ = db.Close()
		return err
	}
	s.db = db
	return nil
}

func createBuckets(tx *bolt.Tx) error {
	for _, name := range [][]byte{episodesBucketName, indexBucketName, tracesBucketName} {
		if _, err := tx.CreateBucketIfNotExists(name); err != nil {
			return fmt.Errorf("unable to create the %s bucket: %w", name, err)
		}
	}
	return nil
}

func serializeSeq(seq uint64) []byte {
	// Fixed width hex keeps the index bucket in insertion order.
	return []byte(fmt.Sprintf("%016x", seq))
}

func (s *BoltStore) SaveEpisode(_ context.Context, summary model.EpisodeSummary) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeEpisode(summary)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bolt.Tx) error {
		episodes := tx.Bucket(episodesBucketName)
		key := []byte(summary.ID)
		if episodes.Get(key) == nil {
			index := tx.Bucket(indexBucketName)
			seq, err := index.NextSequence()
			if err != nil {
				return err
			}
			if err := index.Put(serializeSeq(seq), key); err != nil {
				return err
			}
		}
		return episodes.Put(key, payload)
	})
}

func (s *BoltStore) GetEpisode(_ context.Context, id string) (model.EpisodeSummary, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.EpisodeSummary{}, false, err
	}

	var (
		summary model.EpisodeSummary
		found   bool
	)
	err = db.View(func(tx *bolt.Tx) error {
		payload := tx.Bucket(episodesBucketName).Get([]byte(id))
		if payload == nil {
			return nil
		}
		decoded, err := DecodeEpisode(payload)
		if err != nil {
			return fmt.Errorf("decode episode %s: %w", id, err)
		}
		summary = decoded
		found = true
		return nil
	})
	return summary, found, err
}

func (s *BoltStore) ListEpisodes(_ context.Context, agentID string, limit int) ([]model.EpisodeSummary, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	var out []model.EpisodeSummary
	err = db.View(func(tx *bolt.Tx) error {
		episodes := tx.Bucket(episodesBucketName)
		c := tx.Bucket(indexBucketName).Cursor()
		for k, id := c.Last(); k != nil; k, id = c.Prev() {
			payload := episodes.Get(id)
			if payload == nil {
				continue
			}
			summary, err := DecodeEpisode(payload)
			if err != nil {
				return fmt.Errorf("decode episode %s: %w", id, err)
			}
			if agentID != "" && summary.AgentID != agentID {
				continue
			}
			out = append(out, summary)
			if limit > 0 && len(out) >= limit {
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (s *BoltStore) SaveStepTrace(_ context.Context, episodeID string, records []model.StepRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeStepTrace(records)
	if err != nil {
		return err
	}
	return db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(tracesBucketName).Put([]byte(episodeID), payload)
	})
}

func (s *BoltStore) GetStepTrace(_ context.Context, episodeID string) ([]model.StepRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var (
		records []model.StepRecord
		found   bool
	)
	err = db.View(func(tx *bolt.Tx) error {
		payload := tx.Bucket(tracesBucketName).Get([]byte(episodeID))
		if payload == nil {
			return nil
		}
		decoded, err := DecodeStepTrace(payload)
		if err != nil {
			return fmt.Errorf("decode step trace %s: %w", episodeID, err)
		}
		records = decoded
		found = true
		return nil
	})
	return records, found, err
}

func (s *BoltStore) Reset(_ context.Context) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	return db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{episodesBucketName, indexBucketName, tracesBucketName} {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
		}
		return createBuckets(tx)
	})
}

func (s *BoltStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *BoltStore) getDB() (*bolt.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

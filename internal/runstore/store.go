// Package runstore persists RunResult history keyed by job ID. It is a
// host-layer concern: internal/supervisor never imports this package,
// it only returns a models.RunResult that a cmd/ entrypoint chooses to
// store or not. Grounded on
// ternarybob-quaero/internal/storage/badger/{connection.go,job_storage.go}'s
// badgerhold-over-badger pattern, narrowed from the teacher's generic
// job/document/connector storage down to one record type.
package runstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/leadscoutai/leadscout/internal/common"
	"github.com/leadscoutai/leadscout/internal/models"
)

// Record is one completed (or cancelled) job's stored outcome.
type Record struct {
	ID        string           `json:"id" badgerhold:"key"`
	Product   string           `json:"product"`
	Target    int              `json:"target"`
	Result    models.RunResult `json:"result"`
	StartedAt time.Time        `json:"started_at"`
	EndedAt   time.Time        `json:"ended_at" badgerholdIndex:"EndedAt"`
}

// Store wraps a badgerhold-backed database of run Records.
type Store struct {
	store  *badgerhold.Store
	logger arbor.ILogger
}

// Open opens (creating if necessary) the run store at cfg.Path. When
// cfg.ResetOnStartup is set the existing database directory is removed
// first, mirroring the teacher's reset-on-startup option for ephemeral
// dev environments.
func Open(cfg common.RunStoreConfig, logger arbor.ILogger) (*Store, error) {
	if cfg.ResetOnStartup {
		if _, err := os.Stat(cfg.Path); err == nil {
			logger.Debug().Str("path", cfg.Path).Msg("runstore: removing existing database (reset_on_startup=true)")
			if err := os.RemoveAll(cfg.Path); err != nil {
				logger.Warn().Err(err).Str("path", cfg.Path).Msg("runstore: failed to remove existing database")
			}
		}
	}

	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("runstore: create directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = cfg.Path
	options.ValueDir = cfg.Path
	options.Logger = nil

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("runstore: open database at %q: %w", cfg.Path, err)
	}

	return &Store{store: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// Save records result under a newly generated job ID and returns it.
func (s *Store) Save(ctx context.Context, product string, target int, started time.Time, result models.RunResult) (string, error) {
	id := uuid.NewString()
	record := &Record{
		ID:        id,
		Product:   product,
		Target:    target,
		Result:    result,
		StartedAt: started,
		EndedAt:   started.Add(result.Elapsed),
	}
	if err := s.store.Insert(id, record); err != nil {
		return "", fmt.Errorf("runstore: save run %s: %w", id, err)
	}
	return id, nil
}

// Get returns the Record stored under jobID.
func (s *Store) Get(ctx context.Context, jobID string) (*Record, error) {
	var record Record
	if err := s.store.Get(jobID, &record); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("runstore: run %s not found", jobID)
		}
		return nil, fmt.Errorf("runstore: get run %s: %w", jobID, err)
	}
	return &record, nil
}

// List returns up to limit most recent Records, newest first. limit<=0
// means unbounded.
func (s *Store) List(ctx context.Context, limit int) ([]*Record, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("EndedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []Record
	if err := s.store.Find(&records, query); err != nil {
		return nil, fmt.Errorf("runstore: list runs: %w", err)
	}

	out := make([]*Record, len(records))
	for i := range records {
		out[i] = &records[i]
	}
	return out, nil
}

// Delete removes the Record stored under jobID. Deleting a record that
// does not exist is not an error.
func (s *Store) Delete(ctx context.Context, jobID string) error {
	if err := s.store.Delete(jobID, &Record{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("runstore: delete run %s: %w", jobID, err)
	}
	return nil
}

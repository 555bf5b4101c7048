// Wasp Bot - Wasp CLI Telemetry Analytics
// Copyright 2026 Wasp team (wasp-lang)
// SPDX-License-Identifier: MIT
// https://github.com/wasp-lang/wasp-bot-sub000

// Package store persists the locally known telemetry event history.
//
// The cache is a single snapshot file holding the full event list,
// newest-first. It is rewritten wholesale after every successful fetch batch
// so that a crash mid-reconciliation can never corrupt previously persisted
// state. Between the newest and oldest cached event there are no missing
// events; gaps exist only before the oldest or after the newest entry, and
// reconciliation fills them in.
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/wasp-lang/wasp-bot-sub000/internal/logging"
	"github.com/wasp-lang/wasp-bot-sub000/internal/models"
)

// Store loads and persists the event cache.
//
// Load returns an empty slice when nothing is cached. Save fully overwrites
// prior state. Implementations must preserve event timestamps across the
// save/load round trip.
type Store interface {
	Load(ctx context.Context) ([]models.Event, error)
	Save(ctx context.Context, events []models.Event) error
}

// FileStore persists the event cache as a JSON snapshot on disk.
//
// A missing or undecodable cache file is treated as an empty cache, not an
// error; any other I/O failure during load is returned to the caller.
// Writes go through a temp file followed by rename, so readers never observe
// a partially written snapshot.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed event store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the cached event list from disk.
func (s *FileStore) Load(_ context.Context) ([]models.Event, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.Debug().Str("path", s.path).Msg("No event cache found, starting empty")
			return []models.Event{}, nil
		}
		return nil, fmt.Errorf("failed to read event cache %s: %w", s.path, err)
	}

	var events []models.Event
	if err := json.Unmarshal(data, &events); err != nil {
		// An unparseable cache is recoverable: reconciliation rebuilds it
		// from the remote API.
		logging.Warn().Err(err).Str("path", s.path).Msg("Event cache unparseable, treating as empty")
		return []models.Event{}, nil
	}

	logging.Debug().Int("events", len(events)).Str("path", s.path).Msg("Loaded event cache")
	return events, nil
}

// Save atomically replaces the cache snapshot with the given event list.
func (s *FileStore) Save(_ context.Context, events []models.Event) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("failed to encode event cache: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write event cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp cache file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace event cache %s: %w", s.path, err)
	}

	logging.Debug().Int("events", len(events)).Str("path", s.path).Msg("Persisted event cache")
	return nil
}

// MemoryStore is an in-memory Store for tests and dry runs.
type MemoryStore struct {
	events []models.Event
}

// NewMemoryStore creates an empty in-memory event store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the stored events.
func (s *MemoryStore) Load(_ context.Context) ([]models.Event, error) {
	out := make([]models.Event, len(s.events))
	copy(out, s.events)
	return out, nil
}

// Save replaces the stored events with a copy of the given list.
func (s *MemoryStore) Save(_ context.Context, events []models.Event) error {
	s.events = make([]models.Event, len(events))
	copy(s.events, events)
	return nil
}

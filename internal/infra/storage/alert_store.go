package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/sirupsen/logrus"

	"jma_alert_bot/internal/domain/alert"
)

// JSONAlertStore implements alert.Store on a local JSON file mapping alert ID
// to "active"|"cancelled". The whole map is rewritten on every mutation; there
// are no partial or append writes, so the file is always a complete snapshot.
//
// A missing or malformed file degrades to an empty map instead of failing the
// run — the caller then re-notifies, which is preferred over silently blocking
// delivery. Deleting the file resets history.
type JSONAlertStore struct {
	path    string
	entries map[string]alert.Status
	logger  *logrus.Logger
}

// NewJSONAlertStore loads the store from path, creating the parent directory
// if needed.
func NewJSONAlertStore(path string, logger *logrus.Logger) *JSONAlertStore {
	s := &JSONAlertStore{
		path:    path,
		entries: map[string]alert.Status{},
		logger:  logger,
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.WithError(err).WithField("path", path).Warn("Could not create data directory for alert store.")
	}
	s.load()
	return s
}

// load reads the backing file. The current format is a JSON object of
// id -> status; the legacy format was a bare JSON array of ids, which decodes
// as all-active. The upgrade happens transparently here, once, at load time.
func (s *JSONAlertStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithError(err).WithField("path", s.path).Warn("Could not read alert store; starting empty.")
		}
		return
	}

	var byID map[string]string
	if err := json.Unmarshal(data, &byID); err == nil {
		for id, raw := range byID {
			st, ok := alert.ParseStatus(raw)
			if !ok {
				s.logger.WithFields(logrus.Fields{"id": id, "status": raw}).
					Warn("Unknown status in alert store; treating as active.")
				st = alert.StatusActive
			}
			s.entries[id] = st
		}
		return
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err == nil {
		for _, id := range ids {
			s.entries[id] = alert.StatusActive
		}
		s.logger.WithField("count", len(ids)).Info("Upgraded legacy alert store (bare ID list) to status map.")
		return
	}

	s.logger.WithField("path", s.path).Warn("Alert store file is malformed; starting empty.")
}

// Contains implements alert.Store.
func (s *JSONAlertStore) Contains(id string) bool {
	_, ok := s.entries[id]
	return ok
}

// StatusOf implements alert.Store.
func (s *JSONAlertStore) StatusOf(id string) (alert.Status, bool) {
	st, ok := s.entries[id]
	return st, ok
}

// RecordBatch implements alert.Store. Insertion is add-only per ID.
func (s *JSONAlertStore) RecordBatch(entries []alert.Entry) error {
	changed := false
	for _, e := range entries {
		if _, ok := s.entries[e.ID]; ok {
			continue
		}
		s.entries[e.ID] = e.Status
		changed = true
	}
	if !changed {
		return nil
	}
	return s.write()
}

// UpdateStatus implements alert.Store.
func (s *JSONAlertStore) UpdateStatus(id string, status alert.Status) error {
	if _, ok := alert.ParseStatus(string(status)); !ok {
		s.logger.WithFields(logrus.Fields{"id": id, "status": status}).
			Warn("Ignoring status update with unknown status.")
		return nil
	}
	if _, ok := s.entries[id]; !ok {
		s.logger.WithField("id", id).Warn("Ignoring status update for unknown alert ID.")
		return nil
	}
	s.entries[id] = status
	return s.write()
}

// write rewrites the full map durably via an atomic rename.
func (s *JSONAlertStore) write() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal alert store: %w", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write alert store %s: %w", s.path, err)
	}
	return nil
}

package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/sirupsen/logrus"

	"jma_alert_bot/internal/domain/guidance"
)

// JSONGuidanceStateRepository implements guidance.StateRepository on a local
// JSON file holding the single current day's state. The file is overwritten
// wholesale on every save and superseded (not deleted) when the date rolls
// over; it is safe to delete to reset history.
type JSONGuidanceStateRepository struct {
	path   string
	logger *logrus.Logger
}

func NewJSONGuidanceStateRepository(path string, logger *logrus.Logger) *JSONGuidanceStateRepository {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.WithError(err).WithField("path", path).Warn("Could not create data directory for guidance state.")
	}
	return &JSONGuidanceStateRepository{path: path, logger: logger}
}

// Load reads the persisted daily state. Missing or corrupt files yield
// (nil, nil): the controller then treats the day as having no prior state,
// which re-triggers first-send behavior.
func (r *JSONGuidanceStateRepository) Load() (*guidance.DailyState, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read guidance state %s: %w", r.path, err)
	}

	var st guidance.DailyState
	if err := json.Unmarshal(data, &st); err != nil {
		r.logger.WithError(err).WithField("path", r.path).
			Warn("Guidance state file is malformed; treating as no prior state.")
		return nil, nil
	}
	if st.Date == "" {
		return nil, nil
	}
	return &st, nil
}

// Save durably overwrites the state file.
func (r *JSONGuidanceStateRepository) Save(st *guidance.DailyState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal guidance state: %w", err)
	}
	if err := atomic.WriteFile(r.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write guidance state %s: %w", r.path, err)
	}
	return nil
}

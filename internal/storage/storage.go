// Package storage persists the planner's State under the three stable
// keys (start date, reminder time, completed days).
package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"studyplan/internal/config"
	appLog "studyplan/internal/log"
	"studyplan/internal/model"
)

// ErrUnknownDriver is returned by Open for a storage.driver it does not know.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Store loads and saves State.
//
// Load never fails: a missing backing file yields the zero State and a
// malformed value falls back to its default on its own, so one bad key does
// not discard the others.
type Store interface {
	Load() model.State
	Save(model.State) error
	Close() error
}

// Open returns the store selected by cfg.Driver.
func Open(cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "json":
		return NewJSONStore(cfg.Path), nil
	case "sqlite":
		return OpenSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// decodeValues builds a State from raw key/value strings. Start date and
// time are plain strings; completed is a JSON array of day indices.
func decodeValues(values map[string]string) model.State {
	var st model.State

	st.StartDate = values[model.KeyStartDate]

	if v := values[model.KeyTime]; v != "" {
		if _, _, err := model.ParseClock(v); err != nil {
			appLog.Warn("stored time ignored", "key", model.KeyTime, "value", v, "err", err)
		} else {
			st.Time = v
		}
	}

	if v, ok := values[model.KeyCompleted]; ok && v != "" {
		var completed []int
		if err := json.Unmarshal([]byte(v), &completed); err != nil {
			appLog.Warn("stored progress ignored", "key", model.KeyCompleted, "err", err)
		} else {
			st.Completed = completed
		}
	}

	return st
}

// encodeValues is the inverse of decodeValues.
func encodeValues(st model.State) (map[string]string, error) {
	completed := st.Completed
	if completed == nil {
		completed = []int{}
	}
	b, err := json.Marshal(completed)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", model.KeyCompleted, err)
	}
	return map[string]string{
		model.KeyStartDate: st.StartDate,
		model.KeyTime:      st.Time,
		model.KeyCompleted: string(b),
	}, nil
}

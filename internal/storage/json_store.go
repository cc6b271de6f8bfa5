package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"studyplan/internal/config"
	appLog "studyplan/internal/log"
	"studyplan/internal/model"
)

// JSONStore keeps State in a single JSON object on disk.
type JSONStore struct {
	path string
	mu   sync.Mutex
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Load() model.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			appLog.Warn("state file unreadable, using defaults", "path", s.path, "err", err)
		}
		return model.State{}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		appLog.Warn("state file malformed, using defaults", "path", s.path, "err", err)
		return model.State{}
	}

	values := make(map[string]string, len(raw))
	for _, key := range []string{model.KeyStartDate, model.KeyTime} {
		msg, ok := raw[key]
		if !ok {
			continue
		}
		var v string
		if err := json.Unmarshal(msg, &v); err != nil {
			appLog.Warn("stored value ignored", "key", key, "err", err)
			continue
		}
		values[key] = v
	}
	if msg, ok := raw[model.KeyCompleted]; ok {
		values[model.KeyCompleted] = string(msg)
	}

	return decodeValues(values)
}

func (s *JSONStore) Save(st model.State) error {
	if st.Completed == nil {
		st.Completed = []int{}
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := config.WriteFileAtomic(s.path, data, ".studyplan-state-*.tmp"); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}

func (s *JSONStore) Close() error { return nil }

// Package checkpoint implements the checkpoint store (spec.md §3, §4.5):
// a content-hashed set of completed query keys, atomically persisted to
// disk so a crashed run can resume without repeating completed work.
package checkpoint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"heatnews/internal/newsmodel"
)

// fileSchema mirrors spec.md §6's on-disk checkpoint schema.
type fileSchema struct {
	CompletedQueries []string `json:"completed_queries"`
}

// Store owns the completed-query set for one run. It is created lazily on
// first save and deleted on successful pipeline exit.
type Store struct {
	mu        sync.Mutex
	path      string
	completed map[string]struct{}
}

// Key computes the stable 16-hex-char checkpoint key for a query, hashing
// the tuple (source_hint, state_slug, language, level, query_string).
func Key(hint newsmodel.SourceHint, stateSlug string, lang newsmodel.Language, level newsmodel.QueryLevel, queryString string) string {
	sum := sha256.Sum256([]byte(string(hint) + "|" + stateSlug + "|" + string(lang) + "|" + string(level) + "|" + queryString))
	return hex.EncodeToString(sum[:])[:16]
}

// KeyForQuery is a convenience wrapper over Key for a newsmodel.Query.
func KeyForQuery(q newsmodel.Query) string {
	return Key(q.SourceHint, q.StateSlug, q.Language, q.Level, q.QueryString)
}

// Load reads an existing checkpoint file, or returns an empty Store if the
// file does not exist. A malformed file is treated as empty rather than a
// fatal error, since the checkpoint only ever narrows the work to repeat.
func Load(path string) *Store {
	s := &Store{path: path, completed: make(map[string]struct{})}

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}

	var schema fileSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return s
	}
	for _, k := range schema.CompletedQueries {
		s.completed[k] = struct{}{}
	}
	return s
}

// Contains reports whether key has already been completed.
func (s *Store) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.completed[key]
	return ok
}

// Len returns the number of completed keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.completed)
}

// Add records key as completed and atomically persists the updated set.
// Each source's queries call Add sequentially, but the executor runs every
// source on its own goroutine, so calls from different sources can overlap;
// the mutex serializes them.
func (s *Store) Add(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed[key] = struct{}{}
	return s.persistLocked()
}

func (s *Store) persistLocked() error {
	keys := make([]string, 0, len(s.completed))
	for k := range s.completed {
		keys = append(keys, k)
	}
	schema := fileSchema{CompletedQueries: keys}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := s.path + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Delete removes the checkpoint file, called on successful pipeline exit.
// A missing file is not an error.
func (s *Store) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

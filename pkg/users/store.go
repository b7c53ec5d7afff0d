// Package users persists who has started the bot and accepted its usage
// policy.
package users

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/chat"
)

// Record is one registered user.
type Record struct {
	ID           chat.UserID `json:"id"`
	RegisteredAt time.Time   `json:"registered_at"`
	Accepted     bool        `json:"accepted"`
	AcceptedAt   *time.Time  `json:"accepted_at,omitempty"`
}

// FileStore keeps user records in a JSON file. The file is read once when
// the store is opened and rewritten atomically after every change.
type FileStore struct {
	path    string
	mu      sync.RWMutex
	records map[chat.UserID]Record
	now     func() time.Time
}

type fileFormat struct {
	Version string   `json:"version"`
	Users   []Record `json:"users"`
}

const fileVersion = "1"

// Open loads the store at path. If path is empty, defaults to
// ~/.modelbot/users.json. A missing file yields an empty store.
func Open(path string) (*FileStore, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".modelbot", "users.json")
	}

	s := &FileStore{
		path:    path,
		records: make(map[chat.UserID]Record),
		now:     time.Now,
	}
	if err := s.load(); err != nil {
		return nil, fmt.Errorf("failed to load users from %s: %w", path, err)
	}
	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) load() error {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open users file: %w", err)
	}
	defer file.Close()

	var data fileFormat
	if err := json.NewDecoder(file).Decode(&data); err != nil {
		return fmt.Errorf("failed to decode users file: %w", err)
	}
	for _, r := range data.Users {
		s.records[r.ID] = r
	}
	return nil
}

// saveLocked writes every record to a temp file and renames it over the
// store file. Callers hold s.mu.
func (s *FileStore) saveLocked() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create users directory: %w", err)
	}

	data := fileFormat{Version: fileVersion, Users: make([]Record, 0, len(s.records))}
	for _, r := range s.records {
		data.Users = append(data.Users, r)
	}
	sort.Slice(data.Users, func(i, j int) bool { return data.Users[i].ID < data.Users[j].ID })

	tempPath := s.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp users file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode users: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Register adds the user if unknown and reports whether it was new.
func (s *FileStore) Register(id chat.UserID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; ok {
		return false, nil
	}
	s.records[id] = Record{ID: id, RegisteredAt: s.now().UTC()}
	if err := s.saveLocked(); err != nil {
		delete(s.records, id)
		return false, err
	}
	return true, nil
}

// AcceptPolicy marks the user as having accepted the usage policy,
// registering them first if needed. Accepting twice is a no-op.
func (s *FileStore) AcceptPolicy(id chat.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.records[id]
	if existed && prev.Accepted {
		return nil
	}

	now := s.now().UTC()
	r := prev
	if !existed {
		r = Record{ID: id, RegisteredAt: now}
	}
	r.Accepted = true
	r.AcceptedAt = &now
	s.records[id] = r

	if err := s.saveLocked(); err != nil {
		if existed {
			s.records[id] = prev
		} else {
			delete(s.records, id)
		}
		return err
	}
	return nil
}

// HasAccepted reports whether the user accepted the usage policy.
func (s *FileStore) HasAccepted(id chat.UserID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[id].Accepted
}

// Get returns the user's record.
func (s *FileStore) Get(id chat.UserID) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	return r, ok
}

// Count returns the number of registered users.
func (s *FileStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

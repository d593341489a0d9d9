package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"docuchat-backend/models"
)

// SessionStore is the durable mapping from session id to conversation
// state, persisted as a single human-readable JSON file. The in-memory
// map is authoritative; the file is rewritten in full after every
// mutation (temp file + rename, so readers never see a partial write).
// Mutations are serialized under the store mutex: the whole-file
// rewrite makes finer-grained locking pointless at this scale.
type SessionStore struct {
	mu          sync.Mutex
	path        string
	titleMaxLen int
	sessions    map[string]*models.Session
}

// NewSessionStore loads the persisted store from path. A missing or
// corrupt file yields an empty store so the process always starts in a
// usable state; corruption is logged, never propagated.
func NewSessionStore(path string, titleMaxLen int) (*SessionStore, error) {
	if titleMaxLen <= 0 {
		return nil, fmt.Errorf("title max length must be positive, got %d", titleMaxLen)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	store := &SessionStore{
		path:        path,
		titleMaxLen: titleMaxLen,
		sessions:    make(map[string]*models.Session),
	}
	store.load()
	return store, nil
}

func (s *SessionStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("Session store unreadable, starting empty: %v", err)
		}
		return
	}
	var sessions map[string]*models.Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		log.Printf("Session store corrupt, starting empty: %v", err)
		return
	}
	if sessions != nil {
		s.sessions = sessions
	}
}

// save rewrites the full store. Callers must hold the mutex. A crash
// between mutation and rewrite loses at most that one mutation.
func (s *SessionStore) save() error {
	data, err := json.MarshalIndent(s.sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write session store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace session store: %w", err)
	}
	return nil
}

// Create inserts a fresh session with a placeholder title and persists
// immediately.
func (s *SessionStore) Create() (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	session := &models.Session{
		ID:          uuid.New().String(),
		Title:       models.DefaultTitle,
		Messages:    []models.Message{},
		CreatedAt:   now,
		LastUpdated: now,
	}
	s.sessions[session.ID] = session

	if err := s.save(); err != nil {
		delete(s.sessions, session.ID)
		return models.Session{}, err
	}
	return copySession(session), nil
}

// Get returns a copy of the session, or ErrSessionNotFound.
func (s *SessionStore) Get(id string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return models.Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return copySession(session), nil
}

// List returns summaries of all sessions, most recently updated first.
func (s *SessionStore) List() []models.SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := make([]models.SessionSummary, 0, len(s.sessions))
	for _, session := range s.sessions {
		summaries = append(summaries, models.SessionSummary{
			ID:           session.ID,
			Title:        session.Title,
			MessageCount: len(session.Messages),
			CreatedAt:    session.CreatedAt,
			LastUpdated:  session.LastUpdated,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastUpdated.After(summaries[j].LastUpdated)
	})
	return summaries
}

// AppendMessage appends one message and persists. The first user
// message of a session whose title is still the placeholder sets the
// title, truncated with a marker when too long; the title never changes
// afterwards.
func (s *SessionStore) AppendMessage(id string, msg models.Message) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return models.Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	prevTitle, prevUpdated := session.Title, session.LastUpdated
	session.Messages = append(session.Messages, msg)
	session.LastUpdated = msg.Timestamp

	if msg.Role == models.RoleUser && session.Title == models.DefaultTitle {
		session.Title = deriveTitle(msg.Content, s.titleMaxLen)
	}

	if err := s.save(); err != nil {
		session.Messages = session.Messages[:len(session.Messages)-1]
		session.Title, session.LastUpdated = prevTitle, prevUpdated
		return models.Session{}, err
	}
	return copySession(session), nil
}

// Delete removes the session and persists. Deleting an unknown id is a
// no-op: deletion is idempotent.
func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return nil
	}
	delete(s.sessions, id)
	return s.save()
}

// Len reports the number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func deriveTitle(content string, maxLen int) string {
	title := strings.TrimSpace(content)
	if title == "" {
		return models.DefaultTitle
	}
	runes := []rune(title)
	if len(runes) <= maxLen {
		return title
	}
	return string(runes[:maxLen]) + "..."
}

func copySession(session *models.Session) models.Session {
	out := *session
	out.Messages = make([]models.Message, len(session.Messages))
	copy(out.Messages, session.Messages)
	return out
}

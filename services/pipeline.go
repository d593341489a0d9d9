package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"docuchat-backend/models"
)

// Pipeline is the entry point for the retrieval-and-answering flow. It owns
// the per-session vector indexes (in process memory only: a restart
// loses indexed documents but never chat text) and sequences
// decode -> chunk -> embed -> index on upload, and
// session -> retrieve -> compose -> persist on query.
type Pipeline struct {
	mu      sync.RWMutex
	indexes map[string]*VectorIndex

	store     *SessionStore
	chunker   *Chunker
	extractor TextExtractor
	embedder  Embedder
	composer  *Composer
}

func NewPipeline(store *SessionStore, chunker *Chunker, extractor TextExtractor, embedder Embedder, composer *Composer) *Pipeline {
	return &Pipeline{
		indexes:   make(map[string]*VectorIndex),
		store:     store,
		chunker:   chunker,
		extractor: extractor,
		embedder:  embedder,
		composer:  composer,
	}
}

// CreateSession makes a new empty session and persists it.
func (p *Pipeline) CreateSession() (models.Session, error) {
	return p.store.Create()
}

// ListSessions returns session summaries, most recently updated first.
func (p *Pipeline) ListSessions() []models.SessionSummary {
	return p.store.List()
}

// Upload decodes the file, chunks the text, embeds every chunk and
// publishes the finished index for the session in one step. A previous
// index for the session is discarded atomically: the new one is built
// fully before the swap, so no concurrent query ever observes a
// half-built index. Messages of the session are retained; document
// lifecycle and chat continuity are independent.
func (p *Pipeline) Upload(ctx context.Context, sessionID string, data []byte, filename string) (int, error) {
	if _, err := p.store.Get(sessionID); err != nil {
		return 0, err
	}

	text, err := p.extractor.Extract(data, filename)
	if err != nil {
		return 0, err
	}

	chunks := p.chunker.Chunk(text)
	index, err := BuildIndex(ctx, p.embedder, chunks)
	if err != nil {
		return 0, err
	}

	p.mu.Lock()
	p.indexes[sessionID] = index
	p.mu.Unlock()

	return index.Len(), nil
}

// Query answers the question under the given mode and appends the
// exchange (user message, then the assistant message tagged with the
// mode) to the session. Sessions must be created explicitly first;
// unknown ids fail with ErrSessionNotFound.
func (p *Pipeline) Query(ctx context.Context, sessionID, question string, mode models.Mode) (models.QueryResponse, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return models.QueryResponse{}, ErrEmptyQuestion
	}

	session, err := p.store.Get(sessionID)
	if err != nil {
		return models.QueryResponse{}, err
	}

	index := p.index(sessionID)

	answer, err := p.composer.Answer(ctx, question, mode, session, index)
	if err != nil {
		return models.QueryResponse{}, err
	}

	now := time.Now().UTC()
	if _, err := p.store.AppendMessage(sessionID, models.Message{
		Role:      models.RoleUser,
		Content:   question,
		Timestamp: now,
	}); err != nil {
		return models.QueryResponse{}, err
	}
	if _, err := p.store.AppendMessage(sessionID, models.Message{
		Role:      models.RoleAssistant,
		Content:   answer,
		Mode:      mode,
		Timestamp: now,
	}); err != nil {
		return models.QueryResponse{}, err
	}

	return models.QueryResponse{
		Answer:    answer,
		SessionID: sessionID,
		Mode:      mode,
		Timestamp: now,
	}, nil
}

// History returns the ordered message sequence of the session.
func (p *Pipeline) History(sessionID string) ([]models.Message, error) {
	session, err := p.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return session.Messages, nil
}

// DeleteSession removes the session and its index. Idempotent: deleting
// an unknown id succeeds.
func (p *Pipeline) DeleteSession(sessionID string) error {
	if err := p.store.Delete(sessionID); err != nil {
		return err
	}
	p.mu.Lock()
	delete(p.indexes, sessionID)
	p.mu.Unlock()
	return nil
}

// HasDocument reports whether the session currently has an index.
func (p *Pipeline) HasDocument(sessionID string) bool {
	return p.index(sessionID) != nil
}

func (p *Pipeline) index(sessionID string) *VectorIndex {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.indexes[sessionID]
}

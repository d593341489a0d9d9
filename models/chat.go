package models

import (
	"fmt"
	"time"
)

// Mode selects how an answer is generated: strictly from the uploaded
// document, from the document blended with general knowledge, or from
// general knowledge alone.
type Mode string

const (
	ModeDocumentOnly Mode = "document_only"
	ModeHybrid       Mode = "hybrid"
	ModeNormal       Mode = "normal"
)

// ParseMode validates a mode string coming in from the API boundary.
// An empty string defaults to document_only, matching the UI's default.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDocumentOnly, ModeHybrid, ModeNormal:
		return Mode(s), nil
	case "":
		return ModeDocumentOnly, nil
	default:
		return "", fmt.Errorf("unknown mode %q (expected document_only, hybrid or normal)", s)
	}
}

// Message is one turn of a conversation. Mode is only set on assistant
// messages and records which answer policy produced the reply.
type Message struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Mode      Mode      `json:"mode,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session is a persisted conversation: ordered messages plus a title
// derived once from the first user message.
type Session struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Messages    []Message `json:"messages"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// DefaultTitle is the placeholder title of a session with no messages yet.
const DefaultTitle = "New Chat"

// SessionSummary is the listing view of a session (no message bodies).
type SessionSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	LastUpdated  time.Time `json:"last_updated"`
}

// QueryRequest is the payload of POST /query.
type QueryRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Question  string `json:"question" binding:"required,min=1,max=4000"`
	Mode      string `json:"mode,omitempty"`
}

// QueryResponse mirrors the original API shape: the answer plus the
// session it belongs to.
type QueryResponse struct {
	Answer    string    `json:"answer"`
	SessionID string    `json:"session_id"`
	Mode      Mode      `json:"mode"`
	Timestamp time.Time `json:"timestamp"`
}

// UploadResponse reports how many chunks were indexed for the session.
type UploadResponse struct {
	Message   string `json:"message"`
	Chunks    int    `json:"chunks"`
	SessionID string `json:"session_id"`
}

// Chunk is an immutable slice of decoded document text. Position is the
// rune offset of the chunk's start within the document; it orders chunks
// left to right and doubles as the tie-breaker during retrieval.
type Chunk struct {
	Text     string `json:"text"`
	Position int    `json:"position"`
}

// ScoredChunk is a retrieval hit: a chunk plus its similarity score.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

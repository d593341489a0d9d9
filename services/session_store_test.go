package services

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"docuchat-backend/models"
)

func newTestStore(t *testing.T) (*SessionStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sessions.json")
	store, err := NewSessionStore(path, 50)
	if err != nil {
		t.Fatal(err)
	}
	return store, path
}

func TestCreateSession(t *testing.T) {
	store, path := newTestStore(t)

	session, err := store.Create()
	if err != nil {
		t.Fatal(err)
	}
	if session.ID == "" {
		t.Error("session id is empty")
	}
	if session.Title != models.DefaultTitle {
		t.Errorf("title = %q, want placeholder %q", session.Title, models.DefaultTitle)
	}
	if len(session.Messages) != 0 {
		t.Errorf("new session has %d messages", len(session.Messages))
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("create did not persist: %v", err)
	}

	other, err := store.Create()
	if err != nil {
		t.Fatal(err)
	}
	if other.ID == session.ID {
		t.Error("two sessions share an id")
	}
}

func TestGetUnknownSession(t *testing.T) {
	store, _ := newTestStore(t)
	if _, err := store.Get("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAppendMessageUnknownSession(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.AppendMessage("nope", models.Message{Role: models.RoleUser, Content: "hi"})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestTitleDerivedOnceFromFirstUserMessage(t *testing.T) {
	store, _ := newTestStore(t)
	session, err := store.Create()
	if err != nil {
		t.Fatal(err)
	}

	updated, err := store.AppendMessage(session.ID, models.Message{
		Role:    models.RoleUser,
		Content: "What is the warranty period?",
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Title != "What is the warranty period?" {
		t.Fatalf("title = %q", updated.Title)
	}

	// Subsequent messages never change the title.
	for _, msg := range []models.Message{
		{Role: models.RoleAssistant, Content: "Two years.", Mode: models.ModeDocumentOnly},
		{Role: models.RoleUser, Content: "And the return policy?"},
	} {
		updated, err = store.AppendMessage(session.ID, msg)
		if err != nil {
			t.Fatal(err)
		}
	}
	if updated.Title != "What is the warranty period?" {
		t.Fatalf("title changed to %q after later messages", updated.Title)
	}
}

func TestTitleTruncation(t *testing.T) {
	store, _ := newTestStore(t)
	session, err := store.Create()
	if err != nil {
		t.Fatal(err)
	}

	long := strings.Repeat("q", 120)
	updated, err := store.AppendMessage(session.ID, models.Message{Role: models.RoleUser, Content: long})
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Repeat("q", 50) + "..."
	if updated.Title != want {
		t.Fatalf("title = %q, want %q", updated.Title, want)
	}
}

func TestAssistantFirstDoesNotSetTitle(t *testing.T) {
	store, _ := newTestStore(t)
	session, err := store.Create()
	if err != nil {
		t.Fatal(err)
	}

	updated, err := store.AppendMessage(session.ID, models.Message{
		Role:    models.RoleAssistant,
		Content: "Hello, upload a document to get started.",
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Title != models.DefaultTitle {
		t.Fatalf("assistant message set the title to %q", updated.Title)
	}
}

func TestLastUpdatedAdvances(t *testing.T) {
	store, _ := newTestStore(t)
	session, err := store.Create()
	if err != nil {
		t.Fatal(err)
	}

	first, err := store.AppendMessage(session.ID, models.Message{
		Role: models.RoleUser, Content: "one", Timestamp: time.Now().UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.AppendMessage(session.ID, models.Message{
		Role: models.RoleUser, Content: "two", Timestamp: time.Now().UTC().Add(time.Second),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !second.LastUpdated.After(first.LastUpdated) {
		t.Fatalf("last_updated did not advance: %v -> %v", first.LastUpdated, second.LastUpdated)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	session, err := store.Create()
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Delete(session.ID); err != nil {
		t.Fatal(err)
	}
	// Deleting again, and deleting an id that never existed, both
	// succeed the same way.
	if err := store.Delete(session.ID); err != nil {
		t.Fatalf("second delete failed: %v", err)
	}
	if err := store.Delete("never-existed"); err != nil {
		t.Fatalf("delete of unknown id failed: %v", err)
	}
	if _, err := store.Get(session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatal("session still present after delete")
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	store, err := NewSessionStore(path, 50)
	if err != nil {
		t.Fatal(err)
	}

	session, err := store.Create()
	if err != nil {
		t.Fatal(err)
	}
	messages := []models.Message{
		{Role: models.RoleUser, Content: "hello", Timestamp: time.Now().UTC().Truncate(time.Millisecond)},
		{Role: models.RoleAssistant, Content: "hi there", Mode: models.ModeNormal, Timestamp: time.Now().UTC().Truncate(time.Millisecond)},
	}
	for _, msg := range messages {
		if _, err := store.AppendMessage(session.ID, msg); err != nil {
			t.Fatal(err)
		}
	}

	// A fresh store over the same file must see the same state.
	reloaded, err := NewSessionStore(path, 50)
	if err != nil {
		t.Fatal(err)
	}
	got, err := reloaded.Get(session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "hello" {
		t.Errorf("title = %q", got.Title)
	}
	if len(got.Messages) != len(messages) {
		t.Fatalf("got %d messages, want %d", len(got.Messages), len(messages))
	}
	for i, msg := range messages {
		if got.Messages[i].Role != msg.Role || got.Messages[i].Content != msg.Content || got.Messages[i].Mode != msg.Mode {
			t.Errorf("message %d = %+v, want %+v", i, got.Messages[i], msg)
		}
		if !got.Messages[i].Timestamp.Equal(msg.Timestamp) {
			t.Errorf("message %d timestamp = %v, want %v", i, got.Messages[i].Timestamp, msg.Timestamp)
		}
	}
}

func TestCorruptStoreStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := NewSessionStore(path, 50)
	if err != nil {
		t.Fatalf("corrupt file must not fail startup: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("store has %d sessions, want 0", store.Len())
	}

	// The store must be usable and re-persistable afterwards.
	if _, err := store.Create(); err != nil {
		t.Fatal(err)
	}
}

func TestMissingStoreStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "sessions.json")
	store, err := NewSessionStore(path, 50)
	if err != nil {
		t.Fatal(err)
	}
	if store.Len() != 0 {
		t.Fatalf("store has %d sessions, want 0", store.Len())
	}
}

func TestListOrderedByLastUpdated(t *testing.T) {
	store, _ := newTestStore(t)

	a, _ := store.Create()
	b, _ := store.Create()
	if _, err := store.AppendMessage(a.ID, models.Message{
		Role: models.RoleUser, Content: "bump", Timestamp: time.Now().UTC().Add(time.Minute),
	}); err != nil {
		t.Fatal(err)
	}

	summaries := store.List()
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries", len(summaries))
	}
	if summaries[0].ID != a.ID {
		t.Errorf("most recently updated session should list first")
	}
	if summaries[0].MessageCount != 1 {
		t.Errorf("message_count = %d, want 1", summaries[0].MessageCount)
	}
	_ = b
}

package ai

import (
	"context"
	"os"
	"testing"
)

func TestGenerateEmbedding(t *testing.T) {
	if os.Getenv("GEMINI_API_KEY") == "" {
		t.Skip("GEMINI_API_KEY not set")
	}
	embedder, err := NewGeminiEmbedder(context.Background(), os.Getenv("GEMINI_API_KEY"), "")
	if err != nil {
		t.Fatalf("embedder error: %v", err)
	}
	defer embedder.Close()

	vec, err := embedder.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("embedding error: %v", err)
	}
	if len(vec) == 0 {
		t.Fatalf("empty embedding")
	}
}

func TestNewGeminiEmbedderMissingKey(t *testing.T) {
	if _, err := NewGeminiEmbedder(context.Background(), "", ""); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

package services

import (
	"context"
	"fmt"

	"docuchat-backend/models"
)

// fakeEmbedder returns a preset vector per exact text, falling back to
// a cheap deterministic vector derived from the text bytes.
type fakeEmbedder struct {
	vectors map[string][]float32
	calls   int
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if vec, ok := f.vectors[text]; ok {
		return vec, nil
	}
	// Deterministic 4-dim vector from byte content.
	vec := make([]float32, 4)
	for i, b := range []byte(text) {
		vec[i%4] += float32(b)
	}
	return vec, nil
}

// fakeLLM records the last prompt and history and replies with a
// canned answer.
type fakeLLM struct {
	reply       string
	err         error
	calls       int
	lastPrompt  string
	lastHistory []models.Message
}

func (f *fakeLLM) Complete(_ context.Context, prompt string, history []models.Message) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	f.lastHistory = history
	if f.err != nil {
		return "", f.err
	}
	if f.reply == "" {
		return fmt.Sprintf("answer %d", f.calls), nil
	}
	return f.reply, nil
}

package services

import (
	"context"
	"fmt"
	"strings"

	"docuchat-backend/models"
)

// LanguageModel is the completion capability. Implemented by
// internal/ai.GeminiClient; tests supply fakes. Exactly one call is
// made per answer, with no retry here: retry policy belongs to the
// capability, not the composer.
type LanguageModel interface {
	Complete(ctx context.Context, prompt string, history []models.Message) (string, error)
}

// Composer assembles a single prompt from the question, the answer
// mode, retrieved passages and a bounded window of prior turns, and
// obtains one completion. It persists nothing; that is the pipeline's
// job, which keeps the composer a pure function of its inputs plus one
// external call.
type Composer struct {
	llm           LanguageModel
	embedder      Embedder
	topK          int
	historyWindow int
}

// NewComposer configures retrieval depth (passages per query) and the
// number of recent conversation turns carried as chat history.
func NewComposer(llm LanguageModel, embedder Embedder, topK, historyWindow int) *Composer {
	return &Composer{
		llm:           llm,
		embedder:      embedder,
		topK:          topK,
		historyWindow: historyWindow,
	}
}

// Answer generates a reply for the question under the given mode.
// index may be nil when the session has no uploaded document:
// document_only then fails with ErrNoDocument, hybrid proceeds without
// retrieval context, normal never retrieves.
func (c *Composer) Answer(ctx context.Context, question string, mode models.Mode, session models.Session, index *VectorIndex) (string, error) {
	var passages []models.ScoredChunk

	switch mode {
	case models.ModeDocumentOnly:
		if index == nil {
			return "", ErrNoDocument
		}
		retrieved, err := c.retrieve(ctx, question, index)
		if err != nil {
			return "", err
		}
		passages = retrieved

	case models.ModeHybrid:
		if index != nil {
			retrieved, err := c.retrieve(ctx, question, index)
			if err != nil {
				return "", err
			}
			passages = retrieved
		}

	case models.ModeNormal:
		// No retrieval regardless of whether a document exists.

	default:
		return "", fmt.Errorf("unknown mode %q", mode)
	}

	prompt := buildPrompt(question, mode, passages)
	history := recentHistory(session.Messages, c.historyWindow)

	answer, err := c.llm.Complete(ctx, prompt, history)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return answer, nil
}

func (c *Composer) retrieve(ctx context.Context, question string, index *VectorIndex) ([]models.ScoredChunk, error) {
	queryVec, err := c.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: query embedding failed: %v", ErrGeneration, err)
	}
	return index.Search(queryVec, c.topK), nil
}

// buildPrompt is deterministic given the same inputs; any randomness in
// the final answer comes from the language model alone.
func buildPrompt(question string, mode models.Mode, passages []models.ScoredChunk) string {
	if len(passages) == 0 {
		return question
	}

	var prompt strings.Builder
	prompt.WriteString("Context from the uploaded document:\n\n")
	for i, p := range passages {
		prompt.WriteString(fmt.Sprintf("Passage %d:\n%s\n\n", i+1, p.Chunk.Text))
	}

	switch mode {
	case models.ModeDocumentOnly:
		prompt.WriteString("Answer the following question using only the context above. ")
		prompt.WriteString("If the context does not contain the answer, say so instead of guessing.\n\n")
	case models.ModeHybrid:
		prompt.WriteString("Answer the following question using the context above together with your general knowledge. ")
		prompt.WriteString("Prefer the context where it is relevant.\n\n")
	}

	prompt.WriteString("Question: ")
	prompt.WriteString(question)
	return prompt.String()
}

// recentHistory returns the last `window` conversation turns (a turn is
// a user message plus the assistant reply) so follow-up questions can
// resolve pronouns against recent context.
func recentHistory(messages []models.Message, window int) []models.Message {
	if window <= 0 {
		return nil
	}
	limit := window * 2
	if len(messages) <= limit {
		return messages
	}
	return messages[len(messages)-limit:]
}

package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"docuchat-backend/models"
)

// Embedder maps text to a fixed-length vector. Implemented by
// internal/ai.GeminiEmbedder; tests supply fakes.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex holds the embedded chunks of one uploaded document and
// answers nearest-neighbor queries by brute-force cosine similarity.
// An index is immutable once built; replacing a document builds a new
// index and the orchestrator swaps it in atomically.
type VectorIndex struct {
	vectors [][]float32
	chunks  []models.Chunk
}

// BuildIndex embeds every chunk and stores vector+chunk pairs. Fails
// with ErrEmptyDocument when there is nothing to index.
func BuildIndex(ctx context.Context, embedder Embedder, chunks []models.Chunk) (*VectorIndex, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyDocument
	}

	idx := &VectorIndex{
		vectors: make([][]float32, 0, len(chunks)),
		chunks:  make([]models.Chunk, 0, len(chunks)),
	}
	for _, chunk := range chunks {
		vec, err := embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk at position %d: %w", chunk.Position, err)
		}
		idx.vectors = append(idx.vectors, vec)
		idx.chunks = append(idx.chunks, chunk)
	}
	return idx, nil
}

// Search returns the k chunks closest to the query vector, best first.
// Ties are broken by chunk position, earlier wins. k <= 0 yields no
// results; k larger than the index yields everything.
func (idx *VectorIndex) Search(query []float32, k int) []models.ScoredChunk {
	if k <= 0 || len(idx.vectors) == 0 {
		return nil
	}

	results := make([]models.ScoredChunk, len(idx.vectors))
	for i, vec := range idx.vectors {
		results[i] = models.ScoredChunk{
			Chunk: idx.chunks[i],
			Score: cosineSimilarity(query, vec),
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.Position < results[j].Chunk.Position
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k]
}

// Len reports the number of indexed vectors.
func (idx *VectorIndex) Len() int {
	return len(idx.chunks)
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

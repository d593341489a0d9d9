package services

import (
	"fmt"

	"docuchat-backend/models"
)

// Chunker splits decoded document text into overlapping fixed-size
// passages for embedding. Sizes are measured in runes so multi-byte
// text never gets split mid-character.
type Chunker struct {
	chunkSize int
	overlap   int
}

// NewChunker validates the chunking parameters once at setup. A bad
// pair is a configuration fault, not a per-request condition.
func NewChunker(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap must satisfy 0 <= overlap < chunk size, got overlap=%d size=%d", overlap, chunkSize)
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}, nil
}

// Chunk produces left-to-right passages covering the full input with no
// gaps. Each chunk starts chunkSize-overlap runes after the previous
// one, so the trailing overlap runes of a chunk are repeated at the
// start of the next. The final chunk may be shorter. Empty input yields
// no chunks.
func (c *Chunker) Chunk(text string) []models.Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := c.chunkSize - c.overlap
	var chunks []models.Chunk
	for start := 0; start < len(runes); start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, models.Chunk{
			Text:     string(runes[start:end]),
			Position: start,
		})
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// ChunkSize reports the configured maximum passage length in runes.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap reports the configured overlap in runes.
func (c *Chunker) Overlap() int { return c.overlap }

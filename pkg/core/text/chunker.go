// Package text provides utilities for splitting source documents into the
// fixed-size fragments the terrain is built from.
//
// The functions in this package are Unicode-aware: they operate on runes
// rather than bytes so multi-byte characters are never split in half.
package text

import (
	"strings"
	"unicode/utf8"
)

// Default chunking parameters. A 400-rune window with a 50-rune overlap
// keeps enough context across boundaries for embedding, while keeping the
// number of fragments manageable for the O(n²) graph builder.
const (
	DefaultChunkSize    = 400
	DefaultChunkOverlap = 50

	// minChunkContent is the minimum trimmed length for a chunk to be kept.
	// Shorter tails carry no usable signal and only pollute the graph.
	minChunkContent = 30
)

// Chunk represents a single piece of text produced by the chunker,
// with its sequential position within the original document.
type Chunk struct {
	Content     string
	ChunkNumber int
}

// FixedSizeChunker splits text into fixed-size chunks with a given overlap.
//
// With a chunkSize of 400 and an overlapSize of 50 the window advances by
// 350 runes per chunk: runes[0:400], runes[350:750], and so on. Chunks whose
// trimmed content is 30 runes or fewer are discarded; ChunkNumber still
// reflects the position among the kept chunks.
func FixedSizeChunker(text string, chunkSize, overlapSize int) []Chunk {
	if chunkSize <= 0 || overlapSize < 0 || overlapSize >= chunkSize {
		// Invalid parameters: return the whole text as a single chunk.
		return []Chunk{{Content: text, ChunkNumber: 0}}
	}

	var chunks []Chunk
	runes := []rune(text)
	length := len(runes)

	chunkNum := 0
	for i := 0; i < length; i += chunkSize - overlapSize {
		end := i + chunkSize
		if end > length {
			end = length
		}

		content := string(runes[i:end])
		if utf8.RuneCountInString(strings.TrimSpace(content)) <= minChunkContent {
			continue
		}

		chunks = append(chunks, Chunk{Content: content, ChunkNumber: chunkNum})
		chunkNum++
	}

	return chunks
}

// ChunkDocument splits text using the default window and overlap.
func ChunkDocument(text string) []Chunk {
	return FixedSizeChunker(text, DefaultChunkSize, DefaultChunkOverlap)
}

// Truncate returns the first n runes of s.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

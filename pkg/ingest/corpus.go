package ingest

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/xnoubis/rosetta/pkg/core"
	"github.com/xnoubis/rosetta/pkg/core/text"
	"github.com/xnoubis/rosetta/pkg/embeddings"
)

// Collector assembles a fragment corpus from raw text or a directory tree.
type Collector struct {
	loader   Loader
	embedder embeddings.Embedder

	// ChunkSize and ChunkOverlap default to the package-level values in
	// pkg/core/text when zero.
	ChunkSize    int
	ChunkOverlap int
}

func NewCollector(embedder embeddings.Embedder) *Collector {
	return &Collector{
		loader:       NewAutoLoader(),
		embedder:     embedder,
		ChunkSize:    text.DefaultChunkSize,
		ChunkOverlap: text.DefaultChunkOverlap,
	}
}

// FromText chunks and embeds a single block of raw text. Fragment ids take
// the form "<source>:<n>".
func (c *Collector) FromText(source, content string) ([]core.FragmentInput, error) {
	chunks := text.FixedSizeChunker(content, c.ChunkSize, c.ChunkOverlap)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no usable chunks in %q", source)
	}

	contents := make([]string, len(chunks))
	for i, ch := range chunks {
		contents[i] = ch.Content
	}

	vectors, err := c.embedder.EmbedBatch(contents)
	if err != nil {
		return nil, fmt.Errorf("embedding %q: %w", source, err)
	}

	inputs := make([]core.FragmentInput, len(chunks))
	for i, ch := range chunks {
		inputs[i] = core.FragmentInput{
			ID:        fmt.Sprintf("%s:%d", source, ch.ChunkNumber),
			Content:   ch.Content,
			Embedding: vectors[i],
		}
	}
	return inputs, nil
}

// FromFolder walks the directory tree, loads every regular file and returns
// the combined corpus. Hidden files and directories are skipped. Files that
// fail to load or produce no chunks are logged and skipped, not fatal.
func (c *Collector) FromFolder(dir string) ([]core.FragmentInput, error) {
	var inputs []core.FragmentInput

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") {
			if d.IsDir() && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		content, err := c.loader.Load(path)
		if err != nil {
			slog.Warn("[Ingest] Skipping unreadable file", "path", path, "error", err)
			return nil
		}

		// Relative paths keep ids unique when two subdirectories
		// contain files with the same name.
		source, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			source = name
		}

		fileInputs, err := c.FromText(source, content)
		if err != nil {
			slog.Warn("[Ingest] Skipping file with no usable chunks", "path", path)
			return nil
		}

		slog.Info("[Ingest] Processed file", "path", path, "chunks", len(fileInputs))
		inputs = append(inputs, fileInputs...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("no usable fragments under %s", dir)
	}
	return inputs, nil
}

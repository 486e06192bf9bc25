package ingest

import (
	"path/filepath"
	"strings"
)

// AutoLoader automatically selects the correct loader based on file extension.
type AutoLoader struct {
	textLoader Loader
	pdfLoader  Loader
}

func NewAutoLoader() *AutoLoader {
	return &AutoLoader{
		textLoader: NewTextLoader(),
		pdfLoader:  NewPDFLoader(),
	}
}

func (l *AutoLoader) Load(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".pdf":
		return l.pdfLoader.Load(path)
	case ".txt", ".md", ".markdown", ".json", ".yaml", ".yml", ".go", ".py", ".js", ".ts", ".html", ".css", ".csv":
		return l.textLoader.Load(path)
	default:
		// Unknown extensions are read as text. A binary file yields
		// garbage chunks, but those rarely survive the length filter.
		return l.textLoader.Load(path)
	}
}

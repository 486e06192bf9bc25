// Package server implements the HTTP surface over a terrain engine.
//
// This file defines the Go structs that correspond to the YAML configuration
// file. Parsing is strict: unknown keys are an error, and environment
// variables referenced as ${VAR} are expanded before decoding.
package server

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xnoubis/rosetta/pkg/core"
	"github.com/xnoubis/rosetta/pkg/core/distance"
	"github.com/xnoubis/rosetta/pkg/core/text"
	"github.com/xnoubis/rosetta/pkg/embeddings"
)

// Config is the top-level structure of the configuration file.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	StatePath  string `yaml:"state_path"`
	// AuthToken, when set, is required as "Authorization: Bearer <token>"
	// on every endpoint except /healthz and /metrics. Usually supplied
	// through environment expansion, e.g. ${ROSETTA_TOKEN}.
	AuthToken string `yaml:"auth_token"`

	Embedder embeddings.Config `yaml:"embedder"`
	Walk     WalkConfig        `yaml:"walk"`
	Chunking ChunkingConfig    `yaml:"chunking"`
}

// WalkConfig tunes graph construction for ingested corpora.
type WalkConfig struct {
	// K is the outgoing neighbor count per fragment.
	K int `yaml:"k"`
	// Precision is "float32" or "float16".
	Precision string `yaml:"precision"`
}

// ChunkingConfig tunes the document splitter.
type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// DefaultConfig returns a configuration that works with no file at all:
// pseudo embeddings, local state, no auth.
func DefaultConfig() Config {
	return Config{
		ListenAddr: ":8080",
		StatePath:  "terrain.state",
		Embedder:   embeddings.DefaultConfig(),
		Walk:       WalkConfig{K: core.DefaultK, Precision: string(distance.Float32)},
		Chunking:   ChunkingConfig{Size: text.DefaultChunkSize, Overlap: text.DefaultChunkOverlap},
	}
}

// LoadConfig reads and parses the YAML configuration file from the given
// path. An empty path returns the defaults. It uses Strict Mode
// (KnownFields) to prevent silent errors due to typos.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read configuration file '%s': %w", path, err)
	}

	expandedData := os.ExpandEnv(string(data))

	decoder := yaml.NewDecoder(strings.NewReader(expandedData))
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("YAML syntax error in '%s': %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch distance.PrecisionType(c.Walk.Precision) {
	case distance.Float32, distance.Float16, "":
	default:
		return fmt.Errorf("invalid walk precision %q", c.Walk.Precision)
	}
	if c.Walk.K < 0 {
		return fmt.Errorf("walk k must be positive, got %d", c.Walk.K)
	}
	return nil
}

// BuildOptions translates the walk section into builder options.
func (c Config) BuildOptions() core.BuildOptions {
	opts := core.BuildOptions{K: c.Walk.K}
	if c.Walk.Precision != "" {
		opts.Precision = distance.PrecisionType(c.Walk.Precision)
	}
	return opts
}

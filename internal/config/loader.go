package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"llm":        {"openai", "anthropic", "ollama", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile", "mock"},
	"embeddings": {"openai", "ollama", "mock"},
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Provider name validation — warn for unknown provider names.
	validateProviderName("llm", cfg.Providers.LLM.Name)
	validateProviderName("embeddings", cfg.Providers.Embeddings.Name)

	if cfg.Providers.LLM.Name == "" {
		errs = append(errs, errors.New("providers.llm.name is required"))
	}
	if cfg.Providers.Embeddings.Name == "" {
		errs = append(errs, errors.New("providers.embeddings.name is required"))
	}
	if cfg.Providers.Embeddings.Dimensions < 0 {
		errs = append(errs, fmt.Errorf("providers.embeddings.dimensions %d is negative", cfg.Providers.Embeddings.Dimensions))
	}

	// Profile store
	if cfg.Profiles.Backend != "" && !cfg.Profiles.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("profiles.backend %q is invalid; valid values: postgres, sqlite, memory", cfg.Profiles.Backend))
	}
	switch cfg.Profiles.Backend {
	case BackendPostgres:
		if cfg.Profiles.PostgresDSN == "" {
			errs = append(errs, errors.New("profiles.postgres_dsn is required when profiles.backend is postgres"))
		}
	case BackendSQLite:
		if cfg.Profiles.SQLitePath == "" {
			errs = append(errs, errors.New("profiles.sqlite_path is required when profiles.backend is sqlite"))
		}
	case BackendMemory:
		slog.Warn("profiles.backend is memory; profiles will not survive restarts")
	}

	// Corpus
	if cfg.Corpus.Source != "" && !cfg.Corpus.Source.IsValid() {
		errs = append(errs, fmt.Errorf("corpus.source %q is invalid; valid values: file, postgres", cfg.Corpus.Source))
	}
	switch cfg.Corpus.Source {
	case CorpusFile:
		if cfg.Corpus.Path == "" {
			errs = append(errs, errors.New("corpus.path is required when corpus.source is file"))
		}
	case CorpusPostgres:
		if cfg.Corpus.PostgresDSN == "" && cfg.Profiles.PostgresDSN == "" {
			errs = append(errs, errors.New("corpus.postgres_dsn is required when corpus.source is postgres and no profiles.postgres_dsn is set"))
		}
	}

	// Retrieval
	if cfg.Retrieval.TopK < 0 {
		errs = append(errs, fmt.Errorf("retrieval.top_k %d is negative", cfg.Retrieval.TopK))
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}

// Package config provides the configuration schema, loader, and provider
// registry for the Rumbo guidance server.
package config

// LogLevel controls log verbosity for the Rumbo server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// ProfileBackend selects the profile store implementation.
type ProfileBackend string

const (
	// BackendPostgres stores profiles in PostgreSQL (pgvector required).
	BackendPostgres ProfileBackend = "postgres"

	// BackendSQLite stores profiles in an embedded SQLite database.
	BackendSQLite ProfileBackend = "sqlite"

	// BackendMemory keeps profiles in process memory. Development only —
	// every restart forgets every user.
	BackendMemory ProfileBackend = "memory"
)

// IsValid reports whether b is a recognised profile backend.
func (b ProfileBackend) IsValid() bool {
	switch b {
	case BackendPostgres, BackendSQLite, BackendMemory:
		return true
	}
	return false
}

// CorpusSource selects where the career corpus is loaded from at startup.
type CorpusSource string

const (
	// CorpusFile loads the corpus from a JSON artifact on disk.
	CorpusFile CorpusSource = "file"

	// CorpusPostgres loads the corpus from the careers database.
	CorpusPostgres CorpusSource = "postgres"
)

// IsValid reports whether s is a recognised corpus source.
func (s CorpusSource) IsValid() bool {
	return s == CorpusFile || s == CorpusPostgres
}

// Config is the root configuration structure for Rumbo.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Profiles  ProfilesConfig  `yaml:"profiles"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
}

// ServerConfig holds network and logging settings for the Rumbo server.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// ProvidersConfig declares which provider implementation to use for each
// model-backed concern. Each field selects a named provider registered in
// the [Registry].
type ProvidersConfig struct {
	// LLM backs both the profile-update extractor and the counselor reply.
	LLM ProviderEntry `yaml:"llm"`

	// Embeddings turns message text into interest vectors. Must use the
	// same model that embedded the career corpus.
	Embeddings ProviderEntry `yaml:"embeddings"`
}

// ProviderEntry is the common configuration block shared by all provider types.
// The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation
	// (e.g., "gemini", "openai", "ollama", "mock").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider
	// (e.g., "gemini-2.0-flash", "text-embedding-3-small").
	Model string `yaml:"model"`

	// Dimensions pre-sets the embedding dimension for providers that cannot
	// report it themselves. Ignored by LLM providers.
	Dimensions int `yaml:"dimensions"`
}

// ProfilesConfig selects and configures the profile store.
type ProfilesConfig struct {
	// Backend selects the store implementation.
	Backend ProfileBackend `yaml:"backend"`

	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string `yaml:"postgres_dsn"`

	// SQLitePath is the database file path for the sqlite backend.
	// ":memory:" keeps the database in process memory.
	SQLitePath string `yaml:"sqlite_path"`
}

// CorpusConfig selects and configures the career corpus source.
type CorpusConfig struct {
	// Source selects where the corpus is loaded from.
	Source CorpusSource `yaml:"source"`

	// Path is the JSON artifact path for the file source.
	Path string `yaml:"path"`

	// PostgresDSN is the connection string for the postgres source. When
	// empty and the profile backend is postgres, the profile DSN is reused.
	PostgresDSN string `yaml:"postgres_dsn"`
}

// RetrievalConfig tunes career retrieval.
type RetrievalConfig struct {
	// TopK is how many careers each turn retrieves. Zero means the default
	// (5); negative values are a configuration error.
	TopK int `yaml:"top_k"`
}

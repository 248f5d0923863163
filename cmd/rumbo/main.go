// Command rumbo is the main entry point for the Rumbo vocational-guidance server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"golang.org/x/sync/errgroup"

	"github.com/rumbo-ai/rumbo/internal/config"
	"github.com/rumbo-ai/rumbo/internal/extract"
	"github.com/rumbo-ai/rumbo/internal/guidance"
	"github.com/rumbo-ai/rumbo/internal/health"
	"github.com/rumbo-ai/rumbo/internal/observe"
	"github.com/rumbo-ai/rumbo/internal/server"
	"github.com/rumbo-ai/rumbo/pkg/career"
	"github.com/rumbo-ai/rumbo/pkg/profile"
	profilemem "github.com/rumbo-ai/rumbo/pkg/profile/mock"
	profilepg "github.com/rumbo-ai/rumbo/pkg/profile/postgres"
	profilesqlite "github.com/rumbo-ai/rumbo/pkg/profile/sqlite"
	"github.com/rumbo-ai/rumbo/pkg/provider/embeddings"
	embmock "github.com/rumbo-ai/rumbo/pkg/provider/embeddings/mock"
	ollamaembed "github.com/rumbo-ai/rumbo/pkg/provider/embeddings/ollama"
	oaembed "github.com/rumbo-ai/rumbo/pkg/provider/embeddings/openai"
	"github.com/rumbo-ai/rumbo/pkg/provider/llm"
	"github.com/rumbo-ai/rumbo/pkg/provider/llm/anyllm"
	llmmock "github.com/rumbo-ai/rumbo/pkg/provider/llm/mock"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Environment overlay ───────────────────────────────────────────────────
	// A .env next to the binary can supply API keys and DSNs so they stay out
	// of the YAML file. Missing file is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "rumbo: load .env: %v\n", err)
		return 1
	}

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "rumbo: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "rumbo: %v\n", err)
		}
		return 1
	}
	applyEnvOverrides(cfg)

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("rumbo starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "rumbo",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Providers ─────────────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	counselor, err := reg.CreateLLM(cfg.Providers.LLM)
	if err != nil {
		slog.Error("failed to create llm provider", "name", cfg.Providers.LLM.Name, "err", err)
		return 1
	}
	embedder, err := reg.CreateEmbeddings(cfg.Providers.Embeddings)
	if err != nil {
		slog.Error("failed to create embeddings provider", "name", cfg.Providers.Embeddings.Name, "err", err)
		return 1
	}
	slog.Info("providers created",
		"llm", counselor.ModelID(),
		"embeddings", embedder.ModelID(),
		"dimensions", embedder.Dimensions(),
	)

	// ── Corpus and profile store ──────────────────────────────────────────────
	var (
		index *career.Index
		store profile.Store
		pool  *pgxpool.Pool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		index, err = loadCorpus(gctx, cfg)
		return err
	})
	g.Go(func() error {
		var err error
		store, pool, err = openProfileStore(gctx, cfg, embedder.Dimensions())
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Error("startup failed", "err", err)
		return 1
	}
	if pool != nil {
		defer pool.Close()
	}

	// Corpus and embedder must agree on dimensionality, or every blend and
	// cosine in the turn pipeline would fail. Refuse to start instead.
	if d := embedder.Dimensions(); d > 0 && d != index.Dimensions() {
		slog.Error("embedding dimension mismatch",
			"embedder", d,
			"corpus", index.Dimensions(),
		)
		return 1
	}
	slog.Info("career corpus loaded", "careers", index.Len(), "dimensions", index.Dimensions())

	// ── Turn pipeline ─────────────────────────────────────────────────────────
	extractor := extract.New(counselor, extract.WithFailureHook(func() {
		metrics.ExtractionFailures.Add(context.Background(), 1)
	}))
	retriever := career.NewRetriever(index)

	var orchOpts []guidance.Option
	orchOpts = append(orchOpts, guidance.WithMetrics(metrics))
	if cfg.Retrieval.TopK > 0 {
		orchOpts = append(orchOpts, guidance.WithTopK(cfg.Retrieval.TopK))
	}
	orchestrator := guidance.New(store, extractor, embedder, retriever, counselor, orchOpts...)

	// ── HTTP server ───────────────────────────────────────────────────────────
	addr := cfg.Server.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	healthHandler := health.New(
		health.ProfileStore(store),
		health.Corpus(index),
	)
	srv := server.New(addr, server.Deps{
		Orchestrator: orchestrator,
		Index:        index,
		Health:       healthHandler,
		Metrics:      metrics,
	})

	printStartupSummary(cfg, index, addr)
	slog.Info("server ready — press Ctrl+C to shut down", "addr", addr)

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires all built-in provider factories into reg.
// Each factory receives a config.ProviderEntry and constructs the appropriate
// provider from the real implementation packages.
func registerBuiltinProviders(reg *config.Registry) {
	// openai, anthropic, gemini, deepseek, mistral, groq, llamacpp, llamafile
	// all share the same pattern: optional APIKey + optional BaseURL.
	for _, providerName := range []string{
		"openai", "anthropic", "gemini",
		"deepseek", "mistral", "groq", "llamacpp", "llamafile",
	} {
		reg.RegisterLLM(providerName, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterLLM("ollama", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New("ollama", entry.Model, opts...)
	})

	reg.RegisterLLM("mock", func(config.ProviderEntry) (llm.Provider, error) {
		return llmmock.New(), nil
	})

	reg.RegisterEmbeddings("openai", func(entry config.ProviderEntry) (embeddings.Provider, error) {
		var opts []oaembed.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaembed.WithBaseURL(entry.BaseURL))
		}
		return oaembed.New(entry.APIKey, entry.Model, opts...)
	})

	reg.RegisterEmbeddings("ollama", func(entry config.ProviderEntry) (embeddings.Provider, error) {
		var opts []ollamaembed.Option
		if entry.Dimensions > 0 {
			opts = append(opts, ollamaembed.WithDimensions(entry.Dimensions))
		}
		return ollamaembed.New(entry.BaseURL, entry.Model, opts...)
	})

	reg.RegisterEmbeddings("mock", func(entry config.ProviderEntry) (embeddings.Provider, error) {
		return embmock.New(entry.Dimensions), nil
	})
}

// applyEnvOverrides fills secret-bearing config fields from the environment
// when the YAML left them empty. This keeps keys out of committed configs.
func applyEnvOverrides(cfg *config.Config) {
	if cfg.Providers.LLM.APIKey == "" {
		cfg.Providers.LLM.APIKey = os.Getenv("RUMBO_LLM_API_KEY")
	}
	if cfg.Providers.Embeddings.APIKey == "" {
		cfg.Providers.Embeddings.APIKey = os.Getenv("RUMBO_EMBEDDINGS_API_KEY")
	}
	if cfg.Profiles.PostgresDSN == "" {
		cfg.Profiles.PostgresDSN = os.Getenv("RUMBO_POSTGRES_DSN")
	}
	if cfg.Corpus.PostgresDSN == "" {
		cfg.Corpus.PostgresDSN = os.Getenv("RUMBO_CORPUS_DSN")
	}
}

// ── Corpus and store setup ────────────────────────────────────────────────────

// loadCorpus loads the career index from the configured source. The corpus
// is required; any load error is fatal to startup.
func loadCorpus(ctx context.Context, cfg *config.Config) (*career.Index, error) {
	switch cfg.Corpus.Source {
	case config.CorpusPostgres:
		dsn := cfg.Corpus.PostgresDSN
		if dsn == "" {
			dsn = cfg.Profiles.PostgresDSN
		}
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("connect corpus database: %w", err)
		}
		defer pool.Close()
		return career.LoadPostgres(ctx, pool)
	case config.CorpusFile, "":
		path := cfg.Corpus.Path
		if path == "" {
			path = "careers.json"
		}
		return career.LoadFile(path)
	default:
		return nil, fmt.Errorf("unknown corpus source %q", cfg.Corpus.Source)
	}
}

// openProfileStore opens the configured profile store. The returned pool is
// non-nil only for the postgres backend; the caller owns closing it.
func openProfileStore(ctx context.Context, cfg *config.Config, dims int) (profile.Store, *pgxpool.Pool, error) {
	switch cfg.Profiles.Backend {
	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.Profiles.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect profile database: %w", err)
		}
		store, err := profilepg.New(pool, dims)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate profile schema: %w", err)
		}
		return store, pool, nil
	case config.BackendSQLite:
		store, err := profilesqlite.Open(cfg.Profiles.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite profile store: %w", err)
		}
		return store, nil, nil
	case config.BackendMemory, "":
		return profilemem.New(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown profile backend %q", cfg.Profiles.Backend)
	}
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config, index *career.Index, addr string) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║           Rumbo — startup summary     ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printEntry("LLM", providerLabel(cfg.Providers.LLM))
	printEntry("Embeddings", providerLabel(cfg.Providers.Embeddings))
	printEntry("Profiles", string(cfg.Profiles.Backend))
	printEntry("Corpus", fmt.Sprintf("%s (%d careers)", corpusLabel(cfg), index.Len()))
	printEntry("Listen addr", addr)
	fmt.Println("╚═══════════════════════════════════════╝")
}

func providerLabel(entry config.ProviderEntry) string {
	if entry.Name == "" {
		return "(not configured)"
	}
	if entry.Model != "" {
		return entry.Name + " / " + entry.Model
	}
	return entry.Name
}

func corpusLabel(cfg *config.Config) string {
	if cfg.Corpus.Source == config.CorpusPostgres {
		return "postgres"
	}
	return "file"
}

func printEntry(kind, value string) {
	if value == "" {
		value = "(not configured)"
	}
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-12s    : %-19s ║\n", kind, value)
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

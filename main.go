// jobmatch — fair-chance job matching MCP server.
//
// Exposes the job-search tool surface (search_jobs, save_preference,
// todo_write/todo_read, get_my_resume, get_my_job_preferences, the
// interactive prompt tools) plus chat_turn, a full conversational turn
// with tool-call validation.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/openchance/jobmatch/internal/engine"
	"github.com/openchance/jobmatch/internal/engine/auth"
	"github.com/openchance/jobmatch/internal/engine/index"
	"github.com/openchance/jobmatch/internal/engine/search"
	"github.com/openchance/jobmatch/internal/engine/store"
	"github.com/openchance/jobmatch/internal/jobserver"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8894")
)

func main() {
	ctx := context.Background()
	c := buildConfig()
	engine.Init(c)
	engine.InitCache(env.Str("REDIS_URL", ""), c.CacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)

	slog.Info("starting jobmatch", slog.String("port", mcpPort))

	st, err := openStore(ctx, c)
	if err != nil {
		slog.Error("store init failed", slog.Any("error", err))
		return
	}
	defer st.Close()

	deps := jobserver.Deps{
		Search: search.NewService(search.WithCache(index.NewClient(c.IndexURL, c.IndexAPIKey, c.IndexRPS, c.HTTPClient)), st),
		Store:  st,
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "jobmatch",
		Version: version,
	}, nil)

	// Local single-user mode; a fronting gateway replaces this resolver
	// with real token verification.
	localUser := env.Str("JOBMATCH_USER_ID", "")
	jobserver.RequireAuth(server, func(context.Context) (string, error) {
		if localUser == "" {
			return "", auth.ErrUnauthenticated
		}
		return localUser, nil
	})

	jobserver.RegisterTools(server, deps)
	toolCount := 10

	if c.LLMAPIKey != "" || c.LLMProvider == engine.ProviderVertex {
		llm, err := engine.NewLLM(ctx, c)
		if err != nil {
			slog.Warn("llm init failed, chat_turn disabled", slog.Any("error", err))
		} else {
			jobserver.RegisterChat(server, deps, llm)
			toolCount++
		}
	}
	slog.Info("tools registered", slog.Int("count", toolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "jobmatch",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 120 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func buildConfig() engine.Config {
	provider, err := engine.ParseProvider(env.Str("LLM_PROVIDER", ""))
	if err != nil {
		slog.Warn("bad LLM_PROVIDER, defaulting to gemini", slog.Any("error", err))
		provider = engine.ProviderGemini
	}

	return engine.Config{
		IndexURL:    env.Str("INDEX_URL", "http://127.0.0.1:7700"),
		IndexAPIKey: env.Str("INDEX_API_KEY", ""),
		IndexRPS:    env.Float("INDEX_RPS", 10),

		LLMProvider: provider,
		LLMAPIKey:   env.Str("LLM_API_KEY", ""),
		LLMModel:    env.Str("LLM_MODEL", ""),

		DatabaseURL: env.Str("DATABASE_URL", ""),
		RedisURL:    env.Str("REDIS_URL", ""),

		CacheTTL:             env.Duration("CACHE_TTL", 15*time.Minute),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),

		MaxSearchResults: env.Int("MAX_SEARCH_RESULTS", 8),
		OverFetchFactor:  env.Int("OVER_FETCH_FACTOR", 3),
		GeoPrefilterKM:   env.Float("GEO_PREFILTER_KM", 80),

		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
}

// openStore picks PostgreSQL when DATABASE_URL is set, local SQLite
// otherwise. Either way the reviewed-id set is served through Redis when
// available.
func openStore(ctx context.Context, c engine.Config) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	if c.DatabaseURL != "" {
		st, err = store.ConnectPostgres(ctx, c.DatabaseURL)
		if err != nil {
			return nil, err
		}
		slog.Info("postgres store initialized")
	} else {
		path, perr := store.DefaultSQLitePath()
		if perr != nil {
			return nil, perr
		}
		st, err = store.OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		slog.Info("sqlite store initialized", slog.String("path", path))
	}

	if rdb := engine.Redis(); rdb != nil {
		st = store.WithReviewedCache(st, rdb)
		slog.Info("reviewed-id cache enabled")
	}
	return st, nil
}

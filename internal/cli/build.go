package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/ppiankov/leadradar/internal/cache"
	"github.com/ppiankov/leadradar/internal/llm"
	"github.com/ppiankov/leadradar/internal/model"
	"github.com/ppiankov/leadradar/internal/score"
	"github.com/ppiankov/leadradar/internal/service"
	"github.com/ppiankov/leadradar/internal/source"
)

// loadConfig merges the config file and environment over the defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// API keys are usually supplied via environment, not the config file
	if cfg.HTTP.APIKey == "" {
		cfg.HTTP.APIKey = os.Getenv("REALIE_API_KEY")
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return cfg, nil
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
	return log
}

// buildService wires the pipeline: provider client, optional mirror,
// snapshot store, scorer, optional digester
func buildService(cfg *model.Config, log *slog.Logger) (*service.Service, *cache.Store, error) {
	if cfg.HTTP.APIKey == "" {
		return nil, nil, fmt.Errorf("REALIE_API_KEY environment variable not set")
	}

	client := source.NewClient(cfg.HTTP)

	mirror, err := buildMirror(cfg.Cache, log)
	if err != nil {
		return nil, nil, err
	}

	store := cache.NewStore(client, mirror, cfg.Cache, cfg.Refresh, log)
	scorer := score.New(cfg.Scoring, log)

	digester, err := llm.NewProvider(llm.Config{
		Provider:  cfg.LLM.Provider,
		Model:     cfg.LLM.Model,
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Timeout:   cfg.LLM.Timeout,
		MaxTokens: cfg.LLM.MaxTokens,
	})
	if err != nil {
		// A misconfigured digester disables digests, it never blocks listings
		log.Warn("digest provider unavailable", "error", err)
		digester = nil
	}

	return service.New(store, scorer, digester, cfg.Cache.MaxProperties, log), store, nil
}

// buildMirror resolves the cache backend. A redis backend without a usable
// connection degrades to the memory-only configuration rather than failing.
func buildMirror(cfg model.CacheConfig, log *slog.Logger) (cache.Mirror, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return nil, nil
	case "redis":
		if cfg.RedisURL == "" {
			log.Warn("cache backend is redis but redis_url is not configured; using memory cache")
			return nil, nil
		}
		mirror, err := cache.NewRedisMirror(cfg.RedisURL)
		if err != nil {
			log.Warn("redis mirror unavailable; using memory cache", "error", err)
			return nil, nil
		}
		log.Info("redis cache mirror enabled", "namespace", cfg.Namespace)
		return mirror, nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s (supported: memory, redis)", cfg.Backend)
	}
}

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ZaguanLabs/mailtl"
	"github.com/ZaguanLabs/mailtl/cache"
	"github.com/ZaguanLabs/mailtl/internal/config"
	"github.com/ZaguanLabs/mailtl/processor"
	"github.com/ZaguanLabs/mailtl/provider"
)

// newProvider builds the configured provider. Retries wrap the rate limiter
// so that every attempt waits for its own token.
func newProvider(cfg *config.Config, log *slog.Logger) mailtl.Provider {
	var p mailtl.Provider
	switch cfg.Provider {
	case "openai":
		p = provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey:  cfg.OpenAIKey(),
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		})
	default:
		p = provider.NewGoogleProvider(provider.GoogleConfig{
			BaseURL: cfg.Google.BaseURL,
			Timeout: cfg.Google.Timeout,
		})
	}

	if cfg.RateLimit.RequestsPerMinute > 0 {
		p = mailtl.NewRateLimitedProvider(p, mailtl.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			BurstSize:         cfg.RateLimit.Burst,
		})
	}

	if cfg.Retry.MaxRetries > 0 {
		retry := mailtl.DefaultRetryConfig()
		retry.MaxRetries = cfg.Retry.MaxRetries
		if cfg.Retry.BaseDelay > 0 {
			retry.BaseDelay = cfg.Retry.BaseDelay
		}
		if cfg.Retry.MaxDelay > 0 {
			retry.MaxDelay = cfg.Retry.MaxDelay
		}
		p = mailtl.NewRetryableProvider(p, retry).WithLogger(log)
	}

	return p
}

func newTranslator(cfg *config.Config, p mailtl.Provider, c cache.ExportableCache, log *slog.Logger) *mailtl.Translator {
	proc := processor.NewHTMLProcessor()
	if len(cfg.IgnoredTags) > 0 {
		proc = processor.NewHTMLProcessorWithIgnoredTags(cfg.IgnoredTags)
	}

	opts := []mailtl.TranslatorOption{
		mailtl.WithSourceLang(cfg.SourceLang),
		mailtl.WithProcessor(proc),
		mailtl.WithConcurrency(cfg.Concurrency),
		mailtl.WithHTMLLang(cfg.SetHTMLLang),
		mailtl.WithLogger(log),
	}
	if c != nil {
		opts = append(opts, mailtl.WithCache(c))
	}
	if cfg.Context != "" {
		opts = append(opts, mailtl.WithContext(cfg.Context))
	}
	if len(cfg.Exclude) > 0 {
		opts = append(opts, mailtl.WithExcludedTerms(cfg.Exclude))
	}
	if glossary := cfg.GlossaryMap(); glossary != nil {
		opts = append(opts, mailtl.WithGlossary(glossary))
	}

	return mailtl.NewTranslator(cfg.TargetLang, p, opts...)
}

// cacheStore is the cache opened for one command.
type cacheStore struct {
	cache cache.ExportableCache // nil when caching is disabled
	redis *cache.RedisCache
	log   *slog.Logger
}

// openCache opens the configured backend and loads cache.file into it.
func openCache(ctx context.Context, cfg *config.Config, log *slog.Logger) (*cacheStore, error) {
	store := &cacheStore{log: log}

	switch cfg.Cache.Backend {
	case "none":
		if cfg.Cache.File != "" {
			log.Warn("cache disabled, ignoring cache file", "file", cfg.Cache.File)
		}
		return store, nil
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			URL:       cfg.Cache.RedisURL,
			TTL:       cfg.Cache.TTL,
			KeyPrefix: cfg.Cache.KeyPrefix,
		})
		if err != nil {
			return nil, &mailtl.CacheError{Message: "connecting to redis", Cause: err}
		}
		store.redis = rc.WithLogger(log)
		store.cache = store.redis
	default:
		store.cache = cache.NewInMemoryCache(cfg.Cache.TTL)
	}

	if cfg.Cache.File != "" {
		res, err := cache.NewImporter(store.cache).ImportFromFile(ctx, cfg.Cache.File)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("loading cache file %s: %w", cfg.Cache.File, err)
		}
		log.Debug("loaded cache file", "file", cfg.Cache.File, "entries", res.Imported, "failed", res.Failed)
	}

	return store, nil
}

// save writes the cache back to cache.file, if one is configured.
func (s *cacheStore) save(ctx context.Context, cfg *config.Config) error {
	if s.cache == nil || cfg.Cache.File == "" {
		return nil
	}
	n, err := cache.NewExporter(s.cache).ExportToFile(ctx, cfg.Cache.File, cacheMetadata(cfg))
	if err != nil {
		return err
	}
	s.log.Debug("saved cache file", "file", cfg.Cache.File, "entries", n)
	return nil
}

func (s *cacheStore) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}

func cacheMetadata(cfg *config.Config) map[string]string {
	return map[string]string{
		"tool":        mailtl.UserAgent(),
		"target_lang": cfg.TargetLang,
		"backend":     cfg.Cache.Backend,
	}
}

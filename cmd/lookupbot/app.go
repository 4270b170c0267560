package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"lookupbot/internal/conversation"
	"lookupbot/internal/lookup/avatar"
	"lookupbot/internal/lookup/cache"
	"lookupbot/internal/lookup/mlbb"
	"lookupbot/internal/lookup/models"
	"lookupbot/internal/lookup/resolver"
	"lookupbot/internal/lookup/service"
	"lookupbot/internal/lookup/store"
	"lookupbot/internal/platform/config"
	"lookupbot/internal/platform/httpclient"
	"lookupbot/internal/platform/metrics"
	"lookupbot/internal/platform/postgres"
	"lookupbot/internal/platform/redis"
)

// app holds every long-lived dependency. close releases the optional
// database and redis connections.
type app struct {
	lookups       *service.Service
	conversations *conversation.Service
	registry      *prometheus.Registry
	// sweeper is set when conversation state is kept in memory.
	sweeper *conversation.MemoryStore
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildApp wires the lookup pipelines and their optional backing stores.
// The outbound client is built once and shared by both domains.
func buildApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	a := &app{registry: reg}

	client := httpclient.New(
		httpclient.WithUserAgent(cfg.HTTP.UserAgent),
		httpclient.WithMaxRetries(cfg.HTTP.MaxRetries),
		httpclient.WithMetrics(m),
		httpclient.WithLogger(logger),
	)

	pipelines, err := buildPipelines(cfg, client, logger, m)
	if err != nil {
		return nil, err
	}

	history, err := buildHistory(ctx, cfg, logger, a)
	if err != nil {
		a.close()
		return nil, err
	}

	a.lookups, err = service.New(pipelines,
		service.WithLogger(logger),
		service.WithMetrics(m),
		service.WithCache(cache.New(cfg.Cache.Size, cfg.Cache.TTL, m)),
		service.WithHistory(history),
	)
	if err != nil {
		a.close()
		return nil, err
	}

	convStore, err := buildConversationStore(ctx, cfg, a)
	if err != nil {
		a.close()
		return nil, err
	}
	a.conversations, err = conversation.New(convStore, a.lookups,
		conversation.WithTTL(cfg.Conversation.TTL),
		conversation.WithLogger(logger),
	)
	if err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func buildPipelines(cfg config.Config, client *httpclient.Client, logger *slog.Logger, m *metrics.Metrics) (*service.Registry, error) {
	up := cfg.Upstreams
	avatarAPI, err := avatar.NewAPI(client, avatar.Config{
		UsersURL:     up.AvatarUsersURL,
		FriendsURL:   up.AvatarFriendsURL,
		GroupsURL:    up.AvatarGroupsURL,
		BadgesURL:    up.AvatarBadgesURL,
		ProfileURL:   up.AvatarProfileURL,
		ValuationURL: up.ValuationURL,
		Timeout:      cfg.HTTP.AvatarTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("avatar api: %w", err)
	}
	mlbbAPI, err := mlbb.NewAPI(client, mlbb.Config{
		BaseURL:     up.MLBBURL,
		AltTemplate: up.MLBBAltTemplate,
		Timeout:     cfg.HTTP.MLBBTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("mlbb api: %w", err)
	}

	avatarChain, err := resolver.New(models.DomainAvatar, avatarAPI.Strategies(),
		resolver.WithLogger(logger), resolver.WithMetrics(m))
	if err != nil {
		return nil, err
	}
	mlbbChain, err := resolver.New(models.DomainMLBB, mlbbAPI.Strategies(),
		resolver.WithLogger(logger), resolver.WithMetrics(m))
	if err != nil {
		return nil, err
	}

	pipelines := service.NewRegistry()
	if err := pipelines.Register(models.DomainAvatar, service.Pipeline{
		Resolver: avatarChain,
		Enricher: avatar.NewEnricher(avatarAPI, avatar.WithLogger(logger), avatar.WithMetrics(m)),
	}); err != nil {
		return nil, err
	}
	if err := pipelines.Register(models.DomainMLBB, service.Pipeline{
		Resolver: mlbbChain,
		Enricher: mlbb.NewEnricher(),
	}); err != nil {
		return nil, err
	}
	return pipelines, nil
}

func buildHistory(ctx context.Context, cfg config.Config, logger *slog.Logger, a *app) (store.Store, error) {
	pool, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return store.NewMemory(cfg.Database.HistoryLimit), nil
	}
	a.closers = append(a.closers, pool.Close)

	if err := store.Migrate(cfg.Database.URL, logger); err != nil {
		return nil, err
	}
	return store.NewPostgres(pool), nil
}

func buildConversationStore(ctx context.Context, cfg config.Config, a *app) (conversation.Store, error) {
	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if client == nil {
		a.sweeper = conversation.NewMemoryStore()
		return a.sweeper, nil
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	return conversation.NewRedisStore(client.Client), nil
}

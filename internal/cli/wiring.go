package cli

import (
	"context"
	"errors"
	"time"

	"brainquest/internal/app"
	"brainquest/internal/config"
	"brainquest/internal/domain"
	"brainquest/internal/infra/api"
	"brainquest/internal/infra/file"
	"brainquest/internal/infra/memory"
	redisstore "brainquest/internal/infra/redis"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// topicCache is a TopicSource that can be told to reload.
type topicCache interface {
	app.TopicSource
	Invalidate(ctx context.Context) error
}

// deps holds the collaborators every command is built from.
type deps struct {
	cfg      config.Config
	client   *api.Client
	topics   topicCache
	store    app.TokenStore
	redis    *redis.Client
	activity *app.Activity
}

func buildDeps(ctx context.Context, cfg config.Config) *deps {
	d := &deps{cfg: cfg}

	d.client = api.NewClient(cfg.API.URL)
	d.client.SetTimeout(config.TTLDuration(cfg.API.Timeout, api.DefaultTimeout))

	if cfg.Redis.Addr != "" {
		d.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := d.redis.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, using in-process caches")
			_ = d.redis.Close()
			d.redis = nil
		}
	}

	topicsTTL := config.TTLDuration(cfg.Topics.TTL, 5*time.Minute)
	if d.redis != nil {
		d.topics = redisstore.NewTopicCache(d.redis, d.client, topicsTTL)
	} else {
		d.topics = memory.NewTopicCache(d.client, topicsTTL)
	}

	d.store = openTokenStore(cfg, d.redis)
	if token, err := d.store.Get(ctx, app.AuthTokenKey); err == nil {
		d.client.SetToken(token)
	}

	d.activity = app.NewActivity(clockwork.NewRealClock(),
		config.TTLDuration(cfg.API.SlowThreshold, app.DefaultSlowThreshold),
		app.DefaultRecoveredLinger,
		d.reportActivity)
	return d
}

// openTokenStore picks the configured backend and falls back to memory when it
// cannot be initialised.
func openTokenStore(cfg config.Config, client *redis.Client) app.TokenStore {
	switch cfg.Storage.Backend {
	case "memory":
		return memory.NewTokenStore()
	case "redis":
		if client == nil {
			log.Warn().Msg("redis token store requested without a reachable redis, falling back to memory")
			return memory.NewTokenStore()
		}
		return redisstore.NewTokenStore(client, config.TTLDuration(cfg.Redis.TTL, 0))
	}

	path := cfg.Storage.Path
	if path == "" {
		var err error
		if path, err = file.DefaultPath(); err != nil {
			log.Warn().Err(err).Msg("no config dir, falling back to memory token store")
			return memory.NewTokenStore()
		}
	}
	store, err := file.NewTokenStore(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("file token store unavailable, falling back to memory")
		return memory.NewTokenStore()
	}
	return store
}

func (d *deps) reportActivity() {
	switch {
	case d.activity.Slow():
		log.Warn().Msg("the server is taking longer than usual, still waiting")
	case d.activity.Recovered():
		log.Info().Msg("operation succeeded")
	}
}

func (d *deps) close() {
	if d.redis != nil {
		_ = d.redis.Close()
	}
	d.activity.Stop()
}

func (d *deps) lobby() *app.Lobby {
	return app.NewLobby(d.topics, d.activity)
}

func (d *deps) leaderboard() *app.Leaderboard {
	return app.NewLeaderboard(d.client, d.activity)
}

func (d *deps) adminGate() *app.AdminGate {
	return app.NewAdminGate(d.client, d.store, d.activity)
}

// userMessage turns an error into the line shown to the player.
func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Incorrect username or password."
	case errors.Is(err, domain.ErrUnauthenticated):
		return "You are not logged in."
	case errors.Is(err, domain.ErrInvalidParams):
		return "The link you followed is broken."
	}
	return err.Error()
}

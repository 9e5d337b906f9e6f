// Package app wires the stores, caches and sinks shared by the server and
// the CLI.
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/bilgisen/zenstudio/internal/api"
	"github.com/bilgisen/zenstudio/internal/articles"
	"github.com/bilgisen/zenstudio/internal/cache"
	"github.com/bilgisen/zenstudio/internal/checklist"
	"github.com/bilgisen/zenstudio/internal/config"
	"github.com/bilgisen/zenstudio/internal/events"
	"github.com/bilgisen/zenstudio/internal/export"
	"github.com/bilgisen/zenstudio/internal/logger"
	"github.com/bilgisen/zenstudio/internal/posts"
	"github.com/bilgisen/zenstudio/internal/projectconfig"
	"github.com/bilgisen/zenstudio/internal/sink"
	"github.com/bilgisen/zenstudio/internal/storage"
)

// App holds the wired collaborators.
type App struct {
	Config    *config.Config
	Bus       *events.Bus
	Cache     cache.Store
	Projects  *projectconfig.Store
	Schedule  *posts.Store
	Articles  *articles.Index
	Checklist *checklist.Store
	// Sink is nil unless an upload target is configured.
	Sink sink.Sink

	log zerolog.Logger
}

// New builds the application from cfg. The logger must be initialised first.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.Component("app")
	fsys := storage.OS{}
	layout := storage.Layout{DataRoot: cfg.DataRoot}
	bus := events.NewBus()

	var kv cache.Store
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		kv = client
		log.Info().Msg("ephemeral checklists stored in redis")
	} else {
		kv = cache.NewMemoryStore(cfg.RedisPrefix)
	}

	a := &App{
		Config:    cfg,
		Bus:       bus,
		Cache:     kv,
		Projects:  projectconfig.NewStore(fsys, cfg.AppRoot, bus),
		Schedule:  posts.NewStore(fsys, layout, bus),
		Articles:  articles.NewIndex(fsys, layout, bus),
		Checklist: checklist.NewStore(fsys, layout, kv, bus),
		log:       log,
	}

	switch {
	case cfg.S3.Bucket != "":
		s3, err := sink.NewS3(ctx, sink.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			Bucket:    cfg.S3.Bucket,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Region:    cfg.S3.Region,
			Prefix:    cfg.S3.Prefix,
		})
		if err != nil {
			_ = kv.Close()
			return nil, err
		}
		a.Sink = s3
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("export uploads go to s3")
	case cfg.Webhook.URL != "":
		a.Sink = sink.NewWebhook(cfg.Webhook.URL, cfg.Webhook.Token)
		log.Info().Str("url", cfg.Webhook.URL).Msg("export uploads go to webhook")
	}

	bus.Subscribe(func(e events.Event) {
		log.Debug().
			Str("event", string(e.Kind)).
			Str("project", e.ProjectPath).
			Str("id", e.ID).
			Msg("state changed")
	})
	return a, nil
}

// LocalSink returns a sink writing into dir.
func LocalSink(dir string) sink.Sink {
	return sink.NewLocal(storage.OS{}, filepath.Clean(dir))
}

// Calendar returns the calendar options from the config.
func (a *App) Calendar() export.CalendarOptions {
	return export.CalendarOptions{
		Name:     a.Config.Calendar.Name,
		Timezone: a.Config.Calendar.Timezone,
	}
}

// Handlers builds the HTTP handlers over the wired stores.
func (a *App) Handlers() *api.Handlers {
	return api.NewHandlers(api.Deps{
		Projects:  a.Projects,
		Schedule:  a.Schedule,
		Articles:  a.Articles,
		Checklist: a.Checklist,
		Sink:      a.Sink,
		Calendar:  a.Calendar(),
	})
}

func (a *App) Close() error {
	if err := a.Cache.Close(); err != nil {
		a.log.Error().Err(err).Msg("error closing cache")
		return err
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/botmirror/botmirror/internal/chatwoot"
	"github.com/botmirror/botmirror/internal/config"
	"github.com/botmirror/botmirror/internal/handlers"
	"github.com/botmirror/botmirror/internal/logger"
	"github.com/botmirror/botmirror/internal/pipeline"
	"github.com/botmirror/botmirror/internal/queue"
	"github.com/botmirror/botmirror/internal/relay"
	"github.com/botmirror/botmirror/internal/resolver"
	"github.com/botmirror/botmirror/internal/server"
	"github.com/botmirror/botmirror/internal/version"
)

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideChatwootClient(log *slog.Logger, cfg config.Config) (*chatwoot.Client, error) {
	return chatwoot.New(log, chatwoot.Config{
		Account:  cfg.Chatwoot.Account,
		Token:    cfg.Chatwoot.Token,
		Endpoint: cfg.Chatwoot.Endpoint,
		Timeout:  cfg.Chatwoot.Timeout(),
	})
}

func provideRelay(log *slog.Logger, cfg config.Config) (*relay.Relay, error) {
	return relay.New(log, cfg.Media.Dir, 0)
}

func provideQueue(log *slog.Logger, cfg config.Config) *queue.Queue {
	return queue.New(log, cfg.Queue.Interval())
}

func provideResolver(log *slog.Logger, client *chatwoot.Client, cfg config.Config) *resolver.Resolver {
	return resolver.New(log, client, cfg.Chatwoot.InboxName)
}

func providePipeline(log *slog.Logger, q *queue.Queue, res *resolver.Resolver, rel *relay.Relay, client *chatwoot.Client, cfg config.Config) *pipeline.Pipeline {
	return pipeline.New(log, q, res, rel, client, pipeline.Config{
		MediaBaseURL:  cfg.Media.BaseURL,
		DownloadToken: cfg.Media.DownloadToken,
	})
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideMediaHandler(rel *relay.Relay) *handlers.MediaHandler {
	return handlers.NewMediaHandler(rel.Dir())
}

type serverParams struct {
	fx.In

	Logger         *slog.Logger
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.New(params.Logger, params.Config.Server.Addr, params.ServerHandlers...)
}

func startQueue(lc fx.Lifecycle, q *queue.Queue) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			q.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			q.Stop()
			return nil
		},
	})
}

func startServer(lc fx.Lifecycle, log *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	fmt.Printf("Starting botmirror %s\n", version.GetInfo())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}

func main() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,

			provideChatwootClient,
			provideRelay,
			provideQueue,
			provideResolver,
			providePipeline,

			provideServerHandler(handlers.NewPingHandler),
			provideServerHandler(handlers.NewEventsHandler),
			provideServerHandler(provideMediaHandler),

			provideServer,
		),
		fx.Invoke(
			startQueue,
			startServer,
		),
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log.With(slog.String("component", "fx"))}
		}),
	).Run()
}

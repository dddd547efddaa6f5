// Package container wires the application together with uber-go/fx
package container

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	chatapp "github.com/larderapp/larder/internal/application/chat"
	"github.com/larderapp/larder/internal/application/ingest"
	recipeapp "github.com/larderapp/larder/internal/application/recipe"
	"github.com/larderapp/larder/internal/infrastructure/ai/openai"
	"github.com/larderapp/larder/internal/infrastructure/config"
	"github.com/larderapp/larder/internal/infrastructure/fetch"
	"github.com/larderapp/larder/internal/infrastructure/http/handlers"
	"github.com/larderapp/larder/internal/infrastructure/http/server"
	gormrepo "github.com/larderapp/larder/internal/infrastructure/persistence/gorm"
	"github.com/larderapp/larder/internal/infrastructure/persistence/sqlite"
	"github.com/larderapp/larder/internal/ports/inbound"
	"github.com/larderapp/larder/internal/ports/outbound"
	"github.com/larderapp/larder/pkg/logger"
)

// New builds the fx application
func New(configPath string) *fx.App {
	return fx.New(
		fx.Provide(
			func() (*config.Config, error) { return config.Load(configPath) },
			newLogger,
			newDatabase,
			fx.Annotate(gormrepo.NewRecipeRepository, fx.As(new(outbound.RecipeRepository))),
			fx.Annotate(gormrepo.NewChatRepository, fx.As(new(outbound.ChatRepository))),
			newCompletionClient,
			newURLFetcher,
			handlers.NewProgressBroker,
			fx.Annotate(brokerAsNotifier, fx.As(new(outbound.ProgressNotifier))),
			fx.Annotate(recipeapp.NewService, fx.As(new(inbound.RecipeService))),
			fx.Annotate(ingest.NewService, fx.As(new(inbound.ImportService))),
			fx.Annotate(chatapp.NewService, fx.As(new(inbound.ChatService))),
			handlers.NewRecipeHandlers,
			newImportHandlers,
			handlers.NewChatHandlers,
			handlers.NewProgressHandler,
			newServer,
		),
		fx.Invoke(registerServer),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		Development: cfg.IsDevelopment(),
	})
}

func newDatabase(cfg *config.Config) (*gorm.DB, error) {
	return sqlite.SetupDatabase(
		cfg.Database.Path,
		sqlite.ParseLogLevel(cfg.Database.LogLevel),
		cfg.Database.AutoMigrate,
	)
}

func newCompletionClient(cfg *config.Config, log *zap.Logger) outbound.CompletionClient {
	return openai.NewClient(cfg.AI, log)
}

func newURLFetcher(cfg *config.Config) outbound.URLFetcher {
	return fetch.NewURLFetcher(cfg.Import)
}

func brokerAsNotifier(b *handlers.ProgressBroker) *handlers.ProgressBroker {
	return b
}

func newImportHandlers(imports inbound.ImportService, cfg *config.Config, log *zap.Logger) *handlers.ImportHandlers {
	return handlers.NewImportHandlers(imports, cfg.Import, log)
}

func newServer(
	cfg *config.Config,
	log *zap.Logger,
	recipes *handlers.RecipeHandlers,
	imports *handlers.ImportHandlers,
	chat *handlers.ChatHandlers,
	progress *handlers.ProgressHandler,
) *server.Server {
	return server.NewServer(cfg, log, server.Handlers{
		Recipes:  recipes,
		Imports:  imports,
		Chat:     chat,
		Progress: progress,
	})
}

func registerServer(lc fx.Lifecycle, srv *server.Server, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					log.Fatal("HTTP server exited", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

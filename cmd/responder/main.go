package main

import (
	"context"
	"database/sql"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	glog "github.com/goliatone/go-logger/glog"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"

	"github.com/goliatone/go-responder/core"
	"github.com/goliatone/go-responder/dispatch"
	"github.com/goliatone/go-responder/inspect"
	respondermigrations "github.com/goliatone/go-responder/migrations"
	"github.com/goliatone/go-responder/policy"
	"github.com/goliatone/go-responder/providers/hubspot"
	"github.com/goliatone/go-responder/server"
	sqlstore "github.com/goliatone/go-responder/store/sql"
	"github.com/goliatone/go-responder/transport"
	"github.com/goliatone/go-responder/webhooks"
)

const (
	purgeInterval   = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	_, logger := glog.Resolve("responder", nil, nil)
	logger = glog.Ensure(logger)

	loader := newEnvConfigLoader()
	cfg, err := core.NewCfgxConfigProvider(loader).Load(ctx, core.DefaultConfig())
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	registry := transport.NewDefaultRegistry()
	adapter, ok := registry.Get(transport.KindREST)
	if !ok {
		logger.Error("rest transport adapter is not registered")
		os.Exit(1)
	}

	hub := hubspot.New(hubspot.Config{
		BaseURL:     cfg.BaseURL,
		AccessToken: cfg.AccessToken,
	}, adapter)

	recorder := core.ActionRecorder(core.NopActionRecorder{})
	contacts := core.ContactClient(hub)
	var persistenceClient *persistence.Client
	if dsn := strings.TrimSpace(os.Getenv(envPrefix + "DB_DSN")); dsn != "" {
		client, err := openPersistence(ctx, dsn)
		if err != nil {
			logger.Error("failed to open persistence", "error", err)
			os.Exit(1)
		}
		persistenceClient = client
		defer persistenceClient.Close()

		factory, err := sqlstore.NewRepositoryFactoryFromPersistence(persistenceClient)
		if err != nil {
			logger.Error("failed to build stores", "error", err)
			os.Exit(1)
		}
		recorder = factory.ActionStore()

		linked, err := sqlstore.NewLinkedContactClient(hub, factory.ContactLinkStore(), logger)
		if err != nil {
			logger.Error("failed to wire contact link client", "error", err)
			os.Exit(1)
		}
		contacts = linked
		logger.Info("persistence enabled", "driver", dbDriver())
	}

	inspector := inspect.NewInspector(hub, cfg.OwnAppID, cfg.SenderActorID)
	replyPolicy := policy.NewKeywordPolicy(cfg.CTAURL)
	dispatcher := dispatch.NewDispatcher(hub, contacts, cfg.ReviewMode())

	svc, err := core.NewService(cfg,
		core.WithLogger(logger),
		core.WithThreadInspector(inspector),
		core.WithReplyPolicy(replyPolicy),
		core.WithActionDispatcher(dispatcher),
		core.WithConversationClient(hub),
		core.WithContactClient(contacts),
		core.WithActionRecorder(recorder),
	)
	if err != nil {
		logger.Error("failed to build responder service", "error", err)
		os.Exit(1)
	}

	template := webhookTemplate(cfg)
	processor := webhooks.NewProcessor(template.Verifier, svc)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := server.NewWebhookHandler(processor, logger)
	server.SetupRoutes(router, handler, server.RouterConfig{
		WebhookPath: cfg.Server.WebhookPath,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	purgeCtx, stopPurge := context.WithCancel(ctx)
	go runPurgeLoop(purgeCtx, svc, logger)

	go func() {
		logger.Info("responder listening",
			"addr", cfg.Server.ListenAddr,
			"webhook_path", cfg.Server.WebhookPath,
			"mode", cfg.Mode,
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	stopPurge()

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

func webhookTemplate(cfg core.Config) hubspot.WebhookTemplate {
	if secret := strings.TrimSpace(os.Getenv(envPrefix + "APP_SECRET")); secret != "" {
		return hubspot.NewSignatureWebhookTemplate(secret)
	}
	return hubspot.NewWebhookTemplate(cfg.Server.VerifyToken)
}

func runPurgeLoop(ctx context.Context, svc *core.Service, logger core.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruned, err := svc.RunPurge(ctx)
			if err != nil {
				logger.Error("guard purge failed", "error", err)
				continue
			}
			if pruned > 0 {
				logger.Info("guard purge completed", "pruned", pruned)
			}
		}
	}
}

func dbDriver() string {
	driver := strings.TrimSpace(os.Getenv(envPrefix + "DB_DRIVER"))
	if driver == "" {
		return "postgres"
	}
	return driver
}

type persistenceConfig struct {
	driver string
	server string
}

func (c persistenceConfig) GetDebug() bool                { return false }
func (c persistenceConfig) GetDriver() string             { return c.driver }
func (c persistenceConfig) GetServer() string             { return c.server }
func (c persistenceConfig) GetPingTimeout() time.Duration { return 5 * time.Second }
func (c persistenceConfig) GetOtelIdentifier() string     { return "go-responder" }

func openPersistence(ctx context.Context, dsn string) (*persistence.Client, error) {
	driver := dbDriver()
	var dialect schema.Dialect
	var migrationDialect string
	switch driver {
	case "sqlite3":
		dialect = sqlitedialect.New()
		migrationDialect = respondermigrations.DialectSQLite
	default:
		driver = "postgres"
		dialect = pgdialect.New()
		migrationDialect = respondermigrations.DialectPostgres
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	client, err := persistence.New(persistenceConfig{driver: driver, server: dsn}, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	_, err = respondermigrations.Register(ctx, func(_ context.Context, registered string, _ string, fsys fs.FS) error {
		if registered != migrationDialect {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, respondermigrations.WithValidationTargets(migrationDialect))
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

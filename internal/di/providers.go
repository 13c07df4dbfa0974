package di

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/registrack/backoffice-gateway/internal/app"
	"github.com/registrack/backoffice-gateway/internal/config"
	"github.com/registrack/backoffice-gateway/internal/database"
	"github.com/registrack/backoffice-gateway/internal/health"
	"github.com/registrack/backoffice-gateway/internal/http/handler"
	"github.com/registrack/backoffice-gateway/internal/http/router"
	"github.com/registrack/backoffice-gateway/internal/normalize"
	"github.com/registrack/backoffice-gateway/internal/observability"
	"github.com/registrack/backoffice-gateway/internal/repository"
	"github.com/registrack/backoffice-gateway/internal/security"
	"github.com/registrack/backoffice-gateway/internal/service"
	"github.com/registrack/backoffice-gateway/internal/upstream"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewAuditRepository,
)

var SecuritySet = wire.NewSet(
	provideJWTManager,
)

var ServiceSet = wire.NewSet(
	provideSnapshotCacheStore,
	provideAccessService,
	provideRecordService,
	provideAuditService,
	provideUpstreamClient,
	normalize.NewBuilder,
	wire.Bind(new(service.AccessResolverInterface), new(*service.AccessService)),
	wire.Bind(new(service.RecordServiceInterface), new(*service.RecordService)),
	wire.Bind(new(service.RawFetcher), new(*upstream.Client)),
)

var HTTPSet = wire.NewSet(
	handler.NewAccessHandler,
	handler.NewRecordsHandler,
	provideAuditHandler,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(provideApp)

// MigrationRunner applies schema migrations and prunes expired audit rows.
type MigrationRunner struct {
	cfg *config.Config
	db  *gorm.DB
}

func NewMigrationRunner(cfg *config.Config, db *gorm.DB) *MigrationRunner {
	return &MigrationRunner{cfg: cfg, db: db}
}

func (m *MigrationRunner) Run() error {
	if err := database.Migrate(m.db); err != nil {
		return err
	}
	purged, err := database.PurgeExpiredDecisions(m.db, m.cfg.AuditRetention)
	if err != nil {
		return err
	}
	fmt.Printf("migration complete, purged %d expired audit rows\n", purged)
	return nil
}

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideOpenDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

func provideRuntimeDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func provideRedisClient(cfg *config.Config) redis.UniversalClient {
	if !cfg.RedisEnabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func provideJWTManager(cfg *config.Config) *security.JWTManager {
	return security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTAccessSecret)
}

func provideSnapshotCacheStore(cfg *config.Config, redisClient redis.UniversalClient) service.SnapshotCacheStore {
	if cfg.RedisEnabled && redisClient != nil {
		return service.NewRedisSnapshotCacheStore(redisClient, "backoffice")
	}
	return service.NewInMemorySnapshotCacheStore()
}

func provideAccessService(cfg *config.Config, cacheStore service.SnapshotCacheStore) *service.AccessService {
	return service.NewAccessService(cacheStore, cfg.AccessSnapshotTTL)
}

func provideUpstreamClient(cfg *config.Config) (*upstream.Client, error) {
	return upstream.NewClient(cfg)
}

func provideRecordService(cfg *config.Config, fetcher service.RawFetcher, builder *normalize.Builder, cacheStore service.SnapshotCacheStore) *service.RecordService {
	return service.NewRecordService(fetcher, builder, cacheStore, cfg.RecordCacheTTL)
}

func provideAuditService(cfg *config.Config, repo repository.AuditRepository, logger *slog.Logger) service.AuditServiceInterface {
	if !cfg.AuditEnabled {
		return nil
	}
	return service.NewAuditService(repo, logger, cfg.AuditBufferSize)
}

func provideAuditHandler(cfg *config.Config, auditSvc service.AuditServiceInterface) *handler.AuditHandler {
	return handler.NewAuditHandler(auditSvc, cfg.AdminAuditPageSz)
}

func provideRouterDependencies(
	accessHandler *handler.AccessHandler,
	recordsHandler *handler.RecordsHandler,
	auditHandler *handler.AuditHandler,
	jwt *security.JWTManager,
	accessResolver service.AccessResolverInterface,
	auditSvc service.AuditServiceInterface,
	readiness *health.ProbeRunner,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		AccessHandler:  accessHandler,
		RecordsHandler: recordsHandler,
		AuditHandler:   auditHandler,
		JWTManager:     jwt,
		AccessResolver: accessResolver,
		AuditService:   auditSvc,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		APIRateLimit:   cfg.APIRateLimitPerMin,
		Readiness:      readiness,
		EnableOTelHTTP: cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient) *health.ProbeRunner {
	checkers := make([]health.Checker, 0, 3)
	if c := health.NewDBChecker(db); c != nil {
		checkers = append(checkers, c)
	}
	if cfg.RedisEnabled {
		if c := health.NewRedisChecker(redisClient); c != nil {
			checkers = append(checkers, c)
		}
	}
	if c := health.NewUpstreamChecker(cfg.UpstreamBaseURL); c != nil {
		checkers = append(checkers, c)
	}
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, cfg.ServerStartGracePeriod, checkers...)
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	auditSvc service.AuditServiceInterface,
) *app.App {
	return app.New(cfg, logger, server, runtime, db, redisClient, auditSvc)
}

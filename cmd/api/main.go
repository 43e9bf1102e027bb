package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/dental-clinic/internal/audit"
	"github.com/BruksfildServices01/dental-clinic/internal/config"
	dbpkg "github.com/BruksfildServices01/dental-clinic/internal/db"
	domain "github.com/BruksfildServices01/dental-clinic/internal/domain/appointment"
	"github.com/BruksfildServices01/dental-clinic/internal/handlers"
	"github.com/BruksfildServices01/dental-clinic/internal/infra/cache"
	infraRepo "github.com/BruksfildServices01/dental-clinic/internal/infra/repository"
	"github.com/BruksfildServices01/dental-clinic/internal/logger"
	"github.com/BruksfildServices01/dental-clinic/internal/notify"
	"github.com/BruksfildServices01/dental-clinic/internal/observability/metrics"
	"github.com/BruksfildServices01/dental-clinic/internal/routes"
	ucAppointment "github.com/BruksfildServices01/dental-clinic/internal/usecase/appointment"
)

const shutdownTimeout = 15 * time.Second

func main() {

	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	// ======================================================
	// STORE
	// ======================================================
	var (
		repo       domain.Repository
		users      handlers.UserStore
		auditStore audit.Store
	)

	if cfg.UseMemoryStore() {
		memRepo := infraRepo.NewAppointmentMemoryRepository()
		memUsers := infraRepo.NewUserMemoryRepository()
		if err := infraRepo.SeedDemo(memRepo, memUsers); err != nil {
			log.Fatal("failed to seed memory store", zap.Error(err))
		}
		repo, users, auditStore = memRepo, memUsers, audit.NewMemoryStore()
		log.Warn("using in-memory store; data is lost on restart")
	} else {
		db, err := dbpkg.NewDB(cfg, log)
		if err != nil {
			log.Fatal("failed to open database", zap.Error(err))
		}
		repo = infraRepo.NewAppointmentGormRepository(db)
		users = infraRepo.NewUserGormRepository(db)
		auditStore = audit.NewGormStore(db)
	}

	// ======================================================
	// SLOT CATALOG (optional Redis cache)
	// ======================================================
	var catalog domain.Catalog = repo
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis unreachable, slot cache will fall back on every miss", zap.Error(err))
		}
		cancel()

		catalog = cache.NewSlotCatalog(repo, rdb, cfg.SlotCacheTTL, log.Named("cache"))
	}

	// ======================================================
	// DISPATCHERS
	// ======================================================
	clinicMetrics := metrics.NewClinicMetrics(nil)

	sender, err := notify.NewEmailSender(cfg, log.Named("email"))
	if err != nil {
		log.Fatal("failed to build email sender", zap.Error(err))
	}
	notifier := notify.NewDispatcher(sender, log.Named("notify"), clinicMetrics, cfg.NotifyQueueSize)
	auditDispatcher := audit.NewDispatcher(auditStore, log.Named("audit"), cfg.AuditQueueSize)

	// ======================================================
	// HTTP
	// ======================================================
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		Config: cfg,
		Log:    log.Named("http"),
		Appointments: ucAppointment.Deps{
			Repo:     repo,
			Catalog:  catalog,
			Audit:    auditDispatcher,
			Notifier: notifier,
			Metrics:  clinicMetrics,
			Log:      log.Named("appointments"),
		},
		Users:     users,
		AuditLogs: auditStore,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server running", zap.String("addr", cfg.Addr()), zap.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// ======================================================
	// SHUTDOWN
	// ======================================================
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	if err := notifier.Close(ctx); err != nil {
		log.Warn("notification queue not drained", zap.Error(err))
	}
	if err := auditDispatcher.Close(ctx); err != nil {
		log.Warn("audit queue not drained", zap.Error(err))
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/99minutos/user-admin/internal/api"
	"github.com/99minutos/user-admin/internal/api/metrics"
	"github.com/99minutos/user-admin/internal/core/ports"
	"github.com/99minutos/user-admin/internal/core/service"
	"github.com/99minutos/user-admin/internal/infrastructure/config"
	"github.com/99minutos/user-admin/internal/infrastructure/db/redis"
	"github.com/99minutos/user-admin/internal/infrastructure/http/handlers"
	"github.com/99minutos/user-admin/internal/infrastructure/queue"
	"github.com/99minutos/user-admin/pkg/logger"
)

// @title        User Admin API
// @version      1.0
// @description  Account and role administration with session login.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "user-admin: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	envErr := godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "user-admin",
	})
	if envErr != nil {
		log.Debug().Msg("no .env file found; relying on existing environment")
	}

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	defer st.close()
	log.Info().Str("driver", cfg.Store.Driver).Msg("store ready")

	readiness := map[string]handlers.Pinger{"store": st.ping}

	var revoker ports.TokenRevoker
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		revoker = redis.NewTokenRevocationList(rdb)
		readiness["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	} else {
		log.Warn().Msg("REDIS_ADDR not set; logged-out tokens stay valid until they expire")
	}

	// --- Services ---
	auditSvc := service.NewAuditService(st.audit, logger.Component("audit"))
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, auditSvc, metrics.AuditEventsDroppedTotal, logger.Component("audit"))
	metrics.RegisterAuditQueueDepth(dispatcher.Len)

	hasher := service.NewBcryptHasher(cfg.BcryptCost)
	roles := service.NewRoleService(st.roles, logger.Component("roles"))
	users := service.NewUserService(st.users, roles, hasher, dispatcher, logger.Component("users"))
	auth := service.NewAuthService(users, hasher, revoker, cfg.JWTSecret, cfg.JWTTTL, logger.Component("auth"))

	if err := service.Bootstrap(ctx, roles, users, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword, log); err != nil {
		return err
	}

	e, err := api.NewRouter(api.Deps{
		Users:         users,
		Roles:         roles,
		Auth:          auth,
		Revoker:       revoker,
		JWTSecret:     cfg.JWTSecret,
		TokenTTL:      cfg.JWTTTL,
		SecureCookies: !cfg.IsDevelopment(),
		Readiness:     readiness,
		Log:           logger.Component("http"),
	})
	if err != nil {
		return err
	}

	log.Info().Str("addr", cfg.HTTPAddress()).Msg("user-admin listening")
	return serve(ctx, e, cfg.HTTPAddress(), dispatcher, shutdownTimeout, log)
}

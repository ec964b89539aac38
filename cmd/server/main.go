// Copyright 2026 The Formtrust Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"

	"github.com/formtrust/formtrust/internal/accesstoken"
	"github.com/formtrust/formtrust/internal/audit"
	"github.com/formtrust/formtrust/internal/authz"
	"github.com/formtrust/formtrust/internal/cache"
	"github.com/formtrust/formtrust/internal/config"
	"github.com/formtrust/formtrust/internal/form"
	"github.com/formtrust/formtrust/internal/observability/logger"
	"github.com/formtrust/formtrust/internal/observability/metrics"
	"github.com/formtrust/formtrust/internal/observability/tracing"
	"github.com/formtrust/formtrust/internal/sharing"
	"github.com/formtrust/formtrust/internal/store/postgres"
	"github.com/formtrust/formtrust/internal/submission"
	transportHTTP "github.com/formtrust/formtrust/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
	slog.Info("starting formtrust authorization service")

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx := context.Background()

	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   1.0,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
	}
	defer tracer.Shutdown(ctx)

	meter, err := metrics.New(ctx, metrics.Config{
		Enabled: cfg.Observability.OTELEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize meter", logger.Error(err))
	}

	var authzDecisions, tokensIssued metric.Int64Counter
	if meter != nil {
		if authzDecisions, err = meter.AuthzDecisions(); err != nil {
			slog.Error("failed to create authz decisions counter", logger.Error(err))
		}
		if tokensIssued, err = meter.TokensIssued(); err != nil {
			slog.Error("failed to create tokens issued counter", logger.Error(err))
		}
	}

	db, err := postgres.New(ctx, postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		slog.Error("failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to database")

	submissionRepo := postgres.NewSubmissionRepository(db)
	formRepo := postgres.NewFormRepository(db)

	// Permission caches: in-process by default, Redis when replicas must
	// share one cache.
	var (
		userStore       cache.Store[authz.AuthorizationData]
		submissionStore cache.Store[submission.AccessData]
		formStore       cache.Store[form.AccessData]
	)
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			slog.Error("failed to connect to redis", logger.Error(err))
			os.Exit(1)
		}
		userStore = cache.NewRedisStore[authz.AuthorizationData](client, "authz")
		submissionStore = cache.NewRedisStore[submission.AccessData](client, "submission-access")
		formStore = cache.NewRedisStore[form.AccessData](client, "form-access")
		slog.Info("using redis permission cache")
	} else {
		userStore = cache.NewMemoryStore[authz.AuthorizationData]()
		submissionStore = cache.NewMemoryStore[submission.AccessData]()
		formStore = cache.NewMemoryStore[form.AccessData]()
	}

	auditLogger := audit.NewSlogLogger()

	userStrategy := authz.NewUserAccessStrategy(userStore, cfg.Cache.AuthorizationTTL)
	authzService := authz.NewService(userStrategy, auditLogger, authzDecisions)

	tokenService, err := accesstoken.NewService(accesstoken.Config{
		SigningSecret: []byte(cfg.AccessToken.SigningSecret),
		MaxTTL:        cfg.AccessToken.MaxTTL,
	})
	if err != nil {
		slog.Error("failed to initialize access token service", logger.Error(err))
		os.Exit(1)
	}

	submissionAccess := submission.NewAccessStrategy(submissionRepo, submissionStore, cfg.Cache.AccessDataTTL)
	formAccess := form.NewAccessStrategy(formRepo, formStore, cfg.Cache.AccessDataTTL)

	sharingService := sharing.NewService(authzService, tokenService, submissionRepo, auditLogger, tokensIssued)

	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	handler := transportHTTP.NewHandler(
		sharingService,
		submissionRepo,
		submissionAccess,
		formRepo,
		formAccess,
		auditLogger,
	)
	router := transportHTTP.NewRouter(handler, rateLimiter)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"))
		slog.Info(fmt.Sprintf("listening on %s", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", logger.Error(err))
	}

	slog.Info("server stopped")
}

func runMigrate(cfg *config.Config) error {
	ctx := context.Background()
	db, err := postgres.New(ctx, postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Println("Applying initial schema...")
	if err := db.Migrate(ctx, postgres.InitialSchema); err != nil {
		return err
	}
	fmt.Println("Migration successful.")
	return nil
}

// Package main starts the development backend the admin console talks
// to, setting up configuration, logging, the database, repositories,
// services and handlers.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/ddp-ipb/ddp-admin/internal/config"
	"github.com/ddp-ipb/ddp-admin/internal/db"
	"github.com/ddp-ipb/ddp-admin/internal/logger"
	"github.com/ddp-ipb/ddp-admin/internal/repository"
	"github.com/ddp-ipb/ddp-admin/internal/server/handler/http"
	"github.com/ddp-ipb/ddp-admin/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	options, err := config.Parse()
	if err != nil {
		panic(err)
	}

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx := context.Background()

	postgresDB, err := db.InitPostgres(ctx, options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Contact submissions expire after 90 days.
	db.StartContactCleaner(ctx, postgresDB,
		time.Hour,
		90*24*time.Hour,
		zapLogger,
	)

	userRepo := repository.NewUserRepository(postgresDB)
	tokenRepo := repository.NewTokenRepository(postgresDB)
	recordRepo := repository.NewRecordRepository(postgresDB)

	authService := service.NewAuthService(userRepo, tokenRepo)
	resourceService := service.NewResourceService(recordRepo, userRepo)

	if err := authService.EnsureSuperAdmin(ctx, "Super Admin", options.AdminEmail, options.AdminPassword); err != nil {
		zapLogger.Fatal("cannot seed super admin", zap.Error(err))
	}

	authHandler := http.NewAuthHandler(authService, zapLogger)
	resourceHandler := http.NewResourceHandler(resourceService, zapLogger)

	router := http.NewRouter(authHandler, resourceHandler, authService, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}

package main

import (
	"net/http"
	"time"

	"sortify/internal/config"
	"sortify/internal/handlers"
	"sortify/internal/middleware"
	"sortify/internal/repo"
	"sortify/internal/service"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	userService := service.NewUserService(repo.NewUserRepository(gormDB))
	projectService := service.NewProjectService(gormDB, sugar)
	membershipService := service.NewMembershipService(gormDB, sugar)
	fileService := service.NewFileService(gormDB, sugar)
	invitationService := service.NewInvitationService(gormDB, time.Duration(cfg.InviteTTLHours)*time.Hour, sugar)

	h := handlers.NewHandler(userService, projectService, membershipService, fileService, invitationService, sugar, cfg)

	addr := cfg.BaseURL

	sugar.Infow(
		"Starting server",
		"addr", addr,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"UploadMaxSizeMB", cfg.UploadMaxSizeMB,
		"InviteTTLHours", cfg.InviteTTLHours,
	)

	if err := http.ListenAndServe(addr, h.Router); err != nil {
		sugar.Fatalw("Server failed", "error", err)
	}
}

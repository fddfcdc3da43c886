package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mvasilev/concord/internal/api"
	"github.com/mvasilev/concord/internal/auth"
	"github.com/mvasilev/concord/internal/config"
	"github.com/mvasilev/concord/internal/database"
	"github.com/mvasilev/concord/internal/gateway"
	redisclient "github.com/mvasilev/concord/internal/redis"
	"github.com/mvasilev/concord/internal/service"
	"github.com/mvasilev/concord/internal/snowflake"
	"github.com/mvasilev/concord/internal/storage"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// --- Infrastructure ---

	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		fatal("postgres", err)
	}
	defer pool.Close()

	rdb, err := redisclient.NewClient(cfg.RedisURL)
	if err != nil {
		fatal("redis", err)
	}
	defer rdb.Close()

	sf, err := snowflake.NewGenerator(cfg.NodeID)
	if err != nil {
		fatal("snowflake", err)
	}
	tokenSvc := auth.NewTokenService(cfg.JWTSecret)

	store, err := storage.NewObjectStore(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket)
	if err != nil {
		fatal("object storage", err)
	}

	// --- Repositories ---

	users := database.NewUserRepository(pool)
	servers := database.NewServerRepository(pool)
	channels := database.NewChannelRepository(pool)
	roles := database.NewRoleRepository(pool)
	members := database.NewMemberRepository(pool)
	messages := database.NewMessageRepository(pool)
	conversations := database.NewConversationRepository(pool)
	overrides := database.NewChannelOverrideRepository(pool)
	settings := database.NewNotificationSettingsRepository(pool)

	// --- Gateway ---

	gwManager := gateway.NewManager(tokenSvc, servers, settings, rdb)

	// --- Services ---

	perms := service.NewPermissionChecker(servers, members, roles, overrides)
	authSvc := service.NewAuthService(users, settings, tokenSvc, rdb, sf)
	serverSvc := service.NewServerService(servers, channels, members, roles, sf, gwManager, perms)
	channelSvc := service.NewChannelService(channels, members, overrides, sf, gwManager, perms)
	userSvc := service.NewUserService(users, rdb)
	messageSvc := service.NewMessageService(messages, channels, conversations, members, users, sf, gwManager, perms)
	roleSvc := service.NewRoleService(roles, members, channels, overrides, sf, gwManager, perms)
	notifySvc := service.NewNotificationService(settings, channels, conversations, members)
	uploadSvc := service.NewUploadService(servers, store, perms)

	deps := &api.Dependencies{
		Auth:          api.NewAuthHandler(authSvc),
		Servers:       api.NewServerHandler(serverSvc),
		Channels:      api.NewChannelHandler(channelSvc),
		Users:         api.NewUserHandler(userSvc),
		Messages:      api.NewMessageHandler(messageSvc),
		Roles:         api.NewRoleHandler(roleSvc),
		Notifications: api.NewNotificationHandler(notifySvc),
		Uploads:       api.NewUploadHandler(uploadSvc),
		Gateway:       gwManager,
		TokenService:  tokenSvc,
		Redis:         rdb,
		ServerRepo:    servers,
		ChannelRepo:   channels,
		RoleRepo:      roles,
		OverrideRepo:  overrides,
	}

	// --- Echo ---

	e := echo.New()
	e.HidePort = true
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	api.SetupRouter(e, deps)

	// --- Start ---

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("concord starting", "addr", cfg.ServerAddr)
		if err := e.Start(cfg.ServerAddr); err != nil && err != http.ErrServerClosed {
			fatal("server", err)
		}
	}()

	<-sigCtx.Done()
	slog.Info("shutting down")
	if err := e.Shutdown(context.Background()); err != nil {
		fatal("shutdown", err)
	}
}

func fatal(what string, err error) {
	slog.Error(what, "error", err)
	os.Exit(1)
}

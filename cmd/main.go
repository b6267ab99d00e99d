package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	httpapi "github.com/ideameet/backend/internal/api/http"
	"github.com/ideameet/backend/internal/auth"
	"github.com/ideameet/backend/internal/config"
	"github.com/ideameet/backend/internal/repository"
	"github.com/ideameet/backend/internal/repository/model"
	"github.com/ideameet/backend/internal/service"
	"github.com/ideameet/backend/lib/logger/slogpretty"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	db, err := connectDatabase(cfg.Database)
	if err != nil {
		log.Error("failed to connect database", slog.Any("error", err))
		os.Exit(1)
	}

	userRepo := repository.NewPostgresUserRepository(db)
	friendRepo := repository.NewPostgresFriendRepository(db)
	groupRepo := repository.NewPostgresGroupRepository(db)
	channelRepo := repository.NewPostgresChannelRepository(db)
	messageRepo := repository.NewPostgresMessageRepository(db)
	callRepo := repository.NewPostgresCallRepository(db)

	tokens := auth.NewTokenManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTTL,
		cfg.JWT.RefreshTTL,
	)

	presenceService := service.NewPresenceService(log, userRepo)
	authService := service.NewAuthService(
		log,
		userRepo,
		tokens,
		auth.NewGoogleOAuth(cfg.OAuth.Google.ClientID, cfg.OAuth.Google.ClientSecret, cfg.OAuth.Google.RedirectURL),
		auth.NewFacebookGraph(),
	)
	userService := service.NewUserService(log, userRepo, friendRepo, channelRepo)
	friendService := service.NewFriendService(log, userRepo, friendRepo, channelRepo)
	groupService := service.NewGroupService(log, groupRepo)
	channelService := service.NewChannelService(log, channelRepo, groupRepo, messageRepo)

	// The gateway needs the services and the services need the gateway to
	// push, so the pusher-dependent services are built last.
	var gateway *httpapi.Gateway
	pusher := service.PusherFunc(func(wsID, event string, payload any) {
		gateway.Push(wsID, event, payload)
	})
	messageService := service.NewMessageService(log, channelRepo, groupRepo, messageRepo, pusher)
	callService := service.NewCallService(log, userRepo, callRepo, pusher)
	gateway = httpapi.NewGateway(log, tokens, presenceService, callService, messageService)

	// No connection can survive a restart, so stale presence and call state
	// is wiped before the gateway starts accepting sockets.
	ctx := context.Background()
	if err := presenceService.Reset(ctx); err != nil {
		log.Error("failed to reset presence", slog.Any("error", err))
		os.Exit(1)
	}
	if err := callService.Reset(ctx); err != nil {
		log.Error("failed to reset calls", slog.Any("error", err))
		os.Exit(1)
	}

	router := httpapi.SetupRouter(tokens, cfg.HTTP.AllowedOrigins, httpapi.Controllers{
		Auth:    httpapi.NewAuthController(authService),
		User:    httpapi.NewUserController(userService),
		Friend:  httpapi.NewFriendController(friendService),
		Group:   httpapi.NewGroupController(groupService, channelService),
		Channel: httpapi.NewChannelController(channelService, messageService),
		Gateway: gateway,
	})

	log.Info("starting application", slog.String("addr", cfg.HTTP.Address))
	if err := router.Run(cfg.HTTP.Address); err != nil {
		log.Error("http server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}

func connectDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database dsn is empty")
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.FriendshipRequest{},
		&model.Friendship{},
		&model.Group{},
		&model.GroupMember{},
		&model.DirectChannel{},
		&model.DirectChannelMember{},
		&model.DirectMessage{},
		&model.GroupChannel{},
		&model.GroupMessage{},
		&model.DirectCallChannel{},
		&model.DirectCallMember{},
	)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

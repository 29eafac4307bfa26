package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"campus-chat/chat-api/internal/config"
	"campus-chat/chat-api/internal/domain/autogroup"
	"campus-chat/chat-api/internal/domain/conversation"
	"campus-chat/chat-api/internal/domain/identity"
	"campus-chat/chat-api/internal/domain/message"
	"campus-chat/chat-api/internal/domain/permission"
	"campus-chat/chat-api/internal/domain/presence"
	"campus-chat/chat-api/internal/infrastructure/auth"
	"campus-chat/chat-api/internal/infrastructure/database"
	"campus-chat/chat-api/internal/infrastructure/logger"
	"campus-chat/chat-api/internal/infrastructure/metrics"
	"campus-chat/chat-api/internal/infrastructure/records"
	conversationrepo "campus-chat/chat-api/internal/infrastructure/repository/conversation"
	identityrepo "campus-chat/chat-api/internal/infrastructure/repository/identity"
	messagerepo "campus-chat/chat-api/internal/infrastructure/repository/message"
	"campus-chat/chat-api/internal/interfaces/httpserver"
	"campus-chat/chat-api/internal/interfaces/httpserver/handlers"
	"campus-chat/chat-api/internal/interfaces/wsserver"
)

type Application struct {
	httpServer *httpserver.HttpServer
	hub        *presence.Hub
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, hub *presence.Hub, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		hub:        hub,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	go a.hub.Run(ctx)
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DBPostgresqlWriteDSN,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	identityRepository := identityrepo.NewRepository(db)
	recordsDirectory := records.NewDirectory(db)
	resolver := identity.NewResolver(identityRepository, recordsDirectory, cfg.SuperAdminEmails, log)

	perms := permission.NewEngine(cfg.ElevatedRoles)

	conversationRepository := conversationrepo.NewRepository(db)
	participantRepository := conversationrepo.NewParticipantRepository(db)
	store := conversation.NewStore(conversationRepository, participantRepository, resolver, perms, log)

	syncer := autogroup.NewSyncer(store, recordsDirectory, recordsDirectory, log)

	hub := presence.NewHub(identityRepository, cfg.HeartbeatInterval, log)
	hub.OnDropped(func(n int) { metrics.FanoutDropped.Add(float64(n)) })
	hub.OnStale(func(n int) { metrics.HeartbeatTimeouts.Add(float64(n)) })

	messageRepository := messagerepo.NewRepository(db)
	messages := message.NewService(messageRepository, store, resolver, perms, hub, cfg.EditWindow, log)

	authValidator := auth.NewValidator(cfg.JWTSecret, resolver, log)

	relay := wsserver.NewRelay(store, hub, log)
	wsHandler := wsserver.NewHandler(hub, relay, authValidator, cfg.WSSendBuffer, cfg.WSAllowedOrigins, log)

	provider := handlers.NewProvider(resolver, syncer, store, messages, log)
	httpServer := httpserver.New(cfg, log, provider, authValidator, wsHandler)

	app := NewApplication(httpServer, hub, log)
	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}

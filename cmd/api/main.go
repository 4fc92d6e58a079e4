package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"courtmate/backend/internal/config"
	"courtmate/backend/internal/domain/chat"
	"courtmate/backend/internal/domain/courts"
	"courtmate/backend/internal/domain/moderation"
	"courtmate/backend/internal/domain/profile"
	"courtmate/backend/internal/domain/room"
	"courtmate/backend/internal/feed"
	"courtmate/backend/internal/firebase"
	apihttp "courtmate/backend/internal/http"
	"courtmate/backend/internal/observability"
	"courtmate/backend/internal/rabbitmq"
	"courtmate/backend/internal/store/memory"
)

const serviceName = "courtmate-api"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	observability.InitLogger(serviceName, cfg.Env, cfg.LogLevel)

	shutdownTracing, err := observability.SetupTracing(ctx, serviceName, cfg.OTELEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("tracing init failed")
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	app, err := firebase.NewApp(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("firebase app init failed")
	}

	authClient, err := firebase.NewAuthClient(ctx, app)
	if err != nil {
		log.Fatal().Err(err).Msg("firebase auth client init failed")
	}

	// Stores
	var (
		profileStore profile.Store
		roomStore    room.Store
		messageStore chat.Store
	)
	switch cfg.StoreBackend {
	case config.StoreMemory:
		mem := memory.New()
		profileStore, roomStore, messageStore = mem.Profiles(), mem.Rooms(), mem.Messages()
		log.Warn().Msg("using in-memory store, data is lost on restart")
	default:
		fs, err := firebase.NewFirestore(ctx, app)
		if err != nil {
			log.Fatal().Err(err).Msg("firestore init failed")
		}
		defer fs.Close()
		profileStore = profile.NewRepo(fs.Client)
		roomStore = room.NewRepo(fs.Client)
		messageStore = chat.NewRepo(fs.Client)
	}

	// Live message feed: Redis fans out across instances, the hub is single-process.
	var messageFeed chat.Feed = feed.NewHub()
	if cfg.RedisURL != "" {
		rdb, err := feed.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("redis init failed")
		}
		rf := feed.NewRedisFeed(rdb)
		defer rf.Close()
		messageFeed = rf
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	log.Info().
		Str("mode", rabbitmq.PublisherMode(publisher)).
		Str("reason", rabbitmq.PublisherNoopReason(publisher)).
		Msg("report publisher ready")

	// Services
	profileSvc := profile.NewService(profileStore)
	roomSvc := room.NewService(roomStore)
	profileSvc.SetParticipantSync(roomSvc)
	chatSvc := chat.NewService(messageStore, messageFeed, roomSvc, profileSvc, moderation.NewFilter(cfg.BannedWords))
	reporter := moderation.NewReporter(publisher)

	catalog := newCatalog(ctx, cfg)
	catalog.Start(ctx)

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Cfg:        cfg,
		Verifier:   authClient,
		ProfileSvc: profileSvc,
		RoomSvc:    roomSvc,
		ChatSvc:    chatSvc,
		Reporter:   reporter,
		Catalog:    catalog,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Port).Str("project", cfg.ProjectID).Str("store", cfg.StoreBackend).Msg("API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen failed")
		}
	}()

	<-ctx.Done()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info().Msg("shutting down...")
	_ = srv.Shutdown(ctxShutdown)
}

// newCatalog wires the court catalog sources. Missing sources are skipped and
// the catalog falls back to the bundled list.
func newCatalog(ctx context.Context, cfg config.Config) *courts.Catalog {
	var sheet courts.Sheet
	if cfg.SheetsSpreadsheetID != "" {
		svc, err := firebase.NewSheetsService(ctx, cfg)
		if err != nil {
			log.Warn().Err(err).Msg("sheets unavailable, court catalog will use snapshot")
		} else {
			sheet = courts.NewSheetsSource(svc, cfg.SheetsSpreadsheetID, cfg.SheetsRange)
		}
	}

	var snapshot courts.Snapshot = courts.FileSnapshot{Path: cfg.CourtsFile, Seed: cfg.CourtsSeedFile}
	if cfg.CourtsSnapshotBucket != "" {
		st, err := firebase.NewStorageClient(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("storage unavailable, court snapshot stays on disk")
		} else {
			snapshot = courts.NewGCSSnapshot(st, cfg.CourtsSnapshotBucket, cfg.CourtsSnapshotObject)
		}
	}

	return courts.NewCatalog(sheet, snapshot, cfg.CourtsSyncInterval)
}

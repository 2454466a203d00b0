package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"churrasapp/db"
	"churrasapp/models"
	"churrasapp/routes"
	"churrasapp/utils"
)

const shutdownTimeout = 10 * time.Second

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	mongoURI := getenv("MONGODB_URI", "mongodb://127.0.0.1:27017")
	mongoDB := getenv("MONGODB_DB", "churrasapp")
	port := getenv("PORT", "3001")
	frontendURL := getenv("FRONTEND_URL", "http://localhost:3000")
	redisAddr := getenv("REDIS_ADDR", "127.0.0.1:6379")

	// Mongo, with bounded retry before giving up.
	manager := db.NewManager(db.Config{URI: mongoURI, Database: mongoDB}, logger)
	if err := manager.Connect(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("could not connect to mongodb")
	}

	// Redis backs the response cache; an outage only costs cache hits.
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", redisAddr).Msg("redis unreachable, responses will not be cached")
	}
	inv := utils.NewCacheInvalidator(rdb)

	eventRepo := models.NewMongoEventRepository(manager.Collection("events"))
	guestRepo := models.NewMongoGuestRepository(manager.Collection("guests"), eventRepo)
	itemRepo := models.NewMongoItemRepository(manager.Collection("eventitems"))

	gin.SetMode(gin.ReleaseMode)
	server := gin.New()
	routes.RegisterRoutes(server, routes.Config{AllowedOrigin: frontendURL},
		eventRepo, guestRepo, itemRepo, manager, rdb, inv, logger)

	srv := &http.Server{Addr: ":" + port, Handler: server}

	errChan := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		errChan <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		logger.Fatal().Err(err).Msg("server stopped unexpectedly")
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	// Drain in-flight requests, close the database, then force-exit if
	// anything hangs past the hard deadline.
	forceExit := time.AfterFunc(shutdownTimeout+5*time.Second, func() {
		logger.Error().Msg("shutdown deadline exceeded, forcing exit")
		os.Exit(1)
	})
	defer forceExit.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	_ = rdb.Close()
	if err := manager.Disconnect(ctx); err != nil {
		logger.Error().Err(err).Msg("mongodb disconnect")
	}
	logger.Info().Msg("bye")
}

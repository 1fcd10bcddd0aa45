package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chars3/caplink-store/auth"
	"github.com/chars3/caplink-store/config"
	"github.com/chars3/caplink-store/database"
	"github.com/chars3/caplink-store/events"
	"github.com/chars3/caplink-store/logger"
	"github.com/chars3/caplink-store/routes"
	"github.com/chars3/caplink-store/services/cart"
	"github.com/chars3/caplink-store/services/favorite"
	"github.com/chars3/caplink-store/services/order"
	"github.com/chars3/caplink-store/services/product"
	"github.com/chars3/caplink-store/services/user"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().Msg("starting application")

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("auto-migrate failed")
	}

	hub := events.NewHub(nil)
	listeners := []order.Listener{hub}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaOrderTopic))
		defer publisher.Close()
		listeners = append(listeners, publisher)
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaOrderTopic).Msg("publishing order events to kafka")
	}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiresIn)

	if zerologLevelIsDebug(cfg.LogLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := routes.NewRouter(routes.Deps{
		Users:                 user.NewService(db, tokens),
		Products:              product.NewService(db, cfg.ImportBatchSize),
		Carts:                 cart.NewService(db),
		Orders:                order.NewService(db, events.NewFanout(listeners...)),
		Favorites:             favorite.NewService(db),
		Hub:                   hub,
		Tokens:                tokens,
		AllowOrigins:          cfg.CORSAllowOrigins,
		CheckoutRatePerMinute: cfg.CheckoutRatePerMinute,
	})
	r.MaxMultipartMemory = 32 << 20

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}

func zerologLevelIsDebug(level string) bool {
	return level == "debug" || level == "trace"
}

package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coworking-reservation/internal/booking"
	"github.com/iliyamo/coworking-reservation/internal/config"
	"github.com/iliyamo/coworking-reservation/internal/database"
	"github.com/iliyamo/coworking-reservation/internal/handler"
	"github.com/iliyamo/coworking-reservation/internal/middleware"
	"github.com/iliyamo/coworking-reservation/internal/queue"
	"github.com/iliyamo/coworking-reservation/internal/repository"
	"github.com/iliyamo/coworking-reservation/internal/router"
	"github.com/iliyamo/coworking-reservation/internal/service"
)

func main() {
	// Best effort; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	resources := repository.NewResourceRepo(db)
	reservations := repository.NewReservationRepo(db)
	promos := repository.NewPromoRepo(db)
	subscriptions := repository.NewSubscriptionRepo(db)
	credits := repository.NewCreditRepo(db)
	transactions := repository.NewTransactionRepo(db)

	store := repository.NewStore(db, resources, reservations, promos, subscriptions, credits, transactions)
	publisher := service.NewReservationPublisher(queue.BrokerURL(), resources)
	engine := booking.NewService(store, publisher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background workers: the status sweeper persists wall-clock
	// transitions and releases stale pending reservations; the consumer
	// records lifecycle events.
	go engine.RunStatusSweeper(ctx, cfg.SweepInterval, cfg.PendingTTL)
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation-consumer: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	if rdb := config.NewRedisClient(); rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	} else {
		log.Printf("redis unavailable, rate limiting disabled")
	}

	authHandler := handler.NewAuthHandler(cfg, users, tokens, credits, transactions)
	publicHandler := handler.NewPublicHandler(resources, subscriptions, engine)
	reservationHandler := handler.NewReservationHandler(engine, reservations)
	accountHandler := handler.NewAccountHandler(credits, transactions, subscriptions)
	adminHandler := handler.NewAdminHandler(engine, resources, promos, subscriptions, reservations, transactions)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, publicHandler)
	router.RegisterMember(e, reservationHandler, accountHandler, cfg.JWTSecret)
	router.RegisterAdmin(e, adminHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	go func() {
		<-ctx.Done()
		log.Printf("shutting down")
		_ = e.Shutdown(context.Background())
	}()

	if err := e.Start(addr); err != nil {
		log.Printf("server stopped: %v", err)
	}
}

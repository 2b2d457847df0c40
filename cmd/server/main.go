package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/travel-booking/internal/config"
	"github.com/iliyamo/travel-booking/internal/database"
	"github.com/iliyamo/travel-booking/internal/handler"
	"github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/queue"
	"github.com/iliyamo/travel-booking/internal/repository"
	"github.com/iliyamo/travel-booking/internal/reservation"
	"github.com/iliyamo/travel-booking/internal/router"
	"github.com/iliyamo/travel-booking/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	profiles := repository.NewProfileRepo(db)
	travel := repository.NewTravelRepo(db)
	bookings := repository.NewBookingRepo(db)
	stats := repository.NewStatsRepo(db)

	// Reservation engine over the transactional store.
	engine := reservation.NewEngine(repository.NewReservationStore(db))

	// Notifications are optional infrastructure: the publisher fails
	// soft and the consumer reconnects forever.
	publisher := service.NewQueuePublisher(queue.BrokerURL())
	bookingSvc := service.NewBookingService(engine, bookings, publisher)
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	// Redis-backed extras; nil client disables both.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	rateMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(rateMW)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, profiles), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewTravelHandler(travel), cacheMW)
	router.RegisterCustomer(e,
		handler.NewBookingHandler(bookingSvc),
		handler.NewTicketHandler(bookingSvc),
		handler.NewProfileHandler(profiles),
		cfg.JWTSecret)
	router.RegisterAdmin(e,
		handler.NewAdminTravelHandler(travel),
		handler.NewAdminStatsHandler(stats),
		cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/airline-reservation/internal/config"
	"github.com/iliyamo/airline-reservation/internal/handler"
	"github.com/iliyamo/airline-reservation/internal/middleware"
	"github.com/iliyamo/airline-reservation/internal/queue"
	"github.com/iliyamo/airline-reservation/internal/repository"
	"github.com/iliyamo/airline-reservation/internal/router"
	"github.com/iliyamo/airline-reservation/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	cipher, err := storage.NewCipher(cfg.CipherN, cfg.CipherE, cfg.CipherD)
	if err != nil {
		log.Fatalf("cipher parameters: %v", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("create data dir: %v", err)
	}

	planes := repository.NewAirplaneRepo(storage.NewStore(filepath.Join(cfg.DataDir, "Airplanes.csv"), cipher))
	clients := repository.NewClientRepo(storage.NewStore(filepath.Join(cfg.DataDir, "Clients.csv"), cipher))
	flights := repository.NewFlightRepo(storage.NewStore(filepath.Join(cfg.DataDir, "Flights.csv"), cipher), planes)
	records := repository.NewRecordRepo(storage.NewStore(filepath.Join(cfg.DataDir, "Records.csv"), cipher))

	// Load order follows the reference graph: planes before flights,
	// both plus clients before records.
	reportLoad("airplanes", planes.Load())
	reportLoad("clients", clients.Load())
	reportLoad("flights", flights.Load())
	reportLoad("records", records.Load(clients, flights))

	rdb := config.NewRedisClient()
	tokens := repository.NewTokenRepo(rdb)

	// Booking events feed an audit log through RabbitMQ; the consumer
	// keeps retrying if the broker is down.
	go func() {
		if err := queue.StartRecordConsumer(); err != nil {
			log.Printf("record consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	if rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
		e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	}

	authH := handler.NewAuthHandler(cfg, clients, tokens)
	fleetH := handler.NewFleetHandler(planes, flights)
	bookingH := handler.NewBookingHandler(clients, flights, records)
	adminH := handler.NewAdminHandler(planes, clients, flights, records, tokens)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, bookingH)
	router.RegisterFleet(e, fleetH, adminH, bookingH, cfg.JWTSecret)
	router.RegisterBooking(e, bookingH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, data=%s)", addr, cfg.Env, cfg.DataDir)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// reportLoad logs per-line load problems without aborting startup; a
// bad row never blocks the rest of the file.
func reportLoad(name string, errs []error) {
	for _, err := range errs {
		log.Printf("load %s: %v", name, err)
	}
}

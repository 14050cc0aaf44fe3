package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"field-booking/config"
	"field-booking/consumers"
	"field-booking/controllers"
	"field-booking/mq"
	"field-booking/repository"
	"field-booking/routes"
	"field-booking/services"
)

func openStores(cfg config.App) (services.ReservationStore, services.FieldCatalog, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverBolt:
		repo, err := repository.OpenBoltReservationRepo(cfg.BoltPath)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Printf("✅ Bolt store opened at %s", cfg.BoltPath)
		return repo, repository.NewStaticFieldRepo(repository.DefaultFields()), func() { _ = repo.Close() }, nil

	case config.DriverMemory:
		log.Println("⚠️  Using in-memory store; reservations are lost on restart")
		return repository.NewMemoryReservationRepo(), repository.NewStaticFieldRepo(repository.DefaultFields()), func() {}, nil

	default:
		db, err := config.ConnectDatabase()
		if err != nil {
			return nil, nil, nil, err
		}
		log.Println("✅ Database connection established and migrations applied.")
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return repository.NewGormReservationRepo(db), repository.NewGormFieldRepo(db), closeDB, nil
	}
}

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Config: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("❌ TIMEZONE %q: %v", cfg.Timezone, err)
	}

	store, catalog, closeStore, err := openStores(cfg)
	if err != nil {
		log.Fatalf("❌ Store (%s) open failed: %v", cfg.StoreDriver, err)
	}
	defer closeStore()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := []services.Option{services.WithLocation(loc)}

	var consumer *mq.Consumer
	if cfg.AMQPURL != "" {
		pub, err := mq.NewPublisher(cfg.AMQPURL, cfg.BookingExchange)
		if err != nil {
			log.Fatalf("❌ Publisher: %v", err)
		}
		defer pub.Close()
		opts = append(opts, services.WithPublisher(pub))

		consumer, err = mq.NewConsumer(cfg.AMQPURL, cfg.PaymentExchange, cfg.PaymentQueue, []string{consumers.PaymentPaidKey})
		if err != nil {
			log.Fatalf("❌ Consumer: %v", err)
		}
		defer consumer.Close()
	} else {
		log.Println("⚠️  AMQP_URL not set; lifecycle events are not published")
	}

	bookingService := services.NewBookingService(store, catalog, services.RealClock{}, opts...)
	bookingService.StartSweeper(ctx, cfg.SweepInterval)
	log.Printf("✅ Sweeper started (every %s)", cfg.SweepInterval)

	if consumer != nil {
		pc := consumers.NewPaymentConsumer(bookingService, consumer)
		if err := pc.Run(ctx); err != nil {
			log.Fatalf("❌ Payment consumer: %v", err)
		}
		log.Println("✅ Payment consumer started (payment.paid)")
	}

	fieldController := controllers.NewFieldController(bookingService)
	reservationController := controllers.NewReservationController(bookingService)

	router := routes.SetupRouter(fieldController, reservationController, cfg.CorsOrigins())

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️  Shutdown signal received, shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}

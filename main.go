package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"falta-uno-backend/handlers"
	"falta-uno-backend/middleware"
	"falta-uno-backend/services"
	"falta-uno-backend/store"
	"falta-uno-backend/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	app := fiber.New()

	// Only gateway requests allowed.
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,POST,PATCH,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-User-ID",
	}))

	var st store.Store
	if os.Getenv("STORE") == "memory" {
		log.Println("STORE=memory — running without a database (dev only)")
		st = store.NewMemStore()
	} else {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			log.Fatal("DATABASE_URL environment variable not set")
		}
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			TranslateError: true,
		})
		if err != nil {
			log.Fatal("failed to connect to database:", err)
		}
		gs := store.NewGormStore(db)
		if err := gs.AutoMigrate(); err != nil {
			log.Fatal("failed to migrate database:", err)
		}
		st = gs
	}

	var delivery services.Delivery
	if pushURL := os.Getenv("PUSH_SERVICE_URL"); pushURL != "" {
		pushToken := os.Getenv("PUSH_SERVICE_TOKEN")
		if pushToken == "" {
			log.Fatal("PUSH_SERVICE_TOKEN required when PUSH_SERVICE_URL is set")
		}
		delivery = workers.NewPushClient(pushURL, pushToken)
	} else {
		log.Println("PUSH_SERVICE_URL not set — push delivery disabled, logging only")
		delivery = services.NewLogDelivery()
	}

	notifService := services.NewNotificationService(st, delivery)
	partidoService := services.NewPartidoService(st, notifService)
	participacionService := services.NewParticipacionService(st, notifService, ventanaPenalizacion())
	ratingService := services.NewRatingService(st)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reminder := workers.NewReminderWorker(st, notifService, antelacionRecordatorio())
	go reminder.Run(ctx, 1*time.Minute)

	partidoService.StartFinalizacionScheduler()

	handlers.SetupRoutes(app, partidoService, participacionService, ratingService, notifService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")
	_ = app.Shutdown()
}

// ventanaPenalizacion reads the short-notice cancellation window, in hours.
func ventanaPenalizacion() time.Duration {
	v := strings.TrimSpace(os.Getenv("CANCEL_PENALTY_WINDOW_HOURS"))
	if v == "" {
		return services.VentanaPenalizacionDefault
	}
	horas, err := strconv.Atoi(v)
	if err != nil || horas <= 0 {
		log.Printf("CANCEL_PENALTY_WINDOW_HOURS invalid (%q), using default", v)
		return services.VentanaPenalizacionDefault
	}
	return time.Duration(horas) * time.Hour
}

// antelacionRecordatorio reads how far ahead of match time reminders go out.
func antelacionRecordatorio() time.Duration {
	v := strings.TrimSpace(os.Getenv("REMINDER_LEAD_HOURS"))
	if v == "" {
		return 2 * time.Hour
	}
	horas, err := strconv.Atoi(v)
	if err != nil || horas <= 0 {
		log.Printf("REMINDER_LEAD_HOURS invalid (%q), using default", v)
		return 2 * time.Hour
	}
	return time.Duration(horas) * time.Hour
}

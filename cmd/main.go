package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/drivehub/rental-marketplace/internal/agency"
	"github.com/drivehub/rental-marketplace/internal/auth"
	"github.com/drivehub/rental-marketplace/internal/billing"
	"github.com/drivehub/rental-marketplace/internal/booking"
	"github.com/drivehub/rental-marketplace/internal/db"
	"github.com/drivehub/rental-marketplace/internal/events"
	"github.com/drivehub/rental-marketplace/internal/handlers"
	"github.com/drivehub/rental-marketplace/internal/middleware"
	"github.com/drivehub/rental-marketplace/internal/models"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	log.SetFormatter(&log.JSONFormatter{})
	if os.Getenv("LOG_LEVEL") == "debug" {
		log.SetLevel(log.DebugLevel)
	}

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Disconnect(ctx)
	}()
	log.Info("Connected to MongoDB")

	database := db.Database(client)

	sequences := &db.MongoSequenceAllocator{Collection: database.Collection("counters")}
	bookings := &db.MongoBookingStore{Collection: database.Collection("bookings")}
	billings := &db.MongoBillingStore{Collection: database.Collection("billings")}
	customers := &db.MongoCustomerStore{Collection: database.Collection("customers")}
	agencies := &db.MongoAgencyStore{Collection: database.Collection("agencies")}
	vehicles := &db.MongoVehicleStore{Collection: database.Collection("vehicles")}

	publisher, err := events.NewPublisher(os.Getenv("MQTT_BROKER"))
	if err != nil {
		log.WithError(err).Warn("Event publisher disabled")
	}
	if publisher != nil {
		defer publisher.Close()
	}

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize auth service")
	}

	bookingService := &booking.Service{
		Bookings:     bookings,
		Customers:    customers,
		Vehicles:     vehicles,
		Agencies:     agencies,
		Sequences:    sequences,
		Events:       publisher,
		OverlapCheck: os.Getenv("BOOKING_OVERLAP_CHECK") != "off",
	}
	billingCalculator := &billing.Calculator{
		Customers: customers,
		Bookings:  bookings,
		Vehicles:  vehicles,
		Billings:  billings,
		Sequences: sequences,
	}
	agencyService := &agency.Service{
		Agencies: agencies,
		Bookings: bookings,
		Vehicles: vehicles,
	}

	authHandler := handlers.NewAuthHandler(authService, customers, agencies, sequences)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	billingHandler := handlers.NewBillingHandler(billingCalculator)
	agencyHandler := handlers.NewAgencyHandler(agencyService)
	vehicleHandler := handlers.NewVehicleHandler(vehicles, agencies, sequences)

	authMW := middleware.NewAuthMiddleware(authService)
	rateMW := middleware.NewRateLimitMiddleware()
	adminOnly := authMW.RequireRole(models.RoleAdmin)
	agencyOnly := authMW.RequireRole(models.RoleAgency)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /api/auth/register/customer", authHandler.RegisterCustomer)
	mux.HandleFunc("POST /api/auth/register/agency", authHandler.RegisterAgency)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.HandleFunc("POST /api/bookings", bookingHandler.Create)
	mux.HandleFunc("GET /api/bookings", bookingHandler.ListAll)
	mux.HandleFunc("GET /api/bookings/search", bookingHandler.ListByDate)
	mux.HandleFunc("GET /api/bookings/{id}", bookingHandler.GetByID)
	mux.Handle("PATCH /api/bookings/{id}", agencyOnly(http.HandlerFunc(bookingHandler.UpdateStatus)))

	mux.HandleFunc("POST /api/billing", billingHandler.Generate)

	mux.HandleFunc("GET /api/agencies/{id}/booking-counts", agencyHandler.BookingCounts)
	mux.Handle("PATCH /api/agencies/{id}/status", adminOnly(http.HandlerFunc(agencyHandler.SetStatus)))

	mux.Handle("POST /api/vehicles", agencyOnly(http.HandlerFunc(vehicleHandler.Create)))
	mux.HandleFunc("GET /api/vehicles/{id}", vehicleHandler.GetByID)
	mux.HandleFunc("GET /api/agencies/{id}/vehicles", vehicleHandler.ListByAgency)
	mux.Handle("PUT /api/vehicles/{id}", agencyOnly(http.HandlerFunc(vehicleHandler.Update)))
	mux.Handle("DELETE /api/vehicles/{id}", agencyOnly(http.HandlerFunc(vehicleHandler.Delete)))

	handler := rateMW.RateLimit(100, 60)(authMW.Authenticate(mux))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Shutdown error")
	}
}

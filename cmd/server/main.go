package main

import (
	"log"
	"net/http"
	"os"

	"despacho-backend/internal/database"
	"despacho-backend/internal/handlers"
	"despacho-backend/internal/middleware"
	"despacho-backend/internal/services"
	"despacho-backend/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("🚀 DESPACHO BACKEND SERVER STARTING")
	log.Println("═══════════════════════════════════════════════════════════════════")

	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	db, err := database.Connect(dbURL)
	if err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("❌ Database migrations failed: %v", err)
	}

	if err := database.SeedUsers(db); err != nil {
		log.Fatalf("❌ User seeding failed: %v", err)
	}
	if err := database.SeedCatalogs(db); err != nil {
		log.Fatalf("❌ Catalog seeding failed: %v", err)
	}
	if err := database.SeedCustomers(db); err != nil {
		log.Fatalf("❌ Customer seeding failed: %v", err)
	}

	// Initialize Firebase Cloud Messaging
	// Supports both file path and base64-encoded credentials (for Railway/cloud deployments)
	var fcmService *services.FCMService
	fcmCredsBase64 := os.Getenv("FIREBASE_CREDENTIALS_BASE64")

	if fcmCredsBase64 != "" {
		fcmService, err = services.NewFCMServiceFromBase64(fcmCredsBase64)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from base64: %v (push notifications disabled)", err)
			fcmService = nil
		} else {
			log.Println("✅ Firebase Cloud Messaging initialized from base64 credentials")
		}
	} else {
		fcmCredentialsFile := os.Getenv("FIREBASE_CREDENTIALS_FILE")
		if fcmCredentialsFile == "" {
			fcmCredentialsFile = "./firebase-service-account.json"
		}

		fcmService, err = services.NewFCMService(fcmCredentialsFile)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from file: %v (push notifications disabled)", err)
			fcmService = nil
		} else {
			log.Println("✅ Firebase Cloud Messaging initialized from file")
		}
	}

	mapsAPIKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if mapsAPIKey == "" {
		log.Println("⚠️  GOOGLE_MAPS_API_KEY not set, route optimization and geocoding will fail")
	}

	optimizer := services.NewRouteOptimizer(mapsAPIKey)
	geocoder := services.NewGeocodingService(mapsAPIKey)

	geofenceService := services.NewGeofenceService(db)
	gate := services.NewGeofenceGate(geofenceService, geofenceService, geofenceService)
	log.Println("✅ Geofence gate initialized")

	wsHub := websocket.NewHub()
	go wsHub.Run()
	log.Println("✅ WebSocket hub started")

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Post("/api/auth/login", handlers.Login(db))

	// WebSocket endpoint (authentication handled in handler via query param)
	r.Get("/ws", websocket.HandleWebSocket(wsHub, db))

	r.Route("/api", func(r chi.Router) {
		// Authenticated routes (driver or admin)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth)

			r.Get("/customers", handlers.GetCustomers(db))
			r.Get("/customers/{id}", handlers.GetCustomer(db))
			r.Get("/customers/{id}/centroid", handlers.GetCustomerCentroid(db))

			r.Get("/payment-terms", handlers.GetPaymentTerms(db))
			r.Get("/taxes", handlers.GetTaxes(db))

			r.Get("/dispatches", handlers.GetDispatches(db))
			r.Get("/dispatches/{id}", handlers.GetDispatch(db))
			r.Get("/dispatches/{id}/route", handlers.GetDispatchRoute(db, optimizer))

			// Payment recording (geofence gated for drivers)
			r.Patch("/dispatches/{id}/invoices/{lineID}/payment", handlers.RecordPayment(db, gate))

			// Location tracking fallback (primary path is the WebSocket feed)
			r.Post("/driver/location", handlers.UpdateLocation(db, wsHub))

			r.Post("/fcm-token", handlers.RegisterFCMToken(db))
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth)
			r.Use(middleware.RequireRole("admin"))

			r.Post("/geocoding/forward", handlers.Geocode(geocoder))
			r.Post("/geocoding/reverse", handlers.ReverseGeocode(geocoder))

			r.Get("/users", handlers.GetUsers(db))
			r.Post("/users", handlers.CreateUser(db))
			r.Delete("/users/{id}", handlers.DeleteUser(db))

			r.Post("/customers", handlers.CreateCustomer(db))
			r.Patch("/customers/{id}", handlers.UpdateCustomer(db))
			r.Delete("/customers/{id}", handlers.DeleteCustomer(db))

			r.Get("/vehicles", handlers.GetVehicles(db))
			r.Post("/vehicles", handlers.CreateVehicle(db))
			r.Patch("/vehicles/{id}", handlers.UpdateVehicle(db))
			r.Delete("/vehicles/{id}", handlers.DeleteVehicle(db))

			r.Get("/invoices", handlers.GetInvoices(db))
			r.Post("/invoices", handlers.CreateInvoice(db))
			r.Patch("/invoices/{id}/status", handlers.UpdateInvoiceStatus(db))
			r.Delete("/invoices/{id}", handlers.DeleteInvoice(db))

			r.Post("/payment-terms", handlers.CreatePaymentTerm(db))
			r.Delete("/payment-terms/{id}", handlers.DeletePaymentTerm(db))
			r.Post("/taxes", handlers.CreateTax(db))
			r.Delete("/taxes/{id}", handlers.DeleteTax(db))

			r.Post("/dispatches", handlers.CreateDispatch(db, fcmService))
			r.Patch("/dispatches/{id}/status", handlers.UpdateDispatchStatus(db, fcmService))
			r.Delete("/dispatches/{id}", handlers.DeleteDispatch(db))

			r.Get("/admin/drivers/status", handlers.GetDriverStatuses(db, wsHub))
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		log.Printf("⚠️  PORT not set, using default: %s", port)
	}

	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("✅ ALL INITIALIZATION COMPLETE")
	log.Printf("🚀 Server starting on http://localhost:%s", port)
	log.Println("═══════════════════════════════════════════════════════════════════")

	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}

package main

import (
	"log"
	"os"

	"despacho-backend/internal/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
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
		log.Fatalf("❌ Migrations failed: %v", err)
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

	log.Println("✅ Migrations and seed data applied")
}

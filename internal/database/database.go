package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func Connect(dbURL string) (*sqlx.DB, error) {
	log.Println("🔌 Connecting to database...")

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Database connection successful")
	return db, nil
}

func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// Create users table
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('driver', 'admin')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Create payment_terms table
		`CREATE TABLE IF NOT EXISTS payment_terms (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			days INT NOT NULL DEFAULT 0,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Create taxes table
		`CREATE TABLE IF NOT EXISTS taxes (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			rate DECIMAL(5,2) NOT NULL,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Create customers table
		// geofence stores normalized WKT/GeoJSON text, NULL when the
		// customer has no drawn service area
		`CREATE TABLE IF NOT EXISTS customers (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			address TEXT,
			phone TEXT,
			payment_term_id TEXT,
			tax_id TEXT,
			geofence TEXT,
			last_known_lat DOUBLE PRECISION,
			last_known_lng DOUBLE PRECISION,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (payment_term_id) REFERENCES payment_terms(id) ON DELETE SET NULL,
			FOREIGN KEY (tax_id) REFERENCES taxes(id) ON DELETE SET NULL
		)`,

		// Create vehicles table
		`CREATE TABLE IF NOT EXISTS vehicles (
			id TEXT PRIMARY KEY,
			plate TEXT NOT NULL UNIQUE,
			brand TEXT,
			model TEXT,
			capacity_kg INT,
			status TEXT NOT NULL DEFAULT 'active' CHECK(status IN ('active', 'maintenance', 'retired')),
			assigned_user_id TEXT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (assigned_user_id) REFERENCES users(id) ON DELETE SET NULL
		)`,

		// Create invoices table
		`CREATE TABLE IF NOT EXISTS invoices (
			id TEXT PRIMARY KEY,
			invoice_number TEXT NOT NULL UNIQUE,
			customer_code TEXT NOT NULL,
			amount DECIMAL(12,2) NOT NULL,
			tax_id TEXT,
			payment_term_id TEXT,
			status TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'dispatched', 'delivered', 'paid', 'void')),
			issued_at BIGINT NOT NULL,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (customer_code) REFERENCES customers(code) ON DELETE CASCADE,
			FOREIGN KEY (tax_id) REFERENCES taxes(id) ON DELETE SET NULL,
			FOREIGN KEY (payment_term_id) REFERENCES payment_terms(id) ON DELETE SET NULL
		)`,

		// Create dispatches table
		`CREATE TABLE IF NOT EXISTS dispatches (
			id TEXT PRIMARY KEY,
			dispatch_number SERIAL,
			driver_id TEXT,
			vehicle_id TEXT,
			dispatch_date BIGINT NOT NULL,
			status TEXT NOT NULL DEFAULT 'open' CHECK(status IN ('open', 'in_route', 'delivered', 'closed')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (driver_id) REFERENCES users(id) ON DELETE SET NULL,
			FOREIGN KEY (vehicle_id) REFERENCES vehicles(id) ON DELETE SET NULL
		)`,

		// Create dispatch_invoices table (one line per invoice on a dispatch)
		`CREATE TABLE IF NOT EXISTS dispatch_invoices (
			id SERIAL PRIMARY KEY,
			dispatch_id TEXT NOT NULL,
			invoice_id TEXT NOT NULL,
			delivery_order INT,
			payment_status TEXT NOT NULL DEFAULT 'pending' CHECK(payment_status IN ('pending', 'partial', 'paid')),
			paid_amount DECIMAL(12,2) NOT NULL DEFAULT 0,
			payment_method TEXT CHECK(payment_method IN ('cash', 'transfer', 'check', 'credit')),
			photo_url TEXT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (dispatch_id) REFERENCES dispatches(id) ON DELETE CASCADE,
			FOREIGN KEY (invoice_id) REFERENCES invoices(id) ON DELETE CASCADE,
			UNIQUE (dispatch_id, invoice_id)
		)`,

		// Create driver_locations table (append-only GPS trail from the
		// WebSocket feed; display only, never used for gating)
		`CREATE TABLE IF NOT EXISTS driver_locations (
			id SERIAL PRIMARY KEY,
			driver_id TEXT NOT NULL,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			heading DOUBLE PRECISION,
			speed DOUBLE PRECISION,
			accuracy DOUBLE PRECISION,
			dispatch_id TEXT,
			timestamp BIGINT NOT NULL,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (driver_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (dispatch_id) REFERENCES dispatches(id) ON DELETE SET NULL
		)`,

		// Create FCM tokens table
		`CREATE TABLE IF NOT EXISTS fcm_tokens (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			device_type TEXT NOT NULL CHECK(device_type IN ('ios', 'android')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Create indexes
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_customers_code ON customers(code)`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_customer_code ON invoices(customer_code)`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_status ON invoices(status)`,
		`CREATE INDEX IF NOT EXISTS idx_dispatches_driver_id ON dispatches(driver_id)`,
		`CREATE INDEX IF NOT EXISTS idx_dispatches_status ON dispatches(status)`,
		`CREATE INDEX IF NOT EXISTS idx_dispatches_dispatch_date ON dispatches(dispatch_date)`,
		`CREATE INDEX IF NOT EXISTS idx_dispatch_invoices_dispatch_id ON dispatch_invoices(dispatch_id)`,
		`CREATE INDEX IF NOT EXISTS idx_dispatch_invoices_invoice_id ON dispatch_invoices(invoice_id)`,
		`CREATE INDEX IF NOT EXISTS idx_dispatch_invoices_payment_status ON dispatch_invoices(payment_status)`,
		`CREATE INDEX IF NOT EXISTS idx_driver_locations_driver_id ON driver_locations(driver_id)`,
		`CREATE INDEX IF NOT EXISTS idx_driver_locations_dispatch_id ON driver_locations(dispatch_id)`,
		`CREATE INDEX IF NOT EXISTS idx_driver_locations_timestamp ON driver_locations(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_fcm_tokens_user_id ON fcm_tokens(user_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	log.Println("✓ Database migrations completed")
	return nil
}

package database

import (
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

func SeedUsers(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Users already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding test users...")

	driverPassword, err := bcrypt.GenerateFromPassword([]byte("driver123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []map[string]interface{}{
		{
			"id":       uuid.New().String(),
			"email":    "driver@despacho.gt",
			"password": string(driverPassword),
			"name":     "Carlos Piloto",
			"role":     "driver",
		},
		{
			"id":       uuid.New().String(),
			"email":    "admin@despacho.gt",
			"password": string(adminPassword),
			"name":     "Admin User",
			"role":     "admin",
		},
	}

	for _, user := range users {
		query := `
			INSERT INTO users (id, email, password, name, role)
			VALUES (:id, :email, :password, :name, :role)
		`
		if _, err := db.NamedExec(query, user); err != nil {
			return err
		}
		log.Printf("  ✓ Created user: %s (%s)", user["email"], user["role"])
	}

	log.Println("✓ Successfully seeded test users")
	log.Println("  📧 Driver: driver@despacho.gt / driver123")
	log.Println("  📧 Admin:  admin@despacho.gt / admin123")
	return nil
}

func SeedCatalogs(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM payment_terms"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Catalogs already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding payment terms and taxes...")

	terms := []map[string]interface{}{
		{"id": uuid.New().String(), "name": "Contado", "days": 0},
		{"id": uuid.New().String(), "name": "Crédito 15 días", "days": 15},
		{"id": uuid.New().String(), "name": "Crédito 30 días", "days": 30},
	}

	for _, term := range terms {
		query := `INSERT INTO payment_terms (id, name, days) VALUES (:id, :name, :days)`
		if _, err := db.NamedExec(query, term); err != nil {
			return err
		}
	}

	taxes := []map[string]interface{}{
		{"id": uuid.New().String(), "name": "IVA", "rate": 12.0},
		{"id": uuid.New().String(), "name": "Exento", "rate": 0.0},
	}

	for _, tax := range taxes {
		query := `INSERT INTO taxes (id, name, rate) VALUES (:id, :name, :rate)`
		if _, err := db.NamedExec(query, tax); err != nil {
			return err
		}
	}

	log.Println("✓ Successfully seeded catalogs")
	return nil
}

func SeedCustomers(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM customers"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Customers already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding demo customers...")

	customers := []map[string]interface{}{
		{
			"id":       uuid.New().String(),
			"code":     "C001",
			"name":     "Tienda La Esquina",
			"address":  "4a Avenida 12-35, Zona 1, Ciudad de Guatemala",
			"geofence": "POLYGON((-90.5140 14.6410, -90.5120 14.6410, -90.5120 14.6390, -90.5140 14.6390))",
		},
		{
			"id":       uuid.New().String(),
			"code":     "C002",
			"name":     "Abarrotería Central",
			"address":  "Calzada Roosevelt 22-43, Zona 7, Ciudad de Guatemala",
			"geofence": "POLYGON((-90.5560 14.6280, -90.5540 14.6280, -90.5540 14.6260, -90.5560 14.6260))",
		},
		{
			"id":       uuid.New().String(),
			"code":     "C003",
			"name":     "Depósito El Progreso",
			"address":  "Km 17.5 Carretera a El Salvador",
			"geofence": nil,
		},
	}

	for _, customer := range customers {
		query := `
			INSERT INTO customers (id, code, name, address, geofence)
			VALUES (:id, :code, :name, :address, :geofence)
		`
		if _, err := db.NamedExec(query, customer); err != nil {
			return err
		}
		log.Printf("  ✓ Created customer: %s (%s)", customer["name"], customer["code"])
	}

	log.Println("✓ Successfully seeded demo customers")
	return nil
}

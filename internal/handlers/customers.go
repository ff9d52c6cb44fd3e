package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"despacho-backend/internal/geometry"
	"despacho-backend/internal/models"
	"despacho-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CustomerRequest struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Address       *string `json:"address"`
	Phone         *string `json:"phone"`
	PaymentTermID *string `json:"payment_term_id"`
	TaxID         *string `json:"tax_id"`
	Geofence      *string `json:"geofence"`
}

func GetCustomers(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var customers []models.Customer
		err := db.Select(&customers, "SELECT * FROM customers ORDER BY code ASC")
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch customers")
			return
		}

		responses := make([]models.CustomerResponse, len(customers))
		for i, customer := range customers {
			responses[i] = customer.ToResponse()
		}

		utils.RespondJSON(w, http.StatusOK, responses)
	}
}

func GetCustomer(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var customer models.Customer
		err := db.Get(&customer, "SELECT * FROM customers WHERE id = $1 OR code = $1", id)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "Customer not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		utils.RespondJSON(w, http.StatusOK, customer.ToResponse())
	}
}

// GetCustomerCentroid resolves the representative point of a customer's
// geofence. Returns null for customers without a parseable area.
func GetCustomerCentroid(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var customer models.Customer
		err := db.Get(&customer, "SELECT * FROM customers WHERE id = $1 OR code = $1", id)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "Customer not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		var centroid *geometry.LatLng
		if customer.Geofence != nil {
			centroid = geometry.ParseCentroid(*customer.Geofence)
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"customer_code": customer.Code,
			"centroid":      centroid,
		})
	}
}

func CreateCustomer(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CustomerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Code == "" || req.Name == "" {
			utils.RespondError(w, http.StatusBadRequest, "code and name are required")
			return
		}

		geofence, err := normalizeGeofence(req.Geofence)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid geofence geometry")
			return
		}

		customer := models.Customer{
			ID:            uuid.New().String(),
			Code:          req.Code,
			Name:          req.Name,
			Address:       req.Address,
			Phone:         req.Phone,
			PaymentTermID: req.PaymentTermID,
			TaxID:         req.TaxID,
			Geofence:      geofence,
			CreatedAt:     time.Now().Unix(),
			UpdatedAt:     time.Now().Unix(),
		}

		query := `
			INSERT INTO customers (id, code, name, address, phone, payment_term_id, tax_id, geofence, created_at, updated_at)
			VALUES (:id, :code, :name, :address, :phone, :payment_term_id, :tax_id, :geofence, :created_at, :updated_at)
		`
		if _, err := db.NamedExec(query, customer); err != nil {
			log.Printf("❌ Failed to create customer %s: %v", req.Code, err)
			utils.RespondError(w, http.StatusConflict, "Customer code already exists or insert failed")
			return
		}

		log.Printf("✅ Customer created: %s (%s)", customer.Name, customer.Code)
		utils.RespondJSON(w, http.StatusCreated, customer.ToResponse())
	}
}

func UpdateCustomer(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req CustomerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var existing models.Customer
		err := db.Get(&existing, "SELECT * FROM customers WHERE id = $1", id)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "Customer not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		geofence, err := normalizeGeofence(req.Geofence)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid geofence geometry")
			return
		}

		_, err = db.Exec(`
			UPDATE customers
			SET name = $1, address = $2, phone = $3, payment_term_id = $4,
			    tax_id = $5, geofence = $6, updated_at = $7
			WHERE id = $8
		`, req.Name, req.Address, req.Phone, req.PaymentTermID,
			req.TaxID, geofence, time.Now().Unix(), id)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update customer")
			return
		}

		var updated models.Customer
		if err := db.Get(&updated, "SELECT * FROM customers WHERE id = $1", id); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch updated customer")
			return
		}

		utils.RespondJSON(w, http.StatusOK, updated.ToResponse())
	}
}

func DeleteCustomer(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		result, err := db.Exec("DELETE FROM customers WHERE id = $1", id)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete customer")
			return
		}

		rows, err := result.RowsAffected()
		if err != nil || rows == 0 {
			utils.RespondError(w, http.StatusNotFound, "Customer not found")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// normalizeGeofence validates and canonicalizes incoming geofence text.
// A nil or blank value clears the customer's geofence.
func normalizeGeofence(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	if err := geometry.ValidateGeofenceText(*raw); err != nil {
		return nil, err
	}
	return geometry.Normalize(*raw), nil
}

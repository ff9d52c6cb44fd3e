package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"despacho-backend/internal/models"
	"despacho-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

func GetPaymentTerms(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var terms []models.PaymentTerm
		if err := db.Select(&terms, "SELECT * FROM payment_terms ORDER BY days ASC"); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch payment terms")
			return
		}
		utils.RespondJSON(w, http.StatusOK, terms)
	}
}

func CreatePaymentTerm(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
			Days int    `json:"days"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Name == "" || req.Days < 0 {
			utils.RespondError(w, http.StatusBadRequest, "name is required and days must be non-negative")
			return
		}

		term := models.PaymentTerm{
			ID:        uuid.New().String(),
			Name:      req.Name,
			Days:      req.Days,
			CreatedAt: time.Now().Unix(),
			UpdatedAt: time.Now().Unix(),
		}

		query := `INSERT INTO payment_terms (id, name, days, created_at, updated_at) VALUES (:id, :name, :days, :created_at, :updated_at)`
		if _, err := db.NamedExec(query, term); err != nil {
			utils.RespondError(w, http.StatusConflict, "Payment term already exists or insert failed")
			return
		}

		utils.RespondJSON(w, http.StatusCreated, term)
	}
}

func DeletePaymentTerm(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		result, err := db.Exec("DELETE FROM payment_terms WHERE id = $1", id)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete payment term")
			return
		}

		rows, err := result.RowsAffected()
		if err != nil || rows == 0 {
			utils.RespondError(w, http.StatusNotFound, "Payment term not found")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func GetTaxes(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var taxes []models.Tax
		if err := db.Select(&taxes, "SELECT * FROM taxes ORDER BY name ASC"); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch taxes")
			return
		}
		utils.RespondJSON(w, http.StatusOK, taxes)
	}
}

func CreateTax(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string  `json:"name"`
			Rate float64 `json:"rate"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Name == "" || req.Rate < 0 {
			utils.RespondError(w, http.StatusBadRequest, "name is required and rate must be non-negative")
			return
		}

		tax := models.Tax{
			ID:        uuid.New().String(),
			Name:      req.Name,
			Rate:      req.Rate,
			CreatedAt: time.Now().Unix(),
			UpdatedAt: time.Now().Unix(),
		}

		query := `INSERT INTO taxes (id, name, rate, created_at, updated_at) VALUES (:id, :name, :rate, :created_at, :updated_at)`
		if _, err := db.NamedExec(query, tax); err != nil {
			utils.RespondError(w, http.StatusConflict, "Tax already exists or insert failed")
			return
		}

		utils.RespondJSON(w, http.StatusCreated, tax)
	}
}

func DeleteTax(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		result, err := db.Exec("DELETE FROM taxes WHERE id = $1", id)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete tax")
			return
		}

		rows, err := result.RowsAffected()
		if err != nil || rows == 0 {
			utils.RespondError(w, http.StatusNotFound, "Tax not found")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

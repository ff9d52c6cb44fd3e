package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"despacho-backend/internal/models"
	"despacho-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type InvoiceRequest struct {
	InvoiceNumber string  `json:"invoice_number"`
	CustomerCode  string  `json:"customer_code"`
	Amount        float64 `json:"amount"`
	TaxID         *string `json:"tax_id"`
	PaymentTermID *string `json:"payment_term_id"`
	IssuedAtISO   *string `json:"issued_at_iso"`
}

func GetInvoices(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := "SELECT * FROM invoices"
		conditions := []string{}
		args := []interface{}{}

		if status := r.URL.Query().Get("status"); status != "" {
			args = append(args, status)
			conditions = append(conditions, "status = $1")
		}
		if code := r.URL.Query().Get("customer_code"); code != "" {
			args = append(args, code)
			if len(args) == 1 {
				conditions = append(conditions, "customer_code = $1")
			} else {
				conditions = append(conditions, "customer_code = $2")
			}
		}

		if len(conditions) == 1 {
			query += " WHERE " + conditions[0]
		} else if len(conditions) == 2 {
			query += " WHERE " + conditions[0] + " AND " + conditions[1]
		}
		query += " ORDER BY issued_at DESC"

		var invoices []models.Invoice
		if err := db.Select(&invoices, query, args...); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch invoices")
			return
		}

		responses := make([]models.InvoiceResponse, len(invoices))
		for i, invoice := range invoices {
			responses[i] = invoice.ToResponse()
		}

		utils.RespondJSON(w, http.StatusOK, responses)
	}
}

func CreateInvoice(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req InvoiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.InvoiceNumber == "" || req.CustomerCode == "" {
			utils.RespondError(w, http.StatusBadRequest, "invoice_number and customer_code are required")
			return
		}
		if req.Amount <= 0 {
			utils.RespondError(w, http.StatusBadRequest, "amount must be positive")
			return
		}

		// Invoices only attach to registered customers
		var exists int
		if err := db.Get(&exists, "SELECT COUNT(*) FROM customers WHERE code = $1", req.CustomerCode); err != nil || exists == 0 {
			utils.RespondError(w, http.StatusBadRequest, "Unknown customer code")
			return
		}

		issuedAt := time.Now().Unix()
		if req.IssuedAtISO != nil {
			if parsed, err := time.Parse(time.RFC3339, *req.IssuedAtISO); err == nil {
				issuedAt = parsed.Unix()
			}
		}

		invoice := models.Invoice{
			ID:            uuid.New().String(),
			InvoiceNumber: req.InvoiceNumber,
			CustomerCode:  req.CustomerCode,
			Amount:        req.Amount,
			TaxID:         req.TaxID,
			PaymentTermID: req.PaymentTermID,
			Status:        "pending",
			IssuedAt:      issuedAt,
			CreatedAt:     time.Now().Unix(),
			UpdatedAt:     time.Now().Unix(),
		}

		query := `
			INSERT INTO invoices (id, invoice_number, customer_code, amount, tax_id, payment_term_id, status, issued_at, created_at, updated_at)
			VALUES (:id, :invoice_number, :customer_code, :amount, :tax_id, :payment_term_id, :status, :issued_at, :created_at, :updated_at)
		`
		if _, err := db.NamedExec(query, invoice); err != nil {
			utils.RespondError(w, http.StatusConflict, "Invoice number already exists or insert failed")
			return
		}

		utils.RespondJSON(w, http.StatusCreated, invoice.ToResponse())
	}
}

func UpdateInvoiceStatus(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		valid := map[string]bool{"pending": true, "dispatched": true, "delivered": true, "paid": true, "void": true}
		if !valid[req.Status] {
			utils.RespondError(w, http.StatusBadRequest, "Invalid status")
			return
		}

		result, err := db.Exec("UPDATE invoices SET status = $1, updated_at = $2 WHERE id = $3",
			req.Status, time.Now().Unix(), id)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update invoice")
			return
		}

		rows, err := result.RowsAffected()
		if err != nil || rows == 0 {
			utils.RespondError(w, http.StatusNotFound, "Invoice not found")
			return
		}

		var updated models.Invoice
		if err := db.Get(&updated, "SELECT * FROM invoices WHERE id = $1", id); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch updated invoice")
			return
		}

		utils.RespondJSON(w, http.StatusOK, updated.ToResponse())
	}
}

func DeleteInvoice(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var status string
		err := db.Get(&status, "SELECT status FROM invoices WHERE id = $1", id)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "Invoice not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		// Dispatched invoices must be removed from the dispatch first
		if status == "dispatched" {
			utils.RespondError(w, http.StatusConflict, "Invoice is on an active dispatch")
			return
		}

		if _, err := db.Exec("DELETE FROM invoices WHERE id = $1", id); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete invoice")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

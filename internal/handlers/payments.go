package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"despacho-backend/internal/middleware"
	"despacho-backend/internal/models"
	"despacho-backend/internal/services"
	"despacho-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
)

type RecordPaymentRequest struct {
	PaymentStatus string             `json:"payment_status"`
	PaidAmount    float64            `json:"paid_amount"`
	PaymentMethod *string            `json:"payment_method"`
	PhotoURL      *string            `json:"photo_url"`
	Position      *services.Position `json:"position"`
}

// requestPosition adapts the coordinates attached to an HTTP request to
// the gate's location provider. The position timeout still applies even
// though resolution here is instant.
type requestPosition struct {
	pos *services.Position
}

func (p requestPosition) CurrentPosition(ctx context.Context) (services.Position, error) {
	if p.pos == nil {
		return services.Position{}, errors.New("no position attached to request")
	}
	return *p.pos, nil
}

// RecordPayment updates the payment record on a dispatch line. For
// drivers the write is gated on being inside the customer's geofence.
func RecordPayment(db *sqlx.DB, gate *services.GeofenceGate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dispatchID := chi.URLParam(r, "id")
		lineID := chi.URLParam(r, "lineID")

		user, ok := middleware.GetUserFromContext(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req RecordPaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		valid := map[string]bool{"pending": true, "partial": true, "paid": true}
		if !valid[req.PaymentStatus] {
			utils.RespondError(w, http.StatusBadRequest, "Invalid payment status")
			return
		}
		if req.PaidAmount < 0 {
			utils.RespondError(w, http.StatusBadRequest, "paid_amount must be non-negative")
			return
		}

		// Resolve the line and its owning customer
		var line struct {
			LineID       int64  `db:"line_id"`
			InvoiceID    string `db:"invoice_id"`
			CustomerCode string `db:"customer_code"`
		}
		err := db.Get(&line, `
			SELECT di.id AS line_id, di.invoice_id, i.customer_code
			FROM dispatch_invoices di
			JOIN invoices i ON i.id = di.invoice_id
			WHERE di.dispatch_id = $1 AND di.id = $2
		`, dispatchID, lineID)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "Dispatch line not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		recordKey := fmt.Sprintf("payment:%s:%s", dispatchID, lineID)
		if gate.IsVerifying(recordKey) {
			utils.RespondError(w, http.StatusConflict, "A location check is already in progress for this record")
			return
		}

		actor := services.Actor{UserID: user.UserID, Role: user.Role}
		decision := gate.Authorize(r.Context(), actor, line.CustomerCode, recordKey, requestPosition{pos: req.Position})
		if !decision.Allowed {
			utils.RespondJSON(w, http.StatusForbidden, map[string]interface{}{
				"success": false,
				"error":   decision.Reason,
			})
			return
		}
		if decision.SaveWarning != nil {
			log.Printf("⚠️ Location persist failed for %s: %v", line.CustomerCode, decision.SaveWarning)
		}

		_, err = db.Exec(`
			UPDATE dispatch_invoices
			SET payment_status = $1, paid_amount = $2, payment_method = $3,
			    photo_url = $4, updated_at = $5
			WHERE id = $6
		`, req.PaymentStatus, req.PaidAmount, req.PaymentMethod,
			req.PhotoURL, time.Now().Unix(), line.LineID)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to record payment")
			return
		}

		// Fully paid lines mark the invoice itself as paid
		if req.PaymentStatus == "paid" {
			if _, err := db.Exec("UPDATE invoices SET status = 'paid', updated_at = $1 WHERE id = $2",
				time.Now().Unix(), line.InvoiceID); err != nil {
				log.Printf("⚠️ Failed to mark invoice %s paid: %v", line.InvoiceID, err)
			}
		}

		var updated models.DispatchLine
		if err := db.Get(&updated, "SELECT * FROM dispatch_invoices WHERE id = $1", line.LineID); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch updated line")
			return
		}

		log.Printf("✅ Payment recorded on dispatch %s line %s by %s", dispatchID, lineID, user.Email)
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success":        true,
			"line":           updated,
			"location_saved": decision.LocationSaved,
		})
	}
}

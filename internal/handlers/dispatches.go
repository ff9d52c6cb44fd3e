package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"despacho-backend/internal/middleware"
	"despacho-backend/internal/models"
	"despacho-backend/internal/services"
	"despacho-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CreateDispatchRequest struct {
	DriverID        *string  `json:"driver_id"`
	VehicleID       *string  `json:"vehicle_id"`
	DispatchDateISO *string  `json:"dispatch_date_iso"`
	InvoiceIDs      []string `json:"invoice_ids"`
}

type DispatchDetailResponse struct {
	models.DispatchResponse
	Lines []models.DispatchLine `json:"lines"`
}

func GetDispatches(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := "SELECT * FROM dispatches"
		args := []interface{}{}

		user, _ := middleware.GetUserFromContext(r)
		if user.Role == models.RoleDriver {
			// Drivers only see their own dispatches
			query += " WHERE driver_id = $1"
			args = append(args, user.UserID)
		} else if status := r.URL.Query().Get("status"); status != "" {
			query += " WHERE status = $1"
			args = append(args, status)
		}
		query += " ORDER BY dispatch_date DESC"

		var dispatches []models.Dispatch
		if err := db.Select(&dispatches, query, args...); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch dispatches")
			return
		}

		responses := make([]models.DispatchResponse, len(dispatches))
		for i, dispatch := range dispatches {
			responses[i] = dispatch.ToResponse()
		}

		utils.RespondJSON(w, http.StatusOK, responses)
	}
}

func GetDispatch(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var dispatch models.Dispatch
		err := db.Get(&dispatch, "SELECT * FROM dispatches WHERE id = $1", id)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "Dispatch not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		var lines []models.DispatchLine
		err = db.Select(&lines, "SELECT * FROM dispatch_invoices WHERE dispatch_id = $1 ORDER BY delivery_order NULLS LAST, id", id)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch dispatch lines")
			return
		}

		utils.RespondJSON(w, http.StatusOK, DispatchDetailResponse{
			DispatchResponse: dispatch.ToResponse(),
			Lines:            lines,
		})
	}
}

func CreateDispatch(db *sqlx.DB, fcmService *services.FCMService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateDispatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if len(req.InvoiceIDs) == 0 {
			utils.RespondError(w, http.StatusBadRequest, "at least one invoice is required")
			return
		}

		dispatchDate := time.Now().Unix()
		if req.DispatchDateISO != nil {
			if parsed, err := time.Parse(time.RFC3339, *req.DispatchDateISO); err == nil {
				dispatchDate = parsed.Unix()
			}
		}

		dispatchID := uuid.New().String()

		tx, err := db.Beginx()
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to begin transaction")
			return
		}
		defer tx.Rollback()

		_, err = tx.Exec(`
			INSERT INTO dispatches (id, driver_id, vehicle_id, dispatch_date, status)
			VALUES ($1, $2, $3, $4, 'open')
		`, dispatchID, req.DriverID, req.VehicleID, dispatchDate)
		if err != nil {
			log.Printf("❌ Failed to create dispatch: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create dispatch")
			return
		}

		for order, invoiceID := range req.InvoiceIDs {
			var status string
			if err := tx.Get(&status, "SELECT status FROM invoices WHERE id = $1", invoiceID); err != nil {
				utils.RespondError(w, http.StatusBadRequest, "Unknown invoice id")
				return
			}
			if status != "pending" {
				utils.RespondError(w, http.StatusConflict, "Invoice is not available for dispatch")
				return
			}

			_, err = tx.Exec(`
				INSERT INTO dispatch_invoices (dispatch_id, invoice_id, delivery_order)
				VALUES ($1, $2, $3)
			`, dispatchID, invoiceID, order+1)
			if err != nil {
				utils.RespondError(w, http.StatusInternalServerError, "Failed to add invoice to dispatch")
				return
			}

			_, err = tx.Exec("UPDATE invoices SET status = 'dispatched', updated_at = $1 WHERE id = $2",
				time.Now().Unix(), invoiceID)
			if err != nil {
				utils.RespondError(w, http.StatusInternalServerError, "Failed to update invoice status")
				return
			}
		}

		if err := tx.Commit(); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to commit transaction")
			return
		}

		var created models.Dispatch
		if err := db.Get(&created, "SELECT * FROM dispatches WHERE id = $1", dispatchID); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch created dispatch")
			return
		}

		log.Printf("✅ Dispatch #%d created with %d invoices", created.DispatchNumber, len(req.InvoiceIDs))

		// Push notification is best effort
		if fcmService != nil && req.DriverID != nil {
			var token string
			err := db.Get(&token, "SELECT token FROM fcm_tokens WHERE user_id = $1 ORDER BY updated_at DESC LIMIT 1", *req.DriverID)
			if err == nil {
				if err := fcmService.SendDispatchAssignedNotification(token, dispatchID, len(req.InvoiceIDs)); err != nil {
					log.Printf("⚠️ Failed to notify driver %s: %v", *req.DriverID, err)
				}
			}
		}

		utils.RespondJSON(w, http.StatusCreated, created.ToResponse())
	}
}

func UpdateDispatchStatus(db *sqlx.DB, fcmService *services.FCMService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		valid := map[string]bool{"open": true, "in_route": true, "delivered": true, "closed": true}
		if !valid[req.Status] {
			utils.RespondError(w, http.StatusBadRequest, "Invalid status")
			return
		}

		var dispatch models.Dispatch
		err := db.Get(&dispatch, "SELECT * FROM dispatches WHERE id = $1", id)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "Dispatch not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		_, err = db.Exec("UPDATE dispatches SET status = $1, updated_at = $2 WHERE id = $3",
			req.Status, time.Now().Unix(), id)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update dispatch")
			return
		}

		if fcmService != nil && dispatch.DriverID != nil {
			var token string
			if err := db.Get(&token, "SELECT token FROM fcm_tokens WHERE user_id = $1 ORDER BY updated_at DESC LIMIT 1", *dispatch.DriverID); err == nil {
				if err := fcmService.SendDispatchUpdateNotification(token, id, req.Status); err != nil {
					log.Printf("⚠️ Failed to notify driver %s: %v", *dispatch.DriverID, err)
				}
			}
		}

		dispatch.Status = req.Status
		utils.RespondJSON(w, http.StatusOK, dispatch.ToResponse())
	}
}

func DeleteDispatch(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		tx, err := db.Beginx()
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to begin transaction")
			return
		}
		defer tx.Rollback()

		// Release the invoices back to the pending pool
		_, err = tx.Exec(`
			UPDATE invoices SET status = 'pending', updated_at = $1
			WHERE id IN (SELECT invoice_id FROM dispatch_invoices WHERE dispatch_id = $2)
			AND status = 'dispatched'
		`, time.Now().Unix(), id)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to release invoices")
			return
		}

		result, err := tx.Exec("DELETE FROM dispatches WHERE id = $1", id)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete dispatch")
			return
		}

		rows, err := result.RowsAffected()
		if err != nil || rows == 0 {
			utils.RespondError(w, http.StatusNotFound, "Dispatch not found")
			return
		}

		if err := tx.Commit(); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to commit transaction")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

type DispatchRouteResponse struct {
	DispatchID string              `json:"dispatch_id"`
	Route      []models.RoutedStop `json:"route"`
	MapsURL    string              `json:"maps_url"`
}

// GetDispatchRoute computes the optimized visit order for a dispatch.
// The ordering comes entirely from the external routing service; when the
// call fails the dispatch keeps its manual delivery_order and the client
// is told so.
func GetDispatchRoute(db *sqlx.DB, optimizer *services.RouteOptimizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var exists int
		if err := db.Get(&exists, "SELECT COUNT(*) FROM dispatches WHERE id = $1", id); err != nil || exists == 0 {
			utils.RespondError(w, http.StatusNotFound, "Dispatch not found")
			return
		}

		var stops []models.DeliveryStop
		err := db.Select(&stops, `
			SELECT di.id AS line_id, i.invoice_number, c.code AS customer_code,
			       c.name AS customer_name, c.geofence
			FROM dispatch_invoices di
			JOIN invoices i ON i.id = di.invoice_id
			JOIN customers c ON c.code = i.customer_code
			WHERE di.dispatch_id = $1
			ORDER BY di.id
		`, id)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch dispatch stops")
			return
		}

		route, err := optimizer.OptimizeStops(r.Context(), stops)
		if errors.Is(err, services.ErrNoValidPoints) {
			utils.RespondError(w, http.StatusUnprocessableEntity, "No stops with a resolvable location")
			return
		}
		if err != nil {
			log.Printf("❌ Route optimization failed for dispatch %s: %v", id, err)
			utils.RespondError(w, http.StatusBadGateway, "Route optimization failed")
			return
		}

		// Persist the optimized order so the driver app shows stable numbering
		for i, stop := range route {
			if stop.LineID == models.DepotStopID {
				continue
			}
			if _, err := db.Exec("UPDATE dispatch_invoices SET delivery_order = $1, updated_at = $2 WHERE id = $3",
				i, time.Now().Unix(), stop.LineID); err != nil {
				log.Printf("⚠️ Failed to persist delivery order for line %d: %v", stop.LineID, err)
			}
		}

		utils.RespondJSON(w, http.StatusOK, DispatchRouteResponse{
			DispatchID: id,
			Route:      route,
			MapsURL:    services.MapsLink(route),
		})
	}
}

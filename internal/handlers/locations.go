package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"despacho-backend/internal/middleware"
	"despacho-backend/internal/models"
	"despacho-backend/internal/websocket"
	"despacho-backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

type LocationUpdateRequest struct {
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Heading    *float64 `json:"heading"`
	Speed      *float64 `json:"speed"`
	Accuracy   *float64 `json:"accuracy"`
	DispatchID *string  `json:"dispatch_id"`
	Timestamp  int64    `json:"timestamp"`
}

// UpdateLocation is the HTTP fallback for the WebSocket location feed,
// used when the socket drops mid-route.
func UpdateLocation(db *sqlx.DB, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r)
		if !ok || user.Role != models.RoleDriver {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		var req LocationUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Timestamp == 0 {
			req.Timestamp = time.Now().Unix()
		}

		_, err := db.Exec(`
			INSERT INTO driver_locations (driver_id, latitude, longitude, heading, speed, accuracy, dispatch_id, timestamp)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, user.UserID, req.Latitude, req.Longitude, req.Heading, req.Speed, req.Accuracy, req.DispatchID, req.Timestamp)
		if err != nil {
			log.Printf("❌ Failed to save location for driver %s: %v", user.UserID, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to save location")
			return
		}

		hub.BroadcastToRole(models.RoleAdmin, map[string]interface{}{
			"type": "driver_location_update",
			"data": map[string]interface{}{
				"driver_id":   user.UserID,
				"latitude":    req.Latitude,
				"longitude":   req.Longitude,
				"heading":     req.Heading,
				"speed":       req.Speed,
				"accuracy":    req.Accuracy,
				"dispatch_id": req.DispatchID,
				"timestamp":   req.Timestamp,
			},
		})

		utils.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// GetDriverStatuses returns the latest known position per driver for the
// admin dashboard map.
func GetDriverStatuses(db *sqlx.DB, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var drivers []models.User
		err := db.Select(&drivers, "SELECT * FROM users WHERE role = $1 ORDER BY name", models.RoleDriver)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch drivers")
			return
		}

		statuses := make([]map[string]interface{}, 0, len(drivers))
		for _, driver := range drivers {
			var location models.DriverLocation
			err := db.Get(&location, `
				SELECT * FROM driver_locations
				WHERE driver_id = $1
				ORDER BY timestamp DESC
				LIMIT 1
			`, driver.ID)

			status := map[string]interface{}{
				"driver_id": driver.ID,
				"name":      driver.Name,
				"connected": hub.IsUserConnected(driver.ID),
			}
			if err == nil {
				status["last_location"] = location
			}
			statuses = append(statuses, status)
		}

		utils.RespondJSON(w, http.StatusOK, statuses)
	}
}

package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"despacho-backend/internal/middleware"
	"despacho-backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

type RegisterFCMTokenRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"device_type"`
}

// RegisterFCMToken stores a device push token for the authenticated user.
// Tokens are unique; re-registering moves the token to the current user.
func RegisterFCMToken(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUserFromContext(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req RegisterFCMTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Token == "" {
			utils.RespondError(w, http.StatusBadRequest, "token is required")
			return
		}
		if req.DeviceType != "ios" && req.DeviceType != "android" {
			utils.RespondError(w, http.StatusBadRequest, "device_type must be ios or android")
			return
		}

		_, err := db.Exec(`
			INSERT INTO fcm_tokens (user_id, token, device_type, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (token) DO UPDATE
			SET user_id = EXCLUDED.user_id, device_type = EXCLUDED.device_type, updated_at = EXCLUDED.updated_at
		`, user.UserID, req.Token, req.DeviceType, time.Now().Unix())
		if err != nil {
			log.Printf("❌ Failed to register FCM token for %s: %v", user.Email, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to register token")
			return
		}

		log.Printf("✅ FCM token registered for %s (%s)", user.Email, req.DeviceType)
		utils.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

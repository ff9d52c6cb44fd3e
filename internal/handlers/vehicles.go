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

type VehicleRequest struct {
	Plate        string  `json:"plate"`
	Brand        *string `json:"brand"`
	Model        *string `json:"model"`
	CapacityKg   *int    `json:"capacity_kg"`
	Status       *string `json:"status"`
	AssignedUser *string `json:"assigned_user_id"`
}

func GetVehicles(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var vehicles []models.Vehicle
		err := db.Select(&vehicles, "SELECT * FROM vehicles ORDER BY plate ASC")
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch vehicles")
			return
		}

		responses := make([]models.VehicleResponse, len(vehicles))
		for i, vehicle := range vehicles {
			responses[i] = vehicle.ToResponse()
		}

		utils.RespondJSON(w, http.StatusOK, responses)
	}
}

func CreateVehicle(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req VehicleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Plate == "" {
			utils.RespondError(w, http.StatusBadRequest, "plate is required")
			return
		}

		status := "active"
		if req.Status != nil {
			status = *req.Status
		}

		vehicle := models.Vehicle{
			ID:           uuid.New().String(),
			Plate:        req.Plate,
			Brand:        req.Brand,
			Model:        req.Model,
			CapacityKg:   req.CapacityKg,
			Status:       status,
			AssignedUser: req.AssignedUser,
			CreatedAt:    time.Now().Unix(),
			UpdatedAt:    time.Now().Unix(),
		}

		query := `
			INSERT INTO vehicles (id, plate, brand, model, capacity_kg, status, assigned_user_id, created_at, updated_at)
			VALUES (:id, :plate, :brand, :model, :capacity_kg, :status, :assigned_user_id, :created_at, :updated_at)
		`
		if _, err := db.NamedExec(query, vehicle); err != nil {
			utils.RespondError(w, http.StatusConflict, "Vehicle plate already exists or insert failed")
			return
		}

		utils.RespondJSON(w, http.StatusCreated, vehicle.ToResponse())
	}
}

func UpdateVehicle(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req VehicleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var existing models.Vehicle
		err := db.Get(&existing, "SELECT * FROM vehicles WHERE id = $1", id)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "Vehicle not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		status := existing.Status
		if req.Status != nil {
			status = *req.Status
		}

		_, err = db.Exec(`
			UPDATE vehicles
			SET plate = $1, brand = $2, model = $3, capacity_kg = $4,
			    status = $5, assigned_user_id = $6, updated_at = $7
			WHERE id = $8
		`, req.Plate, req.Brand, req.Model, req.CapacityKg,
			status, req.AssignedUser, time.Now().Unix(), id)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update vehicle")
			return
		}

		var updated models.Vehicle
		if err := db.Get(&updated, "SELECT * FROM vehicles WHERE id = $1", id); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch updated vehicle")
			return
		}

		utils.RespondJSON(w, http.StatusOK, updated.ToResponse())
	}
}

func DeleteVehicle(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		result, err := db.Exec("DELETE FROM vehicles WHERE id = $1", id)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete vehicle")
			return
		}

		rows, err := result.RowsAffected()
		if err != nil || rows == 0 {
			utils.RespondError(w, http.StatusNotFound, "Vehicle not found")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

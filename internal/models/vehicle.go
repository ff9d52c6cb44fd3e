package models

import "time"

type Vehicle struct {
	ID           string  `json:"id" db:"id"`
	Plate        string  `json:"plate" db:"plate"`
	Brand        *string `json:"brand" db:"brand"`
	Model        *string `json:"model" db:"model"`
	CapacityKg   *int    `json:"capacity_kg" db:"capacity_kg"`
	Status       string  `json:"status" db:"status"` // active, maintenance, retired
	AssignedUser *string `json:"assigned_user_id" db:"assigned_user_id"`
	CreatedAt    int64   `json:"created_at" db:"created_at"`
	UpdatedAt    int64   `json:"updated_at" db:"updated_at"`
}

type VehicleResponse struct {
	ID           string  `json:"id"`
	Plate        string  `json:"plate"`
	Brand        *string `json:"brand,omitempty"`
	Model        *string `json:"model,omitempty"`
	CapacityKg   *int    `json:"capacity_kg,omitempty"`
	Status       string  `json:"status"`
	AssignedUser *string `json:"assigned_user_id,omitempty"`
	CreatedAtISO string  `json:"created_at_iso"`
	UpdatedAtISO string  `json:"updated_at_iso"`
}

func (v *Vehicle) ToResponse() VehicleResponse {
	return VehicleResponse{
		ID:           v.ID,
		Plate:        v.Plate,
		Brand:        v.Brand,
		Model:        v.Model,
		CapacityKg:   v.CapacityKg,
		Status:       v.Status,
		AssignedUser: v.AssignedUser,
		CreatedAtISO: time.Unix(v.CreatedAt, 0).Format(time.RFC3339),
		UpdatedAtISO: time.Unix(v.UpdatedAt, 0).Format(time.RFC3339),
	}
}

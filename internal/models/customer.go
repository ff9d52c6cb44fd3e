package models

import "time"

// Customer is a delivery customer. Geofence holds the raw service-area
// geometry (WKT or GeoJSON text) written by the normalizer; it is nil for
// customers with no defined area. LastKnownLat/Lng are written only by the
// geofence gate's no-geofence branch.
type Customer struct {
	ID            string   `json:"id" db:"id"`
	Code          string   `json:"code" db:"code"`
	Name          string   `json:"name" db:"name"`
	Address       *string  `json:"address" db:"address"`
	Phone         *string  `json:"phone" db:"phone"`
	PaymentTermID *string  `json:"payment_term_id" db:"payment_term_id"`
	TaxID         *string  `json:"tax_id" db:"tax_id"`
	Geofence      *string  `json:"geofence" db:"geofence"`
	LastKnownLat  *float64 `json:"last_known_lat" db:"last_known_lat"`
	LastKnownLng  *float64 `json:"last_known_lng" db:"last_known_lng"`
	CreatedAt     int64    `json:"created_at" db:"created_at"`
	UpdatedAt     int64    `json:"updated_at" db:"updated_at"`
}

type CustomerResponse struct {
	ID            string   `json:"id"`
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	Address       *string  `json:"address,omitempty"`
	Phone         *string  `json:"phone,omitempty"`
	PaymentTermID *string  `json:"payment_term_id,omitempty"`
	TaxID         *string  `json:"tax_id,omitempty"`
	Geofence      *string  `json:"geofence,omitempty"`
	LastKnownLat  *float64 `json:"last_known_lat,omitempty"`
	LastKnownLng  *float64 `json:"last_known_lng,omitempty"`
	CreatedAtISO  string   `json:"created_at_iso"`
	UpdatedAtISO  string   `json:"updated_at_iso"`
}

func (c *Customer) ToResponse() CustomerResponse {
	return CustomerResponse{
		ID:            c.ID,
		Code:          c.Code,
		Name:          c.Name,
		Address:       c.Address,
		Phone:         c.Phone,
		PaymentTermID: c.PaymentTermID,
		TaxID:         c.TaxID,
		Geofence:      c.Geofence,
		LastKnownLat:  c.LastKnownLat,
		LastKnownLng:  c.LastKnownLng,
		CreatedAtISO:  time.Unix(c.CreatedAt, 0).Format(time.RFC3339),
		UpdatedAtISO:  time.Unix(c.UpdatedAt, 0).Format(time.RFC3339),
	}
}

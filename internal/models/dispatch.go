package models

import (
	"time"

	"despacho-backend/internal/geometry"
)

// Dispatch (despacho) is a batch of invoices assigned to a driver and
// vehicle for same-day delivery.
type Dispatch struct {
	ID             string  `json:"id" db:"id"`
	DispatchNumber int     `json:"dispatch_number" db:"dispatch_number"`
	DriverID       *string `json:"driver_id" db:"driver_id"`
	VehicleID      *string `json:"vehicle_id" db:"vehicle_id"`
	DispatchDate   int64   `json:"dispatch_date" db:"dispatch_date"`
	Status         string  `json:"status" db:"status"` // open, in_route, delivered, closed
	CreatedAt      int64   `json:"created_at" db:"created_at"`
	UpdatedAt      int64   `json:"updated_at" db:"updated_at"`
}

type DispatchResponse struct {
	ID              string  `json:"id"`
	DispatchNumber  int     `json:"dispatch_number"`
	DriverID        *string `json:"driver_id,omitempty"`
	VehicleID       *string `json:"vehicle_id,omitempty"`
	DispatchDateISO string  `json:"dispatch_date_iso"`
	Status          string  `json:"status"`
	CreatedAtISO    string  `json:"created_at_iso"`
	UpdatedAtISO    string  `json:"updated_at_iso"`
}

func (d *Dispatch) ToResponse() DispatchResponse {
	return DispatchResponse{
		ID:              d.ID,
		DispatchNumber:  d.DispatchNumber,
		DriverID:        d.DriverID,
		VehicleID:       d.VehicleID,
		DispatchDateISO: time.Unix(d.DispatchDate, 0).Format(time.RFC3339),
		Status:          d.Status,
		CreatedAtISO:    time.Unix(d.CreatedAt, 0).Format(time.RFC3339),
		UpdatedAtISO:    time.Unix(d.UpdatedAt, 0).Format(time.RFC3339),
	}
}

// DispatchLine is one invoice on a dispatch, with its payment record.
// Payment fields are what the geofence gate protects for drivers.
type DispatchLine struct {
	ID            int64    `json:"id" db:"id"`
	DispatchID    string   `json:"dispatch_id" db:"dispatch_id"`
	InvoiceID     string   `json:"invoice_id" db:"invoice_id"`
	DeliveryOrder *int     `json:"delivery_order" db:"delivery_order"`
	PaymentStatus string   `json:"payment_status" db:"payment_status"` // pending, partial, paid
	PaidAmount    float64  `json:"paid_amount" db:"paid_amount"`
	PaymentMethod *string  `json:"payment_method" db:"payment_method"`
	PhotoURL      *string  `json:"photo_url" db:"photo_url"`
	CreatedAt     int64    `json:"created_at" db:"created_at"`
	UpdatedAt     int64    `json:"updated_at" db:"updated_at"`
}

// DeliveryStop pairs a dispatch line with the owning customer, as joined
// per dispatch-detail view from dispatch_invoices, invoices and customers.
// Assembled fresh per request, never persisted.
type DeliveryStop struct {
	LineID        int64   `json:"line_id" db:"line_id"`
	InvoiceNumber string  `json:"invoice_number" db:"invoice_number"`
	CustomerCode  string  `json:"customer_code" db:"customer_code"`
	CustomerName  string  `json:"customer_name" db:"customer_name"`
	Geofence      *string `json:"geofence" db:"geofence"`
}

// DepotStopID is the sentinel line id of the synthetic depot pseudo-stop
// prepended to every optimized route.
const DepotStopID int64 = -1

// RoutedStop is one element of an optimized visit order: the original stop
// tagged with its resolved centroid. Element zero of a full route is always
// the depot sentinel.
type RoutedStop struct {
	LineID        int64            `json:"line_id"`
	InvoiceNumber string           `json:"invoice_number,omitempty"`
	CustomerCode  string           `json:"customer_code,omitempty"`
	Name          string           `json:"name"`
	Centroid      *geometry.LatLng `json:"centroid,omitempty"`
}

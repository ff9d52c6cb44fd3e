package models

// DriverLocation is a GPS fix reported by a driver's device during a
// dispatch. The live feed is transport only: the geofence gate always uses
// the position sent with the gated request, never a cached feed value.
type DriverLocation struct {
	ID         int      `json:"id" db:"id"`
	DriverID   string   `json:"driver_id" db:"driver_id"`
	Latitude   float64  `json:"latitude" db:"latitude"`
	Longitude  float64  `json:"longitude" db:"longitude"`
	Heading    *float64 `json:"heading,omitempty" db:"heading"`   // Direction of travel (0-360 degrees)
	Speed      *float64 `json:"speed,omitempty" db:"speed"`       // Speed in m/s
	Accuracy   *float64 `json:"accuracy,omitempty" db:"accuracy"` // GPS accuracy in meters
	DispatchID *string  `json:"dispatch_id,omitempty" db:"dispatch_id"`
	Timestamp  int64    `json:"timestamp" db:"timestamp"` // Client-side timestamp
	CreatedAt  int64    `json:"created_at" db:"created_at"`
}

// DriverStatus is a driver's current state for the manager dashboard.
type DriverStatus struct {
	DriverID     string          `json:"driver_id"`
	Name         string          `json:"name"`
	DispatchID   *string         `json:"dispatch_id,omitempty"`
	LastLocation *DriverLocation `json:"last_location,omitempty"`
}

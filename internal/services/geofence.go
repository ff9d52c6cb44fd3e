package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"despacho-backend/internal/geometry"

	"github.com/jmoiron/sqlx"
)

// MembershipChecker reports whether a live position lies inside a
// customer's stored geofence. Implementations may fail with a transport or
// server error; callers must treat an error as "verification failed" and
// deny, never as a silent allow or a plain "outside".
type MembershipChecker interface {
	CheckMembership(ctx context.Context, lat, lng float64, customerCode string) (bool, error)
}

// GeofenceLookup answers whether a customer has a stored geofence at all.
type GeofenceLookup interface {
	HasGeofence(ctx context.Context, customerCode string) (bool, error)
}

// LocationPersister stores a customer's last known location. Used by the
// gate's no-geofence branch as a best-effort side effect; concurrent writes
// for the same customer race and the last write wins.
type LocationPersister interface {
	SaveLastKnownLocation(ctx context.Context, customerCode string, pos Position) error
}

// GeofenceService is the sqlx-backed server side of the membership check:
// it loads the customer's geofence text and runs the point-in-polygon test.
type GeofenceService struct {
	db *sqlx.DB
}

func NewGeofenceService(db *sqlx.DB) *GeofenceService {
	return &GeofenceService{db: db}
}

func (s *GeofenceService) HasGeofence(ctx context.Context, customerCode string) (bool, error) {
	geofence, err := s.loadGeofence(ctx, customerCode)
	if err != nil {
		return false, err
	}
	return geofence != nil && *geofence != "", nil
}

// CheckMembership parses the stored geofence on every call (no caching)
// and tests the position against it. A customer without a parseable
// geofence is always "outside".
func (s *GeofenceService) CheckMembership(ctx context.Context, lat, lng float64, customerCode string) (bool, error) {
	geofence, err := s.loadGeofence(ctx, customerCode)
	if err != nil {
		return false, err
	}
	if geofence == nil {
		return false, nil
	}

	g, ok := geometry.Parse(*geofence)
	if !ok {
		return false, nil
	}

	inside := geometry.ContainsPoint(g, lat, lng)
	log.Printf("📍 Geofence check for customer %s at (%.6f, %.6f): inside=%v", customerCode, lat, lng, inside)
	return inside, nil
}

func (s *GeofenceService) SaveLastKnownLocation(ctx context.Context, customerCode string, pos Position) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE customers
		SET last_known_lat = $1, last_known_lng = $2, updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT
		WHERE code = $3
	`, pos.Lat, pos.Lng, customerCode)
	if err != nil {
		return fmt.Errorf("failed to save last known location: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("customer %s not found", customerCode)
	}
	return nil
}

func (s *GeofenceService) loadGeofence(ctx context.Context, customerCode string) (*string, error) {
	var geofence *string
	err := s.db.GetContext(ctx, &geofence, "SELECT geofence FROM customers WHERE code = $1", customerCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("customer %s not found", customerCode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load geofence: %w", err)
	}
	return geofence, nil
}

package services

import (
	"context"
	"log"
	"sync"
	"time"

	"despacho-backend/internal/models"
)

// Position is a device GPS fix.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LocationProvider supplies the acting device's current position. The
// HTTP layer wraps the coordinates the driver app sends with the gated
// request; the provider is awaited with a hard 10-second timeout and no
// cached position is ever accepted.
type LocationProvider interface {
	CurrentPosition(ctx context.Context) (Position, error)
}

// Actor identifies the user invoking a gated action.
type Actor struct {
	UserID string
	Role   string
}

// User-facing denial messages, one per failure class. A failed membership
// check and an "outside" result must stay distinguishable.
const (
	MsgLocationFailed  = "Could not get your current location"
	MsgOutsideGeofence = "You must be inside the customer's geofence to do this"
	MsgVerifyFailed    = "Could not verify your location, try again"
)

const positionTimeout = 10 * time.Second

// GateDecision is the terminal outcome of one gate invocation.
type GateDecision struct {
	Allowed bool `json:"allowed"`
	// Reason carries the user-facing denial message when Allowed is false.
	Reason string `json:"reason,omitempty"`
	// LocationSaved is true when the no-geofence branch persisted the
	// device position as the customer's last known location.
	LocationSaved bool `json:"location_saved,omitempty"`
	// SaveWarning reports a failed location persist. It is non-blocking:
	// the action stays allowed.
	SaveWarning error `json:"-"`
}

func denied(reason string) GateDecision {
	return GateDecision{Allowed: false, Reason: reason}
}

// GeofenceGate guards privileged driver actions (editing a payment record,
// opening the camera) behind a geofence membership check. Non-driver roles
// pass through untouched. Each invocation is keyed by the acted-upon
// record's id so the UI can disable that record's controls while its
// verification round-trip is pending, without blocking other records.
type GeofenceGate struct {
	lookup    GeofenceLookup
	checker   MembershipChecker
	persister LocationPersister

	mu        sync.Mutex
	verifying map[string]bool
}

func NewGeofenceGate(lookup GeofenceLookup, checker MembershipChecker, persister LocationPersister) *GeofenceGate {
	return &GeofenceGate{
		lookup:    lookup,
		checker:   checker,
		persister: persister,
		verifying: make(map[string]bool),
	}
}

// IsVerifying reports whether a gate invocation for the record is pending.
func (g *GeofenceGate) IsVerifying(recordID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.verifying[recordID]
}

func (g *GeofenceGate) setVerifying(recordID string, v bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if v {
		g.verifying[recordID] = true
	} else {
		delete(g.verifying, recordID)
	}
}

// Authorize runs the gate state machine for one action. Within an
// invocation, position acquisition strictly precedes the membership check,
// which strictly precedes the decision. The actor is passed explicitly;
// the gate holds no ambient session state.
func (g *GeofenceGate) Authorize(ctx context.Context, actor Actor, customerCode, recordID string, device LocationProvider) GateDecision {
	// Only the driver role is gated.
	if actor.Role != models.RoleDriver {
		return GateDecision{Allowed: true}
	}

	g.setVerifying(recordID, true)
	defer g.setVerifying(recordID, false)

	posCtx, cancel := context.WithTimeout(ctx, positionTimeout)
	defer cancel()

	pos, err := device.CurrentPosition(posCtx)
	if err != nil {
		log.Printf("❌ Gate: location acquisition failed for record %s: %v", recordID, err)
		return denied(MsgLocationFailed)
	}

	hasGeofence, err := g.lookup.HasGeofence(ctx, customerCode)
	if err != nil {
		log.Printf("❌ Gate: geofence lookup failed for customer %s: %v", customerCode, err)
		return denied(MsgVerifyFailed)
	}

	if hasGeofence {
		inside, err := g.checker.CheckMembership(ctx, pos.Lat, pos.Lng, customerCode)
		if err != nil {
			log.Printf("❌ Gate: membership check failed for customer %s: %v", customerCode, err)
			return denied(MsgVerifyFailed)
		}
		if !inside {
			log.Printf("🚫 Gate: driver %s outside geofence of customer %s", actor.UserID, customerCode)
			return denied(MsgOutsideGeofence)
		}
		return GateDecision{Allowed: true}
	}

	// No stored geofence: allow unconditionally and capture the device
	// position as the customer's last known location. A persist failure is
	// a warning only; the action is already granted.
	decision := GateDecision{Allowed: true}
	if err := g.persister.SaveLastKnownLocation(ctx, customerCode, pos); err != nil {
		log.Printf("⚠️  Gate: could not save last known location for customer %s: %v", customerCode, err)
		decision.SaveWarning = err
	} else {
		decision.LocationSaved = true
	}
	return decision
}

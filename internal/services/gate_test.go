package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"despacho-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	has   bool
	err   error
	calls int
}

func (f *fakeLookup) HasGeofence(ctx context.Context, customerCode string) (bool, error) {
	f.calls++
	return f.has, f.err
}

type fakeChecker struct {
	inside bool
	err    error
	calls  int
}

func (f *fakeChecker) CheckMembership(ctx context.Context, lat, lng float64, customerCode string) (bool, error) {
	f.calls++
	return f.inside, f.err
}

type fakePersister struct {
	err      error
	calls    int
	lastCode string
	lastPos  Position
}

func (f *fakePersister) SaveLastKnownLocation(ctx context.Context, customerCode string, pos Position) error {
	f.calls++
	f.lastCode = customerCode
	f.lastPos = pos
	return f.err
}

type fakeDevice struct {
	pos   Position
	err   error
	calls int
	block chan struct{} // when set, CurrentPosition waits before returning
}

func (f *fakeDevice) CurrentPosition(ctx context.Context) (Position, error) {
	f.calls++
	if f.block != nil {
		<-f.block
	}
	return f.pos, f.err
}

func newGate(lookup *fakeLookup, checker *fakeChecker, persister *fakePersister) *GeofenceGate {
	return NewGeofenceGate(lookup, checker, persister)
}

func TestGateNonDriverPassesThrough(t *testing.T) {
	lookup := &fakeLookup{has: true}
	checker := &fakeChecker{}
	persister := &fakePersister{}
	device := &fakeDevice{}
	gate := newGate(lookup, checker, persister)

	decision := gate.Authorize(context.Background(), Actor{UserID: "u1", Role: models.RoleAdmin}, "C001", "rec1", device)

	assert.True(t, decision.Allowed)
	assert.Zero(t, device.calls, "non-driver must not trigger a location request")
	assert.Zero(t, checker.calls)
	assert.Zero(t, persister.calls)
}

func TestGateDriverInsideGeofence(t *testing.T) {
	lookup := &fakeLookup{has: true}
	checker := &fakeChecker{inside: true}
	persister := &fakePersister{}
	device := &fakeDevice{pos: Position{Lat: 14.625, Lng: -90.505}}
	gate := newGate(lookup, checker, persister)

	decision := gate.Authorize(context.Background(), Actor{UserID: "d1", Role: models.RoleDriver}, "C001", "rec1", device)

	assert.True(t, decision.Allowed)
	assert.Equal(t, 1, checker.calls)
	assert.Zero(t, persister.calls)
}

func TestGateDriverOutsideGeofence(t *testing.T) {
	lookup := &fakeLookup{has: true}
	checker := &fakeChecker{inside: false}
	persister := &fakePersister{}
	device := &fakeDevice{pos: Position{Lat: 1, Lng: 1}}
	gate := newGate(lookup, checker, persister)

	decision := gate.Authorize(context.Background(), Actor{UserID: "d1", Role: models.RoleDriver}, "C001", "rec1", device)

	assert.False(t, decision.Allowed)
	assert.Equal(t, MsgOutsideGeofence, decision.Reason)
	assert.Zero(t, persister.calls)
}

func TestGateMembershipErrorDeniesDistinctly(t *testing.T) {
	lookup := &fakeLookup{has: true}
	checker := &fakeChecker{err: errors.New("server unreachable")}
	device := &fakeDevice{pos: Position{Lat: 1, Lng: 1}}
	gate := newGate(lookup, checker, &fakePersister{})

	decision := gate.Authorize(context.Background(), Actor{UserID: "d1", Role: models.RoleDriver}, "C001", "rec1", device)

	assert.False(t, decision.Allowed)
	assert.Equal(t, MsgVerifyFailed, decision.Reason)
	assert.NotEqual(t, MsgOutsideGeofence, decision.Reason)
}

func TestGateLocationFailureDenies(t *testing.T) {
	lookup := &fakeLookup{has: true}
	checker := &fakeChecker{inside: true}
	device := &fakeDevice{err: errors.New("permission denied")}
	gate := newGate(lookup, checker, &fakePersister{})

	decision := gate.Authorize(context.Background(), Actor{UserID: "d1", Role: models.RoleDriver}, "C001", "rec1", device)

	assert.False(t, decision.Allowed)
	assert.Equal(t, MsgLocationFailed, decision.Reason)
	assert.Zero(t, checker.calls, "membership check must not run without a position")
}

func TestGateNoGeofenceAllowsAndPersists(t *testing.T) {
	lookup := &fakeLookup{has: false}
	checker := &fakeChecker{}
	persister := &fakePersister{}
	device := &fakeDevice{pos: Position{Lat: 14.6, Lng: -90.5}}
	gate := newGate(lookup, checker, persister)

	decision := gate.Authorize(context.Background(), Actor{UserID: "d1", Role: models.RoleDriver}, "C007", "rec1", device)

	assert.True(t, decision.Allowed)
	assert.True(t, decision.LocationSaved)
	assert.NoError(t, decision.SaveWarning)
	assert.Zero(t, checker.calls)
	require.Equal(t, 1, persister.calls)
	assert.Equal(t, "C007", persister.lastCode)
	assert.Equal(t, Position{Lat: 14.6, Lng: -90.5}, persister.lastPos)
}

func TestGateNoGeofencePersistFailureIsWarningOnly(t *testing.T) {
	lookup := &fakeLookup{has: false}
	persister := &fakePersister{err: errors.New("write failed")}
	device := &fakeDevice{pos: Position{Lat: 14.6, Lng: -90.5}}
	gate := newGate(lookup, &fakeChecker{}, persister)

	decision := gate.Authorize(context.Background(), Actor{UserID: "d1", Role: models.RoleDriver}, "C007", "rec1", device)

	assert.True(t, decision.Allowed, "persist failure must not reverse the granted action")
	assert.False(t, decision.LocationSaved)
	assert.Error(t, decision.SaveWarning)
	assert.Equal(t, 1, persister.calls)
}

func TestGateLookupErrorDenies(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("db down")}
	device := &fakeDevice{pos: Position{Lat: 1, Lng: 1}}
	gate := newGate(lookup, &fakeChecker{}, &fakePersister{})

	decision := gate.Authorize(context.Background(), Actor{UserID: "d1", Role: models.RoleDriver}, "C001", "rec1", device)

	assert.False(t, decision.Allowed)
	assert.Equal(t, MsgVerifyFailed, decision.Reason)
}

func TestGateVerifyingStateIsPerRecord(t *testing.T) {
	lookup := &fakeLookup{has: true}
	checker := &fakeChecker{inside: true}
	block := make(chan struct{})
	device := &fakeDevice{pos: Position{Lat: 1, Lng: 1}, block: block}
	gate := newGate(lookup, checker, &fakePersister{})

	done := make(chan GateDecision, 1)
	go func() {
		done <- gate.Authorize(context.Background(), Actor{UserID: "d1", Role: models.RoleDriver}, "C001", "rec1", device)
	}()

	// Wait for the invocation to reach the blocked position request.
	require.Eventually(t, func() bool { return gate.IsVerifying("rec1") }, time.Second, 5*time.Millisecond)
	assert.False(t, gate.IsVerifying("rec2"), "pending state must not leak onto other records")

	close(block)
	decision := <-done
	assert.True(t, decision.Allowed)
	assert.False(t, gate.IsVerifying("rec1"))
}

package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"despacho-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func testStops() []models.DeliveryStop {
	return []models.DeliveryStop{
		{
			LineID:        10,
			InvoiceNumber: "F-001",
			CustomerCode:  "C001",
			CustomerName:  "Tienda La Esquina",
			Geofence:      strPtr("POLYGON((-90.51 14.63, -90.50 14.63, -90.50 14.62, -90.51 14.62))"),
		},
		{
			LineID:        11,
			InvoiceNumber: "F-002",
			CustomerCode:  "C002",
			CustomerName:  "Abarroteria Central",
			Geofence:      strPtr("POLYGON((-90.49 14.60, -90.48 14.60, -90.48 14.59))"),
		},
		{
			LineID:        12,
			InvoiceNumber: "F-003",
			CustomerCode:  "C003",
			CustomerName:  "Sin Geocerca",
			Geofence:      nil,
		},
	}
}

func newTestOptimizer(endpoint string) *RouteOptimizer {
	ro := NewRouteOptimizer("test-key")
	ro.endpoint = endpoint
	return ro
}

func TestOptimizeStopsFiltersAndReorders(t *testing.T) {
	var captured computeRoutesRequest
	var gotAPIKey, gotFieldMask string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("X-Goog-Api-Key")
		gotFieldMask = r.Header.Get("X-Goog-FieldMask")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]any{
			"routes": []map[string]any{
				{"optimizedIntermediateWaypointIndex": []int{1, 0}},
			},
		})
	}))
	defer server.Close()

	ro := newTestOptimizer(server.URL)
	route, err := ro.OptimizeStops(context.Background(), testStops())
	require.NoError(t, err)

	// The stop without a resolvable centroid is excluded from the request.
	assert.Len(t, captured.Intermediates, 2)
	assert.Equal(t, "DRIVE", captured.TravelMode)
	assert.Equal(t, "TRAFFIC_AWARE", captured.RoutingPreference)
	assert.True(t, captured.OptimizeWaypointOrder)
	assert.InDelta(t, DEPOT_LAT, captured.Origin.Location.LatLng.Latitude, 1e-9)
	assert.InDelta(t, DEPOT_LNG, captured.Destination.Location.LatLng.Longitude, 1e-9)

	assert.Equal(t, "test-key", gotAPIKey)
	assert.Equal(t, "routes.optimizedIntermediateWaypointIndex", gotFieldMask)

	// Depot sentinel first, then stops in the returned permutation order.
	require.Len(t, route, 3)
	assert.Equal(t, models.DepotStopID, route[0].LineID)
	assert.Equal(t, DEPOT_NAME, route[0].Name)
	assert.Equal(t, int64(11), route[1].LineID)
	assert.Equal(t, int64(10), route[2].LineID)

	// Centroid of the first stop's square geofence.
	require.NotNil(t, route[2].Centroid)
	assert.InDelta(t, 14.625, route[2].Centroid.Lat, 1e-9)
	assert.InDelta(t, -90.505, route[2].Centroid.Lng, 1e-9)
}

func TestOptimizeStopsNoValidPointsSkipsRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	stops := []models.DeliveryStop{
		{LineID: 1, CustomerName: "A", Geofence: nil},
		{LineID: 2, CustomerName: "B", Geofence: strPtr("garbage")},
	}

	ro := newTestOptimizer(server.URL)
	route, err := ro.OptimizeStops(context.Background(), stops)

	assert.ErrorIs(t, err, ErrNoValidPoints)
	assert.Nil(t, route)
	assert.False(t, called, "external service must not be called with zero waypoints")
}

func TestOptimizeStopsServerErrorNoFallbackOrdering(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	ro := newTestOptimizer(server.URL)
	route, err := ro.OptimizeStops(context.Background(), testStops())

	assert.Error(t, err)
	assert.Nil(t, route, "failures are all-or-nothing: no partial ordering")
}

func TestOptimizeStopsMalformedResponse(t *testing.T) {
	cases := map[string]string{
		"no routes":      `{"routes":[]}`,
		"index mismatch": `{"routes":[{"optimizedIntermediateWaypointIndex":[0]}]}`,
		"out of range":   `{"routes":[{"optimizedIntermediateWaypointIndex":[0,7]}]}`,
		"not json":       `<html>error</html>`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer server.Close()

			ro := newTestOptimizer(server.URL)
			route, err := ro.OptimizeStops(context.Background(), testStops())
			assert.Error(t, err)
			assert.Nil(t, route)
		})
	}
}

func TestMapsLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"routes": []map[string]any{
				{"optimizedIntermediateWaypointIndex": []int{1, 0}},
			},
		})
	}))
	defer server.Close()

	ro := newTestOptimizer(server.URL)
	route, err := ro.OptimizeStops(context.Background(), testStops())
	require.NoError(t, err)

	link := MapsLink(route)
	assert.Contains(t, link, "https://www.google.com/maps/dir/?api=1")
	assert.Contains(t, link, "origin=14.634900,-90.506900")
	// Destination is the last routed stop (line 10, centroid 14.625,-90.505).
	assert.Contains(t, link, "destination=14.625000,-90.505000")
	// The one intermediate stop (line 11) rides in waypoints.
	assert.Contains(t, link, "waypoints=14.596667,-90.483333")
}

func TestMapsLinkTooShort(t *testing.T) {
	assert.Equal(t, "", MapsLink(nil))
	assert.Equal(t, "", MapsLink([]models.RoutedStop{{LineID: models.DepotStopID, Name: DEPOT_NAME}}))
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"despacho-backend/internal/geometry"
	"despacho-backend/internal/models"
)

// Depot constants - every optimized route starts and ends here
const (
	DEPOT_LAT     = 14.63490
	DEPOT_LNG     = -90.50690
	DEPOT_NAME    = "Bodega Central"
	DEPOT_ADDRESS = "Zona 4, Ciudad de Guatemala"
)

const defaultRoutesEndpoint = "https://routes.googleapis.com/directions/v2:computeRoutes"

// optimizedIndexFieldMask restricts the response payload to the one field
// the optimizer consumes.
const optimizedIndexFieldMask = "routes.optimizedIntermediateWaypointIndex"

// ErrNoValidPoints means no stop on the dispatch had a resolvable geofence
// centroid; the external service is never called in that case.
var ErrNoValidPoints = errors.New("no delivery stops with a valid location")

// RouteOptimizer submits dispatch stops to the Google Routes API for
// waypoint-order optimization. Failures are all-or-nothing: no fallback
// ordering is ever fabricated.
type RouteOptimizer struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewRouteOptimizer(apiKey string) *RouteOptimizer {
	return &RouteOptimizer{
		apiKey:   apiKey,
		endpoint: defaultRoutesEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type routeLatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type routeLocation struct {
	LatLng routeLatLng `json:"latLng"`
}

type routeWaypoint struct {
	Location routeLocation `json:"location"`
}

type computeRoutesRequest struct {
	TravelMode            string          `json:"travelMode"`
	RoutingPreference     string          `json:"routingPreference"`
	Origin                routeWaypoint   `json:"origin"`
	Destination           routeWaypoint   `json:"destination"`
	Intermediates         []routeWaypoint `json:"intermediates"`
	OptimizeWaypointOrder bool            `json:"optimizeWaypointOrder"`
}

type computeRoutesResponse struct {
	Routes []struct {
		OptimizedIntermediateWaypointIndex []int `json:"optimizedIntermediateWaypointIndex"`
	} `json:"routes"`
}

func waypointAt(lat, lng float64) routeWaypoint {
	return routeWaypoint{Location: routeLocation{LatLng: routeLatLng{Latitude: lat, Longitude: lng}}}
}

// OptimizeStops resolves a centroid for every stop, submits the resolvable
// ones as intermediate waypoints with the depot as origin and destination,
// and returns the stops reordered by the optimized index permutation with
// the depot sentinel prepended. Stops without a resolvable centroid are
// dropped from consideration.
func (ro *RouteOptimizer) OptimizeStops(ctx context.Context, stops []models.DeliveryStop) ([]models.RoutedStop, error) {
	candidates := make([]models.RoutedStop, 0, len(stops))
	for _, stop := range stops {
		var centroid *geometry.LatLng
		if stop.Geofence != nil {
			centroid = geometry.ParseCentroid(*stop.Geofence)
		}
		if centroid == nil {
			log.Printf("⚠️  Stop %d (%s) has no resolvable location, excluded from route", stop.LineID, stop.CustomerName)
			continue
		}
		candidates = append(candidates, models.RoutedStop{
			LineID:        stop.LineID,
			InvoiceNumber: stop.InvoiceNumber,
			CustomerCode:  stop.CustomerCode,
			Name:          stop.CustomerName,
			Centroid:      centroid,
		})
	}

	if len(candidates) == 0 {
		return nil, ErrNoValidPoints
	}

	intermediates := make([]routeWaypoint, len(candidates))
	for i, c := range candidates {
		intermediates[i] = waypointAt(c.Centroid.Lat, c.Centroid.Lng)
	}

	request := computeRoutesRequest{
		TravelMode:            "DRIVE",
		RoutingPreference:     "TRAFFIC_AWARE",
		Origin:                waypointAt(DEPOT_LAT, DEPOT_LNG),
		Destination:           waypointAt(DEPOT_LAT, DEPOT_LNG),
		Intermediates:         intermediates,
		OptimizeWaypointOrder: true,
	}

	order, err := ro.computeOptimizedOrder(ctx, request)
	if err != nil {
		return nil, err
	}

	if len(order) != len(candidates) {
		return nil, fmt.Errorf("route optimization returned %d indices for %d waypoints", len(order), len(candidates))
	}

	route := make([]models.RoutedStop, 0, len(candidates)+1)
	route = append(route, models.RoutedStop{
		LineID:   models.DepotStopID,
		Name:     DEPOT_NAME,
		Centroid: &geometry.LatLng{Lat: DEPOT_LAT, Lng: DEPOT_LNG},
	})
	for _, idx := range order {
		if idx < 0 || idx >= len(candidates) {
			return nil, fmt.Errorf("route optimization returned out-of-range waypoint index %d", idx)
		}
		route = append(route, candidates[idx])
	}

	log.Printf("✅ Route optimized: %d stops (of %d on dispatch)", len(candidates), len(stops))
	return route, nil
}

func (ro *RouteOptimizer) computeOptimizedOrder(ctx context.Context, request computeRoutesRequest) ([]int, error) {
	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	log.Printf("🗺️  Google Routes request: %d intermediate waypoints", len(request.Intermediates))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ro.endpoint, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", ro.apiKey)
	req.Header.Set("X-Goog-FieldMask", optimizedIndexFieldMask)

	resp, err := ro.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("❌ Google Routes API error (status %d): %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("routes API returned status %d", resp.StatusCode)
	}

	var result computeRoutesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result.Routes) == 0 {
		return nil, fmt.Errorf("routes API returned no routes")
	}

	return result.Routes[0].OptimizedIntermediateWaypointIndex, nil
}

// MapsLink builds a Google Maps driving-directions deep link for an
// optimized route: origin is the depot, destination the last stop, and
// every stop in between a pipe-joined waypoint. The caller must pass the
// ordering produced by OptimizeStops untouched so the link and the
// on-screen itinerary can never diverge.
func MapsLink(route []models.RoutedStop) string {
	if len(route) < 2 {
		return ""
	}

	stops := route[1:] // element 0 is the depot sentinel
	last := stops[len(stops)-1]

	var waypoints []string
	for _, stop := range stops[:len(stops)-1] {
		waypoints = append(waypoints, fmt.Sprintf("%.6f,%.6f", stop.Centroid.Lat, stop.Centroid.Lng))
	}

	link := fmt.Sprintf(
		"https://www.google.com/maps/dir/?api=1&origin=%.6f,%.6f&destination=%.6f,%.6f",
		DEPOT_LAT, DEPOT_LNG, last.Centroid.Lat, last.Centroid.Lng,
	)
	if len(waypoints) > 0 {
		link += "&waypoints=" + strings.Join(waypoints, "|")
	}
	return link
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const geocodeEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"

// GeocodingService resolves customer addresses using the Google Maps
// Geocoding API. Used by the admin dashboard when registering a customer
// without a drawn geofence.
type GeocodingService struct {
	apiKey string
	client *http.Client
}

// Coordinates represents latitude and longitude
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Address represents a resolved address
type Address struct {
	FormattedAddress string      `json:"formatted_address"`
	Coordinates      Coordinates `json:"coordinates"`
}

type googleGeocodeResponse struct {
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location Coordinates `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	Status string `json:"status"`
}

// NewGeocodingService creates a new geocoding service
func NewGeocodingService(apiKey string) *GeocodingService {
	return &GeocodingService{
		apiKey: apiKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Geocode converts an address string to coordinates
func (s *GeocodingService) Geocode(ctx context.Context, address string) (*Address, error) {
	params := url.Values{}
	params.Add("address", address)
	params.Add("key", s.apiKey)

	result, err := s.fetch(ctx, params)
	if err != nil {
		return nil, err
	}

	if len(result.Results) == 0 {
		return nil, fmt.Errorf("no results found for address: %s", address)
	}

	first := result.Results[0]
	return &Address{
		FormattedAddress: first.FormattedAddress,
		Coordinates:      first.Geometry.Location,
	}, nil
}

// ReverseGeocode converts coordinates to an address
func (s *GeocodingService) ReverseGeocode(ctx context.Context, lat, lng float64) (*Address, error) {
	params := url.Values{}
	params.Add("latlng", fmt.Sprintf("%f,%f", lat, lng))
	params.Add("key", s.apiKey)

	result, err := s.fetch(ctx, params)
	if err != nil {
		return nil, err
	}

	if len(result.Results) == 0 {
		return nil, fmt.Errorf("no results found")
	}

	return &Address{
		FormattedAddress: result.Results[0].FormattedAddress,
		Coordinates:      Coordinates{Lat: lat, Lng: lng},
	}, nil
}

func (s *GeocodingService) fetch(ctx context.Context, params url.Values) (*googleGeocodeResponse, error) {
	fullURL := fmt.Sprintf("%s?%s", geocodeEndpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status code %d", resp.StatusCode)
	}

	var result googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if result.Status != "OK" {
		return nil, fmt.Errorf("geocoding API returned status: %s", result.Status)
	}

	return &result, nil
}

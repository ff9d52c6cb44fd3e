package handlers

import (
	"encoding/json"
	"net/http"

	"despacho-backend/internal/services"
	"despacho-backend/pkg/utils"
)

// Geocode resolves an address string to coordinates, used by the admin
// dashboard when registering customers without a drawn geofence.
func Geocode(geocoder *services.GeocodingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Address string `json:"address"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Address == "" {
			utils.RespondError(w, http.StatusBadRequest, "address is required")
			return
		}

		address, err := geocoder.Geocode(r.Context(), req.Address)
		if err != nil {
			utils.RespondError(w, http.StatusBadGateway, "Geocoding failed")
			return
		}

		utils.RespondJSON(w, http.StatusOK, address)
	}
}

// ReverseGeocode resolves coordinates to an address.
func ReverseGeocode(geocoder *services.GeocodingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		address, err := geocoder.ReverseGeocode(r.Context(), req.Lat, req.Lng)
		if err != nil {
			utils.RespondError(w, http.StatusBadGateway, "Reverse geocoding failed")
			return
		}

		utils.RespondJSON(w, http.StatusOK, address)
	}
}

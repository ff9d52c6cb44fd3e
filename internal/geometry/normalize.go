package geometry

import (
	"errors"
	"strings"
)

// ErrInvalidGeofence is returned by ValidateGeofenceText for text that is
// neither a polygon nor a geometry collection.
var ErrInvalidGeofence = errors.New("invalid geofence format")

// ValidateGeofenceText checks free-text geofence input at form-submit time,
// before any normalization or persistence attempt. Empty input is valid
// ("no geofence assigned"). Otherwise the trimmed, uppercased text must
// start with POLYGON and contain both "((" and "))", or start with
// GEOMETRYCOLLECTION and mention POLYGON somewhere.
func ValidateGeofenceText(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	upper := strings.ToUpper(trimmed)
	if strings.HasPrefix(upper, "POLYGON") &&
		strings.Contains(upper, "((") && strings.Contains(upper, "))") {
		return nil
	}
	if strings.HasPrefix(upper, "GEOMETRYCOLLECTION") && strings.Contains(upper, "POLYGON") {
		return nil
	}

	return ErrInvalidGeofence
}

// Normalize reduces free-text geofence input to a canonical WKT string.
// Nil means no geofence assigned. When the text contains no recognizable
// polygon at all, it is returned trimmed but otherwise untouched, so a
// downstream persistence rejection surfaces the user's literal input
// instead of silently discarding it. A collection wrapping a single
// polygon collapses to the bare polygon.
func Normalize(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	polygons := extractPolygonTexts(trimmed)
	switch len(polygons) {
	case 0:
		return &trimmed
	case 1:
		return &polygons[0]
	}

	joined := "GEOMETRYCOLLECTION(" + strings.Join(polygons, ",") + ")"
	return &joined
}

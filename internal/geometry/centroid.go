package geometry

// Centroid reduces a parsed geometry to the unweighted average of all its
// vertices across every polygon. This is a vertex average, not an
// area-weighted centroid: multi-polygon geofences bias toward whichever
// polygon has more vertices, and for irregular shapes the result can lie
// outside the polygon. That approximation is deliberate and must not be
// "fixed" without confirming intent with the routing consumers.
func Centroid(g Geometry) *LatLng {
	if g == nil {
		return nil
	}

	var sumLat, sumLng float64
	count := 0
	for _, ring := range g.Rings() {
		for _, p := range ring {
			sumLat += p.Lat
			sumLng += p.Lng
			count++
		}
	}

	if count == 0 {
		return nil
	}

	return &LatLng{
		Lat: sumLat / float64(count),
		Lng: sumLng / float64(count),
	}
}

// ParseCentroid parses a stored geofence value and computes its centroid
// in one step. Empty or unparseable input yields nil — a degraded "no
// geofence" state rather than an error.
func ParseCentroid(raw string) *LatLng {
	g, ok := Parse(raw)
	if !ok {
		return nil
	}
	return Centroid(g)
}

package geometry

// ContainsPoint reports whether the coordinate lies inside any polygon of
// the geometry, using even-odd ray casting against each outer ring.
func ContainsPoint(g Geometry, lat, lng float64) bool {
	if g == nil {
		return false
	}
	for _, ring := range g.Rings() {
		if ringContains(ring, lat, lng) {
			return true
		}
	}
	return false
}

func ringContains(ring []Point, lat, lng float64) bool {
	if len(ring) < 3 {
		return false
	}

	inside := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		pi, pj := ring[i], ring[j]
		if (pi.Lat > lat) != (pj.Lat > lat) &&
			lng < (pj.Lng-pi.Lng)*(lat-pi.Lat)/(pj.Lat-pi.Lat)+pi.Lng {
			inside = !inside
		}
		j = i
	}
	return inside
}

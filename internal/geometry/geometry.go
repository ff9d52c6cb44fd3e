package geometry

import (
	"encoding/json"
	"math"
	"strings"
)

// Point is a single geofence vertex. WKT lists longitude before latitude
// inside each coordinate pair and that order is kept here.
type Point struct {
	Lng float64
	Lat float64
}

// LatLng is a representative coordinate in the lat-first order the API uses.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geometry is the tagged union of every geofence shape the customers table
// can hold: WKT polygons and collections, and their GeoJSON equivalents.
type Geometry interface {
	// Rings returns the outer ring of every polygon in the geometry.
	// Holes are ignored everywhere.
	Rings() [][]Point
}

// WKTPolygon is a single POLYGON((...)) ring.
type WKTPolygon struct {
	Ring []Point
}

func (p WKTPolygon) Rings() [][]Point { return [][]Point{p.Ring} }

// WKTCollection is a GEOMETRYCOLLECTION(...) of polygons.
type WKTCollection struct {
	Polygons []WKTPolygon
}

func (c WKTCollection) Rings() [][]Point {
	rings := make([][]Point, 0, len(c.Polygons))
	for _, p := range c.Polygons {
		rings = append(rings, p.Ring)
	}
	return rings
}

// GeoJSONPolygon is a {"type":"Polygon"} object. Only the first (outer)
// ring is kept.
type GeoJSONPolygon struct {
	Ring []Point
}

func (p GeoJSONPolygon) Rings() [][]Point { return [][]Point{p.Ring} }

// GeoJSONCollection is a {"type":"GeometryCollection"} object. Non-polygon
// members are skipped.
type GeoJSONCollection struct {
	Polygons []GeoJSONPolygon
}

func (c GeoJSONCollection) Rings() [][]Point {
	rings := make([][]Point, 0, len(c.Polygons))
	for _, p := range c.Polygons {
		rings = append(rings, p.Ring)
	}
	return rings
}

// Parse decodes a stored geofence value into its tagged geometry form.
// The second return is false when the value is empty or no recognizable
// geometry could be extracted. Malformed input is a degraded "no geofence"
// state, never an error.
func Parse(raw string) (Geometry, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, false
	}

	if strings.HasPrefix(trimmed, "{") {
		return parseGeoJSON(trimmed)
	}

	upper := strings.ToUpper(trimmed)
	switch {
	case strings.HasPrefix(upper, "GEOMETRYCOLLECTION"):
		texts := extractPolygonTexts(trimmed)
		coll := WKTCollection{}
		for _, t := range texts {
			ring := parseRing(innerRingText(t))
			coll.Polygons = append(coll.Polygons, WKTPolygon{Ring: ring})
		}
		if len(coll.Polygons) == 0 {
			return nil, false
		}
		return coll, true
	case strings.HasPrefix(upper, "POLYGON"):
		ring := parseRing(innerRingText(trimmed))
		return WKTPolygon{Ring: ring}, true
	}

	return nil, false
}

type geoJSONGeometry struct {
	Type        string            `json:"type"`
	Coordinates [][][]float64     `json:"coordinates"`
	Geometries  []geoJSONGeometry `json:"geometries"`
}

func parseGeoJSON(raw string) (Geometry, bool) {
	var g geoJSONGeometry
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		return nil, false
	}

	switch g.Type {
	case "Polygon":
		return GeoJSONPolygon{Ring: outerRingPoints(g.Coordinates)}, true
	case "GeometryCollection":
		coll := GeoJSONCollection{}
		for _, member := range g.Geometries {
			if member.Type != "Polygon" {
				continue
			}
			coll.Polygons = append(coll.Polygons, GeoJSONPolygon{
				Ring: outerRingPoints(member.Coordinates),
			})
		}
		if len(coll.Polygons) == 0 {
			return nil, false
		}
		return coll, true
	}

	return nil, false
}

// outerRingPoints maps the first linear ring of a GeoJSON coordinates array
// to points, discarding pairs with a missing or non-finite component.
func outerRingPoints(coords [][][]float64) []Point {
	if len(coords) == 0 {
		return nil
	}

	points := make([]Point, 0, len(coords[0]))
	for _, pair := range coords[0] {
		if len(pair) < 2 {
			continue
		}
		lng, lat := pair[0], pair[1]
		if !isFinite(lng) || !isFinite(lat) {
			continue
		}
		points = append(points, Point{Lng: lng, Lat: lat})
	}
	return points
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

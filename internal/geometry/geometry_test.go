package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const squareWKT = "POLYGON((-90.51 14.63, -90.50 14.63, -90.50 14.62, -90.51 14.62))"

func TestParseCentroidSquare(t *testing.T) {
	c := ParseCentroid(squareWKT)
	require.NotNil(t, c)
	assert.InDelta(t, 14.625, c.Lat, 1e-9)
	assert.InDelta(t, -90.505, c.Lng, 1e-9)
}

func TestParseCentroidIsVertexAverage(t *testing.T) {
	// Duplicate vertices are not deduplicated; they still weight the average.
	c := ParseCentroid("POLYGON((0 0, 0 0, 4 2))")
	require.NotNil(t, c)
	assert.InDelta(t, 4.0/3.0, c.Lng, 1e-9)
	assert.InDelta(t, 2.0/3.0, c.Lat, 1e-9)
}

func TestParseCentroidSinglePoint(t *testing.T) {
	c := ParseCentroid("POLYGON((-90.5 14.6))")
	require.NotNil(t, c)
	assert.InDelta(t, 14.6, c.Lat, 1e-9)
	assert.InDelta(t, -90.5, c.Lng, 1e-9)
}

func TestParseCentroidCollectionConcatenatesPoints(t *testing.T) {
	// The centroid averages the concatenation of all member polygons'
	// points, not the average of each polygon's own centroid.
	wkt := "GEOMETRYCOLLECTION(POLYGON((0 0, 2 0, 2 2)), POLYGON((10 10)))"
	c := ParseCentroid(wkt)
	require.NotNil(t, c)
	assert.InDelta(t, 3.5, c.Lng, 1e-9)
	assert.InDelta(t, 3.0, c.Lat, 1e-9)
}

func TestParseCentroidDegradedInputs(t *testing.T) {
	assert.Nil(t, ParseCentroid(""))
	assert.Nil(t, ParseCentroid("   "))
	assert.Nil(t, ParseCentroid("garbage"))
	assert.Nil(t, ParseCentroid("POLYGON"))
	assert.Nil(t, ParseCentroid("POLYGON((not numbers here))"))
	assert.Nil(t, ParseCentroid("GEOMETRYCOLLECTION(POINT(1 2))"))
	assert.Nil(t, ParseCentroid("LINESTRING(0 0, 1 1)"))
	assert.Nil(t, ParseCentroid("{not json"))
}

func TestParseCentroidSkipsBadPairs(t *testing.T) {
	c := ParseCentroid("POLYGON((1 1, bogus pair, 3 3, 5))")
	require.NotNil(t, c)
	assert.InDelta(t, 2.0, c.Lng, 1e-9)
	assert.InDelta(t, 2.0, c.Lat, 1e-9)
}

func TestParseCentroidCaseInsensitivePrefix(t *testing.T) {
	c := ParseCentroid("polygon((1 2, 3 4))")
	require.NotNil(t, c)
	assert.InDelta(t, 2.0, c.Lng, 1e-9)
	assert.InDelta(t, 3.0, c.Lat, 1e-9)
}

func TestParseGeoJSONPolygon(t *testing.T) {
	raw := `{"type":"Polygon","coordinates":[[[-90.51,14.63],[-90.50,14.63],[-90.50,14.62],[-90.51,14.62]]]}`
	c := ParseCentroid(raw)
	require.NotNil(t, c)
	assert.InDelta(t, 14.625, c.Lat, 1e-9)
	assert.InDelta(t, -90.505, c.Lng, 1e-9)
}

func TestParseGeoJSONPolygonOuterRingOnly(t *testing.T) {
	// Hole rings are ignored.
	raw := `{"type":"Polygon","coordinates":[[[0,0],[4,0],[4,4],[0,4]],[[1,1],[2,1],[2,2]]]}`
	c := ParseCentroid(raw)
	require.NotNil(t, c)
	assert.InDelta(t, 2.0, c.Lng, 1e-9)
	assert.InDelta(t, 2.0, c.Lat, 1e-9)
}

func TestParseGeoJSONCollection(t *testing.T) {
	raw := `{"type":"GeometryCollection","geometries":[
		{"type":"Polygon","coordinates":[[[0,0],[2,0],[2,2]]]},
		{"type":"Point","coordinates":[[[99,99]]]},
		{"type":"Polygon","coordinates":[[[10,10]]]}
	]}`
	c := ParseCentroid(raw)
	require.NotNil(t, c)
	assert.InDelta(t, 3.5, c.Lng, 1e-9)
	assert.InDelta(t, 3.0, c.Lat, 1e-9)
}

func TestParseTaggedTypes(t *testing.T) {
	g, ok := Parse(squareWKT)
	require.True(t, ok)
	assert.IsType(t, WKTPolygon{}, g)

	g, ok = Parse("GEOMETRYCOLLECTION(POLYGON((0 0, 1 1)))")
	require.True(t, ok)
	assert.IsType(t, WKTCollection{}, g)

	g, ok = Parse(`{"type":"Polygon","coordinates":[[[0,0]]]}`)
	require.True(t, ok)
	assert.IsType(t, GeoJSONPolygon{}, g)

	g, ok = Parse(`{"type":"GeometryCollection","geometries":[{"type":"Polygon","coordinates":[[[0,0]]]}]}`)
	require.True(t, ok)
	assert.IsType(t, GeoJSONCollection{}, g)
}

func TestNormalizeEmptyMeansNoGeofence(t *testing.T) {
	assert.Nil(t, Normalize(""))
	assert.Nil(t, Normalize("   \n\t"))
}

func TestNormalizeSinglePolygonVerbatim(t *testing.T) {
	got := Normalize(squareWKT)
	require.NotNil(t, got)
	assert.Equal(t, squareWKT, *got)
}

func TestNormalizeUnwrapsSinglePolygonCollection(t *testing.T) {
	got := Normalize("GEOMETRYCOLLECTION(POLYGON((1 1, 2 2, 3 3)))")
	require.NotNil(t, got)
	assert.Equal(t, "POLYGON((1 1, 2 2, 3 3))", *got)
}

func TestNormalizeWrapsMultiplePolygons(t *testing.T) {
	got := Normalize("POLYGON((1 1, 2 2)) POLYGON((3 3, 4 4))")
	require.NotNil(t, got)
	assert.Equal(t, "GEOMETRYCOLLECTION(POLYGON((1 1, 2 2)),POLYGON((3 3, 4 4)))", *got)
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		squareWKT,
		"GEOMETRYCOLLECTION(POLYGON((1 1, 2 2)))",
		"GEOMETRYCOLLECTION(POLYGON((1 1, 2 2)),POLYGON((3 3, 4 4)))",
		"POLYGON((1 1, 2 2)) POLYGON((3 3, 4 4))",
	}
	for _, input := range inputs {
		first := Normalize(input)
		require.NotNil(t, first)
		second := Normalize(*first)
		require.NotNil(t, second)
		assert.Equal(t, *first, *second, "input %q", input)
	}
}

func TestNormalizePreservesUnrecognizedText(t *testing.T) {
	// Invalid input passes through trimmed so the persistence layer
	// rejects the user's literal text instead of silently losing it.
	got := Normalize("  CIRCLE(1 1, 5)  ")
	require.NotNil(t, got)
	assert.Equal(t, "CIRCLE(1 1, 5)", *got)
}

func TestValidateGeofenceText(t *testing.T) {
	assert.NoError(t, ValidateGeofenceText(""))
	assert.NoError(t, ValidateGeofenceText(squareWKT))
	assert.NoError(t, ValidateGeofenceText("polygon((1 1, 2 2))"))
	assert.NoError(t, ValidateGeofenceText("GEOMETRYCOLLECTION(POLYGON((1 1)))"))

	assert.ErrorIs(t, ValidateGeofenceText("POLYGON(1 1, 2 2)"), ErrInvalidGeofence)
	assert.ErrorIs(t, ValidateGeofenceText("GEOMETRYCOLLECTION(POINT(1 1))"), ErrInvalidGeofence)
	assert.ErrorIs(t, ValidateGeofenceText("garbage"), ErrInvalidGeofence)
}

func TestContainsPoint(t *testing.T) {
	g, ok := Parse(squareWKT)
	require.True(t, ok)

	assert.True(t, ContainsPoint(g, 14.625, -90.505))
	assert.False(t, ContainsPoint(g, 14.64, -90.505))
	assert.False(t, ContainsPoint(g, 14.625, -90.49))
}

func TestContainsPointCollection(t *testing.T) {
	g, ok := Parse("GEOMETRYCOLLECTION(POLYGON((0 0, 4 0, 4 4, 0 4)),POLYGON((10 10, 12 10, 12 12, 10 12)))")
	require.True(t, ok)

	assert.True(t, ContainsPoint(g, 2, 2))
	assert.True(t, ContainsPoint(g, 11, 11))
	assert.False(t, ContainsPoint(g, 7, 7))
	assert.False(t, ContainsPoint(nil, 2, 2))
}

package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A point inside zone 22S, roughly the Serra Gaúcha.
var geographic = orb.Point{-51.18, -29.17}

func TestForwardInverseRoundTrip(t *testing.T) {
	projected := SIRGAS2000UTM22S.Forward(geographic)

	// UTM zone 22S coordinates: easting near the 500 km false easting,
	// northing in the millions
	assert.InDelta(t, 480000, projected[0], 20000)
	assert.Greater(t, projected[1], 6_000_000.0)

	back := SIRGAS2000UTM22S.Inverse(projected)
	assert.InDelta(t, geographic[0], back[0], 1e-7)
	assert.InDelta(t, geographic[1], back[1], 1e-7)
}

func TestInverseKnownPoint(t *testing.T) {
	// The central meridian of zone 22 is -51; a point at the false easting
	// must invert to exactly that longitude.
	p := SIRGAS2000UTM22S.Inverse(orb.Point{500000, 6770000})
	assert.InDelta(t, -51.0, p[0], 1e-7)
	assert.Less(t, p[1], 0.0, "southern hemisphere")
}

func TestIsProjected(t *testing.T) {
	proj := geojson.NewFeatureCollection()
	proj.Append(geojson.NewFeature(orb.Point{482000, 6772000}))
	assert.True(t, IsProjected(proj))

	geo := geojson.NewFeatureCollection()
	geo.Append(geojson.NewFeature(geographic))
	assert.False(t, IsProjected(geo))

	empty := geojson.NewFeatureCollection()
	assert.False(t, IsProjected(empty))

	nilGeom := geojson.NewFeatureCollection()
	nilGeom.Append(&geojson.Feature{})
	assert.False(t, IsProjected(nilGeom))
}

func TestToWGS84(t *testing.T) {
	projected := SIRGAS2000UTM22S.Forward(geographic)

	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(projected))
	ToWGS84(fc, SIRGAS2000UTM22S)

	got, ok := fc.Features[0].Geometry.(orb.Point)
	require.True(t, ok)
	assert.InDelta(t, geographic[0], got[0], 1e-6)
	assert.InDelta(t, geographic[1], got[1], 1e-6)
}

func TestToWGS84GeographicPassthrough(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Polygon{{{-51.2, -29.2}, {-51.1, -29.2}, {-51.1, -29.1}, {-51.2, -29.2}}}))

	ToWGS84(fc, SIRGAS2000UTM22S)

	poly, ok := fc.Features[0].Geometry.(orb.Polygon)
	require.True(t, ok)
	assert.Equal(t, orb.Point{-51.2, -29.2}, poly[0][0], "already-geographic input is untouched")
}

// Package geo converts projected source coordinates to geographic WGS84.
//
// Municipal source files are sometimes exported in the local UTM CRS rather
// than lon/lat. The conversion runs once, right after parse and before the
// feature store is considered populated; geometry is never reprojected again.
package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/project"
)

// TransverseMercator holds the parameters of a UTM-style projected CRS on
// an ellipsoid. Only the pieces needed for the forward/inverse transform
// are kept.
type TransverseMercator struct {
	A            float64 // semi-major axis (m)
	F            float64 // flattening
	Zone         int     // UTM zone number
	South        bool    // southern hemisphere (10,000 km false northing)
	ScaleFactor  float64 // central meridian scale, 0.9996 for UTM
	FalseEasting float64 // 500 km for UTM
}

// SIRGAS2000UTM22S is the fixed projected system municipal files arrive in
// (GRS80 ellipsoid, UTM zone 22 south).
var SIRGAS2000UTM22S = TransverseMercator{
	A:            6378137.0,
	F:            1 / 298.257222101,
	Zone:         22,
	South:        true,
	ScaleFactor:  0.9996,
	FalseEasting: 500000.0,
}

func (tm TransverseMercator) e2() float64 {
	return tm.F * (2 - tm.F)
}

func (tm TransverseMercator) lon0() float64 {
	return float64(tm.Zone*6-183) * math.Pi / 180
}

func (tm TransverseMercator) falseNorthing() float64 {
	if tm.South {
		return 10000000.0
	}
	return 0
}

// Forward projects a geographic lon/lat point (degrees) to easting/northing.
func (tm TransverseMercator) Forward(p orb.Point) orb.Point {
	lon := p[0] * math.Pi / 180
	lat := p[1] * math.Pi / 180

	a, k0 := tm.A, tm.ScaleFactor
	e2 := tm.e2()
	ep2 := e2 / (1 - e2)

	sinLat, cosLat := math.Sin(lat), math.Cos(lat)
	tanLat := sinLat / cosLat

	n := a / math.Sqrt(1-e2*sinLat*sinLat)
	t := tanLat * tanLat
	c := ep2 * cosLat * cosLat
	ad := (lon - tm.lon0()) * cosLat

	m := tm.meridianArc(lat)

	easting := tm.FalseEasting + k0*n*(ad+
		(1-t+c)*ad*ad*ad/6+
		(5-18*t+t*t+72*c-58*ep2)*math.Pow(ad, 5)/120)

	northing := tm.falseNorthing() + k0*(m+n*tanLat*(ad*ad/2+
		(5-t+9*c+4*c*c)*math.Pow(ad, 4)/24+
		(61-58*t+t*t+600*c-330*ep2)*math.Pow(ad, 6)/720))

	return orb.Point{easting, northing}
}

// Inverse converts an easting/northing point back to geographic lon/lat
// in degrees.
func (tm TransverseMercator) Inverse(p orb.Point) orb.Point {
	a, k0 := tm.A, tm.ScaleFactor
	e2 := tm.e2()
	ep2 := e2 / (1 - e2)

	x := p[0] - tm.FalseEasting
	y := p[1] - tm.falseNorthing()

	m := y / k0
	mu := m / (a * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))

	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))
	phi1 := mu +
		(3*e1/2-27*e1*e1*e1/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*e1*e1*e1*e1/32)*math.Sin(4*mu) +
		(151*e1*e1*e1/96)*math.Sin(6*mu) +
		(1097*e1*e1*e1*e1/512)*math.Sin(8*mu)

	sinPhi1, cosPhi1 := math.Sin(phi1), math.Cos(phi1)
	tanPhi1 := sinPhi1 / cosPhi1

	c1 := ep2 * cosPhi1 * cosPhi1
	t1 := tanPhi1 * tanPhi1
	n1 := a / math.Sqrt(1-e2*sinPhi1*sinPhi1)
	r1 := a * (1 - e2) / math.Pow(1-e2*sinPhi1*sinPhi1, 1.5)
	d := x / (n1 * k0)

	lat := phi1 - (n1*tanPhi1/r1)*(d*d/2-
		(5+3*t1+10*c1-4*c1*c1-9*ep2)*math.Pow(d, 4)/24+
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*math.Pow(d, 6)/720)

	lon := tm.lon0() + (d-
		(1+2*t1+c1)*d*d*d/6+
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*math.Pow(d, 5)/120)/cosPhi1

	return orb.Point{lon * 180 / math.Pi, lat * 180 / math.Pi}
}

// meridianArc returns the ellipsoidal meridian arc length from the equator
// to latitude lat (radians).
func (tm TransverseMercator) meridianArc(lat float64) float64 {
	a := tm.A
	e2 := tm.e2()
	return a * ((1-e2/4-3*e2*e2/64-5*e2*e2*e2/256)*lat -
		(3*e2/8+3*e2*e2/32+45*e2*e2*e2/1024)*math.Sin(2*lat) +
		(15*e2*e2/256+45*e2*e2*e2/1024)*math.Sin(4*lat) -
		(35*e2*e2*e2/3072)*math.Sin(6*lat))
}

// IsProjected reports whether the collection's coordinates look projected
// rather than geographic. Any coordinate magnitude beyond the valid lon/lat
// range is a reliable signal; UTM eastings/northings are in the hundreds of
// thousands of meters.
func IsProjected(fc *geojson.FeatureCollection) bool {
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		b := f.Geometry.Bound()
		if math.Abs(b.Min[0]) > 180 || math.Abs(b.Max[0]) > 180 ||
			math.Abs(b.Min[1]) > 90 || math.Abs(b.Max[1]) > 90 {
			return true
		}
		return false
	}
	return false
}

// ToWGS84 reprojects every feature geometry in place using the inverse
// transform. Collections already in geographic coordinates pass through
// untouched, so calling it unconditionally is safe.
func ToWGS84(fc *geojson.FeatureCollection, tm TransverseMercator) {
	if !IsProjected(fc) {
		return
	}
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		f.Geometry = project.Geometry(f.Geometry, tm.Inverse)
	}
}

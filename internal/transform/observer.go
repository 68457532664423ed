// Package transform turns SGP4 output into what an observer on the ground
// sees: azimuth, elevation and range.
//
// TEME is rotated to Earth-fixed coordinates by GMST alone; polar motion and
// the equation of the equinoxes are ignored. The resulting error is a few
// tens of metres, far below what matters for rise and set times.
package transform

import (
	"math"
	"time"
)

// WGS-84 ellipsoid.
const (
	wgs84A  = 6378137.0
	wgs84F  = 1.0 / 298.257223563
	wgs84E2 = wgs84F * (2 - wgs84F)
)

const deg = math.Pi / 180

// Vector is a Cartesian position.
type Vector struct {
	X, Y, Z float64
}

// Norm returns the vector length.
func (v Vector) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Observer is a ground location. Its Earth-fixed position is computed once
// so it can be reused for every time step of a prediction.
type Observer struct {
	LatDeg, LonDeg, AltM float64

	sinLat, cosLat float64
	sinLon, cosLon float64
	ecef           Vector // metres
}

// LookAngles is the direction from an observer to a satellite.
type LookAngles struct {
	AzimuthDeg   float64 // 0 = north, clockwise
	ElevationDeg float64 // 0 = horizon, 90 = zenith
	RangeKm      float64
}

// NewObserver creates an Observer at the given geodetic latitude and
// longitude (degrees) and height above the ellipsoid (metres).
func NewObserver(latDeg, lonDeg, altM float64) Observer {
	o := Observer{LatDeg: latDeg, LonDeg: lonDeg, AltM: altM}
	o.sinLat, o.cosLat = math.Sincos(latDeg * deg)
	o.sinLon, o.cosLon = math.Sincos(lonDeg * deg)

	n := wgs84A / math.Sqrt(1-wgs84E2*o.sinLat*o.sinLat)
	o.ecef = Vector{
		X: (n + altM) * o.cosLat * o.cosLon,
		Y: (n + altM) * o.cosLat * o.sinLon,
		Z: (n*(1-wgs84E2) + altM) * o.sinLat,
	}
	return o
}

// ECEF returns the observer's Earth-fixed position in metres.
func (o Observer) ECEF() Vector {
	return o.ecef
}

// TEMEToECEF rotates a TEME position in km to an Earth-fixed position in
// metres at time t.
func TEMEToECEF(teme Vector, t time.Time) Vector {
	sinG, cosG := math.Sincos(GMST(t))
	return Vector{
		X: (teme.X*cosG + teme.Y*sinG) * 1000,
		Y: (-teme.X*sinG + teme.Y*cosG) * 1000,
		Z: teme.Z * 1000,
	}
}

// Look returns the look angles from o to a satellite at sat (ECEF metres),
// using the south-east-zenith rotation (Vallado 4.4).
func (o Observer) Look(sat Vector) LookAngles {
	rx := sat.X - o.ecef.X
	ry := sat.Y - o.ecef.Y
	rz := sat.Z - o.ecef.Z

	s := o.sinLat*o.cosLon*rx + o.sinLat*o.sinLon*ry - o.cosLat*rz
	e := -o.sinLon*rx + o.cosLon*ry
	z := o.cosLat*o.cosLon*rx + o.cosLat*o.sinLon*ry + o.sinLat*rz

	rng := math.Sqrt(s*s + e*e + z*z)

	az := math.Atan2(e, -s)
	if az < 0 {
		az += 2 * math.Pi
	}

	return LookAngles{
		AzimuthDeg:   az / deg,
		ElevationDeg: math.Asin(z/rng) / deg,
		RangeKm:      rng / 1000,
	}
}

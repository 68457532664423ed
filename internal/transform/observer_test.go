package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewObserverECEFMagnitude(t *testing.T) {
	// Sea level at the equator sits on the semi-major axis.
	assert.InDelta(t, 6378137.0, NewObserver(0, 0, 0).ECEF().Norm(), 1.0, "equatorial radius")

	// North pole: polar radius.
	assert.InDelta(t, 6356752.3, NewObserver(90, 0, 0).ECEF().Norm(), 1.0, "polar radius")
}

func TestNewObserverAltitude(t *testing.T) {
	low := NewObserver(0, 0, 0).ECEF()
	high := NewObserver(0, 0, 100).ECEF()

	assert.InDelta(t, 100.0, high.Norm()-low.Norm(), 0.01)
}

func TestLookDirectlyOverhead(t *testing.T) {
	obs := NewObserver(0, 0, 0)
	sat := obs.ECEF()
	sat.X += 400000 // 400 km straight up from the equator / prime meridian

	la := obs.Look(sat)
	assert.InDelta(t, 90.0, la.ElevationDeg, 0.1)
	assert.InDelta(t, 400.0, la.RangeKm, 1.0)
}

func TestLookAzimuthDirections(t *testing.T) {
	obs := NewObserver(0, 0, 0)

	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantAz  float64
		wrapped bool
	}{
		{name: "north", lat: 10, lon: 0, wantAz: 0, wrapped: true},
		{name: "east", lat: 0, lon: 10, wantAz: 90},
		{name: "south", lat: -10, lon: 0, wantAz: 180},
		{name: "west", lat: 0, lon: -10, wantAz: 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			az := obs.Look(NewObserver(tt.lat, tt.lon, 400000).ECEF()).AzimuthDeg
			if tt.wrapped && az > 180 {
				az -= 360
			}
			assert.InDelta(t, tt.wantAz, az, 30)
		})
	}
}

func TestLookBelowHorizon(t *testing.T) {
	// A satellite on the far side of the Earth is below the horizon.
	obs := NewObserver(0, 0, 0)
	sat := NewObserver(0, 180, 400000).ECEF()
	assert.Negative(t, obs.Look(sat).ElevationDeg)
}

func TestJulianDateJ2000(t *testing.T) {
	assert.InDelta(t, j2000, JulianDate(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)), 1e-9)
}

func TestGMSTReference(t *testing.T) {
	// Vallado example 3-5: 1992-08-20 12:14 UT1 -> GMST 152.578787886 deg.
	got := GMST(time.Date(1992, 8, 20, 12, 14, 0, 0, time.UTC)) / deg
	assert.InDelta(t, 152.578787886, got, 1e-3)
}

func TestTEMEToECEFPreservesMagnitude(t *testing.T) {
	teme := Vector{X: 4000, Y: 3000, Z: 4500}
	ecef := TEMEToECEF(teme, time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC))

	assert.InDelta(t, teme.Norm(), ecef.Norm()/1000, 1e-6)
	assert.Equal(t, teme.Z*1000, ecef.Z, "Z is unchanged by the rotation")
}

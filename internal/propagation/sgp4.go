// Package propagation computes satellite positions from two-line element sets.
package propagation

import (
	"fmt"
	"math"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/seanssullivan/iss-spotter/internal/transform"
)

// Plausible distance from the Earth's centre for a tracked satellite, km.
const (
	minRadiusKm = 6200.0
	maxRadiusKm = 50000.0
)

// SGP4 wraps a go-satellite model for one satellite.
//
// satellite.Propagate takes the model by value, so its error codes never reach
// the caller; failures are detected by checking the output instead.
type SGP4 struct {
	sat     satellite.Satellite
	noradID int
}

// NewSGP4 initialises the SGP4 model from TLE lines.
//
// The lines are checked first because go-satellite calls log.Fatal on input it
// cannot parse.
func NewSGP4(line1, line2 string, noradID int) (*SGP4, error) {
	if err := checkLines(line1, line2); err != nil {
		return nil, fmt.Errorf("invalid TLE for NORAD %d: %w", noradID, err)
	}

	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("sgp4 init failed for NORAD %d: code=%d %s", noradID, sat.Error, sat.ErrorStr)
	}
	return &SGP4{sat: sat, noradID: noradID}, nil
}

func checkLines(line1, line2 string) error {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)

	if len(line1) != 69 {
		return fmt.Errorf("line1 length %d, expected 69", len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("line2 length %d, expected 69", len(line2))
	}
	if line1[0] != '1' {
		return fmt.Errorf("line1 must start with '1', got '%c'", line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("line2 must start with '2', got '%c'", line2[0])
	}
	return nil
}

// PositionTEME returns the satellite position at t in the TEME frame, km.
// Sub-second precision is dropped.
func (p *SGP4) PositionTEME(t time.Time) (transform.Vector, error) {
	t = t.UTC()
	pos, _ := satellite.Propagate(p.sat, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())

	v := transform.Vector{X: pos.X, Y: pos.Y, Z: pos.Z}
	if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z) ||
		math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) || math.IsInf(v.Z, 0) {
		return transform.Vector{}, fmt.Errorf("sgp4 propagation failed for NORAD %d: output is NaN/Inf", p.noradID)
	}
	if r := v.Norm(); r < minRadiusKm || r > maxRadiusKm {
		return transform.Vector{}, fmt.Errorf("sgp4 propagation failed for NORAD %d: unreasonable position magnitude %.1f km", p.noradID, r)
	}
	return v, nil
}

// PositionECEF returns the satellite position at t in Earth-fixed metres.
func (p *SGP4) PositionECEF(t time.Time) (transform.Vector, error) {
	teme, err := p.PositionTEME(t)
	if err != nil {
		return transform.Vector{}, err
	}
	return transform.TEMEToECEF(teme, t), nil
}

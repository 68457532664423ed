// Package passes predicts when a satellite rises above an observer's horizon.
package passes

import (
	"context"
	"fmt"
	"time"

	"github.com/seanssullivan/iss-spotter/internal/propagation"
	"github.com/seanssullivan/iss-spotter/internal/tle"
	"github.com/seanssullivan/iss-spotter/internal/transform"
)

// Window is one predicted pass.
type Window struct {
	Rise             time.Time
	Set              time.Time
	MaxElevation     float64 // degrees
	MaxElevationTime time.Time
	RiseAzimuth      float64 // degrees
	SetAzimuth       float64 // degrees
}

// Duration is the time between rise and set.
func (w Window) Duration() time.Duration {
	return w.Set.Sub(w.Rise)
}

// Request holds the parameters of one prediction.
type Request struct {
	Observer     transform.Observer
	Element      tle.Element
	Start        time.Time
	Horizon      time.Duration
	MinElevation float64 // degrees
	MaxPasses    int
}

const (
	coarseStep = 30 * time.Second
	fineStep   = time.Second
	minPassDur = 10 * time.Second
)

// Predict returns the passes of req.Element over req.Observer that start
// within the horizon, in chronological order. A pass still in progress at
// the end of the horizon is closed there. When ctx is cancelled the passes
// found so far are returned along with ctx.Err(). If no sample in the horizon
// could be propagated the last propagation error is returned.
func Predict(ctx context.Context, req Request) ([]Window, error) {
	prop, err := propagation.NewSGP4(req.Element.Line1, req.Element.Line2, req.Element.NORADID)
	if err != nil {
		return nil, fmt.Errorf("sgp4 init: %w", err)
	}

	end := req.Start.Add(req.Horizon)
	var (
		windows    []Window
		propagated bool
		lastErr    error
	)

	// Coarse scan for any sample above the threshold, then refine.
	for t := req.Start; t.Before(end) && (req.MaxPasses <= 0 || len(windows) < req.MaxPasses); {
		if err := ctx.Err(); err != nil {
			return windows, err
		}

		la, err := look(prop, req.Observer, t)
		if err != nil {
			lastErr = err
			t = t.Add(coarseStep)
			continue
		}
		propagated = true
		if la.ElevationDeg < req.MinElevation {
			t = t.Add(coarseStep)
			continue
		}

		w, next := refine(prop, req, t, end)
		if w != nil && w.Duration() >= minPassDur {
			windows = append(windows, *w)
		}
		t = next.Add(coarseStep)
	}

	if !propagated && lastErr != nil {
		return nil, fmt.Errorf("no usable position between %s and %s: %w",
			req.Start.Format(time.RFC3339), end.Format(time.RFC3339), lastErr)
	}
	return windows, nil
}

// refine scans second by second around a coarse hit. It backs up one coarse
// step to find the rise, then runs forward to the set. It returns the window
// (nil if none was confirmed) and the time the scan stopped.
func refine(prop *propagation.SGP4, req Request, hit, end time.Time) (*Window, time.Time) {
	t := hit.Add(-coarseStep)
	if t.Before(req.Start) {
		t = req.Start
	}

	var (
		w        Window
		rising   bool
		wasAbove bool
	)
	for ; t.Before(end); t = t.Add(fineStep) {
		la, err := look(prop, req.Observer, t)
		if err != nil {
			continue
		}
		above := la.ElevationDeg >= req.MinElevation

		switch {
		case above && !wasAbove && !rising:
			rising = true
			w.Rise, w.RiseAzimuth = t, la.AzimuthDeg
			w.MaxElevation, w.MaxElevationTime = la.ElevationDeg, t
		case above && rising:
			if la.ElevationDeg > w.MaxElevation {
				w.MaxElevation, w.MaxElevationTime = la.ElevationDeg, t
			}
		case !above && wasAbove && rising:
			w.Set, w.SetAzimuth = t, la.AzimuthDeg
			return &w, t
		}
		wasAbove = above
	}

	if !rising {
		return nil, t
	}
	// Still above the threshold when the horizon ran out.
	w.Set = t
	if la, err := look(prop, req.Observer, t); err == nil {
		w.SetAzimuth = la.AzimuthDeg
	}
	return &w, t
}

func look(prop *propagation.SGP4, obs transform.Observer, t time.Time) (transform.LookAngles, error) {
	pos, err := prop.PositionECEF(t)
	if err != nil {
		return transform.LookAngles{}, err
	}
	return obs.Look(pos), nil
}

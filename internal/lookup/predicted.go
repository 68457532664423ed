package lookup

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/seanssullivan/iss-spotter/internal/passes"
	"github.com/seanssullivan/iss-spotter/internal/tle"
	"github.com/seanssullivan/iss-spotter/internal/transform"
	"github.com/seanssullivan/iss-spotter/internal/transport"
)

// DefaultTLEURL serves the current ISS element set.
const DefaultTLEURL = "https://celestrak.org/NORAD/elements/gp.php?CATNR=25544&FORMAT=tle"

// ISSNoradID is the catalogue number of the International Space Station.
const ISSNoradID = 25544

// PredictConfig tunes PredictedPassFetcher.
type PredictConfig struct {
	TLEURL       string
	NoradID      int
	Horizon      time.Duration
	MinElevation float64 // degrees
	MaxPasses    int
}

// PredictedPassFetcher is a PassFetcher that downloads the satellite's
// element set and predicts passes locally instead of asking a pass service.
type PredictedPassFetcher struct {
	getter transport.Getter
	cfg    PredictConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewPredictedPassFetcher creates a PredictedPassFetcher. Zero config fields
// fall back to the ISS over the next 72 hours, 10 degrees, 5 passes.
func NewPredictedPassFetcher(getter transport.Getter, cfg PredictConfig, logger *slog.Logger) *PredictedPassFetcher {
	if cfg.TLEURL == "" {
		cfg.TLEURL = DefaultTLEURL
	}
	if cfg.NoradID == 0 {
		cfg.NoradID = ISSNoradID
	}
	if cfg.Horizon <= 0 {
		cfg.Horizon = 72 * time.Hour
	}
	if cfg.MaxPasses <= 0 {
		cfg.MaxPasses = 5
	}
	return &PredictedPassFetcher{getter: getter, cfg: cfg, logger: logger, now: time.Now}
}

// FetchPasses makes one request for the element set. The coordinates are
// parsed here; values that are not decimal degrees fail with ParseError.
func (f *PredictedPassFetcher) FetchPasses(ctx context.Context, coords Coordinates) (PassList, error) {
	lat, err := parseDegrees(coords.Latitude, -90, 90)
	if err != nil {
		return nil, &ParseError{Field: "latitude", Reason: err.Error()}
	}
	lon, err := parseDegrees(coords.Longitude, -180, 180)
	if err != nil {
		return nil, &ParseError{Field: "longitude", Reason: err.Error()}
	}

	body, err := fetch(ctx, f.getter, f.cfg.TLEURL)
	if err != nil {
		return nil, err
	}
	elements, err := tle.Parse(bytes.NewReader(body), f.logger)
	if err != nil {
		return nil, &ParseError{URL: f.cfg.TLEURL, Reason: err.Error()}
	}
	el, ok := tle.Find(elements, f.cfg.NoradID)
	if !ok {
		return nil, &ParseError{URL: f.cfg.TLEURL, Reason: "no element set for NORAD " + strconv.Itoa(f.cfg.NoradID)}
	}

	windows, err := passes.Predict(ctx, passes.Request{
		Observer:     transform.NewObserver(lat, lon, 0),
		Element:      el,
		Start:        f.now().UTC(),
		Horizon:      f.cfg.Horizon,
		MinElevation: f.cfg.MinElevation,
		MaxPasses:    f.cfg.MaxPasses,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, &TransportError{URL: f.cfg.TLEURL, Err: err}
		}
		return nil, &ParseError{URL: f.cfg.TLEURL, Reason: err.Error()}
	}

	list := make(PassList, 0, len(windows))
	for _, w := range windows {
		list = append(list, Pass{
			Risetime: w.Rise.Unix(),
			Duration: int64(math.Round(w.Duration().Seconds())),
		})
	}
	return list, nil
}

func parseDegrees(s string, min, max float64) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v < min || v > max {
		return 0, fmt.Errorf("value %q is not in [%g, %g]", s, min, max)
	}
	return v, nil
}

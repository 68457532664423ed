package lookup

import (
	"context"
	"net/url"
	"strings"

	"github.com/seanssullivan/iss-spotter/internal/transport"
)

// DefaultGeoURL is addressed as <base>/<ip> and answers with
// {"data": {"latitude": "...", "longitude": "..."}}.
const DefaultGeoURL = "https://ipvigilante.com/json"

// CoordinateResolver maps an IP address to approximate coordinates.
type CoordinateResolver interface {
	ResolveCoordinates(ctx context.Context, ip IPAddress) (Coordinates, error)
}

// HTTPCoordinateResolver queries a geolocation service by IP.
type HTTPCoordinateResolver struct {
	getter  transport.Getter
	baseURL string
}

// NewHTTPCoordinateResolver creates a resolver for baseURL, or DefaultGeoURL when empty.
func NewHTTPCoordinateResolver(getter transport.Getter, baseURL string) *HTTPCoordinateResolver {
	if baseURL == "" {
		baseURL = DefaultGeoURL
	}
	return &HTTPCoordinateResolver{getter: getter, baseURL: strings.TrimRight(baseURL, "/")}
}

// ResolveCoordinates performs a single request for ip. Latitude and longitude
// must be present as strings; their contents are not checked here.
func (r *HTTPCoordinateResolver) ResolveCoordinates(ctx context.Context, ip IPAddress) (Coordinates, error) {
	reqURL := r.baseURL + "/" + url.PathEscape(string(ip))

	doc, err := fetchObject(ctx, r.getter, reqURL)
	if err != nil {
		return Coordinates{}, err
	}
	lat, err := stringField(reqURL, doc, "data.latitude")
	if err != nil {
		return Coordinates{}, err
	}
	lon, err := stringField(reqURL, doc, "data.longitude")
	if err != nil {
		return Coordinates{}, err
	}
	return Coordinates{Latitude: lat, Longitude: lon}, nil
}

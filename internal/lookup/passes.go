package lookup

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/seanssullivan/iss-spotter/internal/transport"
)

// DefaultPassURL is queried with ?lat=<latitude>&lon=<longitude> and answers
// with {"response": [{"risetime": <int>, "duration": <int>}, ...]}.
const DefaultPassURL = "http://api.open-notify.org/iss-pass.json"

// PassFetcher returns the upcoming passes over a location.
type PassFetcher interface {
	FetchPasses(ctx context.Context, coords Coordinates) (PassList, error)
}

// HTTPPassFetcher queries a pass-prediction service.
type HTTPPassFetcher struct {
	getter  transport.Getter
	baseURL string
}

// NewHTTPPassFetcher creates a fetcher for baseURL, or DefaultPassURL when empty.
func NewHTTPPassFetcher(getter transport.Getter, baseURL string) *HTTPPassFetcher {
	if baseURL == "" {
		baseURL = DefaultPassURL
	}
	return &HTTPPassFetcher{getter: getter, baseURL: baseURL}
}

// FetchPasses performs a single request and returns the "response" array
// element for element. Any malformed element fails the whole call.
func (f *HTTPPassFetcher) FetchPasses(ctx context.Context, coords Coordinates) (PassList, error) {
	reqURL := f.passURL(coords)

	doc, err := fetchObject(ctx, f.getter, reqURL)
	if err != nil {
		return nil, err
	}
	arr := doc.Get("response")
	if !arr.Exists() {
		return nil, &ParseError{URL: reqURL, Field: "response", Reason: "is missing"}
	}
	if !arr.IsArray() {
		return nil, &ParseError{URL: reqURL, Field: "response", Reason: "is not an array"}
	}

	elems := arr.Array()
	passes := make(PassList, 0, len(elems))
	for i, elem := range elems {
		p, err := parsePass(reqURL, i, elem)
		if err != nil {
			return nil, err
		}
		passes = append(passes, p)
	}
	return passes, nil
}

// passURL appends the coordinates verbatim (query-escaped only).
func (f *HTTPPassFetcher) passURL(coords Coordinates) string {
	sep := "?"
	if strings.Contains(f.baseURL, "?") {
		sep = "&"
	}
	return f.baseURL + sep + "lat=" + url.QueryEscape(coords.Latitude) + "&lon=" + url.QueryEscape(coords.Longitude)
}

func parsePass(reqURL string, idx int, elem gjson.Result) (Pass, error) {
	if !elem.IsObject() {
		return Pass{}, &ParseError{URL: reqURL, Field: fmt.Sprintf("response.%d", idx), Reason: "is not an object"}
	}
	rise, err := intField(reqURL, elem, idx, "risetime")
	if err != nil {
		return Pass{}, err
	}
	if rise <= 0 {
		return Pass{}, &ParseError{URL: reqURL, Field: fmt.Sprintf("response.%d.risetime", idx), Reason: "must be positive"}
	}
	dur, err := intField(reqURL, elem, idx, "duration")
	if err != nil {
		return Pass{}, err
	}
	if dur < 0 {
		return Pass{}, &ParseError{URL: reqURL, Field: fmt.Sprintf("response.%d.duration", idx), Reason: "must not be negative"}
	}
	return Pass{Risetime: rise, Duration: dur}, nil
}

func intField(reqURL string, elem gjson.Result, idx int, name string) (int64, error) {
	field := fmt.Sprintf("response.%d.%s", idx, name)
	v := elem.Get(name)
	if !v.Exists() {
		return 0, &ParseError{URL: reqURL, Field: field, Reason: "is missing"}
	}
	if v.Type != gjson.Number {
		return 0, &ParseError{URL: reqURL, Field: field, Reason: "is not a number"}
	}
	n, err := strconv.ParseInt(v.Raw, 10, 64)
	if err != nil {
		return 0, &ParseError{URL: reqURL, Field: field, Reason: "is not an integer"}
	}
	return n, nil
}

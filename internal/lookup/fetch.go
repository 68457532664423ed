package lookup

import (
	"context"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/seanssullivan/iss-spotter/internal/transport"
)

// fetch performs one GET and applies the status rule shared by every stage.
func fetch(ctx context.Context, getter transport.Getter, url string) ([]byte, error) {
	resp, err := getter.Get(ctx, url)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, Code: resp.StatusCode, Body: string(resp.Body)}
	}
	return resp.Body, nil
}

// fetchObject fetches url and requires the body to be a JSON object.
func fetchObject(ctx context.Context, getter transport.Getter, url string) (gjson.Result, error) {
	body, err := fetch(ctx, getter, url)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, &ParseError{URL: url, Reason: "body is not valid JSON"}
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return gjson.Result{}, &ParseError{URL: url, Reason: "body is not a JSON object"}
	}
	return doc, nil
}

// stringField returns the string at path, failing closed when it is absent or
// has another JSON type. Empty strings are returned as is.
func stringField(url string, doc gjson.Result, path string) (string, error) {
	v := doc.Get(path)
	if !v.Exists() {
		return "", &ParseError{URL: url, Field: path, Reason: "is missing"}
	}
	if v.Type != gjson.String {
		return "", &ParseError{URL: url, Field: path, Reason: "is not a string"}
	}
	return v.Str, nil
}

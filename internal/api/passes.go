package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/seanssullivan/iss-spotter/internal/lookup"
	"github.com/seanssullivan/iss-spotter/internal/report"
)

// PassLookup runs one complete lookup chain.
type PassLookup interface {
	NextPasses(ctx context.Context) (lookup.PassList, error)
}

type passesResponse struct {
	Passes lookup.PassList `json:"passes"`
	Count  int             `json:"count"`
}

type errorResponse struct {
	Error          string `json:"error"`
	Kind           string `json:"kind"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}

// passesHandler serves GET /api/v1/passes. Every request runs its own lookup.
// ?format=text returns report lines instead of JSON, rendered in ?tz
// (an IANA zone name, UTC by default).
func passesHandler(logger *slog.Logger, passes PassLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		format := q.Get("format")
		if format != "" && format != "json" && format != "text" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "format must be json or text", Kind: "request"})
			return
		}
		loc := time.UTC
		if tz := q.Get("tz"); tz != "" {
			l, err := time.LoadLocation(tz)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown time zone " + tz, Kind: "request"})
				return
			}
			loc = l
		}

		list, err := passes.NextPasses(r.Context())
		if err != nil {
			status, body := lookupError(err)
			logger.Warn("pass lookup failed",
				"component", "api",
				"request_id", RequestID(r.Context()),
				"kind", body.Kind,
				"error", err,
			)
			writeJSON(w, status, body)
			return
		}

		if format == "text" {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			if err := report.Write(w, list, loc); err != nil {
				logger.Warn("writing pass report failed",
					"component", "api",
					"request_id", RequestID(r.Context()),
					"error", err,
				)
			}
			return
		}
		writeJSON(w, http.StatusOK, passesResponse{Passes: list, Count: len(list)})
	}
}

// lookupError maps a lookup failure to a gateway status: 504 when no upstream
// answered, 502 when one answered badly.
func lookupError(err error) (int, errorResponse) {
	body := errorResponse{Error: err.Error(), Kind: lookup.Kind(err)}
	switch body.Kind {
	case lookup.KindTransport:
		return http.StatusGatewayTimeout, body
	case lookup.KindStatus:
		var se *lookup.StatusError
		if errors.As(err, &se) {
			body.UpstreamStatus = se.Code
		}
		return http.StatusBadGateway, body
	case lookup.KindParse:
		return http.StatusBadGateway, body
	default:
		return http.StatusInternalServerError, body
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Package health serves liveness and readiness probes.
package health

import (
	"net/http"
	"sync/atomic"
)

// Healthz returns 200 "ok\n" unconditionally.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// Readiness tracks whether the service should receive lookup traffic.
// It starts ready and is flipped off when shutdown begins.
type Readiness struct {
	draining atomic.Bool
}

// Drain marks the service as not ready.
func (r *Readiness) Drain() { r.draining.Store(true) }

// Ready reports whether Drain has not been called.
func (r *Readiness) Ready() bool { return !r.draining.Load() }

// Readyz returns 200 "ready\n", or 503 "draining\n" once Drain was called.
func (r *Readiness) Readyz(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if !r.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("draining\n"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready\n"))
}

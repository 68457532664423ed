// Package lookup finds the next satellite passes over the caller's location
// by chaining three dependent lookups: public address, coordinates for that
// address, and pass times for those coordinates.
//
// Each stage makes one outbound request and the next stage starts only after
// the previous one succeeded. The first failure ends the chain and is returned
// to the caller exactly as the stage produced it.
package lookup

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/seanssullivan/iss-spotter/internal/metrics"
)

// State is a step of a single NextPasses run.
type State int

const (
	StateStart State = iota
	StateResolvingAddress
	StateResolvingCoordinates
	StateFetchingPasses
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateResolvingAddress:
		return "resolving_address"
	case StateResolvingCoordinates:
		return "resolving_coordinates"
	case StateFetchingPasses:
		return "fetching_passes"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Stage names used in logs and metrics.
const (
	StageAddress     = "address"
	StageCoordinates = "coordinates"
	StagePasses      = "passes"
)

// TransitionFunc observes state changes of a run. It is called synchronously.
type TransitionFunc func(lookupID string, from, to State)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTransitionHook registers fn to be called on every state change.
func WithTransitionHook(fn TransitionFunc) Option {
	return func(o *Orchestrator) { o.onTransition = fn }
}

// Orchestrator sequences the three lookup stages. It holds no per-run state,
// so one Orchestrator may serve concurrent NextPasses calls.
type Orchestrator struct {
	address      AddressResolver
	coordinates  CoordinateResolver
	passes       PassFetcher
	logger       *slog.Logger
	onTransition TransitionFunc
}

// NewOrchestrator creates an Orchestrator over the given stages.
func NewOrchestrator(address AddressResolver, coordinates CoordinateResolver, passes PassFetcher, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		address:     address,
		coordinates: coordinates,
		passes:      passes,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NextPasses returns the upcoming passes for the caller's location, or the
// first error any stage returned. A result is never partially populated.
//
// ctx is handed to the stages only; NextPasses imposes no deadline of its own.
func (o *Orchestrator) NextPasses(ctx context.Context) (PassList, error) {
	r := &run{o: o, id: uuid.NewString(), state: StateStart}

	var ip IPAddress
	if err := r.step(StateResolvingAddress, StageAddress, func() (err error) {
		ip, err = o.address.ResolveAddress(ctx)
		return err
	}); err != nil {
		return nil, err
	}

	var coords Coordinates
	if err := r.step(StateResolvingCoordinates, StageCoordinates, func() (err error) {
		coords, err = o.coordinates.ResolveCoordinates(ctx, ip)
		return err
	}); err != nil {
		return nil, err
	}

	var passes PassList
	if err := r.step(StateFetchingPasses, StagePasses, func() (err error) {
		passes, err = o.passes.FetchPasses(ctx, coords)
		return err
	}); err != nil {
		return nil, err
	}

	r.transition(StateSucceeded)
	metrics.ObserveLookup("ok")
	o.logger.Info("pass lookup succeeded", "component", "lookup", "lookup_id", r.id, "passes", len(passes))
	return passes, nil
}

// run carries the state of one NextPasses call.
type run struct {
	o     *Orchestrator
	id    string
	state State
}

func (r *run) transition(to State) {
	from := r.state
	r.state = to
	r.o.logger.Debug("lookup state change", "component", "lookup", "lookup_id", r.id, "from", from.String(), "to", to.String())
	if r.o.onTransition != nil {
		r.o.onTransition(r.id, from, to)
	}
}

// step enters state, runs fn and moves to StateFailed when fn fails. The
// error is returned untouched.
func (r *run) step(state State, stage string, fn func() error) error {
	r.transition(state)

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	if err != nil {
		kind := Kind(err)
		metrics.ObserveStage(stage, kind, elapsed)
		metrics.ObserveLookup(kind)
		r.o.logger.Warn("lookup stage failed",
			"component", "lookup",
			"lookup_id", r.id,
			"stage", stage,
			"kind", kind,
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		r.transition(StateFailed)
		return err
	}

	metrics.ObserveStage(stage, "ok", elapsed)
	r.o.logger.Debug("lookup stage done", "component", "lookup", "lookup_id", r.id, "stage", stage, "duration_ms", elapsed.Milliseconds())
	return nil
}

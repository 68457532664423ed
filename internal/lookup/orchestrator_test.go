package lookup

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Stage fakes that count invocations.

type fakeAddress struct {
	calls int
	ip    IPAddress
	err   error
}

func (f *fakeAddress) ResolveAddress(ctx context.Context) (IPAddress, error) {
	f.calls++
	return f.ip, f.err
}

type fakeCoordinates struct {
	calls int
	got   IPAddress
	out   Coordinates
	err   error
}

func (f *fakeCoordinates) ResolveCoordinates(ctx context.Context, ip IPAddress) (Coordinates, error) {
	f.calls++
	f.got = ip
	return f.out, f.err
}

type fakePasses struct {
	calls int
	got   Coordinates
	out   PassList
	err   error
}

func (f *fakePasses) FetchPasses(ctx context.Context, coords Coordinates) (PassList, error) {
	f.calls++
	f.got = coords
	return f.out, f.err
}

var (
	vancouver = Coordinates{Latitude: "49.27670", Longitude: "-123.13000"}
	twoPasses = PassList{{Risetime: 1586475419, Duration: 652}, {Risetime: 1586481235, Duration: 586}}
)

func TestNextPassesSuccess(t *testing.T) {
	addr := &fakeAddress{ip: "162.245.144.188"}
	coords := &fakeCoordinates{out: vancouver}
	passes := &fakePasses{out: twoPasses}

	got, err := NewOrchestrator(addr, coords, passes, testLogger()).NextPasses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, twoPasses, got)

	// Each stage's output feeds the next one unchanged.
	assert.Equal(t, IPAddress("162.245.144.188"), coords.got)
	assert.Equal(t, vancouver, passes.got)
	assert.Equal(t, 1, addr.calls)
	assert.Equal(t, 1, coords.calls)
	assert.Equal(t, 1, passes.calls)
}

func TestNextPassesAddressFailureShortCircuits(t *testing.T) {
	stageErr := &StatusError{URL: "http://ip", Code: 404, Body: "not found"}
	addr := &fakeAddress{err: stageErr}
	coords := &fakeCoordinates{out: vancouver}
	passes := &fakePasses{out: twoPasses}

	got, err := NewOrchestrator(addr, coords, passes, testLogger()).NextPasses(context.Background())
	assert.Nil(t, got)
	assert.Same(t, stageErr, err, "error must be returned unwrapped")
	assert.Equal(t, 0, coords.calls)
	assert.Equal(t, 0, passes.calls)
}

func TestNextPassesCoordinateFailureShortCircuits(t *testing.T) {
	stageErr := &ParseError{URL: "http://geo/1.2.3.4", Field: "data.latitude", Reason: "is missing"}
	addr := &fakeAddress{ip: "1.2.3.4"}
	coords := &fakeCoordinates{err: stageErr}
	passes := &fakePasses{out: twoPasses}

	got, err := NewOrchestrator(addr, coords, passes, testLogger()).NextPasses(context.Background())
	assert.Nil(t, got)
	assert.Same(t, stageErr, err)
	assert.Equal(t, 1, addr.calls)
	assert.Equal(t, 0, passes.calls)
}

func TestNextPassesPassFailure(t *testing.T) {
	stageErr := &TransportError{URL: "http://pass", Err: errors.New("connection reset")}
	passes := &fakePasses{err: stageErr, out: twoPasses}

	got, err := NewOrchestrator(&fakeAddress{ip: "1.2.3.4"}, &fakeCoordinates{out: vancouver}, passes, testLogger()).NextPasses(context.Background())
	assert.Nil(t, got, "no partial result on failure")
	assert.Same(t, stageErr, err)
}

// Foreign error types are passed through untouched as well.
func TestNextPassesDoesNotWrapUnknownErrors(t *testing.T) {
	stageErr := errors.New("boom")
	_, err := NewOrchestrator(&fakeAddress{err: stageErr}, &fakeCoordinates{}, &fakePasses{}, testLogger()).NextPasses(context.Background())
	assert.Equal(t, stageErr, err)
}

func TestNextPassesStateTransitions(t *testing.T) {
	tests := []struct {
		name    string
		addrErr error
		geoErr  error
		passErr error
		want    []State
	}{
		{
			name: "success",
			want: []State{StateResolvingAddress, StateResolvingCoordinates, StateFetchingPasses, StateSucceeded},
		},
		{
			name:    "address fails",
			addrErr: &StatusError{Code: 500},
			want:    []State{StateResolvingAddress, StateFailed},
		},
		{
			name:   "coordinates fail",
			geoErr: &StatusError{Code: 500},
			want:   []State{StateResolvingAddress, StateResolvingCoordinates, StateFailed},
		},
		{
			name:    "passes fail",
			passErr: &StatusError{Code: 500},
			want:    []State{StateResolvingAddress, StateResolvingCoordinates, StateFetchingPasses, StateFailed},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				states []State
				prev   = StateStart
				ids    = map[string]bool{}
			)
			hook := func(id string, from, to State) {
				assert.Equal(t, prev, from)
				prev = to
				ids[id] = true
				states = append(states, to)
			}

			o := NewOrchestrator(
				&fakeAddress{ip: "1.2.3.4", err: tt.addrErr},
				&fakeCoordinates{out: vancouver, err: tt.geoErr},
				&fakePasses{out: twoPasses, err: tt.passErr},
				testLogger(),
				WithTransitionHook(hook),
			)
			o.NextPasses(context.Background())

			assert.Equal(t, tt.want, states)
			assert.Len(t, ids, 1, "one lookup id per run")
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "resolving_coordinates", StateResolvingCoordinates.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", State(42).String())
}

// End to end over HTTP with the scenario payloads.
func TestNextPassesOverHTTP(t *testing.T) {
	ipSrv := newUpstream(t, http.StatusOK, `{"ip":"162.245.144.188"}`)
	geoSrv := newUpstream(t, http.StatusOK, `{"data":{"ipv4":"162.245.144.188","latitude":"49.27670","longitude":"-123.13000"}}`)
	passSrv := newUpstream(t, http.StatusOK, `{"response":[{"risetime":1586475419,"duration":652},{"risetime":1586481235,"duration":586}]}`)

	o := NewOrchestrator(
		NewHTTPAddressResolver(testGetter, ipSrv.URL),
		NewHTTPCoordinateResolver(testGetter, geoSrv.URL),
		NewHTTPPassFetcher(testGetter, passSrv.URL),
		testLogger(),
	)
	got, err := o.NextPasses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, twoPasses, got)
	assert.Equal(t, "/162.245.144.188", geoSrv.lastPath.Load())
	assert.Equal(t, "lat=49.27670&lon=-123.13000", passSrv.lastQry.Load())
}

func TestNextPassesOverHTTPAddressNotFound(t *testing.T) {
	ipSrv := newUpstream(t, http.StatusNotFound, "not found")
	geoSrv := newUpstream(t, http.StatusOK, `{"data":{"latitude":"49.27670","longitude":"-123.13000"}}`)
	passSrv := newUpstream(t, http.StatusOK, `{"response":[]}`)

	o := NewOrchestrator(
		NewHTTPAddressResolver(testGetter, ipSrv.URL),
		NewHTTPCoordinateResolver(testGetter, geoSrv.URL),
		NewHTTPPassFetcher(testGetter, passSrv.URL),
		testLogger(),
	)
	_, err := o.NextPasses(context.Background())

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 404, se.Code)
	assert.Equal(t, "not found", se.Body)
	assert.EqualValues(t, 1, ipSrv.calls.Load())
	assert.EqualValues(t, 0, geoSrv.calls.Load())
	assert.EqualValues(t, 0, passSrv.calls.Load())
}

// Concurrent runs on one Orchestrator must not see each other's values.
func TestNextPassesConcurrentRunsAreIndependent(t *testing.T) {
	ipSrv := newUpstream(t, http.StatusOK, `{"ip":"162.245.144.188"}`)
	geoSrv := newUpstream(t, http.StatusOK, `{"data":{"latitude":"49.27670","longitude":"-123.13000"}}`)
	passSrv := newUpstream(t, http.StatusOK, `{"response":[{"risetime":1586475419,"duration":652},{"risetime":1586481235,"duration":586}]}`)

	o := NewOrchestrator(
		NewHTTPAddressResolver(testGetter, ipSrv.URL),
		NewHTTPCoordinateResolver(testGetter, geoSrv.URL),
		NewHTTPPassFetcher(testGetter, passSrv.URL),
		testLogger(),
	)

	const runs = 16
	results := make([]PassList, runs)
	errs := make([]error, runs)
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = o.NextPasses(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < runs; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, twoPasses, results[i])
	}
	// Mutating one result must not affect another.
	results[0][0].Duration = 1
	assert.Equal(t, int64(652), results[1][0].Duration)
	assert.EqualValues(t, runs, passSrv.calls.Load())
}

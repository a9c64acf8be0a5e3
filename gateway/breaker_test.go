package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"catalogdash/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      200 * time.Millisecond, // Short for tests.
		FailureRatio: 0.5,
		MinRequests:  3,
	}
}

func TestBreaker_ClosedOnSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	b := NewBreaker(testClient(), testBreakerConfig("test-closed"), testLogger(), nil)
	gw := NewHTTPGateway(b, server.URL, "", testLogger(), nil)

	_, err := gw.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_TripsOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	metrics := NewMetrics(prometheus.NewRegistry())
	b := NewBreaker(testClient(), testBreakerConfig("test-trip"), testLogger(), metrics)
	gw := NewHTTPGateway(b, server.URL, "", testLogger(), metrics)

	for i := 0; i < 3; i++ {
		_, err := gw.FetchAll(context.Background())
		require.Error(t, err)
		assert.Equal(t, "Failed to fetch products", err.Error())
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.breakerState.WithLabelValues("test-trip")))

	_, err := gw.FetchAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.Equal(t, ErrBreakerOpen.Error(), err.Error(), "open breaker message passes through")
	assert.True(t, domain.IsGatewayError(err))
	assert.Equal(t, int32(3), hits.Load(), "open breaker short-circuits the request")
}

func TestBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"bad draft"}`))
	}))
	defer server.Close()

	b := NewBreaker(testClient(), testBreakerConfig("test-4xx"), testLogger(), nil)
	gw := NewHTTPGateway(b, server.URL, "", testLogger(), nil)

	for i := 0; i < 5; i++ {
		_, err := gw.Create(context.Background(), domain.ProductDraft{Title: "Lamp", Price: 1, Category: "home"})
		require.Error(t, err)
		assert.Equal(t, "bad draft", err.Error())
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_ServerErrorBodyReachesCreate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"maintenance"}`))
	}))
	defer server.Close()

	b := NewBreaker(testClient(), testBreakerConfig("test-body"), testLogger(), nil)
	gw := NewHTTPGateway(b, server.URL, "", testLogger(), nil)

	_, err := gw.Create(context.Background(), domain.ProductDraft{Title: "Lamp", Price: 1, Category: "home"})
	require.Error(t, err)
	assert.Equal(t, "maintenance", err.Error())

	var ge *domain.GatewayError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, http.StatusServiceUnavailable, ge.Status)
}

func TestBreaker_HalfOpenRecovers(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	b := NewBreaker(testClient(), testBreakerConfig("test-recover"), testLogger(), nil)
	gw := NewHTTPGateway(b, server.URL, "", testLogger(), nil)

	for i := 0; i < 3; i++ {
		_, _ = gw.FetchAll(context.Background())
	}
	require.Equal(t, gobreaker.StateOpen, b.State())

	fail.Store(false)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, gobreaker.StateHalfOpen, b.State())

	_, err := gw.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

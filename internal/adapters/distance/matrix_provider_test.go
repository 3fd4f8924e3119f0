package distance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"journey-times/internal/platform/obs"
	"journey-times/internal/ports"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testProvider(t *testing.T, baseURL string) (*DistanceMatrixProvider, *test.Hook, *obs.Metrics) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	metrics := obs.NewMetricsForTesting()

	p, err := NewDistanceMatrixProvider(baseURL, 5*time.Second, logger, metrics)
	require.NoError(t, err)
	return p, hook, metrics
}

func jsonServer(t *testing.T, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetDistance_Success(t *testing.T) {
	body := `{"status":"OK","rows":[{"elements":[{"status":"OK","duration":{"value":3600,"text":"1 hour"},"distance":{"value":100000,"text":"100 km"}}]}]}`
	srv := jsonServer(t, body, func(r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "51.5,-0.12", q.Get("origins"))
		assert.Equal(t, "52.2,0.11", q.Get("destinations"))
		assert.Equal(t, "driving", q.Get("mode"))
		assert.Equal(t, "metric", q.Get("units"))
		assert.Equal(t, "secret", q.Get("key"))
	})

	p, _, metrics := testProvider(t, srv.URL)
	res, err := p.GetDistance(context.Background(), "51.5,-0.12", "52.2,0.11", ports.QueryParams{"key": "secret"})
	require.NoError(t, err)

	assert.Equal(t, 3600.0, res.DurationSeconds)
	assert.Equal(t, 100000.0, res.DistanceMeters)
	assert.InDelta(t, 100.0, res.AvgSpeedKmph, 1e-9)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RoutingRequests.WithLabelValues("success")))
}

func TestGetDistance_NoKeyWhenParamsEmpty(t *testing.T) {
	body := `{"rows":[{"elements":[{"duration":{"value":60},"distance":{"value":1000}}]}]}`
	srv := jsonServer(t, body, func(r *http.Request) {
		_, hasKey := r.URL.Query()["key"]
		assert.False(t, hasKey)
	})

	p, _, _ := testProvider(t, srv.URL)
	_, err := p.GetDistance(context.Background(), "1,1", "2,2", nil)
	require.NoError(t, err)
}

func TestGetDistance_ParamsCannotOverrideFixedFields(t *testing.T) {
	body := `{"rows":[{"elements":[{"duration":{"value":60},"distance":{"value":1000}}]}]}`
	srv := jsonServer(t, body, func(r *http.Request) {
		assert.Equal(t, "driving", r.URL.Query().Get("mode"))
		assert.Equal(t, "1,1", r.URL.Query().Get("origins"))
	})

	p, _, _ := testProvider(t, srv.URL)
	_, err := p.GetDistance(context.Background(), "1,1", "2,2", ports.QueryParams{"mode": "walking", "origins": "0,0"})
	require.NoError(t, err)
}

func TestGetDistance_MalformedResponseLogsBody(t *testing.T) {
	body := `{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid.","rows":[]}`
	srv := jsonServer(t, body, nil)

	p, hook, metrics := testProvider(t, srv.URL)
	_, err := p.GetDistance(context.Background(), "1,1", "2,2", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrMalformedResponse)
	assert.ErrorIs(t, err, ports.ErrBadSample)

	var logged bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			logged = true
			assert.Contains(t, e.Data["response"], "REQUEST_DENIED")
		}
	}
	assert.True(t, logged, "raw response should be logged")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RoutingRequests.WithLabelValues("bad_sample")))
}

func TestGetDistance_EmptyElements(t *testing.T) {
	srv := jsonServer(t, `{"rows":[{"elements":[]}]}`, nil)

	p, _, _ := testProvider(t, srv.URL)
	_, err := p.GetDistance(context.Background(), "1,1", "2,2", nil)
	assert.ErrorIs(t, err, ports.ErrMalformedResponse)
}

func TestGetDistance_MissingField(t *testing.T) {
	srv := jsonServer(t, `{"rows":[{"elements":[{"status":"ZERO_RESULTS"}]}]}`, nil)

	p, _, _ := testProvider(t, srv.URL)
	_, err := p.GetDistance(context.Background(), "1,1", "2,2", nil)
	assert.ErrorIs(t, err, ports.ErrMissingField)
	assert.ErrorIs(t, err, ports.ErrBadSample)
}

func TestGetDistance_ZeroDuration(t *testing.T) {
	srv := jsonServer(t, `{"rows":[{"elements":[{"duration":{"value":0},"distance":{"value":0}}]}]}`, nil)

	p, _, _ := testProvider(t, srv.URL)
	_, err := p.GetDistance(context.Background(), "1,1", "1,1", nil)
	assert.ErrorIs(t, err, ports.ErrZeroDuration)
	assert.ErrorIs(t, err, ports.ErrBadSample)
}

func TestGetDistance_HTTPErrorIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	p, _, metrics := testProvider(t, srv.URL)
	_, err := p.GetDistance(context.Background(), "1,1", "2,2", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrBadSample)

	var he *httpStatusError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusInternalServerError, he.Code)
	assert.Equal(t, "upstream down", he.Body)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RoutingRequests.WithLabelValues("error")))
}

func TestGetDistance_InvalidJSONIsFatal(t *testing.T) {
	srv := jsonServer(t, `{not json`, nil)

	p, _, _ := testProvider(t, srv.URL)
	_, err := p.GetDistance(context.Background(), "1,1", "2,2", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrBadSample)
	assert.Contains(t, err.Error(), "decode matrix response")
}

func TestGetDistance_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	logger, _ := test.NewNullLogger()
	p, err := NewDistanceMatrixProvider(srv.URL, 50*time.Millisecond, logger, nil)
	require.NoError(t, err)

	_, err = p.GetDistance(context.Background(), "1,1", "2,2", nil)
	require.Error(t, err)
}

func TestGetDistance_EmptyLocation(t *testing.T) {
	p, _, _ := testProvider(t, "http://127.0.0.1:1")
	_, err := p.GetDistance(context.Background(), "", "2,2", nil)
	require.Error(t, err)
}

func TestNewDistanceMatrixProvider_EmptyURL(t *testing.T) {
	_, err := NewDistanceMatrixProvider(" ", 0, nil, nil)
	require.Error(t, err)
}

func TestMockDistanceProvider(t *testing.T) {
	p := NewMockDistanceProvider([]MockPair{
		{From: "A", To: "B", Meters: 100000, Seconds: 3600},
		{From: "A", To: "A", Meters: 0, Seconds: 0},
	})

	res, err := p.GetDistance(context.Background(), "A", "B", nil)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, res.AvgSpeedKmph, 1e-9)

	_, err = p.GetDistance(context.Background(), "A", "A", nil)
	assert.ErrorIs(t, err, ports.ErrZeroDuration)

	_, err = p.GetDistance(context.Background(), "B", "A", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrBadSample)

	p.Fallback = &MockPair{Meters: 500, Seconds: 50}
	res, err = p.GetDistance(context.Background(), "B", "A", nil)
	require.NoError(t, err)
	assert.Equal(t, 500.0, res.DistanceMeters)
	assert.Len(t, p.Calls, 4)
}
